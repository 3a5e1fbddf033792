package sqlite

import (
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/banshee-data/motion-prep/internal/mtr/agent"
)

// Frame is one tick of recorded agent observations.
type Frame struct {
	FrameID   string             `json:"frame_id"`
	Timestamp float64            `json:"timestamp"` // ms, latest state in the frame
	States    []agent.AgentState `json:"states"`
	Infos     []agent.Info       `json:"infos"`
}

// SnapshotStore provides persistence for recorded agent observations.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// SaveStates records one frame. infos may be nil, in which case each state's
// info is derived from the state itself; otherwise it must match states in
// length. Saving an existing frame id replaces that frame.
func (s *SnapshotStore) SaveStates(frameID string, states []agent.AgentState, infos []agent.Info) error {
	if infos == nil {
		infos = make([]agent.Info, len(states))
		for i, st := range states {
			infos[i] = agent.InfoFromState(st)
		}
	}
	if len(infos) != len(states) {
		return fmt.Errorf("%w: %d states, %d infos", agent.ErrLengthMismatch, len(states), len(infos))
	}

	frameTs := math.Inf(-1)
	for _, st := range states {
		frameTs = math.Max(frameTs, st.Timestamp)
	}
	if math.IsInf(frameTs, 0) {
		frameTs = 0
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin save frame: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM agent_frames WHERE frame_id = ?`, frameID); err != nil {
		return fmt.Errorf("replace frame %s: %w", frameID, err)
	}
	_, err = tx.Exec(`
		INSERT INTO agent_frames (frame_id, timestamp_ms, num_states, created_at_ns)
		VALUES (?, ?, ?, ?)
	`, frameID, frameTs, len(states), time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("insert frame %s: %w", frameID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO agent_snapshots (
			frame_id, seq, uuid, timestamp_ms, label_id,
			x, y, z, length, width, height, yaw, vx, vy, is_valid,
			classification, existence_probability
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for i, st := range states {
		info := infos[i]
		_, err := stmt.Exec(
			frameID, i, st.UUID, st.Timestamp, st.LabelID,
			st.XYZ[0], st.XYZ[1], st.XYZ[2],
			st.Size[0], st.Size[1], st.Size[2],
			st.Yaw, st.VXY[0], st.VXY[1], boolToInt(st.IsValid),
			nullString(info.Classification), info.ExistenceProbability,
		)
		if err != nil {
			return fmt.Errorf("insert snapshot %s/%d: %w", frameID, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save frame: %w", err)
	}
	return nil
}

// LoadFrames returns every recorded frame in timestamp order, ready to be
// replayed through History.Update.
func (s *SnapshotStore) LoadFrames() ([]Frame, error) {
	rows, err := s.db.Query(`
		SELECT f.frame_id, f.timestamp_ms,
		       a.uuid, a.timestamp_ms, a.label_id,
		       a.x, a.y, a.z, a.length, a.width, a.height, a.yaw, a.vx, a.vy, a.is_valid,
		       a.classification, a.existence_probability
		FROM agent_frames f
		LEFT JOIN agent_snapshots a ON a.frame_id = f.frame_id
		ORDER BY f.timestamp_ms, f.created_at_ns, f.frame_id, a.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("load frames: %w", err)
	}
	defer rows.Close()

	var frames []Frame
	for rows.Next() {
		var frameID string
		var frameTs float64
		var (
			id             sql.NullString
			ts             sql.NullFloat64
			labelID        sql.NullInt64
			v              [9]sql.NullFloat64
			isValid        sql.NullInt64
			classification sql.NullString
			existence      sql.NullFloat64
		)
		err := rows.Scan(&frameID, &frameTs,
			&id, &ts, &labelID,
			&v[0], &v[1], &v[2], &v[3], &v[4], &v[5], &v[6], &v[7], &v[8], &isValid,
			&classification, &existence,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}

		if len(frames) == 0 || frames[len(frames)-1].FrameID != frameID {
			frames = append(frames, Frame{FrameID: frameID, Timestamp: frameTs})
		}
		if !id.Valid {
			continue // frame without states
		}

		st := agent.AgentState{
			UUID:      id.String,
			Timestamp: ts.Float64,
			LabelID:   int(labelID.Int64),
			XYZ:       [3]float64{v[0].Float64, v[1].Float64, v[2].Float64},
			Size:      [3]float64{v[3].Float64, v[4].Float64, v[5].Float64},
			Yaw:       v[6].Float64,
			VXY:       [2]float64{v[7].Float64, v[8].Float64},
			IsValid:   isValid.Int64 != 0,
		}
		info := agent.InfoFromState(st)
		info.Classification = classification.String
		info.ExistenceProbability = existence.Float64

		f := &frames[len(frames)-1]
		f.States = append(f.States, st)
		f.Infos = append(f.Infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}
	return frames, nil
}

// DeleteFrames removes every recorded frame.
func (s *SnapshotStore) DeleteFrames() error {
	if _, err := s.db.Exec(`DELETE FROM agent_frames`); err != nil {
		return fmt.Errorf("delete frames: %w", err)
	}
	return nil
}
