package agent

import (
	"fmt"
	"math"
	"slices"

	"github.com/banshee-data/motion-prep/internal/config"
	"github.com/banshee-data/motion-prep/internal/monitoring"
)

// HistoryConfig holds configuration for the agent history buffer.
type HistoryConfig struct {
	MaxLength          int     // States kept per agent, sentinel padded
	AncientThresholdMs float64 // Max |current - latest| before an agent is dropped
}

// HistoryConfigFromTuning builds a HistoryConfig from a loaded TuningConfig.
func HistoryConfigFromTuning(cfg *config.TuningConfig) HistoryConfig {
	return HistoryConfig{
		MaxLength:          cfg.GetMaxLength(),
		AncientThresholdMs: cfg.GetAncientThresholdMs(),
	}
}

// History keeps a bounded, sentinel-padded buffer of states per agent.
// It is not safe for concurrent mutation; the owning caller is the single
// writer between ticks. Every read returns copies.
type History struct {
	maxLength int
	histories map[string]*stateRing
	infos     map[string]Info
	order     []string // uuid insertion order
}

// NewHistory creates an empty history holding maxLength states per agent.
func NewHistory(maxLength int) (*History, error) {
	if maxLength < 1 {
		return nil, fmt.Errorf("history max length must be positive, got %d", maxLength)
	}
	return &History{
		maxLength: maxLength,
		histories: make(map[string]*stateRing),
		infos:     make(map[string]Info),
	}, nil
}

// MaxLength returns the per-agent buffer length.
func (h *History) MaxLength() int { return h.maxLength }

// Len returns the number of tracked agents.
func (h *History) Len() int { return len(h.order) }

// UUIDs returns tracked uuids in insertion order.
func (h *History) UUIDs() []string { return slices.Clone(h.order) }

// Has reports whether uuid has a buffer.
func (h *History) Has(uuid string) bool {
	_, ok := h.histories[uuid]
	return ok
}

// Info returns the stored auxiliary info for uuid.
func (h *History) Info(uuid string) (Info, bool) {
	info, ok := h.infos[uuid]
	return info, ok
}

// States returns a copy of uuid's buffer, oldest first.
func (h *History) States(uuid string) ([]AgentState, error) {
	ring, ok := h.histories[uuid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, uuid)
	}
	return ring.slice(), nil
}

// UpdateState appends state to its agent's buffer, creating a sentinel
// padded buffer on first sight. info is stored when non-nil; the last
// write wins.
func (h *History) UpdateState(state AgentState, info *Info) {
	ring, ok := h.histories[state.UUID]
	if !ok {
		ring = newStateRing(state.UUID, h.maxLength)
		h.histories[state.UUID] = ring
		h.order = append(h.order, state.UUID)
	}
	ring.push(state)

	if info != nil {
		h.infos[state.UUID] = *info
	}
}

// Update applies UpdateState pairwise. Nothing is applied when the
// sequences differ in length.
func (h *History) Update(states []AgentState, infos []Info) error {
	if len(states) != len(infos) {
		return fmt.Errorf("%w: %d states, %d infos", ErrLengthMismatch, len(states), len(infos))
	}
	for i := range states {
		h.UpdateState(states[i], &infos[i])
	}
	return nil
}

// FromTrajectory replays a recorded (A, T, NumDim) trajectory into the
// history under a single uuid. Step i is stamped i*100 ms and marked valid.
func (h *History) FromTrajectory(traj *Trajectory, labelID int, uuid string) error {
	shape := traj.Shape()
	if len(shape) != 3 {
		return fmt.Errorf("%w: replay needs (A, T, %d), got %v", ErrShape, NumDim, shape)
	}
	steps := shape[1]
	for a := 0; a < shape[0]; a++ {
		for i := 0; i < steps; i++ {
			row := traj.Row(a*steps + i)
			state := AgentState{
				UUID:      uuid,
				Timestamp: float64(i) * 100,
				LabelID:   labelID,
				XYZ:       [3]float64{row[XIdx], row[YIdx], row[ZIdx]},
				Size:      [3]float64{row[LengthIdx], row[WidthIdx], row[HeightIdx]},
				Yaw:       row[YawIdx],
				VXY:       [2]float64{row[VXIdx], row[VYIdx]},
				IsValid:   true,
			}
			info := InfoFromState(state)
			h.UpdateState(state, &info)
		}
	}
	return nil
}

// IsAncient reports whether latest is more than threshold away from current.
// The difference is absolute, so far-future timestamps are ancient too.
func IsAncient(latest, current, threshold float64) bool {
	return math.Abs(current-latest) > threshold
}

// RemoveInvalid drops every agent whose latest state is invalid or ancient
// relative to currentTimestamp. Returns the removed uuids.
func (h *History) RemoveInvalid(currentTimestamp, threshold float64) []string {
	var removed []string
	kept := h.order[:0:0]
	for _, uuid := range h.order {
		latest := h.histories[uuid].latest()
		if !latest.IsValid || IsAncient(latest.Timestamp, currentTimestamp, threshold) {
			delete(h.histories, uuid)
			delete(h.infos, uuid)
			removed = append(removed, uuid)
			continue
		}
		kept = append(kept, uuid)
	}
	h.order = kept

	if len(removed) > 0 {
		monitoring.Debugf("[history] removed %d stale agents at t=%.1f, %d remain", len(removed), currentTimestamp, len(kept))
	}
	return removed
}

// AsTrajectory stacks every agent's buffer into (N, MaxLength, NumDim), or
// only the latest state into (N, NumDim) when latest is set. Uuids are
// returned in insertion order; label ids come from each agent's newest
// state.
func (h *History) AsTrajectory(latest bool) (*Trajectory, []string, error) {
	if latest {
		return h.latestTrajectory(h.order)
	}

	n := len(h.order)
	waypoints := make([]float64, 0, n*h.maxLength*NumDim)
	labelIDs := make([]int64, n)
	for i, uuid := range h.order {
		ring := h.histories[uuid]
		for _, state := range ring.slice() {
			row := state.Row()
			waypoints = append(waypoints, row[:]...)
		}
		labelIDs[i] = int64(ring.latest().LabelID)
	}

	traj, err := NewTrajectory(waypoints, []int{n, h.maxLength, NumDim}, labelIDs)
	if err != nil {
		return nil, nil, err
	}
	return traj, slices.Clone(h.order), nil
}

// TargetAsTrajectory returns one agent's buffer as (1, MaxLength, NumDim),
// or its latest state as (1, NumDim), with its stored info.
func (h *History) TargetAsTrajectory(uuid string, latest bool) (*Trajectory, Info, error) {
	ring, ok := h.histories[uuid]
	if !ok {
		return nil, Info{}, fmt.Errorf("%w: target %s not in histories", ErrNotFound, uuid)
	}
	info, ok := h.infos[uuid]
	if !ok {
		info = InfoFromState(ring.latest())
	}

	if latest {
		traj, _, err := h.LatestTargetTrajectory(uuid)
		return traj, info, err
	}

	waypoints := make([]float64, 0, h.maxLength*NumDim)
	for _, state := range ring.slice() {
		row := state.Row()
		waypoints = append(waypoints, row[:]...)
	}
	traj, err := NewTrajectory(waypoints, []int{1, h.maxLength, NumDim}, []int64{int64(ring.latest().LabelID)})
	if err != nil {
		return nil, Info{}, err
	}
	return traj, info, nil
}

// LatestTargetTrajectory returns uuid's newest state as (1, NumDim).
func (h *History) LatestTargetTrajectory(uuid string) (*Trajectory, []string, error) {
	if _, ok := h.histories[uuid]; !ok {
		return nil, nil, fmt.Errorf("%w: target %s not in histories", ErrNotFound, uuid)
	}
	return h.latestTrajectory([]string{uuid})
}

// LatestTrajectories returns the newest state of each listed agent as
// (len(uuids), NumDim), in the given order. Any absent uuid fails the call.
func (h *History) LatestTrajectories(uuids []string) (*Trajectory, []string, error) {
	for _, uuid := range uuids {
		if _, ok := h.histories[uuid]; !ok {
			return nil, nil, fmt.Errorf("%w: target %s not in histories", ErrNotFound, uuid)
		}
	}
	return h.latestTrajectory(uuids)
}

func (h *History) latestTrajectory(uuids []string) (*Trajectory, []string, error) {
	n := len(uuids)
	waypoints := make([]float64, 0, n*NumDim)
	labelIDs := make([]int64, n)
	for i, uuid := range uuids {
		state := h.histories[uuid].latest()
		row := state.Row()
		waypoints = append(waypoints, row[:]...)
		labelIDs[i] = int64(state.LabelID)
	}
	traj, err := NewTrajectory(waypoints, []int{n, NumDim}, labelIDs)
	if err != nil {
		return nil, nil, err
	}
	return traj, slices.Clone(uuids), nil
}
