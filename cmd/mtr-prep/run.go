package main

import (
	"bufio"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/banshee-data/motion-prep/internal/config"
	"github.com/banshee-data/motion-prep/internal/monitoring"
	"github.com/banshee-data/motion-prep/internal/mtr/agent"
	"github.com/banshee-data/motion-prep/internal/mtr/mapio"
	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
	"github.com/banshee-data/motion-prep/internal/mtr/render"
	"github.com/banshee-data/motion-prep/internal/mtr/storage/sqlite"
	"github.com/banshee-data/motion-prep/internal/mtr/transform"
)

// maxFrameLine bounds a single JSON-lines frame record.
const maxFrameLine = 16 * 1024 * 1024

var logf = monitoring.Component("mtr-prep")

// Output is the JSON document written by -json.
type Output struct {
	MapID       string    `json:"map_id"`
	Frames      int       `json:"frames"`
	Targets     []string  `json:"targets"`
	Agents      []string  `json:"agents"`
	AgentShape  []int     `json:"agent_history_shape"`
	AgentLabels []int64   `json:"agent_label_ids"`
	AgentData   []float64 `json:"agent_history"`
	*transform.Result
}

func run(ctx context.Context, cfg Config, stdout io.Writer) error {
	monitoring.SetVerbose(cfg.Verbose)

	tuning := config.DefaultTuningConfig()
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadTuningConfig(cfg.ConfigPath)
		if err != nil {
			return err
		}
		tuning = loaded
	}

	var db *sql.DB
	if cfg.DBPath != "" {
		var err error
		if db, err = sqlite.Open(cfg.DBPath); err != nil {
			return err
		}
		defer db.Close()
	}

	m, err := loadMap(cfg, db)
	if err != nil {
		return err
	}
	logf("map %s: %d polylines, %d points", m.ID, len(m.Polylines), m.NumPoints())

	if cfg.ExportMap != "" {
		data, err := mapio.MarshalGeoJSON(m)
		if err != nil {
			return fmt.Errorf("export map: %w", err)
		}
		if err := os.WriteFile(cfg.ExportMap, data, 0o644); err != nil {
			return fmt.Errorf("export map: %w", err)
		}
	}

	frames, err := loadFrames(cfg, db)
	if err != nil {
		return err
	}

	hcfg := agent.HistoryConfigFromTuning(tuning)
	history, err := agent.NewHistory(hcfg.MaxLength)
	if err != nil {
		return err
	}
	for _, f := range frames {
		if err := history.Update(f.States, f.Infos); err != nil {
			return fmt.Errorf("frame %s: %w", f.FrameID, err)
		}
		history.RemoveInvalid(f.Timestamp, hcfg.AncientThresholdMs)
	}
	logf("replayed %d frames, %d agents tracked", len(frames), history.Len())

	targetIDs := cfg.Targets
	if len(targetIDs) == 0 {
		targetIDs = history.UUIDs()
	}
	if len(targetIDs) == 0 {
		return errors.New("no tracked agents to use as targets")
	}
	targets, targetIDs, err := history.LatestTrajectories(targetIDs)
	if err != nil {
		return err
	}

	pipeline, err := transform.New(transform.ConfigFromTuning(tuning))
	if err != nil {
		return err
	}
	res, _, err := pipeline.Apply(ctx, m, targets, nil)
	if err != nil {
		return err
	}

	agents, agentIDs, err := history.AsTrajectory(false)
	if err != nil {
		return err
	}

	shape := res.Shape()
	fmt.Fprintf(stdout, "map:       %s (%d polylines)\n", m.ID, len(m.Polylines))
	fmt.Fprintf(stdout, "frames:    %d\n", len(frames))
	fmt.Fprintf(stdout, "agents:    %v\n", agents.Shape())
	fmt.Fprintf(stdout, "polylines: %v\n", shape)
	fmt.Fprintf(stdout, "targets:   %s\n", strings.Join(targetIDs, ","))

	for b, id := range targetIDs {
		if cfg.PlotDir != "" {
			if err := render.PolylinePNG(res, b, filepath.Join(cfg.PlotDir, id+".png")); err != nil {
				return err
			}
		}
		if cfg.HTMLDir != "" {
			if err := writeHTML(res, b, filepath.Join(cfg.HTMLDir, id+".html")); err != nil {
				return err
			}
		}
	}

	if cfg.OutputJSON != "" {
		out := Output{
			MapID:       m.ID,
			Frames:      len(frames),
			Targets:     targetIDs,
			Agents:      agentIDs,
			AgentShape:  agents.Shape(),
			AgentLabels: agents.LabelIDs(),
			AgentData:   agents.AsArray(),
			Result:      res,
		}
		if err := writeJSON(cfg.OutputJSON, out); err != nil {
			return err
		}
		logf("model input written to %s", cfg.OutputJSON)
	}
	return nil
}

func loadMap(cfg Config, db *sql.DB) (*polyline.StaticMap, error) {
	if cfg.MapID != "" {
		if db == nil {
			return nil, errors.New("-map-id requires -db")
		}
		return sqlite.NewMapStore(db).LoadMap(cfg.MapID)
	}

	name := strings.TrimSuffix(filepath.Base(cfg.MapPath), filepath.Ext(cfg.MapPath))
	m, err := mapio.LoadGeoJSON(name, cfg.MapPath)
	if err != nil {
		return nil, err
	}
	if cfg.SaveMap {
		if db == nil {
			return nil, errors.New("-save-map requires -db")
		}
		id, err := sqlite.NewMapStore(db).SaveMap(name, m)
		if err != nil {
			return nil, err
		}
		logf("map stored as %s", id)
		m.ID = id
	}
	return m, nil
}

// loadFrames reads frames from the JSON-lines file when given (also
// recording them in db), otherwise from db.
func loadFrames(cfg Config, db *sql.DB) ([]sqlite.Frame, error) {
	if cfg.FramesPath == "" {
		if db == nil {
			return nil, nil
		}
		return sqlite.NewSnapshotStore(db).LoadFrames()
	}

	frames, err := readFrames(cfg.FramesPath)
	if err != nil {
		return nil, err
	}
	if db != nil {
		store := sqlite.NewSnapshotStore(db)
		for _, f := range frames {
			if err := store.SaveStates(f.FrameID, f.States, f.Infos); err != nil {
				return nil, err
			}
		}
	}
	return frames, nil
}

// readFrames parses one frame object per line. Missing infos are derived
// from the states; a missing timestamp becomes the newest state timestamp.
func readFrames(path string) ([]sqlite.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frames %s: %w", path, err)
	}
	defer f.Close()

	var frames []sqlite.Frame
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameLine)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		// Timestamp is a pointer so an explicit 0 is distinguishable from absent.
		var rec struct {
			sqlite.Frame
			Timestamp *float64 `json:"timestamp"`
		}
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, line, err)
		}
		fr := rec.Frame
		if fr.FrameID == "" {
			fr.FrameID = fmt.Sprintf("frame-%06d", line)
		}
		if len(fr.Infos) == 0 {
			fr.Infos = make([]agent.Info, len(fr.States))
			for i, st := range fr.States {
				fr.Infos[i] = agent.InfoFromState(st)
			}
		}
		if rec.Timestamp != nil {
			fr.Timestamp = *rec.Timestamp
		} else {
			fr.Timestamp = newestTimestamp(fr.States)
		}
		frames = append(frames, fr)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frames %s: %w", path, err)
	}
	return frames, nil
}

func newestTimestamp(states []agent.AgentState) float64 {
	if len(states) == 0 {
		return 0
	}
	ts := states[0].Timestamp
	for _, st := range states[1:] {
		ts = max(ts, st.Timestamp)
	}
	return ts
}

func writeHTML(res *transform.Result, b int, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render.PolylineHTML(res, b, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
