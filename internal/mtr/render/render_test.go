package render

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/motion-prep/internal/mtr/agent"
	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
	"github.com/banshee-data/motion-prep/internal/mtr/transform"
)

func testResult(t *testing.T) *transform.Result {
	t.Helper()
	cfg := transform.DefaultConfig()
	cfg.NumPoints = 3
	tcp, err := transform.New(cfg)
	if err != nil {
		t.Fatalf("transform.New: %v", err)
	}

	m := polyline.NewStaticMap("m",
		&polyline.Polyline{Label: polyline.LabelLane, Waypoints: [][3]float64{{1, 0, 0}, {1.5, 0, 0}, {2, 0, 0}, {2.5, 0, 0}}},
		&polyline.Polyline{Label: polyline.LabelRoadEdge, Waypoints: [][3]float64{{0, 4, 0}, {0.5, 4, 0}}},
	)
	state := agent.AgentState{XYZ: [3]float64{1, 0, 0}, IsValid: true}
	row := state.Row()
	targets, err := agent.NewTrajectory(row[:], []int{1, agent.NumDim}, []int64{0})
	if err != nil {
		t.Fatalf("NewTrajectory: %v", err)
	}

	res, _, err := tcp.Apply(context.Background(), m, targets, nil)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	return res
}

func TestTargetChunks(t *testing.T) {
	res := testResult(t)

	chunks, err := TargetChunks(res, 0)
	if err != nil {
		t.Fatalf("TargetChunks: %v", err)
	}
	want := [][][2]float64{
		{{0, 0}, {0.5, 0}, {1, 0}},
		{{1.5, 0}},
		{{-1, 4}, {-0.5, 4}},
	}
	if diff := cmp.Diff(want, chunks); diff != "" {
		t.Errorf("chunks mismatch (-want +got):\n%s", diff)
	}

	if _, err := TargetChunks(res, 1); err == nil {
		t.Error("expected error for out-of-range target")
	}
	if _, err := TargetChunks(nil, 0); err == nil {
		t.Error("expected error for nil result")
	}
}

func TestPolylinePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "target.png")
	if err := PolylinePNG(testResult(t), 0, path); err != nil {
		t.Fatalf("PolylinePNG: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(data, []byte("\x89PNG")) {
		t.Errorf("output is not a PNG, starts with %q", data[:min(8, len(data))])
	}
}

func TestPolylineHTML(t *testing.T) {
	var buf bytes.Buffer
	if err := PolylineHTML(testResult(t), 0, &buf); err != nil {
		t.Fatalf("PolylineHTML: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Target 0", "polylines", "<html"} {
		if !strings.Contains(out, want) {
			t.Errorf("html output missing %q", want)
		}
	}
}
