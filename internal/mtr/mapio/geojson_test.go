package mapio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
)

const sampleMap = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"type": "lane", "z": 1.5},
      "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 0], [2, 0]]}
    },
    {
      "type": "Feature",
      "properties": {"type": "ROADEDGE"},
      "geometry": {"type": "MultiLineString", "coordinates": [[[0, 5], [3, 5]], [[0, -5], [3, -5]]]}
    },
    {
      "type": "Feature",
      "properties": {"type": "crosswalk"},
      "geometry": {"type": "Polygon", "coordinates": [[[10, 0], [12, 0], [12, 1], [10, 0]]]}
    },
    {
      "type": "Feature",
      "properties": {"type": "no-such-label"},
      "geometry": {"type": "LineString", "coordinates": [[7, 7], [8, 8]]}
    },
    {
      "type": "Feature",
      "properties": {"type": "lane"},
      "geometry": {"type": "Point", "coordinates": [4, 4]}
    },
    {
      "type": "Feature",
      "properties": {"type": "roadline", "z": [0, 0.5, 1]},
      "geometry": {"type": "LineString", "coordinates": [[0, 9], [1, 9], [2, 9]]}
    }
  ]
}`

func mustParse(t *testing.T, id string, data []byte) *polyline.StaticMap {
	t.Helper()
	m, err := ParseGeoJSON(id, data)
	if err != nil {
		t.Fatalf("ParseGeoJSON: %v", err)
	}
	return m
}

func TestParseGeoJSON(t *testing.T) {
	m := mustParse(t, "sample", []byte(sampleMap))
	if m.ID != "sample" {
		t.Errorf("ID = %q, want sample", m.ID)
	}
	if len(m.Polylines) != 6 {
		t.Fatalf("got %d polylines, want 6", len(m.Polylines))
	}

	tests := []struct {
		name  string
		idx   int
		label polyline.Label
		want  [][3]float64
	}{
		{"scalar z", 0, polyline.LabelLane, [][3]float64{{0, 0, 1.5}, {1, 0, 1.5}, {2, 0, 1.5}}},
		{"multi line first", 1, polyline.LabelRoadEdge, [][3]float64{{0, 5, 0}, {3, 5, 0}}},
		{"multi line second", 2, polyline.LabelRoadEdge, [][3]float64{{0, -5, 0}, {3, -5, 0}}},
		{"polygon ring", 3, polyline.LabelCrosswalk, [][3]float64{{10, 0, 0}, {12, 0, 0}, {12, 1, 0}, {10, 0, 0}}},
		{"unknown label", 4, polyline.LabelUnknown, [][3]float64{{7, 7, 0}, {8, 8, 0}}},
		{"per-point z", 5, polyline.LabelRoadLine, [][3]float64{{0, 9, 0}, {1, 9, 0.5}, {2, 9, 1}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := m.Polylines[tt.idx]
			if p.Label != tt.label {
				t.Errorf("label = %v, want %v", p.Label, tt.label)
			}
			if diff := cmp.Diff(tt.want, p.Waypoints); diff != "" {
				t.Errorf("waypoints mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseGeoJSON_ZArrayLengthMismatch(t *testing.T) {
	data := `{"type": "FeatureCollection", "features": [{"type": "Feature",
	  "properties": {"type": "lane", "z": [1, 2]},
	  "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 0], [2, 0]]}}]}`
	m := mustParse(t, "short", []byte(data))
	for _, w := range m.Polylines[0].Waypoints {
		if w[2] != 0 {
			t.Errorf("z = %v, want 0 when the z array does not match the points", w[2])
		}
	}
}

func TestParseGeoJSON_Invalid(t *testing.T) {
	if _, err := ParseGeoJSON("bad", []byte(`{not json`)); err == nil {
		t.Error("expected error for malformed geojson")
	}
}

func TestLoadGeoJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "map.geojson")
	if err := os.WriteFile(path, []byte(sampleMap), 0o644); err != nil {
		t.Fatal(err)
	}

	m, err := LoadGeoJSON("file", path)
	if err != nil {
		t.Fatalf("LoadGeoJSON: %v", err)
	}
	if len(m.Polylines) != 6 {
		t.Errorf("got %d polylines, want 6", len(m.Polylines))
	}

	if _, err := LoadGeoJSON("missing", filepath.Join(dir, "missing.geojson")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMarshalGeoJSON_RoundTrip(t *testing.T) {
	in := polyline.NewStaticMap("rt",
		&polyline.Polyline{Label: polyline.LabelStopLine, Waypoints: [][3]float64{{1, 2, 3}, {4, 5, 3}}},
		&polyline.Polyline{Label: polyline.LabelDashedRoadLine, Waypoints: [][3]float64{{-1, 0, 0}, {-1, 9, 0}, {-2, 9, 0}}},
		&polyline.Polyline{Label: polyline.LabelLane, Waypoints: [][3]float64{{0, 0, 0.25}, {1, 0, 0.75}, {2, 0, -1}}},
	)

	data, err := MarshalGeoJSON(in)
	if err != nil {
		t.Fatalf("MarshalGeoJSON: %v", err)
	}
	out := mustParse(t, "rt", data)
	if diff := cmp.Diff(in.Polylines, out.Polylines); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
