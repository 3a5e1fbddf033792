package mapio

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/banshee-data/motion-prep/internal/monitoring"
	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
)

const (
	labelProperty = "type"
	zProperty     = "z"
)

// LoadGeoJSON reads a static map from a GeoJSON file.
func LoadGeoJSON(id, path string) (*polyline.StaticMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read geojson %s: %w", path, err)
	}
	m, err := ParseGeoJSON(id, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse geojson %s: %w", path, err)
	}
	return m, nil
}

// ParseGeoJSON builds a static map from FeatureCollection bytes. Features
// with unsupported geometry are skipped; an unrecognised label maps to
// LabelUnknown.
func ParseGeoJSON(id string, data []byte) (*polyline.StaticMap, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, err
	}

	var lines []*polyline.Polyline
	skipped := 0
	for i, f := range fc.Features {
		if f.Geometry == nil {
			skipped++
			continue
		}
		label := featureLabel(f.Properties)
		elev := featureElevation(f.Properties)

		var parts []orb.LineString
		switch g := f.Geometry.(type) {
		case orb.LineString:
			parts = []orb.LineString{g}
		case orb.MultiLineString:
			parts = g
		case orb.Polygon:
			for _, ring := range g {
				parts = append(parts, orb.LineString(ring))
			}
		default:
			monitoring.Debugf("[mapio] feature %d: skipping %s geometry", i, f.Geometry.GeoJSONType())
			skipped++
			continue
		}

		for _, ls := range parts {
			if len(ls) == 0 {
				continue
			}
			lines = append(lines, lineToPolyline(label, ls, elev))
		}
	}

	if skipped > 0 {
		monitoring.Logf("[mapio] map %s: %d features skipped", id, skipped)
	}
	return polyline.NewStaticMap(id, lines...), nil
}

// MarshalGeoJSON writes each polyline of m as a LineString feature. A
// constant elevation is written as a scalar z property, a varying one as a
// per-point z array, so ParseGeoJSON restores every waypoint.
func MarshalGeoJSON(m *polyline.StaticMap) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, p := range m.AllPolylines() {
		ls := make(orb.LineString, p.Len())
		zs := make([]float64, p.Len())
		flat := true
		for i, w := range p.Waypoints {
			ls[i] = orb.Point{w[0], w[1]}
			zs[i] = w[2]
			flat = flat && w[2] == p.Waypoints[0][2]
		}
		f := geojson.NewFeature(ls)
		f.Properties[labelProperty] = p.Label.String()
		switch {
		case p.IsEmpty():
		case flat:
			f.Properties[zProperty] = zs[0]
		default:
			f.Properties[zProperty] = zs
		}
		fc.Append(f)
	}
	return json.Marshal(fc)
}

// elevation is a feature's z: one value for every point, or one per point
// of a LineString.
type elevation struct {
	z        float64
	perPoint []float64
}

func (e elevation) at(i, n int) float64 {
	if len(e.perPoint) == n {
		return e.perPoint[i]
	}
	return e.z
}

func lineToPolyline(label polyline.Label, ls orb.LineString, elev elevation) *polyline.Polyline {
	if elev.perPoint != nil && len(elev.perPoint) != len(ls) {
		monitoring.Debugf("[mapio] %d z values for %d points, using z=%g", len(elev.perPoint), len(ls), elev.z)
	}
	wps := make([][3]float64, len(ls))
	for i, pt := range ls {
		wps[i] = [3]float64{pt[0], pt[1], elev.at(i, len(ls))}
	}
	return &polyline.Polyline{Label: label, Waypoints: wps}
}

func featureLabel(props geojson.Properties) polyline.Label {
	name, ok := props[labelProperty].(string)
	if !ok {
		return polyline.LabelUnknown
	}
	label, err := polyline.ParseLabel(name)
	if err != nil {
		monitoring.Debugf("[mapio] %v", err)
		return polyline.LabelUnknown
	}
	return label
}

func featureElevation(props geojson.Properties) elevation {
	switch v := props[zProperty].(type) {
	case []interface{}:
		zs := make([]float64, len(v))
		for i, raw := range v {
			zs[i], _ = toFloat(raw)
		}
		return elevation{perPoint: zs}
	case []float64:
		return elevation{perPoint: v}
	default:
		z, _ := toFloat(v)
		return elevation{z: z}
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
