package polyline

// MapSource is anything that can flatten its polylines into one point array.
type MapSource interface {
	AllPolylineArray(full, as3D bool) Points
}

// StaticMap is an immutable collection of map polylines for one scene.
type StaticMap struct {
	ID        string
	Polylines []*Polyline
}

// NewStaticMap wraps polylines, dropping nil entries.
func NewStaticMap(id string, polylines ...*Polyline) *StaticMap {
	kept := make([]*Polyline, 0, len(polylines))
	for _, p := range polylines {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &StaticMap{ID: id, Polylines: kept}
}

// NumPoints returns the total waypoint count.
func (m *StaticMap) NumPoints() int {
	n := 0
	for _, p := range m.Polylines {
		n += p.Len()
	}
	return n
}

// AllPolylineArray concatenates every polyline's AsArray rows in map order.
// An empty map yields a zero-row array of the matching width.
func (m *StaticMap) AllPolylineArray(full, as3D bool) Points {
	dim := ArrayDim(full, as3D)
	out := Points{Data: make([]float64, 0, m.NumPoints()*dim), Dim: dim}
	for _, p := range m.Polylines {
		arr := p.AsArray(full, as3D)
		out.Data = append(out.Data, arr.Data...)
		out.N += arr.N
	}
	return out
}

// AllPolylines returns the map's polylines in order. The slice is a copy;
// the polylines are shared.
func (m *StaticMap) AllPolylines() []*Polyline {
	out := make([]*Polyline, len(m.Polylines))
	copy(out, m.Polylines)
	return out
}
