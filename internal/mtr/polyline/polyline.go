package polyline

import (
	"errors"
	"fmt"
	"slices"

	"github.com/banshee-data/motion-prep/internal/mtr/geometry"
)

// Full-form point layouts.
//
//	3D: x, y, z, dx, dy, dz, type_id
//	2D: x, y, dx, dy, type_id
const (
	FullDim3D = 7
	FullDim2D = 5

	XIdx = 0
	YIdx = 1
	ZIdx = 2

	// Direction channels of the 3D full form.
	DXIdx = 3
	DYIdx = 4
	DZIdx = 5

	TypeIdx3D = 6
)

// ErrShape is returned for waypoint arrays that are not (N, 3).
var ErrShape = errors.New("invalid polyline shape")

// Points is a dense row-major (N, Dim) array.
type Points struct {
	Data []float64
	N    int
	Dim  int
}

// NewPoints allocates a zeroed (n, dim) array.
func NewPoints(n, dim int) Points {
	return Points{Data: make([]float64, n*dim), N: n, Dim: dim}
}

// Row returns row i as a sub-slice of Data.
func (p Points) Row(i int) []float64 {
	return p.Data[i*p.Dim : (i+1)*p.Dim]
}

// At returns element (i, j).
func (p Points) At(i, j int) float64 {
	return p.Data[i*p.Dim+j]
}

// Polyline is a single typed map feature.
type Polyline struct {
	Label     Label
	Waypoints [][3]float64
}

// New validates a flat (N, 3) buffer and builds a polyline from it.
func New(label Label, flat []float64) (*Polyline, error) {
	if len(flat)%3 != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of 3", ErrShape, len(flat))
	}
	wps := make([][3]float64, len(flat)/3)
	for i := range wps {
		wps[i] = [3]float64{flat[3*i], flat[3*i+1], flat[3*i+2]}
	}
	return &Polyline{Label: label, Waypoints: wps}, nil
}

// Len returns the number of waypoints.
func (p *Polyline) Len() int { return len(p.Waypoints) }

// IsEmpty reports whether the polyline has no waypoints.
func (p *Polyline) IsEmpty() bool { return len(p.Waypoints) == 0 }

// TypeID returns the label as the numeric type id.
func (p *Polyline) TypeID() int { return int(p.Label) }

// XYZ returns copies of the 3D waypoints.
func (p *Polyline) XYZ() [][3]float64 { return slices.Clone(p.Waypoints) }

// XY returns the planar waypoints.
func (p *Polyline) XY() [][2]float64 {
	out := make([][2]float64, len(p.Waypoints))
	for i, w := range p.Waypoints {
		out[i] = [2]float64{w[0], w[1]}
	}
	return out
}

// DXYZ returns normalised 3D directions; the first is always zero.
func (p *Polyline) DXYZ() [][3]float64 {
	pts := make([][]float64, len(p.Waypoints))
	for i, w := range p.Waypoints {
		pts[i] = []float64{w[0], w[1], w[2]}
	}
	dirs := geometry.UnitDirections(pts)
	out := make([][3]float64, len(dirs))
	for i, d := range dirs {
		out[i] = [3]float64{d[0], d[1], d[2]}
	}
	return out
}

// DXY returns normalised planar directions; the first is always zero.
func (p *Polyline) DXY() [][2]float64 {
	pts := make([][]float64, len(p.Waypoints))
	for i, w := range p.Waypoints {
		pts[i] = []float64{w[0], w[1]}
	}
	dirs := geometry.UnitDirections(pts)
	out := make([][2]float64, len(dirs))
	for i, d := range dirs {
		out[i] = [2]float64{d[0], d[1]}
	}
	return out
}

// AsArray returns the polyline as a point array. With full set the rows are
// (x, y, z, dx, dy, dz, type_id), or (x, y, dx, dy, type_id) when as3D is
// false; otherwise just (x, y, z) or (x, y).
func (p *Polyline) AsArray(full, as3D bool) Points {
	dim := ArrayDim(full, as3D)
	out := NewPoints(p.Len(), dim)
	if p.IsEmpty() {
		return out
	}

	typeID := float64(p.TypeID())
	switch {
	case full && as3D:
		dirs := p.DXYZ()
		for i, w := range p.Waypoints {
			copy(out.Row(i), []float64{w[0], w[1], w[2], dirs[i][0], dirs[i][1], dirs[i][2], typeID})
		}
	case full:
		dirs := p.DXY()
		for i, w := range p.Waypoints {
			copy(out.Row(i), []float64{w[0], w[1], dirs[i][0], dirs[i][1], typeID})
		}
	case as3D:
		for i, w := range p.Waypoints {
			copy(out.Row(i), w[:])
		}
	default:
		for i, w := range p.Waypoints {
			copy(out.Row(i), w[:2])
		}
	}
	return out
}

// ArrayDim returns the row width AsArray produces for the given flags.
func ArrayDim(full, as3D bool) int {
	switch {
	case full && as3D:
		return FullDim3D
	case full:
		return FullDim2D
	case as3D:
		return 3
	default:
		return 2
	}
}
