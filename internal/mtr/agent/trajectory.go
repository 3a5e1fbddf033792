package agent

import (
	"fmt"
	"slices"
)

// Trajectory channel layout. Every trajectory tensor in the module uses
// these offsets along its last axis.
const (
	XIdx       = 0
	YIdx       = 1
	ZIdx       = 2
	LengthIdx  = 3
	WidthIdx   = 4
	HeightIdx  = 5
	YawIdx     = 6
	VXIdx      = 7
	VYIdx      = 8
	IsValidIdx = 9

	// NumDim is the size of the last axis.
	NumDim = 10
)

// Trajectory is a dense row-major tensor of shape (..., NumDim) with one
// label id per leading (agent) index.
type Trajectory struct {
	waypoints []float64
	shape     []int
	labelIDs  []int64
}

// NewTrajectory validates and wraps waypoints. The data must hold exactly
// prod(shape) values, the last axis must be NumDim and labelIDs must have
// one entry per shape[0]. Inputs are copied.
func NewTrajectory(waypoints []float64, shape []int, labelIDs []int64) (*Trajectory, error) {
	if len(shape) < 1 || shape[len(shape)-1] != NumDim {
		return nil, fmt.Errorf("%w: last axis must be %d, got shape %v", ErrShape, NumDim, shape)
	}
	size := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in %v", ErrShape, shape)
		}
		size *= d
	}
	if len(waypoints) != size {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShape, shape, size, len(waypoints))
	}
	if len(shape) == 1 {
		// A single waypoint still carries one label.
		if len(labelIDs) != 1 {
			return nil, fmt.Errorf("%w: single waypoint needs 1 label id, got %d", ErrShape, len(labelIDs))
		}
	} else if len(labelIDs) != shape[0] {
		return nil, fmt.Errorf("%w: %d label ids for leading dimension %d", ErrShape, len(labelIDs), shape[0])
	}

	return &Trajectory{
		waypoints: slices.Clone(waypoints),
		shape:     slices.Clone(shape),
		labelIDs:  slices.Clone(labelIDs),
	}, nil
}

// Shape returns a copy of the tensor shape.
func (t *Trajectory) Shape() []int { return slices.Clone(t.shape) }

// LabelIDs returns a copy of the label ids.
func (t *Trajectory) LabelIDs() []int64 { return slices.Clone(t.labelIDs) }

// NumRows returns the number of NumDim-sized records.
func (t *Trajectory) NumRows() int { return len(t.waypoints) / NumDim }

// AsArray returns a copy of the underlying flat buffer.
func (t *Trajectory) AsArray() []float64 { return slices.Clone(t.waypoints) }

// Row returns a copy of the i-th record in flat order.
func (t *Trajectory) Row(i int) [NumDim]float64 {
	var out [NumDim]float64
	copy(out[:], t.waypoints[i*NumDim:(i+1)*NumDim])
	return out
}

// channels gathers the half-open channel range [lo, hi) of every record.
func (t *Trajectory) channels(lo, hi int) []float64 {
	n := t.NumRows()
	w := hi - lo
	out := make([]float64, 0, n*w)
	for i := 0; i < n; i++ {
		base := i * NumDim
		out = append(out, t.waypoints[base+lo:base+hi]...)
	}
	return out
}

// XYZ returns positions, shape (..., 3).
func (t *Trajectory) XYZ() []float64 { return t.channels(XIdx, ZIdx+1) }

// XY returns planar positions, shape (..., 2).
func (t *Trajectory) XY() []float64 { return t.channels(XIdx, YIdx+1) }

// Size returns box dimensions, shape (..., 3).
func (t *Trajectory) Size() []float64 { return t.channels(LengthIdx, HeightIdx+1) }

// Yaw returns headings, shape (...).
func (t *Trajectory) Yaw() []float64 { return t.channels(YawIdx, YawIdx+1) }

// VXY returns planar velocities, shape (..., 2).
func (t *Trajectory) VXY() []float64 { return t.channels(VXIdx, VYIdx+1) }

// IsValid returns the validity channel as booleans, shape (...).
func (t *Trajectory) IsValid() []bool {
	raw := t.channels(IsValidIdx, IsValidIdx+1)
	out := make([]bool, len(raw))
	for i, v := range raw {
		out[i] = v == 1
	}
	return out
}
