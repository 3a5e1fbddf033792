package geometry

import (
	"gonum.org/v1/gonum/floats"
)

// Distance returns the Euclidean distance between two equal-length vectors.
func Distance(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// UnitDirections returns, for each point, the unit vector of the displacement
// from the previous point. The first point is differenced against itself, so
// its direction is always zero. Zero-length displacements yield zero rather
// than NaN.
func UnitDirections(points [][]float64) [][]float64 {
	out := make([][]float64, len(points))
	if len(points) == 0 {
		return out
	}
	prev := points[0]
	for i, p := range points {
		d := make([]float64, len(p))
		floats.SubTo(d, p, prev)
		if norm := floats.Norm(d, 2); norm != 0 {
			floats.Scale(1/norm, d)
		}
		out[i] = d
		prev = p
	}
	return out
}
