package transform

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// centerEpsilon is the segment length below which interpolation snaps to
// the earlier point.
const centerEpsilon = 1e-6

// PolylineCenter returns the arc-length midpoint of a chunk's valid points.
// chunk is (P, dim) row-major with xyz in the first three channels. A chunk
// with one valid point returns that point; with none it returns NaN.
func PolylineCenter(chunk []float64, mask []bool, dim int) [3]float64 {
	valid := make([][3]float64, 0, len(mask))
	for i, ok := range mask {
		if ok {
			row := chunk[i*dim : i*dim+3]
			valid = append(valid, [3]float64{row[0], row[1], row[2]})
		}
	}

	switch len(valid) {
	case 0:
		nan := math.NaN()
		return [3]float64{nan, nan, nan}
	case 1:
		return valid[0]
	}

	cumulative := make([]float64, len(valid))
	for j := 1; j < len(valid); j++ {
		cumulative[j] = cumulative[j-1] + floats.Distance(valid[j-1][:], valid[j][:], 2)
	}
	mid := cumulative[len(cumulative)-1] / 2

	// First index with cumulative >= mid, minus one: the straddling segment.
	idx := sort.SearchFloat64s(cumulative, mid) - 1
	if idx < 0 {
		idx = 0
	}

	var t float64
	if den := cumulative[idx+1] - cumulative[idx]; math.Abs(den) > centerEpsilon {
		t = (mid - cumulative[idx]) / den
	}
	a, b := valid[idx], valid[idx+1]
	return [3]float64{
		(1-t)*a[0] + t*b[0],
		(1-t)*a[1] + t*b[1],
		(1-t)*a[2] + t*b[2],
	}
}

// ChunkCenters returns the arc-length center of every chunk in b.
func ChunkCenters(b Batch) [][3]float64 {
	centers := make([][3]float64, b.NumChunks)
	for k := range centers {
		centers[k] = PolylineCenter(b.Chunk(k), b.ChunkMask(k), b.Dim)
	}
	return centers
}
