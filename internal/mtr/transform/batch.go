package transform

import (
	"github.com/banshee-data/motion-prep/internal/mtr/geometry"
	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
)

// Batch is a set of fixed-size chunks: data (K, P, D) with mask (K, P).
// Valid points always occupy a prefix of each chunk; the rest is zero.
type Batch struct {
	Data      []float64
	Mask      []bool
	NumChunks int
	NumPoints int
	Dim       int
}

// Chunk returns chunk k as a sub-slice of Data.
func (b Batch) Chunk(k int) []float64 {
	size := b.NumPoints * b.Dim
	return b.Data[k*size : (k+1)*size]
}

// ChunkMask returns the mask of chunk k as a sub-slice of Mask.
func (b Batch) ChunkMask(k int) []bool {
	return b.Mask[k*b.NumPoints : (k+1)*b.NumPoints]
}

// BreakIndices returns every index i whose xy distance from point i-1
// exceeds breakDistance. Point 0 is compared with itself and never breaks.
func BreakIndices(points polyline.Points, breakDistance float64) []int {
	var breaks []int
	for i := 1; i < points.N; i++ {
		cur, prev := points.Row(i), points.Row(i-1)
		if geometry.Distance(cur[polyline.XIdx:polyline.YIdx+1], prev[polyline.XIdx:polyline.YIdx+1]) > breakDistance {
			breaks = append(breaks, i)
		}
	}
	return breaks
}

// GenerateBatch splits the flattened map points at distance breaks and packs
// every run into NumPoints-sized, zero-padded chunks. Runs never share a
// chunk. The chunk count depends on the data; empty input yields none.
func (t *TargetCentricPolyline) GenerateBatch(points polyline.Points) Batch {
	numPoints := t.cfg.NumPoints
	dim := points.Dim
	batch := Batch{NumPoints: numPoints, Dim: dim}

	appendChunk := func(start, end int) {
		chunk := make([]float64, numPoints*dim)
		copy(chunk, points.Data[start*dim:end*dim])
		mask := make([]bool, numPoints)
		for i := 0; i < end-start; i++ {
			mask[i] = true
		}
		batch.Data = append(batch.Data, chunk...)
		batch.Mask = append(batch.Mask, mask...)
		batch.NumChunks++
	}

	bounds := append([]int{0}, BreakIndices(points, t.cfg.BreakDistance)...)
	bounds = append(bounds, points.N)
	for r := 0; r+1 < len(bounds); r++ {
		start, end := bounds[r], bounds[r+1]
		if end <= start {
			continue
		}
		for s := start; s < end; s += numPoints {
			appendChunk(s, min(s+numPoints, end))
		}
	}
	return batch
}
