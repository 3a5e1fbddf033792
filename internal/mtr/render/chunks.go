package render

import (
	"fmt"

	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
	"github.com/banshee-data/motion-prep/internal/mtr/transform"
)

// TargetChunks returns the valid xy points of every chunk selected for
// target b. Chunks without valid points are returned empty.
func TargetChunks(res *transform.Result, b int) ([][][2]float64, error) {
	if res == nil {
		return nil, fmt.Errorf("render: nil result")
	}
	if b < 0 || b >= res.NumTargets {
		return nil, fmt.Errorf("render: target %d out of range [0, %d)", b, res.NumTargets)
	}

	chunks := make([][][2]float64, res.NumChunks)
	for k := range chunks {
		data := res.Chunk(b, k)
		for p, ok := range res.ChunkMask(b, k) {
			if !ok {
				continue
			}
			row := data[p*res.Dim:]
			chunks[k] = append(chunks[k], [2]float64{row[polyline.XIdx], row[polyline.YIdx]})
		}
	}
	return chunks, nil
}

// extent returns the largest absolute coordinate across chunks, at least 1.
func extent(chunks [][][2]float64) float64 {
	pad := 1.0
	for _, c := range chunks {
		for _, p := range c {
			pad = max(pad, abs(p[0]), abs(p[1]))
		}
	}
	return pad
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
