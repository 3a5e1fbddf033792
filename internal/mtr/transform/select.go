package transform

import (
	"math"
	"sort"

	"github.com/banshee-data/motion-prep/internal/mtr/geometry"
)

// Target is the pose of one prediction target in map coordinates.
type Target struct {
	XYZ [3]float64
	Yaw float64
}

// Anchor returns the point the target's nearest chunks are ranked against:
// its position plus the configured offset expressed in its heading frame.
func (t *TargetCentricPolyline) Anchor(target Target) [2]float64 {
	ox, oy := geometry.RotatePoint(t.cfg.CenterOffset[0], t.cfg.CenterOffset[1], target.Yaw)
	return [2]float64{target.XYZ[0] + ox, target.XYZ[1] + oy}
}

// SelectNearest ranks chunk centers by planar distance to anchor and returns
// the indices of the nearest NumPolylines, nearest first. Equal distances
// keep ascending index order; NaN centers rank last.
func (t *TargetCentricPolyline) SelectNearest(centers [][3]float64, anchor [2]float64) []int {
	dist := make([]float64, len(centers))
	for k, c := range centers {
		dist[k] = geometry.Distance(anchor[:], c[:2])
	}

	idx := make([]int, len(centers))
	for k := range idx {
		idx[k] = k
	}
	sort.SliceStable(idx, func(a, b int) bool {
		da, db := dist[idx[a]], dist[idx[b]]
		if math.IsNaN(da) {
			return false
		}
		if math.IsNaN(db) {
			return true
		}
		return da < db
	})

	if len(idx) > t.cfg.NumPolylines {
		idx = idx[:t.cfg.NumPolylines]
	}
	return idx
}
