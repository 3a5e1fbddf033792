package transform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/banshee-data/motion-prep/internal/mtr/agent"
	"github.com/banshee-data/motion-prep/internal/mtr/geometry"
	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
	"golang.org/x/sync/errgroup"
)

// minTransformDim is the narrowest point layout the transform accepts:
// x, y, z, dx, dy.
const minTransformDim = polyline.DYIdx + 1

// TargetBatch holds per-target chunks: data (B, K, P, D) with mask (B, K, P).
type TargetBatch struct {
	Data       []float64 `json:"polylines"`
	Mask       []bool    `json:"polylines_mask"`
	NumTargets int       `json:"num_targets"`
	NumChunks  int       `json:"num_chunks"`
	NumPoints  int       `json:"num_points"`
	Dim        int       `json:"dim"`
}

// Shape returns (B, K, P, D).
func (tb TargetBatch) Shape() [4]int {
	return [4]int{tb.NumTargets, tb.NumChunks, tb.NumPoints, tb.Dim}
}

// Target returns target b's (K, P, D) block as a sub-slice of Data.
func (tb TargetBatch) Target(b int) []float64 {
	size := tb.NumChunks * tb.NumPoints * tb.Dim
	return tb.Data[b*size : (b+1)*size]
}

// TargetMask returns target b's (K, P) mask as a sub-slice of Mask.
func (tb TargetBatch) TargetMask(b int) []bool {
	size := tb.NumChunks * tb.NumPoints
	return tb.Mask[b*size : (b+1)*size]
}

// Chunk returns chunk k of target b.
func (tb TargetBatch) Chunk(b, k int) []float64 {
	size := tb.NumPoints * tb.Dim
	return tb.Target(b)[k*size : (k+1)*size]
}

// ChunkMask returns the mask of chunk k of target b.
func (tb TargetBatch) ChunkMask(b, k int) []bool {
	return tb.TargetMask(b)[k*tb.NumPoints : (k+1)*tb.NumPoints]
}

// TargetsFromTrajectory extracts poses from a latest-mode (B, NumDim)
// trajectory.
func TargetsFromTrajectory(traj *agent.Trajectory) ([]Target, error) {
	shape := traj.Shape()
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: targets must be (B, %d), got %v", ErrShape, agent.NumDim, shape)
	}
	targets := make([]Target, shape[0])
	for i := range targets {
		row := traj.Row(i)
		targets[i] = Target{
			XYZ: [3]float64{row[agent.XIdx], row[agent.YIdx], row[agent.ZIdx]},
			Yaw: row[agent.YawIdx],
		}
	}
	return targets, nil
}

// Gather builds the per-target batch. With selection nil every target gets
// all chunks of b; otherwise target i gets the chunks selection[i] lists,
// in that order.
func Gather(b Batch, selection [][]int, numTargets int) TargetBatch {
	numChunks := b.NumChunks
	if selection != nil && len(selection) > 0 {
		numChunks = len(selection[0])
	}
	chunkSize := b.NumPoints * b.Dim

	tb := TargetBatch{
		Data:       make([]float64, numTargets*numChunks*chunkSize),
		Mask:       make([]bool, numTargets*numChunks*b.NumPoints),
		NumTargets: numTargets,
		NumChunks:  numChunks,
		NumPoints:  b.NumPoints,
		Dim:        b.Dim,
	}
	for i := 0; i < numTargets; i++ {
		for k := 0; k < numChunks; k++ {
			src := k
			if selection != nil {
				src = selection[i][k]
			}
			copy(tb.Chunk(i, k), b.Chunk(src))
			copy(tb.ChunkMask(i, k), b.ChunkMask(src))
		}
	}
	return tb
}

// Transform expresses each target's chunks in that target's frame and
// appends the previous-xy channel, returning a batch of width Dim+2:
//
//  1. subtract the target position from xyz;
//  2. rotate xy and the direction xy by -yaw;
//  3. previous xy of point p is xy of point p-1, and point 0 takes its own
//     xy (a one-step roll whose wrapped slot is overwritten by slot 1);
//  4. every channel of a masked-out point is zeroed.
//
// Targets are processed in parallel; each writes only its own block.
func (t *TargetCentricPolyline) Transform(ctx context.Context, tb TargetBatch, targets []Target) (TargetBatch, error) {
	if len(targets) != tb.NumTargets {
		return TargetBatch{}, fmt.Errorf("%w: %d targets for batch of %d", ErrShape, len(targets), tb.NumTargets)
	}
	if tb.Dim < minTransformDim {
		return TargetBatch{}, fmt.Errorf("%w: point dim %d lacks direction channels", ErrShape, tb.Dim)
	}

	outDim := tb.Dim + 2
	out := TargetBatch{
		Data:       make([]float64, tb.NumTargets*tb.NumChunks*tb.NumPoints*outDim),
		Mask:       append([]bool(nil), tb.Mask...),
		NumTargets: tb.NumTargets,
		NumChunks:  tb.NumChunks,
		NumPoints:  tb.NumPoints,
		Dim:        outDim,
	}

	err := t.parallelFor(ctx, tb.NumTargets, func(b int) {
		transformTarget(tb, out, b, targets[b])
	})
	if err != nil {
		return TargetBatch{}, err
	}
	return out, nil
}

func transformTarget(in, out TargetBatch, b int, target Target) {
	inDim, outDim := in.Dim, out.Dim
	for k := 0; k < in.NumChunks; k++ {
		src := in.Chunk(b, k)
		dst := out.Chunk(b, k)
		mask := out.ChunkMask(b, k)

		for p := 0; p < in.NumPoints; p++ {
			row := dst[p*outDim : (p+1)*outDim]
			copy(row, src[p*inDim:(p+1)*inDim])
			row[polyline.XIdx] -= target.XYZ[0]
			row[polyline.YIdx] -= target.XYZ[1]
			row[polyline.ZIdx] -= target.XYZ[2]
		}
		geometry.RotateStrided(dst, outDim, polyline.XIdx, -target.Yaw)
		geometry.RotateStrided(dst, outDim, polyline.DXIdx, -target.Yaw)

		for p := 0; p < in.NumPoints; p++ {
			prev := p - 1
			if prev < 0 {
				prev = 0
			}
			row := dst[p*outDim : (p+1)*outDim]
			row[inDim] = dst[prev*outDim+polyline.XIdx]
			row[inDim+1] = dst[prev*outDim+polyline.YIdx]
		}

		for p, ok := range mask {
			if !ok {
				clear(dst[p*outDim : (p+1)*outDim])
			}
		}
	}
}

// BatchCenters returns the arc-length center of every (target, chunk) pair
// as a flat (B, K, 3) slice. Pairs are independent and run in parallel.
func (t *TargetCentricPolyline) BatchCenters(ctx context.Context, tb TargetBatch) ([]float64, error) {
	centers := make([]float64, tb.NumTargets*tb.NumChunks*3)
	err := t.parallelFor(ctx, tb.NumTargets, func(b int) {
		for k := 0; k < tb.NumChunks; k++ {
			c := PolylineCenter(tb.Chunk(b, k), tb.ChunkMask(b, k), tb.Dim)
			copy(centers[(b*tb.NumChunks+k)*3:], c[:])
		}
	})
	if err != nil {
		return nil, err
	}
	return centers, nil
}

// parallelFor runs fn(0..n-1) on at most Workers goroutines. fn must only
// write state owned by its index.
func (t *TargetCentricPolyline) parallelFor(ctx context.Context, n int, fn func(i int)) error {
	workers := t.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			fn(i)
			return nil
		})
	}
	return g.Wait()
}
