package transform

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/motion-prep/internal/monitoring"
	"github.com/banshee-data/motion-prep/internal/mtr/agent"
	"github.com/banshee-data/motion-prep/internal/mtr/polyline"
)

// TargetCentricPolyline converts a static map into per-target model input.
// It holds only configuration and is safe for concurrent use.
type TargetCentricPolyline struct {
	cfg Config
}

// New validates cfg and returns a pipeline.
func New(cfg Config) (*TargetCentricPolyline, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("transform config: %w", err)
	}
	return &TargetCentricPolyline{cfg: cfg}, nil
}

// Config returns the pipeline configuration.
func (t *TargetCentricPolyline) Config() Config { return t.cfg }

// Cache is the map-derived state that does not depend on targets. Pass the
// Cache returned by one Apply into the next call for the same map.
type Cache struct {
	Batch   *Batch
	Centers [][3]float64 // per-chunk centers; filled lazily when selection runs
}

// Result is the model input for one call.
type Result struct {
	TargetBatch
	Centers []float64 `json:"polyline_centers"` // (B, K, 3)
}

// Center returns the center of chunk k for target b.
func (r *Result) Center(b, k int) [3]float64 {
	i := (b*r.NumChunks + k) * 3
	return [3]float64{r.Centers[i], r.Centers[i+1], r.Centers[i+2]}
}

// Apply runs the full pipeline for the targets in a latest-mode (B, NumDim)
// trajectory. When cache carries a batch, src is not consulted and may be
// nil.
func (t *TargetCentricPolyline) Apply(ctx context.Context, src polyline.MapSource, targets *agent.Trajectory, cache *Cache) (*Result, *Cache, error) {
	tgts, err := TargetsFromTrajectory(targets)
	if err != nil {
		return nil, nil, err
	}

	next := &Cache{}
	if cache != nil {
		*next = *cache
	}
	if next.Batch == nil {
		if src == nil {
			return nil, nil, errors.New("transform: no map source and no cached batch")
		}
		points := src.AllPolylineArray(true, true)
		if points.Dim < minTransformDim {
			return nil, nil, fmt.Errorf("%w: map point dim %d lacks direction channels", ErrShape, points.Dim)
		}
		batch := t.GenerateBatch(points)
		next.Batch = &batch
		next.Centers = nil
		monitoring.Debugf("[transform] batched %d map points into %d chunks", points.N, batch.NumChunks)
	}
	batch := *next.Batch

	var selection [][]int
	if batch.NumChunks > t.cfg.NumPolylines {
		if next.Centers == nil {
			next.Centers = ChunkCenters(batch)
		}
		selection = make([][]int, len(tgts))
		for i, tgt := range tgts {
			selection[i] = t.SelectNearest(next.Centers, t.Anchor(tgt))
		}
	}

	gathered := Gather(batch, selection, len(tgts))
	out, err := t.Transform(ctx, gathered, tgts)
	if err != nil {
		return nil, nil, err
	}
	centers, err := t.BatchCenters(ctx, out)
	if err != nil {
		return nil, nil, err
	}

	return &Result{TargetBatch: out, Centers: centers}, next, nil
}
