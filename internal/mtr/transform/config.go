package transform

import (
	"fmt"

	"github.com/banshee-data/motion-prep/internal/config"
)

// Config holds parameters for the target-centric polyline pipeline.
type Config struct {
	NumPolylines  int        // Max chunks kept per target
	NumPoints     int        // Points per chunk
	BreakDistance float64    // Gap (m) that starts a new chunk run
	CenterOffset  [2]float64 // Anchor offset in the target frame (m)
	Workers       int        // Parallel-for width; 0 uses GOMAXPROCS
}

// DefaultConfig returns the built-in pipeline defaults.
func DefaultConfig() Config {
	return ConfigFromTuning(config.EmptyTuningConfig())
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		NumPolylines:  cfg.GetNumPolylines(),
		NumPoints:     cfg.GetNumPoints(),
		BreakDistance: cfg.GetBreakDistance(),
		CenterOffset:  cfg.GetCenterOffset(),
		Workers:       cfg.GetWorkers(),
	}
}

func (c Config) validate() error {
	if c.NumPolylines < 1 {
		return fmt.Errorf("num polylines must be positive, got %d", c.NumPolylines)
	}
	if c.NumPoints < 2 {
		return fmt.Errorf("num points must be at least 2, got %d", c.NumPoints)
	}
	if c.BreakDistance <= 0 {
		return fmt.Errorf("break distance must be positive, got %f", c.BreakDistance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", c.Workers)
	}
	return nil
}
