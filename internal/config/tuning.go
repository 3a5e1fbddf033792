package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// DefaultConfigPath is the path to the canonical tuning defaults file.
// This is the single source of truth for all default tuning values.
const DefaultConfigPath = "config/tuning.defaults.json"

// TuningConfig represents the root configuration for the feature
// preparation pipeline. Every field is optional; the Get* accessors supply
// defaults for anything the JSON omits.
type TuningConfig struct {
	// Agent history params
	MaxLength          *int     `json:"max_length,omitempty"`
	AncientThresholdMs *float64 `json:"ancient_threshold_ms,omitempty"`

	// Polyline params
	NumPolylines  *int        `json:"num_polylines,omitempty"`
	NumPoints     *int        `json:"num_points,omitempty"`
	BreakDistance *float64    `json:"break_distance,omitempty"`
	CenterOffset  *[2]float64 `json:"center_offset,omitempty"`

	// Parallel-for width for per-target work (0 = GOMAXPROCS)
	Workers *int `json:"workers,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyTuningConfig returns a TuningConfig with all fields set to nil.
// Use LoadTuningConfig to load actual values from the defaults file.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// DefaultTuningConfig returns a TuningConfig with every field populated
// from the built-in defaults.
func DefaultTuningConfig() *TuningConfig {
	empty := EmptyTuningConfig()
	offset := empty.GetCenterOffset()
	return &TuningConfig{
		MaxLength:          ptrInt(empty.GetMaxLength()),
		AncientThresholdMs: ptrFloat64(empty.GetAncientThresholdMs()),
		NumPolylines:       ptrInt(empty.GetNumPolylines()),
		NumPoints:          ptrInt(empty.GetNumPoints()),
		BreakDistance:      ptrFloat64(empty.GetBreakDistance()),
		CenterOffset:       &offset,
		Workers:            ptrInt(empty.GetWorkers()),
	}
}

// LoadTuningConfig loads a TuningConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
// Fields omitted from the JSON file retain their default values, so
// partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical tuning defaults from DefaultConfigPath.
// It searches for the file in the current directory and common parent directories.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *TuningConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,       // from internal/config/
		"../../../" + DefaultConfigPath,    // from internal/mtr/agent/
		"../../../../" + DefaultConfigPath, // from internal/mtr/storage/sqlite/
	}
	for _, path := range candidates {
		if cfg, err := LoadTuningConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *TuningConfig) Validate() error {
	if c.MaxLength != nil && *c.MaxLength < 1 {
		return fmt.Errorf("max_length must be positive, got %d", *c.MaxLength)
	}
	if c.AncientThresholdMs != nil && *c.AncientThresholdMs < 0 {
		return fmt.Errorf("ancient_threshold_ms must be non-negative, got %f", *c.AncientThresholdMs)
	}
	if c.NumPolylines != nil && *c.NumPolylines < 1 {
		return fmt.Errorf("num_polylines must be positive, got %d", *c.NumPolylines)
	}
	// The previous-xy channel reads the second point of every chunk.
	if c.NumPoints != nil && *c.NumPoints < 2 {
		return fmt.Errorf("num_points must be at least 2, got %d", *c.NumPoints)
	}
	if c.BreakDistance != nil && *c.BreakDistance <= 0 {
		return fmt.Errorf("break_distance must be positive, got %f", *c.BreakDistance)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("workers must be non-negative, got %d", *c.Workers)
	}
	return nil
}

// GetMaxLength returns the max_length value or the default.
func (c *TuningConfig) GetMaxLength() int {
	if c.MaxLength == nil {
		return 11 // 1 s of history at 10 Hz plus the current frame
	}
	return *c.MaxLength
}

// GetAncientThresholdMs returns the ancient_threshold_ms value or the default.
func (c *TuningConfig) GetAncientThresholdMs() float64 {
	if c.AncientThresholdMs == nil {
		return 1000.0
	}
	return *c.AncientThresholdMs
}

// GetNumPolylines returns the num_polylines value or the default.
func (c *TuningConfig) GetNumPolylines() int {
	if c.NumPolylines == nil {
		return 768
	}
	return *c.NumPolylines
}

// GetNumPoints returns the num_points value or the default.
func (c *TuningConfig) GetNumPoints() int {
	if c.NumPoints == nil {
		return 20
	}
	return *c.NumPoints
}

// GetBreakDistance returns the break_distance value or the default.
func (c *TuningConfig) GetBreakDistance() float64 {
	if c.BreakDistance == nil {
		return 1.0
	}
	return *c.BreakDistance
}

// GetCenterOffset returns the center_offset value or the default.
func (c *TuningConfig) GetCenterOffset() [2]float64 {
	if c.CenterOffset == nil {
		return [2]float64{30.0, 0.0}
	}
	return *c.CenterOffset
}

// GetWorkers returns the workers value or the default.
func (c *TuningConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}
