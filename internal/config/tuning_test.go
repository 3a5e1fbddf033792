package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTuningConfig(t *testing.T) {
	cfg := DefaultTuningConfig()

	// Test that defaults are set via pointers
	if cfg.MaxLength == nil || *cfg.MaxLength != 11 {
		t.Errorf("Expected MaxLength 11, got %v", cfg.MaxLength)
	}
	if cfg.NumPolylines == nil || *cfg.NumPolylines != 768 {
		t.Errorf("Expected NumPolylines 768, got %v", cfg.NumPolylines)
	}
	if cfg.CenterOffset == nil || *cfg.CenterOffset != [2]float64{30, 0} {
		t.Errorf("Expected CenterOffset [30 0], got %v", cfg.CenterOffset)
	}

	// Test getter methods
	if cfg.GetNumPoints() != 20 {
		t.Errorf("GetNumPoints() = %d, want 20", cfg.GetNumPoints())
	}
	if cfg.GetBreakDistance() != 1.0 {
		t.Errorf("GetBreakDistance() = %f, want 1.0", cfg.GetBreakDistance())
	}
	if cfg.GetAncientThresholdMs() != 1000.0 {
		t.Errorf("GetAncientThresholdMs() = %f, want 1000", cfg.GetAncientThresholdMs())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTuningConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.json")

	testJSON := `{
  "max_length": 5,
  "num_polylines": 16,
  "break_distance": 2.5,
  "center_offset": [10.0, -1.0]
}`
	if err := os.WriteFile(configPath, []byte(testJSON), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}

	cfg, err := LoadTuningConfig(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.GetMaxLength() != 5 {
		t.Errorf("GetMaxLength() = %d, want 5", cfg.GetMaxLength())
	}
	if cfg.GetNumPolylines() != 16 {
		t.Errorf("GetNumPolylines() = %d, want 16", cfg.GetNumPolylines())
	}
	if cfg.GetBreakDistance() != 2.5 {
		t.Errorf("GetBreakDistance() = %f, want 2.5", cfg.GetBreakDistance())
	}
	if cfg.GetCenterOffset() != [2]float64{10, -1} {
		t.Errorf("GetCenterOffset() = %v, want [10 -1]", cfg.GetCenterOffset())
	}

	// Omitted fields fall back to defaults
	if cfg.NumPoints != nil {
		t.Errorf("Expected NumPoints nil for partial config, got %v", *cfg.NumPoints)
	}
	if cfg.GetNumPoints() != 20 {
		t.Errorf("GetNumPoints() = %d, want default 20", cfg.GetNumPoints())
	}
}

func TestLoadTuningConfig_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
		wantErr string
	}{
		{"wrong extension", "cfg.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"max_length":`, "failed to parse"},
		{"zero max length", "len.json", `{"max_length": 0}`, "max_length must be positive"},
		{"single point chunks", "pts.json", `{"num_points": 1}`, "num_points must be at least 2"},
		{"negative break distance", "brk.json", `{"break_distance": -1}`, "break_distance must be positive"},
		{"negative workers", "wrk.json", `{"workers": -2}`, "workers must be non-negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.file)
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatalf("write: %v", err)
			}
			_, err := LoadTuningConfig(path)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadTuningConfig(filepath.Join(tmpDir, "nope.json")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	defaults := DefaultTuningConfig()

	if cfg.GetMaxLength() != defaults.GetMaxLength() {
		t.Errorf("defaults file max_length = %d, built-in = %d", cfg.GetMaxLength(), defaults.GetMaxLength())
	}
	if cfg.GetNumPolylines() != defaults.GetNumPolylines() {
		t.Errorf("defaults file num_polylines = %d, built-in = %d", cfg.GetNumPolylines(), defaults.GetNumPolylines())
	}
	if cfg.GetCenterOffset() != defaults.GetCenterOffset() {
		t.Errorf("defaults file center_offset = %v, built-in = %v", cfg.GetCenterOffset(), defaults.GetCenterOffset())
	}
}
