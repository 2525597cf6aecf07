package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if !cfg.Processing.Parallel {
		t.Error("default config should enable parallel processing")
	}
	if cfg.Kernel.InitialRadius < 1.0 {
		t.Errorf("default initial radius = %v, want >= 1", cfg.Kernel.InitialRadius)
	}
	if cfg.Kernel.RadiusStep <= 1.0 {
		t.Errorf("default radius step = %v, want > 1", cfg.Kernel.RadiusStep)
	}
	if cfg.Kernel.MaxRadius < cfg.Kernel.InitialRadius {
		t.Errorf("default max radius %v below initial radius %v", cfg.Kernel.MaxRadius, cfg.Kernel.InitialRadius)
	}
	if cfg.Significance.Alpha <= 0 || cfg.Significance.Alpha >= 1 {
		t.Errorf("default alpha = %v, want in (0, 1)", cfg.Significance.Alpha)
	}
	if cfg.Simulation.Blobs <= 0 || cfg.Simulation.Size <= 0 {
		t.Error("default simulation parameters must be positive")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "no-such-config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig on missing file: %v", err)
	}
	if cfg.Kernel.MaxRadius != DefaultConfig().Kernel.MaxRadius {
		t.Error("missing file did not fall back to defaults")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte("processing:\n  parallel: false\nkernel:\n  maxRadius: 12.5\nsignificance:\n  alpha: 0.01\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Processing.Parallel {
		t.Error("parallel override not applied")
	}
	if cfg.Kernel.MaxRadius != 12.5 {
		t.Errorf("maxRadius = %v, want 12.5", cfg.Kernel.MaxRadius)
	}
	if cfg.Significance.Alpha != 0.01 {
		t.Errorf("alpha = %v, want 0.01", cfg.Significance.Alpha)
	}
	// Untouched fields keep their defaults.
	if cfg.Kernel.InitialRadius != DefaultConfig().Kernel.InitialRadius {
		t.Error("unset field lost its default")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("kernel: [not a mapping"), 0644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error for invalid YAML")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.yaml")

	cfg := DefaultConfig()
	cfg.Kernel.SeparationLambda = 2.25
	cfg.Simulation.Seed = 99
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if loaded.Kernel.SeparationLambda != 2.25 {
		t.Errorf("separationLambda = %v, want 2.25", loaded.Kernel.SeparationLambda)
	}
	if loaded.Simulation.Seed != 99 {
		t.Errorf("seed = %v, want 99", loaded.Simulation.Seed)
	}
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "default.yaml")
	if err := CreateDefaultConfigFile(path); err != nil {
		t.Fatalf("CreateDefaultConfigFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config file not written: %v", err)
	}
}
