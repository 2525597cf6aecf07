// Package config provides configuration loading and management for imgal.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Processing parameters
	Processing struct {
		// Parallel enables multi-core execution of the analysis
		Parallel bool `yaml:"parallel"`
	} `yaml:"processing"`

	// Adaptive kernel parameters
	Kernel struct {
		// InitialRadius is the starting neighborhood radius in pixels
		InitialRadius float64 `yaml:"initialRadius"`

		// RadiusStep is the multiplicative radius growth factor per iteration
		RadiusStep float64 `yaml:"radiusStep"`

		// MaxRadius bounds the neighborhood growth
		MaxRadius float64 `yaml:"maxRadius"`

		// SeparationLambda controls the kernel growth stopping rule
		SeparationLambda float64 `yaml:"separationLambda"`
	} `yaml:"kernel"`

	// Significance testing parameters
	Significance struct {
		// Alpha is the family-wise significance level before correction
		Alpha float64 `yaml:"alpha"`
	} `yaml:"significance"`

	// Simulation parameters for the synthetic demo images
	Simulation struct {
		// Blobs is the number of blobs per simulated channel
		Blobs int `yaml:"blobs"`

		// Radius, Intensity and Falloff shape each simulated blob
		Radius    float64 `yaml:"radius"`
		Intensity float64 `yaml:"intensity"`
		Falloff   float64 `yaml:"falloff"`

		// Background is the constant level under the blobs
		Background float64 `yaml:"background"`

		// Size is the simulated image edge length in pixels
		Size int `yaml:"size"`

		// Offset shifts the second channel's blobs in pixels
		Offset float64 `yaml:"offset"`

		// Seed fixes the random blob layout
		Seed int64 `yaml:"seed"`
	} `yaml:"simulation"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default processing parameters
	cfg.Processing.Parallel = true

	// Set default kernel parameters
	cfg.Kernel.InitialRadius = 2.0
	cfg.Kernel.RadiusStep = 1.15
	cfg.Kernel.MaxRadius = 8.0
	cfg.Kernel.SeparationLambda = 1.5

	// Set default significance parameters
	cfg.Significance.Alpha = 0.05

	// Set default simulation parameters
	cfg.Simulation.Blobs = 6
	cfg.Simulation.Radius = 6.0
	cfg.Simulation.Intensity = 150.0
	cfg.Simulation.Falloff = 2.0
	cfg.Simulation.Background = 5.0
	cfg.Simulation.Size = 128
	cfg.Simulation.Offset = 2.0
	cfg.Simulation.Seed = 42

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
