/*
PURPOSE:
  Defines the configuration structure and loading logic for Wave Runner.
  Adheres to "Config IS Code" philosophy.

REQUIREMENTS:
  User-specified:
  - Allow configuration of the target endpoint, worker/iteration counts,
    timeouts, prompt file, and output directory.

  Implementation-discovered:
  - Needs to support YAML parsing.
  - Invalid values must be rejected before a run starts (fail fast).

ARCHITECTURE INTEGRATION:
  - Used by: internal/cli, internal/engine
  - Dependencies: gopkg.in/yaml.v3 (standard for Go config)

ERROR HANDLING:
  - Returns explicit error if config file is invalid.
  - Missing config file falls back to defaults.
  - Validate() catches bad values; callers must not run without it.

IMPLEMENTATION RULES:
  - Config struct tags should support yaml.
  - Defaults should be sensible (20 workers, 3 iterations, 60s timeout).
  - No module-level mutable state; the struct is passed down explicitly.

USAGE:
  cfg, err := config.Load("wave_runner.yaml")
  if err := cfg.Validate(); err != nil { ... }

SELF-HEALING INSTRUCTIONS:
  - If new fields are needed, add to Config struct and update Load() defaults.

RELATED FILES:
  - internal/cli/run.go

MAINTENANCE:
  - Update when adding new tuning parameters.
*/

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the full configuration for Wave Runner.
type Config struct {
	Endpoint   string `yaml:"endpoint"`
	PromptFile string `yaml:"prompt_file"`
	OutputDir  string `yaml:"output_dir"`

	Workers    int `yaml:"workers"`    // concurrent requests per iteration
	Iterations int `yaml:"iterations"` // number of waves
	MaxPrompts int `yaml:"max_prompts"` // 0 = load all prompts from the file

	RequestTimeout time.Duration `yaml:"request_timeout"`
	IterationDelay time.Duration `yaml:"iteration_delay"` // pause between waves
	SampleInterval time.Duration `yaml:"sample_interval"` // resource poll cadence
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Endpoint:       "http://localhost:8080/process",
		PromptFile:     "prompts.csv",
		OutputDir:      "load_test_results",
		Workers:        20,
		Iterations:     3,
		RequestTimeout: 60 * time.Second,
		IterationDelay: 500 * time.Millisecond,
		SampleInterval: 1 * time.Second,
	}
}

// Load reads configuration from a file.
// If path is specified, it attempts to load that file.
// If path is empty, it searches for default files in order.
// If no file found, returns default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	var data []byte
	var err error

	if path != "" {
		data, err = os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
	} else {
		// Search for defaults
		defaults := []string{"wave_runner.yaml", "runner.yaml"}
		found := false
		for _, name := range defaults {
			data, err = os.ReadFile(name)
			if err == nil {
				path = name // record which file we loaded
				found = true
				break
			}
		}
		if !found {
			// No config file found, return default
			return cfg, nil
		}
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for values that would make a run
// meaningless or unrunnable. W=0 and N=0 are allowed (degenerate runs).
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint must be set")
	}
	if c.PromptFile == "" {
		return fmt.Errorf("prompt_file must be set")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must be >= 0, got %d", c.Iterations)
	}
	if c.MaxPrompts < 0 {
		return fmt.Errorf("max_prompts must be >= 0, got %d", c.MaxPrompts)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.IterationDelay < 0 {
		return fmt.Errorf("iteration_delay must be >= 0, got %s", c.IterationDelay)
	}
	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be positive, got %s", c.SampleInterval)
	}
	return nil
}
