package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruleworks/wave-runner/internal/config"
)

func TestDefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()

	assert.Equal(t, 20, cfg.Workers)
	assert.Equal(t, 3, cfg.Iterations)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 500*time.Millisecond, cfg.IterationDelay)
	assert.Equal(t, time.Second, cfg.SampleInterval)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runner.yaml")
	content := `
endpoint: http://rp.internal:9000/process
prompt_file: data/prompts.csv
workers: 8
iterations: 5
request_timeout: 30s
iteration_delay: 2s
sample_interval: 250ms
max_prompts: 40
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://rp.internal:9000/process", cfg.Endpoint)
	assert.Equal(t, "data/prompts.csv", cfg.PromptFile)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, 5, cfg.Iterations)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 2*time.Second, cfg.IterationDelay)
	assert.Equal(t, 250*time.Millisecond, cfg.SampleInterval)
	assert.Equal(t, 40, cfg.MaxPrompts)

	// Unspecified fields keep their defaults.
	assert.Equal(t, "load_test_results", cfg.OutputDir)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: [not an int"), 0644))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		ok     bool
	}{
		{"defaults", func(c *config.Config) {}, true},
		{"zero workers allowed", func(c *config.Config) { c.Workers = 0 }, true},
		{"zero iterations allowed", func(c *config.Config) { c.Iterations = 0 }, true},
		{"negative workers", func(c *config.Config) { c.Workers = -1 }, false},
		{"negative iterations", func(c *config.Config) { c.Iterations = -2 }, false},
		{"negative max prompts", func(c *config.Config) { c.MaxPrompts = -1 }, false},
		{"empty endpoint", func(c *config.Config) { c.Endpoint = "" }, false},
		{"empty prompt file", func(c *config.Config) { c.PromptFile = "" }, false},
		{"zero timeout", func(c *config.Config) { c.RequestTimeout = 0 }, false},
		{"negative delay", func(c *config.Config) { c.IterationDelay = -time.Second }, false},
		{"zero sample interval", func(c *config.Config) { c.SampleInterval = 0 }, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
