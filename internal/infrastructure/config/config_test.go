package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "0.0.0.0:8000", cfg.Addr())

	assert.Empty(t, cfg.Shell.Origin)
	assert.False(t, cfg.Shell.CaptureConsole)

	assert.Equal(t, "index.html", cfg.Preview.Source)
	assert.True(t, cfg.Preview.Sanitize)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadOrDefault(t *testing.T) {
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "index.html", cfg.Preview.Source)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":               "9000",
		"HOST":               "127.0.0.1",
		"SHELL_ORIGIN":       "https://shell.example",
		"CAPTURE_CONSOLE":    "true",
		"PROJECT_ID":         "proj-42",
		"API_BASE_URL":       "https://api.example/v1",
		"PREVIEW_SOURCE":     "https://preview.example/",
		"PREVIEW_LAYOUT":     "layout.yaml",
		"PREVIEW_SANITIZE":   "false",
		"LOG_LEVEL":          "debug",
		"LOG_DEV":            "true",
		"RATE_LIMIT_RPS":     "500",
		"RATE_LIMIT_BURST":   "1000",
		"RATE_LIMIT_ENABLED": "false",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())

	assert.Equal(t, "https://shell.example", cfg.Shell.Origin)
	assert.True(t, cfg.Shell.CaptureConsole)
	assert.Equal(t, "proj-42", cfg.Shell.ProjectID)
	assert.Equal(t, "https://api.example/v1", cfg.Shell.APIBaseURL)

	assert.Equal(t, "https://preview.example/", cfg.Preview.Source)
	assert.Equal(t, "layout.yaml", cfg.Preview.Layout)
	assert.False(t, cfg.Preview.Sanitize)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)
}

func TestLoadWithInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"invalid rate", "RATE_LIMIT_RPS", "not-a-number"},
		{"invalid boolean", "CAPTURE_CONSOLE", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)

			cfg := LoadOrDefault()
			assert.Equal(t, Default(), cfg)
		})
	}
}
