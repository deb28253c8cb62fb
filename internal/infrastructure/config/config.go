package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all daemon configuration.
type Config struct {
	Server    ServerConfig
	Shell     ShellConfig
	Preview   PreviewConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// ShellConfig is the bridge init surface. Origin is the environment default:
// a shell_origin parameter on the page URL takes precedence, and the build
// default applies when both are empty.
type ShellConfig struct {
	Origin         string `envconfig:"SHELL_ORIGIN"`
	CaptureConsole bool   `envconfig:"CAPTURE_CONSOLE" default:"false"`
	ProjectID      string `envconfig:"PROJECT_ID"`
	APIBaseURL     string `envconfig:"API_BASE_URL"`
}

// PreviewConfig selects the page served to the shell.
type PreviewConfig struct {
	Source   string `envconfig:"PREVIEW_SOURCE" default:"index.html"`
	Layout   string `envconfig:"PREVIEW_LAYOUT"`
	Sanitize bool   `envconfig:"PREVIEW_SANITIZE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Preview: PreviewConfig{
			Source:   "index.html",
			Sanitize: true,
		},
		Logging: LogConfig{
			Level: "info",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}

// Addr returns the listen address
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}
