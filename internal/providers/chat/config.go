package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	DefaultModel       = "gpt-3.5-turbo"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
	DefaultTimeout     = 60 * time.Second
)

// Config selects the API endpoint and sampling options
type Config struct {
	BaseURL     string        `envconfig:"API_BASE_URL" default:"https://api.openai.com/v1"`
	APIKey      string        `envconfig:"API_KEY"`
	Model       string        `envconfig:"API_MODEL" default:"gpt-3.5-turbo"`
	Temperature float64       `envconfig:"API_TEMPERATURE" default:"0.7"`
	MaxTokens   int           `envconfig:"API_MAX_TOKENS" default:"2000"`
	Timeout     time.Duration `envconfig:"API_TIMEOUT" default:"60s"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() Config {
	return Config{
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
		Timeout:     DefaultTimeout,
	}
}

// ConfigFromEnv reads API_BASE_URL, API_KEY, API_MODEL and friends
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to load chat config: %w", err)
	}
	return cfg, nil
}

// withDefaults fills empty fields. Temperature is taken as given.
func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// IsValidAPIKey checks the OpenAI key shape
func IsValidAPIKey(key string) bool {
	return strings.HasPrefix(key, "sk-") && len(key) > 20
}
