// Package config loads daemon configuration from environment variables
// using envconfig struct tags. Command-line flags override the loaded values.
//
// Variables:
//   - PORT, HOST: listen address
//   - SHELL_ORIGIN: trusted editor shell origin (never "*")
//   - CAPTURE_CONSOLE, PROJECT_ID, API_BASE_URL: bridge init options
//   - PREVIEW_SOURCE, PREVIEW_LAYOUT, PREVIEW_SANITIZE: page to serve
//   - LOG_LEVEL, LOG_DEV: logging
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED: per-IP limiting
package config
