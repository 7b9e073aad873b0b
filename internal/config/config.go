// Package config loads sessionkit configuration from defaults, a YAML or
// TOML file and SESSIONKIT_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SESSIONKIT_"

// Config represents the sessionkit configuration
type Config struct {
	API         APIConfig         `yaml:"api" toml:"api" envPrefix:"API_"`
	Session     SessionConfig     `yaml:"session" toml:"session" envPrefix:"SESSION_"`
	Credentials CredentialsConfig `yaml:"credentials" toml:"credentials" envPrefix:"CREDENTIALS_"`
	History     HistoryConfig     `yaml:"history" toml:"history" envPrefix:"HISTORY_"`
	Logging     LoggingConfig     `yaml:"logging" toml:"logging" envPrefix:"LOG_"`
	Telemetry   TelemetryConfig   `yaml:"telemetry" toml:"telemetry" envPrefix:"TELEMETRY_"`
	Metrics     MetricsConfig     `yaml:"metrics" toml:"metrics" envPrefix:"METRICS_"`
}

// APIConfig locates the auth backend.
type APIConfig struct {
	URL       string        `yaml:"url" toml:"url" env:"URL"`
	Prefix    string        `yaml:"prefix" toml:"prefix" env:"PREFIX"`
	Timeout   time.Duration `yaml:"timeout" toml:"timeout" env:"TIMEOUT"`
	RateLimit float64       `yaml:"rate_limit" toml:"rate_limit" env:"RATE_LIMIT"` // requests per second, 0 = unlimited
	RateBurst int           `yaml:"rate_burst" toml:"rate_burst" env:"RATE_BURST"`
}

// SessionConfig tunes the session controller.
type SessionConfig struct {
	OperationTimeout time.Duration `yaml:"operation_timeout" toml:"operation_timeout" env:"OPERATION_TIMEOUT"`
}

// CredentialsConfig selects where issued tokens are kept.
type CredentialsConfig struct {
	Backend       string        `yaml:"backend" toml:"backend" env:"BACKEND"` // "file", "redis", "memory"
	Path          string        `yaml:"path" toml:"path" env:"PATH"`
	RedisAddr     string        `yaml:"redis_addr,omitempty" toml:"redis_addr" env:"REDIS_ADDR"`
	RedisPassword string        `yaml:"redis_password,omitempty" toml:"redis_password" env:"REDIS_PASSWORD"`
	RedisDB       int           `yaml:"redis_db,omitempty" toml:"redis_db" env:"REDIS_DB"`
	RedisKey      string        `yaml:"redis_key,omitempty" toml:"redis_key" env:"REDIS_KEY"`
	TTL           time.Duration `yaml:"ttl,omitempty" toml:"ttl" env:"TTL"`
}

// HistoryConfig controls the transition log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled" toml:"enabled" env:"ENABLED"`
	Path    string `yaml:"path" toml:"path" env:"PATH"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level" env:"LEVEL"`    // "debug", "info", "warn", "error"
	Format string `yaml:"format" toml:"format" env:"FORMAT"` // "text", "json"
}

// TelemetryConfig controls OTLP trace export.
type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" toml:"enabled" env:"ENABLED"`
	Endpoint string `yaml:"endpoint,omitempty" toml:"endpoint" env:"ENDPOINT"`
	Insecure bool   `yaml:"insecure,omitempty" toml:"insecure" env:"INSECURE"`
}

// MetricsConfig controls the Prometheus endpoint of `auth watch`.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty" toml:"addr" env:"ADDR"`
}

// DefaultDir returns ~/.sessionkit.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sessionkit"), nil
}

// DefaultPath returns the default configuration file path.
func DefaultPath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Default returns the built-in configuration rooted at dir.
func Default(dir string) *Config {
	return &Config{
		API: APIConfig{
			URL:       "http://localhost:8080",
			Prefix:    "/api/v1",
			Timeout:   30 * time.Second,
			RateLimit: 5,
			RateBurst: 5,
		},
		Session: SessionConfig{
			OperationTimeout: 45 * time.Second,
		},
		Credentials: CredentialsConfig{
			Backend: "file",
			Path:    filepath.Join(dir, "credentials.json"),
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    filepath.Join(dir, "history.db"),
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}
