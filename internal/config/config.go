// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config populated with defaults.
// - Load layers a YAML file and environment variables over those defaults.
// - Violations of the cross-field rules wrap ErrInvalidConfig.
package config

import (
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log encoding: json or text.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// CurrentYear is the edition treated as "now" by the ranking.
	CurrentYear int `koanf:"current_year"`

	// MinYear and MaxYear bound the year accepted by the report endpoints.
	MinYear int `koanf:"min_year"`
	MaxYear int `koanf:"max_year"`

	// HistoryWindow is the number of editions shown in a song's history.
	HistoryWindow int `koanf:"history_window"`

	// MetricsInterval sets how often chart gauges are refreshed.
	MetricsInterval time.Duration `koanf:"metrics_interval"`

	// ShutdownTimeout bounds graceful HTTP shutdown.
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	Database DatabaseConfig `koanf:"database"`
	HTTP     HTTPConfig     `koanf:"http"`
	Breaker  BreakerConfig  `koanf:"breaker"`
}

// DatabaseConfig selects and tunes the fact store.
type DatabaseConfig struct {
	// Driver is "sqlite" or "pgx".
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`

	// BootstrapSchema creates missing tables on startup. Development only.
	BootstrapSchema bool `koanf:"bootstrap_schema"`

	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// HTTPConfig tunes the API surface.
type HTTPConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
}

// BreakerConfig tunes the circuit breaker in front of the store.
type BreakerConfig struct {
	MaxFailures uint32        `koanf:"max_failures"`
	OpenTimeout time.Duration `koanf:"open_timeout"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "json",
		Addr:            ":9080",
		CurrentYear:     2024,
		MinYear:         2000,
		MaxYear:         2025,
		HistoryWindow:   5,
		MetricsInterval: 30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "file:top2000.db?mode=ro",
			MaxOpenConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		HTTP: HTTPConfig{
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
		},
		Breaker: BreakerConfig{
			MaxFailures: 5,
			OpenTimeout: 10 * time.Second,
		},
	}
}
