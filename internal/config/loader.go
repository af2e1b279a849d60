package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/okian/top2000/pkg/errkind"
)

const (
	envPrefix = "TOP2000_"
	envConfig = "TOP2000_CONFIG"
)

// sections are the nested blocks of Config. Their env vars use a single
// underscore after the section name: TOP2000_DATABASE_DSN -> database.dsn.
var sections = []string{"database", "http", "breaker"}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if TOP2000_CONFIG is set
//  3. env (prefix TOP2000_)
func Load(_ context.Context) (*Config, error) {
	const op = "config.load"
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(envConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errkind.WrapKind(op, ErrLoadConfig, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, errkind.WrapKind(op, ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errkind.WrapKind(op, ErrLoadConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey maps TOP2000_HTTP_RATE_LIMIT_WINDOW to http.rate_limit_window and
// TOP2000_CURRENT_YEAR to current_year.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, envPrefix))
	for _, sec := range sections {
		if rest, ok := strings.CutPrefix(s, sec+"_"); ok {
			return sec + "." + rest
		}
	}
	// TOP2000_CONFIG names the file and is not itself a setting.
	if s == "config" {
		return ""
	}
	return s
}

// maxHistoryWindow caps song history at five editions.
const maxHistoryWindow = 5

// Validate checks the cross-field rules.
func (c *Config) Validate() error {
	const op = "config.validate"
	invalid := func(format string, args ...any) error {
		return errkind.WrapKind(op, ErrInvalidConfig, fmt.Errorf(format, args...))
	}

	switch {
	case c.Addr == "":
		return invalid("addr must not be empty")
	case c.MinYear > c.MaxYear:
		return invalid("min_year %d is after max_year %d", c.MinYear, c.MaxYear)
	case c.CurrentYear < c.MinYear || c.CurrentYear > c.MaxYear:
		return invalid("current_year %d outside [%d, %d]", c.CurrentYear, c.MinYear, c.MaxYear)
	case c.HistoryWindow < 1 || c.HistoryWindow > maxHistoryWindow:
		return invalid("history_window %d outside [1, %d]", c.HistoryWindow, maxHistoryWindow)
	case c.Database.Driver != "sqlite" && c.Database.Driver != "pgx":
		return invalid("unknown database driver %q", c.Database.Driver)
	case c.Database.DSN == "":
		return invalid("database dsn must not be empty")
	case c.HTTP.RateLimitRequests < 0:
		return invalid("rate_limit_requests must not be negative")
	case c.HTTP.RateLimitRequests > 0 && c.HTTP.RateLimitWindow <= 0:
		return invalid("rate_limit_window must be positive")
	case c.Breaker.MaxFailures == 0:
		return invalid("breaker max_failures must be at least 1")
	}
	return nil
}
