// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-playground/validator/v10"

	"github.com/HendryAvila/huddle/internal/invariant"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"
)

// Config holds all configuration values.
type Config struct {
	// Env selects strict invariant enforcement outside production.
	Env string `validate:"oneof=development dev test production"`

	// Logging
	LogLevel slog.Level
	// LogFile enables a JSON log sink next to the console output.
	LogFile string

	// DataDir holds archive snapshots.
	DataDir string `validate:"required"`
	// RosterPath points at a YAML agent roster; empty means an empty roster.
	RosterPath string

	// Diagnostics logs conversations excluded from project memory.
	Diagnostics bool
}

var validate = validator.New()

// Override adjusts a loaded Config before validation.
type Override func(*Config)

// WithEnv overrides HUDDLE_ENV; an empty value keeps the environment's.
func WithEnv(env string) Override {
	return func(c *Config) {
		if env != "" {
			c.Env = strings.ToLower(env)
		}
	}
}

// WithLogLevel overrides HUDDLE_LOG_LEVEL; an empty value keeps the
// environment's.
func WithLogLevel(level string) Override {
	return func(c *Config) {
		if level != "" {
			c.LogLevel = ParseLogLevel(level)
		}
	}
}

// WithRosterPath overrides HUDDLE_ROSTER; an empty value keeps the
// environment's.
func WithRosterPath(path string) Override {
	return func(c *Config) {
		if path != "" {
			c.RosterPath = path
		}
	}
}

// Load reads configuration from environment variables, applies overrides and
// validates the result. The process environment is never modified.
func Load(overrides ...Override) (Config, error) {
	cfg := Config{
		Env:         strings.ToLower(getEnv("HUDDLE_ENV", EnvProduction)),
		LogLevel:    ParseLogLevel(getEnv("HUDDLE_LOG_LEVEL", "info")),
		LogFile:     getEnv("HUDDLE_LOG_FILE", ""),
		DataDir:     getEnv("HUDDLE_DATA_DIR", DefaultDataDir()),
		RosterPath:  getEnv("HUDDLE_ROSTER", ""),
		Diagnostics: getEnv("HUDDLE_DIAGNOSTICS", "") == "true",
	}
	for _, o := range overrides {
		o(&cfg)
	}
	// Diagnostics follow the final environment, not the raw variable.
	cfg.Diagnostics = cfg.Diagnostics || cfg.Env != EnvProduction
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// EnforcementMode maps the environment to an invariant enforcement mode.
func (c Config) EnforcementMode() invariant.Mode {
	return invariant.ModeForEnvironment(c.Env)
}

// DefaultDataDir returns the XDG data directory for huddle.
func DefaultDataDir() string {
	return filepath.Join(xdg.DataHome, "huddle")
}

// ArchivePath returns the default snapshot file inside DataDir.
func (c Config) ArchivePath() string {
	return filepath.Join(c.DataDir, "huddle.db")
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// ParseLogLevel converts a level name to slog.Level, defaulting to info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
