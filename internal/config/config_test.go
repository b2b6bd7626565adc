package config_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/huddle/internal/config"
	"github.com/HendryAvila/huddle/internal/invariant"
)

// ─── Load ────────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("HUDDLE_ENV", "")
	t.Setenv("HUDDLE_LOG_LEVEL", "")
	t.Setenv("HUDDLE_DATA_DIR", "")
	t.Setenv("HUDDLE_ROSTER", "")
	t.Setenv("HUDDLE_DIAGNOSTICS", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.EnvProduction, cfg.Env)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, config.DefaultDataDir(), cfg.DataDir)
	assert.Equal(t, invariant.Permissive, cfg.EnforcementMode())
	assert.False(t, cfg.Diagnostics)
}

func TestLoad_FromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HUDDLE_ENV", "Development")
	t.Setenv("HUDDLE_LOG_LEVEL", "debug")
	t.Setenv("HUDDLE_DATA_DIR", dir)
	t.Setenv("HUDDLE_ROSTER", "/etc/huddle/roster.yaml")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/etc/huddle/roster.yaml", cfg.RosterPath)
	assert.Equal(t, filepath.Join(dir, "huddle.db"), cfg.ArchivePath())
	assert.Equal(t, invariant.Strict, cfg.EnforcementMode())
	assert.True(t, cfg.Diagnostics)
}

func TestLoad_RejectsUnknownEnv(t *testing.T) {
	t.Setenv("HUDDLE_ENV", "staging")
	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_OverridesWinOverEnv(t *testing.T) {
	t.Setenv("HUDDLE_ENV", "production")
	t.Setenv("HUDDLE_LOG_LEVEL", "error")
	t.Setenv("HUDDLE_ROSTER", "/env/roster.yaml")
	t.Setenv("HUDDLE_DIAGNOSTICS", "")

	cfg, err := config.Load(
		config.WithEnv("Test"),
		config.WithLogLevel("debug"),
		config.WithRosterPath("/flag/roster.yaml"),
	)
	require.NoError(t, err)
	assert.Equal(t, config.EnvTest, cfg.Env)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "/flag/roster.yaml", cfg.RosterPath)
	assert.True(t, cfg.Diagnostics, "diagnostics follow the overridden env")

	assert.Equal(t, "production", os.Getenv("HUDDLE_ENV"), "process env untouched")
	assert.Equal(t, "/env/roster.yaml", os.Getenv("HUDDLE_ROSTER"))
}

func TestLoad_EmptyOverridesKeepEnv(t *testing.T) {
	t.Setenv("HUDDLE_ENV", "development")
	t.Setenv("HUDDLE_ROSTER", "/env/roster.yaml")

	cfg, err := config.Load(config.WithEnv(""), config.WithRosterPath(""))
	require.NoError(t, err)
	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.Equal(t, "/env/roster.yaml", cfg.RosterPath)
}

func TestLoad_InvalidOverrideRejected(t *testing.T) {
	t.Setenv("HUDDLE_ENV", "production")
	_, err := config.Load(config.WithEnv("staging"))
	assert.Error(t, err)

	t.Setenv("HUDDLE_ENV", "staging")
	cfg, err := config.Load(config.WithEnv("test"))
	require.NoError(t, err, "a valid override fixes an invalid env var")
	assert.Equal(t, config.EnvTest, cfg.Env)
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelWarn, config.ParseLogLevel("WARNING"))
	assert.Equal(t, slog.LevelError, config.ParseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, config.ParseLogLevel("nonsense"))
}

// ─── Logging ─────────────────────────────────────────────────────────────────

func TestSetupLoggerWithWriters_FansOut(t *testing.T) {
	var console, file bytes.Buffer
	logger := config.SetupLoggerWithWriters(&console, &file, slog.LevelInfo)

	logger.Debug("hidden")
	logger.Info("conversation created", "conversation_id", "project-acme")

	assert.NotContains(t, console.String(), "hidden")
	assert.Contains(t, console.String(), "conversation created")
	assert.Contains(t, console.String(), "project-acme")

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(file.String())), &rec))
	assert.Equal(t, "conversation created", rec["msg"])
	assert.Equal(t, "project-acme", rec["conversation_id"])
}

func TestSetupLogger_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "huddle.log")
	logger, cleanup := config.SetupLogger(path, slog.LevelInfo)
	logger.Info("hello")
	require.NoError(t, cleanup())
	assert.FileExists(t, path)
}
