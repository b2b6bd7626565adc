package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/huddle/internal/archive"
	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/config"
	huddleserver "github.com/HendryAvila/huddle/internal/server"
)

func TestInspect_PrintsProjectMemoryAndDigest(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/roster.yaml", []byte(`
projects:
  - id: acme
    agents:
      - id: ada
        name: Ada
        role: Tech Lead
`), 0o644))
	cfg := config.Config{Env: config.EnvTest, DataDir: t.TempDir(), RosterPath: "/roster.yaml"}

	src := chat.New(chat.DefaultConfig())
	_, err := src.BootstrapProject("acme")
	require.NoError(t, err)
	_, err = src.AddMemory("project-acme", chat.MemoryDecisions, "monorepo", 8)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "snap.db")
	require.NoError(t, archive.Save(context.Background(), path, src.Export()))

	core, err := huddleserver.NewCore(cfg, fs, nil)
	require.NoError(t, err)
	data, err := archive.Load(context.Background(), path)
	require.NoError(t, err)
	_, err = core.Store.Import(data)
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &InspectCmd{Project: "acme", Agent: "ada"}
	require.NoError(t, cmd.print(&out, core))

	assert.Contains(t, out.String(), "Project acme: 1 memory entries")
	assert.Contains(t, out.String(), "monorepo")
	assert.Contains(t, out.String(), "You are Ada, the Tech Lead.")

	out.Reset()
	cmd.Agent = "ghost"
	require.NoError(t, cmd.print(&out, core))
	assert.Contains(t, out.String(), "No shared memory for agent ghost.")
}

func TestLoadConfig_FlagsOverrideWithoutTouchingEnv(t *testing.T) {
	t.Setenv("HUDDLE_ENV", "production")
	t.Setenv("HUDDLE_ROSTER", "")

	cli := &CLI{Env: "development", LogLevel: "warn", Roster: "/tmp/roster.yaml"}
	cfg, err := cli.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.EnvDevelopment, cfg.Env)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
	assert.Equal(t, "/tmp/roster.yaml", cfg.RosterPath)
	assert.Equal(t, "production", os.Getenv("HUDDLE_ENV"))
	assert.Empty(t, os.Getenv("HUDDLE_ROSTER"))

	_, err = (&CLI{Env: "staging"}).loadConfig()
	assert.Error(t, err)
}
