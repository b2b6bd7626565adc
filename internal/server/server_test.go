package server

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/huddle/internal/config"
	"github.com/HendryAvila/huddle/internal/invariant"
)

const testRoster = `
projects:
  - id: saas-startup
    agents:
      - id: pam
        role: Product Manager
        team: core
      - id: sam
        name: Sam
        role: Senior Engineer
        team: core
`

func testConfig(t *testing.T, env string) config.Config {
	t.Helper()
	return config.Config{Env: env, DataDir: t.TempDir(), RosterPath: "/roster.yaml"}
}

func TestNewCore_LoadsRosterAndBootstraps(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/roster.yaml", []byte(testRoster), 0o644))

	core, err := NewCore(testConfig(t, config.EnvDevelopment), fs, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, core.Roster.Len())
	assert.True(t, core.Store.HasProject("saas-startup"))
	assert.True(t, core.Store.ConversationExists("project-saas-startup"))
	assert.Equal(t, invariant.Strict, core.Enforcer.Mode())
}

func TestNewCore_MissingRoster(t *testing.T) {
	_, err := NewCore(testConfig(t, config.EnvProduction), afero.NewMemMapFs(), nil)
	assert.Error(t, err)
}

func TestNewCore_NoRoster(t *testing.T) {
	cfg := testConfig(t, config.EnvProduction)
	cfg.RosterPath = ""
	core, err := NewCore(cfg, afero.NewMemMapFs(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, core.Roster.Len())
	assert.Equal(t, invariant.Permissive, core.Enforcer.Mode())
}

func TestTools_RegistersEverySurface(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/roster.yaml", []byte(testRoster), 0o644))
	core, err := NewCore(testConfig(t, config.EnvTest), fs, nil)
	require.NoError(t, err)

	names := map[string]bool{}
	for _, st := range Tools(core) {
		names[st.Tool.Name] = true
	}
	for _, want := range []string{
		"conv_id", "conv_create", "conv_archive", "conv_delete",
		"msg_send", "msg_list", "typing",
		"mem_add", "mem_project", "mem_shared",
		"team_lead", "chat_stats", "chat_export", "chat_import",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}

	assert.NotNil(t, New(core))
}

func TestTools_EndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/roster.yaml", []byte(testRoster), 0o644))
	core, err := NewCore(testConfig(t, config.EnvTest), fs, nil)
	require.NoError(t, err)

	handlers := map[string]func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error){}
	for _, st := range Tools(core) {
		handlers[st.Tool.Name] = st.Handler
	}
	run := func(name string, args map[string]interface{}) *mcp.CallToolResult {
		req := mcp.CallToolRequest{}
		req.Params.Arguments = args
		res, err := handlers[name](context.Background(), req)
		require.NoError(t, err)
		return res
	}

	res := run("conv_create", map[string]interface{}{"scope": "team", "project_id": "saas-startup", "context_id": "core"})
	require.False(t, res.IsError)
	res = run("mem_add", map[string]interface{}{
		"conversation_id": "team-saas-startup-core", "memory_type": "decisions", "content": "weekly demos", "importance": float64(7),
	})
	require.False(t, res.IsError)

	res = run("mem_shared", map[string]interface{}{"agent_id": "sam", "project_id": "saas-startup"})
	text := res.Content[0].(mcp.TextContent).Text
	assert.Contains(t, text, "weekly demos")
	assert.Contains(t, text, "You are Sam, the Senior Engineer.")

	res = run("team_lead", map[string]interface{}{"team_id": "core"})
	assert.Contains(t, res.Content[0].(mcp.TextContent).Text, `"id": "sam"`)
}
