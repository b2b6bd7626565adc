package teamlead_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/huddle/internal/roster"
	"github.com/HendryAvila/huddle/internal/teamlead"
)

func agent(id, role string) roster.Agent {
	return roster.Agent{ID: id, Role: role, ProjectID: "p", TeamID: "t"}
}

func TestResolve_EmptyTeam(t *testing.T) {
	_, err := teamlead.Resolve("t", nil)
	assert.ErrorIs(t, err, teamlead.ErrEmptyTeam)
}

func TestResolve_ExplicitFlagWins(t *testing.T) {
	lead := agent("c", "Junior Designer")
	lead.IsTeamLead = true
	res, err := teamlead.Resolve("t", []roster.Agent{agent("a", "Tech Lead"), agent("b", "Engineer"), lead})
	require.NoError(t, err)
	assert.Equal(t, "c", res.Lead.ID)
	assert.Equal(t, teamlead.ReasonExplicit, res.Reason)
}

func TestResolve_NeverPicksProductManager(t *testing.T) {
	agents := []roster.Agent{agent("pm", "Product Manager"), agent("se", "Senior Engineer")}

	first, err := teamlead.Resolve("t", agents)
	require.NoError(t, err)
	assert.Equal(t, "se", first.Lead.ID)
	assert.Equal(t, "role_priority:Senior Engineer", first.Reason)

	for i := 0; i < 10; i++ {
		again, err := teamlead.Resolve("t", agents)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolve_PriorityOrderNotInputOrder(t *testing.T) {
	res, err := teamlead.Resolve("t", []roster.Agent{
		agent("a", "Senior Designer"),
		agent("b", "Staff Engineer"),
		agent("c", "Tech Lead (Platform)"),
	})
	require.NoError(t, err)
	assert.Equal(t, "c", res.Lead.ID)
	assert.Equal(t, "role_priority:Tech Lead", res.Reason)
}

func TestResolve_NonContiguousWordMatch(t *testing.T) {
	res, err := teamlead.Resolve("t", []roster.Agent{
		agent("a", "Backend Developer"),
		agent("b", "senior backend software engineer"),
	})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Lead.ID)
	assert.Equal(t, "role_priority:Senior Engineer", res.Reason)
}

func TestResolve_WordOrderMatters(t *testing.T) {
	res, err := teamlead.Resolve("t", []roster.Agent{
		agent("a", "Engineer, Senior"),
		agent("b", "QA"),
	})
	require.NoError(t, err)
	assert.Equal(t, teamlead.ReasonFallbackFirst, res.Reason)
	assert.Equal(t, "a", res.Lead.ID)
}

func TestResolve_AllProductManagersLiftsExclusion(t *testing.T) {
	res, err := teamlead.Resolve("t", []roster.Agent{
		agent("a", "Product Manager"),
		agent("b", "Senior Product Manager, Team Lead"),
	})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Lead.ID)
	assert.Equal(t, "role_priority:Team Lead", res.Reason)
}

func TestResolve_FallbackFirstAgent(t *testing.T) {
	res, err := teamlead.Resolve("t", []roster.Agent{agent("x", "Writer"), agent("y", "Researcher")})
	require.NoError(t, err)
	assert.Equal(t, "x", res.Lead.ID)
	assert.Equal(t, "fallback:first_agent", res.Reason)
}

func TestResolver_CustomPrioritiesAndLogging(t *testing.T) {
	var buf bytes.Buffer
	r := teamlead.NewResolver(
		teamlead.WithPriorities("Researcher"),
		teamlead.WithLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))),
	)
	res, err := r.Resolve("t", []roster.Agent{agent("x", "Writer"), agent("y", "Researcher")})
	require.NoError(t, err)
	assert.Equal(t, "y", res.Lead.ID)
	assert.Contains(t, buf.String(), "team lead resolved")
}
