package convid_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/huddle/internal/convid"
)

// ─── Build ──────────────────────────────────────────────────────────────────

func TestBuild_WireFormats(t *testing.T) {
	tests := []struct {
		scope     convid.Scope
		project   string
		contextID string
		want      string
	}{
		{convid.ScopeProject, "acme", "", "project-acme"},
		{convid.ScopeTeam, "acme", "design", "team-acme-design"},
		{convid.ScopeAgent, "acme", "ada", "agent-acme-ada"},
		{convid.ScopeTeam, "saas-startup", "design", "team-saas-startup-design"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := convid.BuildString(tt.scope, tt.project, tt.contextID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuild_InvalidArgument(t *testing.T) {
	tests := []struct {
		name      string
		scope     convid.Scope
		project   string
		contextID string
	}{
		{"empty project", convid.ScopeProject, "", ""},
		{"project with context", convid.ScopeProject, "acme", "x"},
		{"team without context", convid.ScopeTeam, "acme", ""},
		{"agent without context", convid.ScopeAgent, "acme", ""},
		{"unknown scope", convid.Scope("org"), "acme", "x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := convid.Build(tt.scope, tt.project, tt.contextID)
			require.ErrorIs(t, err, convid.ErrInvalidArgument)
		})
	}
}

// ─── TryParse ───────────────────────────────────────────────────────────────

func TestTryParse_Malformed(t *testing.T) {
	c := convid.NewCodec(nil)
	for _, raw := range []string{"", "chat-acme", "project-", "team-acme", "team--x", "agent-acme-"} {
		_, err := c.TryParse(raw)
		assert.ErrorIs(t, err, convid.ErrMalformedID, raw)
	}
}

func TestTryParse_ProjectScopeNeverAmbiguous(t *testing.T) {
	c := convid.NewCodec(nil)
	res, err := c.TryParse("project-saas-startup-v2")
	require.NoError(t, err)
	assert.Equal(t, convid.OutcomeParsed, res.Outcome)
	assert.Equal(t, convid.ID{Scope: convid.ScopeProject, ProjectID: "saas-startup-v2"}, res.ID)
}

func TestTryParse_StructurallyUnique(t *testing.T) {
	c := convid.NewCodec(nil)
	res, err := c.TryParse("agent-acme-ada")
	require.NoError(t, err)
	assert.Equal(t, convid.OutcomeParsed, res.Outcome)
	assert.Equal(t, "acme", res.ID.ProjectID)
	assert.Equal(t, "ada", res.ID.AgentID())
}

func TestTryParse_AmbiguousWithoutRegistry(t *testing.T) {
	c := convid.NewCodec(nil)
	res, err := c.TryParse("team-saas-startup-design")
	require.NoError(t, err)
	assert.Equal(t, convid.OutcomeAmbiguous, res.Outcome)
	assert.Len(t, res.Candidates, 2)
}

func TestTryParse_RegistryProvesUniqueSplit(t *testing.T) {
	c := convid.NewCodec(convid.NewProjects("saas-startup"))
	res, err := c.TryParse("team-saas-startup-design")
	require.NoError(t, err)
	require.Equal(t, convid.OutcomeParsed, res.Outcome)
	assert.Equal(t, "saas-startup", res.ID.ProjectID)
	assert.Equal(t, "design", res.ID.TeamID())
}

func TestTryParse_NestedRegisteredPrefixesAreAmbiguous(t *testing.T) {
	c := convid.NewCodec(convid.NewProjects("saas", "saas-startup"))
	res, err := c.TryParse("team-saas-startup-team-x")
	require.NoError(t, err)
	assert.Equal(t, convid.OutcomeAmbiguous, res.Outcome)

	_, err = c.Parse("team-saas-startup-team-x", "")
	assert.ErrorIs(t, err, convid.ErrAmbiguousConversationID)
}

// ─── ParseWithHint ──────────────────────────────────────────────────────────

func TestParseWithHint(t *testing.T) {
	id, err := convid.ParseWithHint("team-saas-startup-design", "saas-startup")
	require.NoError(t, err)
	assert.Equal(t, convid.ID{Scope: convid.ScopeTeam, ProjectID: "saas-startup", ContextID: "design"}, id)

	id, err = convid.ParseWithHint("team-saas-startup-design", "saas")
	require.NoError(t, err)
	assert.Equal(t, "startup-design", id.ContextID)
}

func TestParseWithHint_Mismatch(t *testing.T) {
	tests := []struct{ raw, hint string }{
		{"team-saas-startup-design", "saas-start"},
		{"team-saas-design", "saas-design"},
		{"project-saas", "saas-startup"},
		{"agent-acme-ada", "ac"},
	}
	for _, tt := range tests {
		_, err := convid.ParseWithHint(tt.raw, tt.hint)
		assert.ErrorIs(t, err, convid.ErrProjectMismatch, "%s / %s", tt.raw, tt.hint)
	}
}

// ─── Properties ─────────────────────────────────────────────────────────────

func TestRoundTrip_DashFreeSegments(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	c := convid.NewCodec(nil)
	for i := 0; i < 500; i++ {
		scope := convid.Scopes()[rng.Intn(3)]
		project := randomSegment(rng)
		contextID := ""
		if scope != convid.ScopeProject {
			contextID = randomSegment(rng)
		}
		raw, err := convid.BuildString(scope, project, contextID)
		require.NoError(t, err)

		got, err := c.Parse(raw, "")
		require.NoError(t, err, raw)
		assert.Equal(t, convid.ID{Scope: scope, ProjectID: project, ContextID: contextID}, got)
	}
}

// TestTryParse_GeneratedNestedProjects builds chains of projects where each id
// is a hyphenated extension of the previous one and checks that TryParse
// either returns the true owner or reports ambiguity, never a wrong owner.
func TestTryParse_GeneratedNestedProjects(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 200; i++ {
		depth := 2 + rng.Intn(3)
		chain := []string{randomSegment(rng)}
		for len(chain) < depth {
			chain = append(chain, chain[len(chain)-1]+"-"+randomSegment(rng))
		}
		registered := convid.NewProjects(chain...)
		c := convid.NewCodec(registered)

		owner := chain[rng.Intn(len(chain))]
		raw, err := convid.BuildString(convid.ScopeTeam, owner, randomSegment(rng))
		require.NoError(t, err)

		res, err := c.TryParse(raw)
		require.NoError(t, err)
		if res.Outcome == convid.OutcomeParsed {
			assert.Equal(t, owner, res.ID.ProjectID, raw)
		}
		for _, cand := range res.Candidates {
			assert.True(t, strings.HasPrefix(raw, "team-"+cand.ProjectID+"-"), fmt.Sprint(cand))
		}
	}
}

func randomSegment(rng *rand.Rand) string {
	const letters = "abcdefghijklmnopqrstuvwxyz0123456789"
	n := 1 + rng.Intn(8)
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rng.Intn(len(letters))]
	}
	return string(b)
}
