// Package sharedmem aggregates memory entries upward from every conversation
// of a project and renders the digest injected into an agent's prompt.
package sharedmem

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/convid"
	"github.com/HendryAvila/huddle/internal/roster"
)

// Digest limits.
const (
	KeyContextMinImportance = 7
	MaxKeyContext           = 5
	MaxRecentDecisions      = 3
)

// Source is the read side of the conversation store used for aggregation.
type Source interface {
	MemoryBuckets() map[string][]chat.MemoryEntry
	HasProject(projectID string) bool
	Projects() []string
}

// AgentDirectory resolves agent ids to their roster entry.
type AgentDirectory interface {
	Agent(id string) (roster.Agent, bool)
}

// Option customizes an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithDiagnostics logs every excluded conversation at debug level.
// Enable it in development only.
func WithDiagnostics(on bool) Option {
	return func(a *Aggregator) { a.diagnostics = on }
}

// Aggregator builds project-wide memory views.
type Aggregator struct {
	src         Source
	agents      AgentDirectory
	codec       *convid.Codec
	logger      *slog.Logger
	diagnostics bool
}

// New creates an Aggregator. The source doubles as the project registry
// used to disambiguate conversation ids.
func New(src Source, agents AgentDirectory, opts ...Option) *Aggregator {
	a := &Aggregator{
		src:    src,
		agents: agents,
		codec:  convid.NewCodec(src),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "sharedmem")
	return a
}

// ProjectMemory returns every memory entry whose conversation belongs to
// projectID, most important first and newest first within equal importance.
// Conversations whose id cannot be attributed to projectID with certainty
// are left out.
func (a *Aggregator) ProjectMemory(projectID string) []chat.MemoryEntry {
	if projectID == "" {
		return nil
	}
	known := a.src.Projects()

	var out []chat.MemoryEntry
	for convID, bucket := range a.src.MemoryBuckets() {
		if a.belongsTo(convID, projectID, known) {
			out = append(out, bucket...)
		}
	}
	chat.SortByImportance(out)
	return out
}

// belongsTo classifies a conversation id against projectID in two phases:
// an unhinted parse, then, for ambiguous ids only, a prefix-gated hinted
// parse. Failures exclude the conversation rather than propagate.
func (a *Aggregator) belongsTo(convID, projectID string, known []string) bool {
	res, err := a.codec.TryParse(convID)
	if err != nil {
		a.exclude(convID, projectID, err.Error())
		return false
	}
	if res.Outcome == convid.OutcomeParsed {
		return res.ID.ProjectID == projectID
	}

	scope, _, _ := convid.ScopeOf(convID)
	prefix := scope.Prefix() + projectID + convid.Delimiter
	if !strings.HasPrefix(convID, prefix) {
		a.exclude(convID, projectID, "ambiguous and prefix does not match")
		return false
	}
	id, err := convid.ParseWithHint(convID, projectID)
	if err != nil || id.ProjectID != projectID {
		a.exclude(convID, projectID, "ambiguous and hinted parse failed")
		return false
	}
	// A longer registered project id that also prefixes the id owns it.
	for _, other := range known {
		if len(other) > len(projectID) && strings.HasPrefix(convID, scope.Prefix()+other+convid.Delimiter) {
			a.exclude(convID, projectID, fmt.Sprintf("shadowed by project %q", other))
			return false
		}
	}
	return true
}

func (a *Aggregator) exclude(convID, projectID, reason string) {
	if !a.diagnostics {
		return
	}
	a.logger.Debug("conversation excluded from project memory",
		"conversation_id", convID,
		"project_id", projectID,
		"reason", reason,
	)
}

// SharedMemoryForAgent renders the project memory digest for an agent: key
// context, recent decisions, then the agent's role and expertise. It returns
// "" when the agent is unknown or no entry qualifies; callers treat that as
// "no injected context".
func (a *Aggregator) SharedMemoryForAgent(agentID, projectID string) string {
	if a.agents == nil {
		return ""
	}
	agent, ok := a.agents.Agent(agentID)
	if !ok {
		return ""
	}

	entries := a.ProjectMemory(projectID)

	var key []chat.MemoryEntry
	for _, e := range entries {
		if len(key) == MaxKeyContext {
			break
		}
		if e.Importance >= KeyContextMinImportance {
			key = append(key, e)
		}
	}

	var decisions []chat.MemoryEntry
	for _, e := range entries {
		if e.MemoryType == chat.MemoryDecisions {
			decisions = append(decisions, e)
		}
	}
	sort.SliceStable(decisions, func(i, j int) bool {
		if !decisions[i].CreatedAt.Equal(decisions[j].CreatedAt) {
			return decisions[i].CreatedAt.After(decisions[j].CreatedAt)
		}
		return decisions[i].Seq > decisions[j].Seq
	})
	if len(decisions) > MaxRecentDecisions {
		decisions = decisions[:MaxRecentDecisions]
	}

	if len(key) == 0 && len(decisions) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Shared Project Memory\n\n")

	if len(key) > 0 {
		b.WriteString("### Key Context\n")
		for _, e := range key {
			fmt.Fprintf(&b, "- [%s] %s\n", e.MemoryType, e.Content)
		}
		b.WriteString("\n")
	}

	if len(decisions) > 0 {
		b.WriteString("### Recent Decisions\n")
		for _, e := range decisions {
			fmt.Fprintf(&b, "- %s\n", e.Content)
		}
		b.WriteString("\n")
	}

	b.WriteString("### Your Role\n")
	name := agent.Name
	if name == "" {
		name = agent.ID
	}
	fmt.Fprintf(&b, "You are %s, the %s.\n", name, agent.Role)
	if len(agent.Expertise) > 0 {
		fmt.Fprintf(&b, "Areas of expertise: %s\n", strings.Join(agent.Expertise, ", "))
	}
	return b.String()
}
