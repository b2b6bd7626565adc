// Package teamlead picks exactly one lead agent for a team.
//
// Resolution is deterministic and first-match-wins:
//
//  1. an agent explicitly flagged as team lead
//  2. the first role of the priority table matched by any agent
//  3. the first agent in input order
//
// Product managers are never picked in step 2 unless the whole team is
// product managers.
package teamlead

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode"

	"github.com/HendryAvila/huddle/internal/roster"
)

// ErrEmptyTeam is returned when there are no agents to choose from.
var ErrEmptyTeam = errors.New("team has no agents")

// Reason values.
const (
	ReasonExplicit       = "explicit_team_lead"
	ReasonRolePrefix     = "role_priority:"
	ReasonFallbackFirst  = "fallback:first_agent"
	productManagerMarker = "product manager"
)

// DefaultPriorities is the ordered table of lead-like roles.
var DefaultPriorities = []string{
	"Tech Lead",
	"Engineering Lead",
	"Team Lead",
	"Lead Engineer",
	"Lead Developer",
	"Engineering Manager",
	"Principal Engineer",
	"Staff Engineer",
	"Senior Engineer",
	"Senior Developer",
	"Design Lead",
	"Lead Designer",
	"Senior Designer",
}

// Result is the chosen lead and why.
type Result struct {
	Lead   roster.Agent `json:"lead"`
	Reason string       `json:"reason"`
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithPriorities replaces the role priority table.
func WithPriorities(roles ...string) Option {
	return func(r *Resolver) { r.priorities = append([]string(nil), roles...) }
}

// WithLogger enables debug diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) { r.logger = l }
}

// Resolver resolves team leads against a priority table.
type Resolver struct {
	priorities []string
	logger     *slog.Logger
}

// NewResolver returns a Resolver using DefaultPriorities unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{priorities: DefaultPriorities}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is NewResolver().Resolve.
func Resolve(teamID string, agents []roster.Agent) (Result, error) {
	return NewResolver().Resolve(teamID, agents)
}

// Resolve picks the lead of teamID among agents.
func (r *Resolver) Resolve(teamID string, agents []roster.Agent) (Result, error) {
	if len(agents) == 0 {
		return Result{}, fmt.Errorf("teamlead: team %q: %w", teamID, ErrEmptyTeam)
	}

	for _, a := range agents {
		if a.IsTeamLead {
			return r.pick(teamID, a, ReasonExplicit), nil
		}
	}

	candidates := withoutProductManagers(agents)
	if len(candidates) == 0 {
		candidates = agents
	}
	for _, role := range r.priorities {
		for _, a := range candidates {
			if roleMatches(a.Role, role) {
				return r.pick(teamID, a, ReasonRolePrefix+role), nil
			}
		}
	}

	return r.pick(teamID, agents[0], ReasonFallbackFirst), nil
}

func (r *Resolver) pick(teamID string, a roster.Agent, reason string) Result {
	if r.logger != nil {
		r.logger.Debug("team lead resolved", "team_id", teamID, "agent_id", a.ID, "reason", reason)
	}
	return Result{Lead: a, Reason: reason}
}

func withoutProductManagers(agents []roster.Agent) []roster.Agent {
	out := make([]roster.Agent, 0, len(agents))
	for _, a := range agents {
		if strings.Contains(strings.ToLower(a.Role), productManagerMarker) {
			continue
		}
		out = append(out, a)
	}
	return out
}

// roleMatches reports whether role contains priority directly, or contains
// every word of priority in the same relative order. Case-insensitive.
func roleMatches(role, priority string) bool {
	role, priority = strings.ToLower(role), strings.ToLower(priority)
	if priority == "" {
		return false
	}
	if strings.Contains(role, priority) {
		return true
	}
	want := words(priority)
	have := words(role)
	i := 0
	for _, w := range have {
		if i < len(want) && w == want[i] {
			i++
		}
	}
	return len(want) > 0 && i == len(want)
}

func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
