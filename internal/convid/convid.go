// Package convid builds and parses canonical conversation identifiers.
//
// A conversation is bound to one of three scopes in the ownership tree
// project → team → agent. Its identifier is a delimited string:
//
//	project-{projectId}
//	team-{projectId}-{teamId}
//	agent-{projectId}-{agentId}
//
// Project ids may themselves contain "-", so the split point between the
// project id and the context id of a team/agent id is not always
// recoverable from the string alone. Parsing is therefore two-phase:
// TryParse never guesses and reports OutcomeAmbiguous, and ParseWithHint
// resolves an ambiguous id against a caller-supplied project id.
package convid

import (
	"errors"
	"fmt"
	"strings"
)

// Scope is the ownership level a conversation is bound to.
type Scope string

// Scope constants.
const (
	ScopeProject Scope = "project"
	ScopeTeam    Scope = "team"
	ScopeAgent   Scope = "agent"
)

// Delimiter separates the segments of a conversation id.
const Delimiter = "-"

// Scopes returns the scopes in prefix-matching order.
func Scopes() []Scope {
	return []Scope{ScopeProject, ScopeTeam, ScopeAgent}
}

// Valid reports whether s is one of the known scopes.
func (s Scope) Valid() bool {
	switch s {
	case ScopeProject, ScopeTeam, ScopeAgent:
		return true
	}
	return false
}

// Prefix returns the literal prefix of ids in this scope, e.g. "team-".
func (s Scope) Prefix() string {
	return string(s) + Delimiter
}

// Errors returned by the codec.
var (
	ErrInvalidArgument         = errors.New("invalid argument")
	ErrMalformedID             = errors.New("malformed conversation id")
	ErrProjectMismatch         = errors.New("project mismatch")
	ErrAmbiguousConversationID = errors.New("ambiguous conversation id")
)

// ID is the parsed form of a conversation identifier.
type ID struct {
	Scope     Scope  `json:"scope"`
	ProjectID string `json:"project_id"`
	// ContextID is the team id or agent id. Empty for project scope.
	ContextID string `json:"context_id,omitempty"`
}

// String serializes the id to its wire form.
func (id ID) String() string {
	if id.Scope == ScopeProject {
		return id.Scope.Prefix() + id.ProjectID
	}
	return id.Scope.Prefix() + id.ProjectID + Delimiter + id.ContextID
}

// TeamID returns the team id for team-scoped conversations.
func (id ID) TeamID() string {
	if id.Scope == ScopeTeam {
		return id.ContextID
	}
	return ""
}

// AgentID returns the agent id for agent-scoped conversations.
func (id ID) AgentID() string {
	if id.Scope == ScopeAgent {
		return id.ContextID
	}
	return ""
}

// Build validates the parts and returns the conversation id.
func Build(scope Scope, projectID, contextID string) (ID, error) {
	if projectID == "" {
		return ID{}, fmt.Errorf("convid: build: empty project id: %w", ErrInvalidArgument)
	}
	switch scope {
	case ScopeProject:
		if contextID != "" {
			return ID{}, fmt.Errorf("convid: build: project scope takes no context id (got %q): %w", contextID, ErrInvalidArgument)
		}
	case ScopeTeam, ScopeAgent:
		if contextID == "" {
			return ID{}, fmt.Errorf("convid: build: %s scope requires a context id: %w", scope, ErrInvalidArgument)
		}
	default:
		return ID{}, fmt.Errorf("convid: build: unknown scope %q: %w", scope, ErrInvalidArgument)
	}
	return ID{Scope: scope, ProjectID: projectID, ContextID: contextID}, nil
}

// BuildString is Build followed by String.
func BuildString(scope Scope, projectID, contextID string) (string, error) {
	id, err := Build(scope, projectID, contextID)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// ScopeOf returns the scope encoded in raw's prefix.
func ScopeOf(raw string) (Scope, string, error) {
	for _, s := range Scopes() {
		if rest, ok := strings.CutPrefix(raw, s.Prefix()); ok {
			return s, rest, nil
		}
	}
	return "", "", fmt.Errorf("convid: %q has no scope prefix: %w", raw, ErrMalformedID)
}
