// Package invariant checks structural rules at mutation boundaries.
//
// Checks are pure predicates. What happens on a violation depends on the
// Enforcer's Mode, fixed at construction: Strict returns the violation as an
// error so the caller aborts, Permissive logs it and lets the caller proceed.
package invariant

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/HendryAvila/huddle/internal/convid"
)

// Kind names an invariant.
type Kind string

// Supported invariant kinds.
const (
	NoFakeSystemAgent  Kind = "no_fake_system_agent"
	ConversationExists Kind = "conversation_exists"
	RoutingConsistency Kind = "routing_consistency"
)

// SystemSentinel is the reserved value that must never be used as an agent id.
const SystemSentinel = "system"

// Mode is the failure policy of an Enforcer.
type Mode int

// Mode values.
const (
	Permissive Mode = iota
	Strict
)

func (m Mode) String() string {
	if m == Strict {
		return "strict"
	}
	return "permissive"
}

// ModeForEnvironment returns Strict for development and test environments
// and Permissive for everything else.
func ModeForEnvironment(env string) Mode {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "test":
		return Strict
	default:
		return Permissive
	}
}

// ErrInvariantViolation matches every *Violation via errors.Is.
var ErrInvariantViolation = errors.New("invariant violation")

// Violation describes a failed check.
type Violation struct {
	Kind   Kind
	Reason string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("invariant %s violated: %s", v.Kind, v.Reason)
}

// Is makes errors.Is(v, ErrInvariantViolation) true.
func (v *Violation) Is(target error) bool {
	return target == ErrInvariantViolation
}

// ConversationLookup answers whether a conversation is currently stored.
type ConversationLookup interface {
	ConversationExists(id string) bool
}

// Params carries the inputs of every kind; each kind reads only its fields.
// Nil pointers mean "absent" (null).
type Params struct {
	AgentID        *string
	MessageType    string
	ConversationID string
	Mode           convid.Scope
	ProjectID      string
	ContextID      *string
}

// Enforcer runs invariant checks under a fixed Mode.
type Enforcer struct {
	mode   Mode
	lookup ConversationLookup
	logger *slog.Logger
}

// NewEnforcer creates an Enforcer. lookup is required for ConversationExists
// checks; logger defaults to slog.Default().
func NewEnforcer(mode Mode, lookup ConversationLookup, logger *slog.Logger) *Enforcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Enforcer{
		mode:   mode,
		lookup: lookup,
		logger: logger.With("component", "invariant"),
	}
}

// Mode returns the enforcement mode.
func (e *Enforcer) Mode() Mode {
	return e.mode
}

// Assert checks kind against p. In Strict mode a violation is returned;
// in Permissive mode it is logged and nil is returned.
func (e *Enforcer) Assert(kind Kind, p Params) error {
	v := e.check(kind, p)
	if v == nil {
		return nil
	}
	if e.mode == Strict {
		return v
	}
	e.logger.Warn("invariant violated",
		"kind", string(v.Kind),
		"reason", v.Reason,
		"conversation_id", p.ConversationID,
	)
	return nil
}

// Check runs the predicate without applying the failure policy.
func (e *Enforcer) Check(kind Kind, p Params) *Violation {
	return e.check(kind, p)
}

func (e *Enforcer) check(kind Kind, p Params) *Violation {
	switch kind {
	case NoFakeSystemAgent:
		return checkNoFakeSystemAgent(p)
	case ConversationExists:
		return e.checkConversationExists(p)
	case RoutingConsistency:
		return checkRoutingConsistency(p)
	default:
		return &Violation{Kind: kind, Reason: "unknown invariant kind"}
	}
}

func checkNoFakeSystemAgent(p Params) *Violation {
	if p.AgentID != nil && *p.AgentID == SystemSentinel {
		return &Violation{Kind: NoFakeSystemAgent, Reason: `agent id must not be the "system" sentinel`}
	}
	if p.MessageType == SystemSentinel && p.AgentID != nil {
		return &Violation{Kind: NoFakeSystemAgent, Reason: fmt.Sprintf("system message carries agent id %q", *p.AgentID)}
	}
	return nil
}

func (e *Enforcer) checkConversationExists(p Params) *Violation {
	if p.ConversationID == "" {
		return &Violation{Kind: ConversationExists, Reason: "conversation id is required"}
	}
	if e.lookup == nil || !e.lookup.ConversationExists(p.ConversationID) {
		return &Violation{Kind: ConversationExists, Reason: fmt.Sprintf("conversation %q does not exist", p.ConversationID)}
	}
	return nil
}

func checkRoutingConsistency(p Params) *Violation {
	contextID := ""
	switch p.Mode {
	case convid.ScopeProject:
		if p.ContextID != nil {
			return &Violation{Kind: RoutingConsistency, Reason: "project mode must not carry a context id"}
		}
	case convid.ScopeTeam, convid.ScopeAgent:
		if p.ContextID == nil || *p.ContextID == "" {
			return &Violation{Kind: RoutingConsistency, Reason: fmt.Sprintf("%s mode requires a context id", p.Mode)}
		}
		contextID = *p.ContextID
	default:
		return &Violation{Kind: RoutingConsistency, Reason: fmt.Sprintf("unknown mode %q", p.Mode)}
	}

	expected, err := convid.BuildString(p.Mode, p.ProjectID, contextID)
	if err != nil {
		return &Violation{Kind: RoutingConsistency, Reason: err.Error()}
	}
	if expected != p.ConversationID {
		return &Violation{Kind: RoutingConsistency, Reason: fmt.Sprintf("conversation id %q, expected %q", p.ConversationID, expected)}
	}
	return nil
}

// Ptr returns a pointer to s, for filling optional Params fields.
func Ptr(s string) *string {
	return &s
}
