package convid

import (
	"fmt"
	"strings"
)

// ProjectSet reports whether a project id is known. It lets TryParse prove
// that exactly one split of an id names a real project.
type ProjectSet interface {
	HasProject(projectID string) bool
}

// Projects is a ProjectSet over a fixed list of ids.
type Projects map[string]struct{}

// NewProjects builds a Projects set.
func NewProjects(ids ...string) Projects {
	p := make(Projects, len(ids))
	for _, id := range ids {
		p[id] = struct{}{}
	}
	return p
}

// HasProject implements ProjectSet.
func (p Projects) HasProject(projectID string) bool {
	_, ok := p[projectID]
	return ok
}

// Outcome is the result kind of TryParse.
type Outcome int

// Outcome values.
const (
	OutcomeParsed Outcome = iota
	OutcomeAmbiguous
)

func (o Outcome) String() string {
	if o == OutcomeAmbiguous {
		return "ambiguous"
	}
	return "parsed"
}

// Result is what TryParse returns for a well-formed id.
// ID is only meaningful when Outcome is OutcomeParsed; Candidates lists
// every plausible split when it is OutcomeAmbiguous.
type Result struct {
	Outcome    Outcome
	ID         ID
	Candidates []ID
}

// Codec parses conversation ids. A zero Codec has no project registry and
// only accepts team/agent ids whose split is structurally unique.
type Codec struct {
	projects ProjectSet
}

// NewCodec returns a Codec that consults projects to disambiguate.
// projects may be nil.
func NewCodec(projects ProjectSet) *Codec {
	return &Codec{projects: projects}
}

// TryParse is the first parsing phase. It never guesses: when more than one
// split is plausible and the registry cannot single one out, the result is
// OutcomeAmbiguous. Unparseable strings return ErrMalformedID.
func (c *Codec) TryParse(raw string) (Result, error) {
	scope, rest, err := ScopeOf(raw)
	if err != nil {
		return Result{}, err
	}
	if scope == ScopeProject {
		if rest == "" {
			return Result{}, fmt.Errorf("convid: %q has an empty project id: %w", raw, ErrMalformedID)
		}
		return Result{Outcome: OutcomeParsed, ID: ID{Scope: scope, ProjectID: rest}}, nil
	}

	splits := candidateSplits(scope, rest)
	switch len(splits) {
	case 0:
		return Result{}, fmt.Errorf("convid: %q has no project/context split: %w", raw, ErrMalformedID)
	case 1:
		return Result{Outcome: OutcomeParsed, ID: splits[0]}, nil
	}

	if c != nil && c.projects != nil {
		var known []ID
		for _, cand := range splits {
			if c.projects.HasProject(cand.ProjectID) {
				known = append(known, cand)
			}
		}
		if len(known) == 1 {
			return Result{Outcome: OutcomeParsed, ID: known[0]}, nil
		}
		if len(known) > 1 {
			return Result{Outcome: OutcomeAmbiguous, Candidates: known}, nil
		}
	}
	return Result{Outcome: OutcomeAmbiguous, Candidates: splits}, nil
}

// ParseWithHint is the second parsing phase. The id must start with
// "{scope}-{knownProjectID}-" (or equal "project-{knownProjectID}") and
// leave a non-empty context id; otherwise ErrProjectMismatch.
func ParseWithHint(raw, knownProjectID string) (ID, error) {
	if knownProjectID == "" {
		return ID{}, fmt.Errorf("convid: empty project hint: %w", ErrInvalidArgument)
	}
	scope, rest, err := ScopeOf(raw)
	if err != nil {
		return ID{}, err
	}
	if scope == ScopeProject {
		if rest != knownProjectID {
			return ID{}, fmt.Errorf("convid: %q does not belong to project %q: %w", raw, knownProjectID, ErrProjectMismatch)
		}
		return ID{Scope: scope, ProjectID: rest}, nil
	}
	contextID, ok := strings.CutPrefix(rest, knownProjectID+Delimiter)
	if !ok || contextID == "" {
		return ID{}, fmt.Errorf("convid: %q does not belong to project %q: %w", raw, knownProjectID, ErrProjectMismatch)
	}
	return ID{Scope: scope, ProjectID: knownProjectID, ContextID: contextID}, nil
}

// Parse runs ParseWithHint when a hint is given and TryParse otherwise,
// turning an ambiguous outcome into ErrAmbiguousConversationID.
func (c *Codec) Parse(raw string, knownProjectID string) (ID, error) {
	if knownProjectID != "" {
		return ParseWithHint(raw, knownProjectID)
	}
	res, err := c.TryParse(raw)
	if err != nil {
		return ID{}, err
	}
	if res.Outcome == OutcomeAmbiguous {
		return ID{}, fmt.Errorf("convid: %q has %d plausible splits: %w", raw, len(res.Candidates), ErrAmbiguousConversationID)
	}
	return res.ID, nil
}

// candidateSplits lists every split of rest at a delimiter with both sides
// non-empty, shortest project id first.
func candidateSplits(scope Scope, rest string) []ID {
	var out []ID
	for i := 0; i < len(rest); i++ {
		if !strings.HasPrefix(rest[i:], Delimiter) {
			continue
		}
		project, context := rest[:i], rest[i+len(Delimiter):]
		if project == "" || context == "" {
			continue
		}
		out = append(out, ID{Scope: scope, ProjectID: project, ContextID: context})
	}
	return out
}
