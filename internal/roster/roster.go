// Package roster keeps the directory of agents known to the process.
//
// Projects, teams and agents are owned elsewhere; the roster only mirrors
// what the chat core needs: role and expertise for memory digests, team
// membership and the explicit lead flag for team lead resolution.
package roster

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownAgent is returned when an agent id is not in the roster.
var ErrUnknownAgent = errors.New("unknown agent")

// Agent is a participant of a project, optionally attached to a team.
type Agent struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Role       string   `json:"role" yaml:"role"`
	Expertise  []string `json:"expertise,omitempty" yaml:"expertise,omitempty"`
	ProjectID  string   `json:"project_id" yaml:"project"`
	TeamID     string   `json:"team_id,omitempty" yaml:"team,omitempty"`
	IsTeamLead bool     `json:"is_team_lead,omitempty" yaml:"team_lead,omitempty"`
}

// Roster is a concurrency-safe agent directory. Agents keep the order in
// which they were added; team listings follow that order.
type Roster struct {
	mu     sync.RWMutex
	agents map[string]Agent
	order  []string
}

// New creates a roster holding agents.
func New(agents ...Agent) (*Roster, error) {
	r := &Roster{agents: make(map[string]Agent)}
	for _, a := range agents {
		if err := r.Add(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add inserts or replaces an agent. A replaced agent keeps its position.
func (r *Roster) Add(a Agent) error {
	if a.ID == "" {
		return errors.New("roster: agent id is required")
	}
	if a.ProjectID == "" {
		return fmt.Errorf("roster: agent %q has no project", a.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[a.ID]; !exists {
		r.order = append(r.order, a.ID)
	}
	r.agents[a.ID] = a
	return nil
}

// Agent returns the agent with the given id.
func (r *Roster) Agent(id string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[id]
	return a, ok
}

// TeamAgents returns the agents of a team in declaration order. Team ids are
// only unique within a project, so an empty projectID matches the team in
// every project.
func (r *Roster) TeamAgents(projectID, teamID string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Agent
	for _, id := range r.order {
		a := r.agents[id]
		if a.TeamID != teamID {
			continue
		}
		if projectID != "" && a.ProjectID != projectID {
			continue
		}
		out = append(out, a)
	}
	return out
}

// ProjectAgents returns the agents of a project in declaration order.
func (r *Roster) ProjectAgents(projectID string) []Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Agent
	for _, id := range r.order {
		if a := r.agents[id]; a.ProjectID == projectID {
			out = append(out, a)
		}
	}
	return out
}

// Projects returns the distinct project ids in first-seen order.
func (r *Roster) Projects() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]bool)
	var out []string
	for _, id := range r.order {
		p := r.agents[id].ProjectID
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// Len returns the number of agents.
func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
