package chattools

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/huddle/internal/roster"
	"github.com/HendryAvila/huddle/internal/teamlead"
)

// TeamLeadTool handles the team_lead MCP tool.
type TeamLeadTool struct {
	roster   *roster.Roster
	resolver *teamlead.Resolver
}

// NewTeamLeadTool creates a TeamLeadTool.
func NewTeamLeadTool(r *roster.Roster, resolver *teamlead.Resolver) *TeamLeadTool {
	return &TeamLeadTool{roster: r, resolver: resolver}
}

// Definition returns the MCP tool definition for team_lead.
func (t *TeamLeadTool) Definition() mcp.Tool {
	return mcp.NewTool("team_lead",
		mcp.WithDescription(
			"Resolve the lead agent of a team: an explicitly flagged lead, else the highest-priority "+
				"lead-like role (never a product manager unless the whole team is), else the first agent.",
		),
		mcp.WithString("team_id", mcp.Required(), mcp.Description("Team id")),
		mcp.WithString("project_id", mcp.Description("Project owning the team; required when the team id exists in several projects")),
	)
}

// Handle processes the team_lead tool call.
func (t *TeamLeadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID := req.GetString("team_id", "")
	if teamID == "" {
		return mcp.NewToolResultError("'team_id' is required"), nil
	}
	projectID := req.GetString("project_id", "")

	agents := t.roster.TeamAgents(projectID, teamID)
	if projectID == "" {
		if projects := teamProjects(agents); len(projects) > 1 {
			return mcp.NewToolResultError(fmt.Sprintf(
				"team %q exists in projects %s; pass 'project_id'", teamID, strings.Join(projects, ", "),
			)), nil
		}
	}

	res, err := t.resolver.Resolve(teamID, agents)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to resolve team lead: %v", err)), nil
	}
	return jsonResult(res)
}

func teamProjects(agents []roster.Agent) []string {
	var out []string
	for _, a := range agents {
		if !slices.Contains(out, a.ProjectID) {
			out = append(out, a.ProjectID)
		}
	}
	return out
}
