// Package prompts implements MCP prompts that feed conversation context to
// the host.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/huddle/internal/sharedmem"
)

// AgentContextPrompt handles the agent-context MCP prompt.
// It hands the host the shared project memory digest for one agent.
type AgentContextPrompt struct {
	agg *sharedmem.Aggregator
}

// NewAgentContextPrompt creates an AgentContextPrompt.
func NewAgentContextPrompt(agg *sharedmem.Aggregator) *AgentContextPrompt {
	return &AgentContextPrompt{agg: agg}
}

// Definition returns the MCP prompt definition for registration.
func (p *AgentContextPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("agent-context",
		mcp.WithPromptDescription(
			"Load the shared project memory for an agent: key context, recent decisions "+
				"and the agent's role.",
		),
		mcp.WithArgument("agent_id",
			mcp.ArgumentDescription("Agent id"),
			mcp.RequiredArgument(),
		),
		mcp.WithArgument("project_id",
			mcp.ArgumentDescription("Project id"),
			mcp.RequiredArgument(),
		),
	)
}

// Handle processes the agent-context prompt request.
func (p *AgentContextPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	agentID := req.Params.Arguments["agent_id"]
	projectID := req.Params.Arguments["project_id"]
	if agentID == "" || projectID == "" {
		return nil, fmt.Errorf("agent_id and project_id are required")
	}

	text := p.agg.SharedMemoryForAgent(agentID, projectID)
	if text == "" {
		text = fmt.Sprintf("There is no shared memory yet for agent %s in project %s.", agentID, projectID)
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Shared memory for %s in %s", agentID, projectID),
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}, nil
}
