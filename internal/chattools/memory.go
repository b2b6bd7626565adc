package chattools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/sharedmem"
)

// ─── MemAddTool ──────────────────────────────────────────────────────────────

// MemAddTool handles the mem_add MCP tool.
type MemAddTool struct {
	store *chat.Store
}

// NewMemAddTool creates a MemAddTool.
func NewMemAddTool(store *chat.Store) *MemAddTool {
	return &MemAddTool{store: store}
}

// Definition returns the MCP tool definition for mem_add.
func (t *MemAddTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_add",
		mcp.WithDescription(
			"Attach a memory entry to a conversation. Entries surface in the project's shared memory; "+
				"importance 7 or more makes an entry key context.",
		),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithString("memory_type",
			mcp.Required(),
			mcp.Enum(chat.MemoryTypeValues()...),
			mcp.Description("context, summary, key_points or decisions"),
		),
		mcp.WithString("content", mcp.Required(), mcp.Description("Memory text")),
		mcp.WithNumber("importance", mcp.Description("1-10 (default: 5)")),
	)
}

// Handle processes the mem_add tool call.
func (t *MemAddTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entry, err := t.store.AddMemory(
		req.GetString("conversation_id", ""),
		chat.MemoryType(req.GetString("memory_type", "")),
		req.GetString("content", ""),
		intArg(req, "importance", 0),
	)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add memory: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Memory added to %s (%s, importance %d)\nID: %s",
		entry.ConversationID, entry.MemoryType, entry.Importance, entry.ID)), nil
}

// ─── MemProjectTool ──────────────────────────────────────────────────────────

// MemProjectTool handles the mem_project MCP tool.
type MemProjectTool struct {
	agg *sharedmem.Aggregator
}

// NewMemProjectTool creates a MemProjectTool.
func NewMemProjectTool(agg *sharedmem.Aggregator) *MemProjectTool {
	return &MemProjectTool{agg: agg}
}

// Definition returns the MCP tool definition for mem_project.
func (t *MemProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_project",
		mcp.WithDescription(
			"List the memory entries of every conversation in a project (project, team and agent scope), "+
				"most important first.",
		),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default: all)")),
	)
}

// Handle processes the mem_project tool call.
func (t *MemProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	projectID := req.GetString("project_id", "")
	if projectID == "" {
		return mcp.NewToolResultError("'project_id' is required"), nil
	}
	entries := t.agg.ProjectMemory(projectID)
	if limit := intArg(req, "limit", 0); limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if len(entries) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No memory entries for project %s.", projectID)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Project %s memory (%d entries):\n", projectID, len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "- [%d] [%s] %s (%s)\n", e.Importance, e.MemoryType, e.Content, e.ConversationID)
	}
	return mcp.NewToolResultText(b.String()), nil
}

// ─── MemSharedTool ───────────────────────────────────────────────────────────

// MemSharedTool handles the mem_shared MCP tool.
type MemSharedTool struct {
	agg *sharedmem.Aggregator
}

// NewMemSharedTool creates a MemSharedTool.
func NewMemSharedTool(agg *sharedmem.Aggregator) *MemSharedTool {
	return &MemSharedTool{agg: agg}
}

// Definition returns the MCP tool definition for mem_shared.
func (t *MemSharedTool) Definition() mcp.Tool {
	return mcp.NewTool("mem_shared",
		mcp.WithDescription(
			"Render the shared project memory digest for an agent: key context, recent decisions "+
				"and the agent's role. Inject the result into the agent's prompt.",
		),
		mcp.WithString("agent_id", mcp.Required(), mcp.Description("Agent id")),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Project id")),
	)
}

// Handle processes the mem_shared tool call.
func (t *MemSharedTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	projectID := req.GetString("project_id", "")
	if agentID == "" || projectID == "" {
		return mcp.NewToolResultError("'agent_id' and 'project_id' are required"), nil
	}
	digest := t.agg.SharedMemoryForAgent(agentID, projectID)
	if digest == "" {
		return mcp.NewToolResultText("No shared memory for this agent."), nil
	}
	return mcp.NewToolResultText(digest), nil
}
