package chattools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/convid"
	"github.com/HendryAvila/huddle/internal/invariant"
)

func scopeEnum() []string {
	out := make([]string, 0, 3)
	for _, s := range convid.Scopes() {
		out = append(out, string(s))
	}
	return out
}

// ─── ConvIDTool ──────────────────────────────────────────────────────────────

// ConvIDTool handles the conv_id MCP tool: building and parsing ids.
type ConvIDTool struct {
	codec *convid.Codec
}

// NewConvIDTool creates a ConvIDTool that disambiguates against projects.
func NewConvIDTool(projects convid.ProjectSet) *ConvIDTool {
	return &ConvIDTool{codec: convid.NewCodec(projects)}
}

// Definition returns the MCP tool definition for conv_id.
func (t *ConvIDTool) Definition() mcp.Tool {
	return mcp.NewTool("conv_id",
		mcp.WithDescription(
			"Build a canonical conversation id from its parts, or parse one back. "+
				"Parsing reports 'ambiguous' with every candidate split when a hyphenated project id "+
				"makes the split point uncertain; pass project_hint to resolve it.",
		),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("build", "parse"),
			mcp.Description("build or parse"),
		),
		mcp.WithString("scope",
			mcp.Enum(scopeEnum()...),
			mcp.Description("Conversation scope (build)"),
		),
		mcp.WithString("project_id", mcp.Description("Project id (build)")),
		mcp.WithString("context_id", mcp.Description("Team or agent id; omit for project scope (build)")),
		mcp.WithString("conversation_id", mcp.Description("Id to parse (parse)")),
		mcp.WithString("project_hint", mcp.Description("Known project id used to split an ambiguous id (parse)")),
	)
}

// Handle processes the conv_id tool call.
func (t *ConvIDTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	switch req.GetString("action", "") {
	case "build":
		id, err := convid.Build(
			convid.Scope(req.GetString("scope", "")),
			req.GetString("project_id", ""),
			req.GetString("context_id", ""),
		)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(id.String()), nil

	case "parse":
		raw := req.GetString("conversation_id", "")
		if raw == "" {
			return mcp.NewToolResultError("'conversation_id' is required"), nil
		}
		if hint := req.GetString("project_hint", ""); hint != "" {
			id, err := convid.ParseWithHint(raw, hint)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return jsonResult(map[string]any{"outcome": convid.OutcomeParsed.String(), "id": id})
		}
		res, err := t.codec.TryParse(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		out := map[string]any{"outcome": res.Outcome.String()}
		if res.Outcome == convid.OutcomeParsed {
			out["id"] = res.ID
		} else {
			out["candidates"] = res.Candidates
		}
		return jsonResult(out)

	default:
		return mcp.NewToolResultError("'action' must be build or parse"), nil
	}
}

// ─── ConvCreateTool ──────────────────────────────────────────────────────────

// ConvCreateTool handles the conv_create MCP tool.
type ConvCreateTool struct {
	store    *chat.Store
	enforcer *invariant.Enforcer
}

// NewConvCreateTool creates a ConvCreateTool.
func NewConvCreateTool(store *chat.Store, enforcer *invariant.Enforcer) *ConvCreateTool {
	return &ConvCreateTool{store: store, enforcer: enforcer}
}

// Definition returns the MCP tool definition for conv_create.
func (t *ConvCreateTool) Definition() mcp.Tool {
	return mcp.NewTool("conv_create",
		mcp.WithDescription(
			"Create a project, team or agent conversation. Idempotent: creating an existing "+
				"conversation returns it unchanged.",
		),
		mcp.WithString("scope",
			mcp.Required(),
			mcp.Enum(scopeEnum()...),
			mcp.Description("Conversation scope"),
		),
		mcp.WithString("project_id", mcp.Required(), mcp.Description("Owning project id")),
		mcp.WithString("context_id", mcp.Description("Team id or agent id; required for team and agent scope")),
		mcp.WithString("conversation_id", mcp.Description("Explicit id overriding the canonical one")),
	)
}

// Handle processes the conv_create tool call.
func (t *ConvCreateTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec := chat.ConversationSpec{
		Scope:     convid.Scope(req.GetString("scope", "")),
		ProjectID: req.GetString("project_id", ""),
		ContextID: req.GetString("context_id", ""),
	}
	explicit := req.GetString("conversation_id", "")
	if explicit != "" {
		err := t.enforcer.Assert(invariant.RoutingConsistency, invariant.Params{
			ConversationID: explicit,
			Mode:           spec.Scope,
			ProjectID:      spec.ProjectID,
			ContextID:      optString(req, "context_id"),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	conv, err := t.store.CreateConversation(spec, explicit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create conversation: %v", err)), nil
	}
	return jsonResult(conv)
}

// ─── ConvArchiveTool ─────────────────────────────────────────────────────────

// ConvArchiveTool handles the conv_archive MCP tool.
type ConvArchiveTool struct {
	store *chat.Store
}

// NewConvArchiveTool creates a ConvArchiveTool.
func NewConvArchiveTool(store *chat.Store) *ConvArchiveTool {
	return &ConvArchiveTool{store: store}
}

// Definition returns the MCP tool definition for conv_archive.
func (t *ConvArchiveTool) Definition() mcp.Tool {
	return mcp.NewTool("conv_archive",
		mcp.WithDescription("Archive a conversation (mark inactive), or restore it with archived=false."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithBoolean("archived", mcp.Description("true to archive (default), false to restore")),
	)
}

// Handle processes the conv_archive tool call.
func (t *ConvArchiveTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("conversation_id", "")
	if id == "" {
		return mcp.NewToolResultError("'conversation_id' is required"), nil
	}
	archived := boolArg(req, "archived", true)

	var ok bool
	if archived {
		ok = t.store.ArchiveConversation(id)
	} else {
		ok = t.store.UnarchiveConversation(id)
	}
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("conversation %q not found", id)), nil
	}
	if archived {
		return mcp.NewToolResultText(fmt.Sprintf("Conversation %s archived", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Conversation %s restored", id)), nil
}

// ─── ConvDeleteTool ──────────────────────────────────────────────────────────

// ConvDeleteTool handles the conv_delete MCP tool.
type ConvDeleteTool struct {
	store *chat.Store
}

// NewConvDeleteTool creates a ConvDeleteTool.
func NewConvDeleteTool(store *chat.Store) *ConvDeleteTool {
	return &ConvDeleteTool{store: store}
}

// Definition returns the MCP tool definition for conv_delete.
func (t *ConvDeleteTool) Definition() mcp.Tool {
	return mcp.NewTool("conv_delete",
		mcp.WithDescription("Delete a conversation with all of its messages, memory entries and typing indicators."),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id")),
	)
}

// Handle processes the conv_delete tool call.
func (t *ConvDeleteTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("conversation_id", "")
	if id == "" {
		return mcp.NewToolResultError("'conversation_id' is required"), nil
	}
	if !t.store.DeleteConversation(id) {
		return mcp.NewToolResultError(fmt.Sprintf("conversation %q not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Conversation %s deleted", id)), nil
}

// isNotFound reports store lookups that failed on a missing record.
func isNotFound(err error) bool {
	return errors.Is(err, chat.ErrNotFound)
}
