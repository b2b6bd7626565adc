package chattools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/huddle/internal/archive"
	"github.com/HendryAvila/huddle/internal/chat"
)

// ─── ChatStatsTool ───────────────────────────────────────────────────────────

// ChatStatsTool handles the chat_stats MCP tool.
type ChatStatsTool struct {
	store *chat.Store
}

// NewChatStatsTool creates a ChatStatsTool.
func NewChatStatsTool(store *chat.Store) *ChatStatsTool {
	return &ChatStatsTool{store: store}
}

// Definition returns the MCP tool definition for chat_stats.
func (t *ChatStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("chat_stats",
		mcp.WithDescription("Show conversation, message and memory counts and the known projects."),
	)
}

// Handle processes the chat_stats tool call.
func (t *ChatStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(t.store.Stats())
}

// ─── ChatExportTool ──────────────────────────────────────────────────────────

// ChatExportTool handles the chat_export MCP tool: snapshotting the store
// to a SQLite archive.
type ChatExportTool struct {
	store       *chat.Store
	defaultPath string
}

// NewChatExportTool creates a ChatExportTool writing to defaultPath unless
// the call names another file.
func NewChatExportTool(store *chat.Store, defaultPath string) *ChatExportTool {
	return &ChatExportTool{store: store, defaultPath: defaultPath}
}

// Definition returns the MCP tool definition for chat_export.
func (t *ChatExportTool) Definition() mcp.Tool {
	return mcp.NewTool("chat_export",
		mcp.WithDescription("Write a snapshot of every conversation, message and memory entry to a SQLite archive."),
		mcp.WithString("path", mcp.Description("Archive file (default: the configured data directory)")),
	)
}

// Handle processes the chat_export tool call.
func (t *ChatExportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", t.defaultPath)
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}
	data := t.store.Export()
	if err := archive.Save(ctx, path, data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to export: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Exported %d conversations, %d messages, %d memory entries to %s",
		len(data.Conversations), len(data.Messages), len(data.Memories), path,
	)), nil
}

// ─── ChatImportTool ──────────────────────────────────────────────────────────

// ChatImportTool handles the chat_import MCP tool.
type ChatImportTool struct {
	store       *chat.Store
	defaultPath string
}

// NewChatImportTool creates a ChatImportTool.
func NewChatImportTool(store *chat.Store, defaultPath string) *ChatImportTool {
	return &ChatImportTool{store: store, defaultPath: defaultPath}
}

// Definition returns the MCP tool definition for chat_import.
func (t *ChatImportTool) Definition() mcp.Tool {
	return mcp.NewTool("chat_import",
		mcp.WithDescription(
			"Load a SQLite archive into the store. Conversations and messages that already exist are skipped.",
		),
		mcp.WithString("path", mcp.Description("Archive file (default: the configured data directory)")),
	)
}

// Handle processes the chat_import tool call.
func (t *ChatImportTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", t.defaultPath)
	if path == "" {
		return mcp.NewToolResultError("'path' is required"), nil
	}
	data, err := archive.Load(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read archive: %v", err)), nil
	}
	res, err := t.store.Import(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to import: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Imported %d conversations, %d messages, %d memory entries",
		res.ConversationsImported, res.MessagesImported, res.MemoriesImported,
	)), nil
}
