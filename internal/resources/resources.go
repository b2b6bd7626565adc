// Package resources implements MCP resource handlers over the conversation
// store.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (huddle://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/huddle/internal/chat"
)

// Resource URIs.
const (
	StatsURI         = "huddle://stats"
	ConversationsURI = "huddle://conversations"
)

// Handler manages huddle resource endpoints.
type Handler struct {
	store *chat.Store
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(store *chat.Store) *Handler {
	return &Handler{store: store}
}

// StatsResource returns the MCP resource definition for store statistics.
func (h *Handler) StatsResource() mcp.Resource {
	return mcp.NewResource(
		StatsURI,
		"Huddle Store Statistics",
		mcp.WithResourceDescription("Conversation, message and memory counts and the known projects"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStats returns the store statistics as JSON.
func (h *Handler) HandleStats(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonContents(req.Params.URI, h.store.Stats())
}

// ConversationsResource returns the MCP resource definition for the active
// conversation list.
func (h *Handler) ConversationsResource() mcp.Resource {
	return mcp.NewResource(
		ConversationsURI,
		"Active Conversations",
		mcp.WithResourceDescription("Every active project, team and agent conversation, oldest first"),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleConversations returns the active conversations as JSON.
func (h *Handler) HandleConversations(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	convs := h.store.ListConversations(chat.ConversationFilter{ActiveOnly: true})
	out := make([]chat.Conversation, len(convs))
	for i, c := range convs {
		out[i] = *c
	}
	return jsonContents(req.Params.URI, out)
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
