package chattools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/convid"
	"github.com/HendryAvila/huddle/internal/invariant"
)

// ─── MsgSendTool ─────────────────────────────────────────────────────────────

// MsgSendTool handles the msg_send MCP tool. It is the message-creation
// path, so invariants are asserted here before the store is touched.
type MsgSendTool struct {
	store    *chat.Store
	enforcer *invariant.Enforcer
}

// NewMsgSendTool creates a MsgSendTool.
func NewMsgSendTool(store *chat.Store, enforcer *invariant.Enforcer) *MsgSendTool {
	return &MsgSendTool{store: store, enforcer: enforcer}
}

// Definition returns the MCP tool definition for msg_send.
func (t *MsgSendTool) Definition() mcp.Tool {
	return mcp.NewTool("msg_send",
		mcp.WithDescription(
			"Post a message to a conversation. System messages must not carry an agent id, "+
				"and the conversation must exist. Optionally pass the routing scope/project/context "+
				"to verify the conversation id matches them.",
		),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Target conversation id")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Message text")),
		mcp.WithString("message_type",
			mcp.Required(),
			mcp.Enum(chat.MessageTypeValues()...),
			mcp.Description("user, agent or system"),
		),
		mcp.WithString("user_id", mcp.Description("Sending user id")),
		mcp.WithString("agent_id", mcp.Description("Sending agent id")),
		mcp.WithString("parent_message_id", mcp.Description("Message being replied to")),
		mcp.WithString("scope",
			mcp.Enum(scopeEnum()...),
			mcp.Description("Routing scope to check the conversation id against"),
		),
		mcp.WithString("project_id", mcp.Description("Routing project id")),
		mcp.WithString("context_id", mcp.Description("Routing team or agent id")),
	)
}

// Handle processes the msg_send tool call.
func (t *MsgSendTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spec := chat.MessageSpec{
		ConversationID:  req.GetString("conversation_id", ""),
		UserID:          optString(req, "user_id"),
		AgentID:         optString(req, "agent_id"),
		Content:         req.GetString("content", ""),
		MessageType:     chat.MessageType(req.GetString("message_type", "")),
		ParentMessageID: optString(req, "parent_message_id"),
	}

	params := invariant.Params{
		AgentID:        spec.AgentID,
		MessageType:    string(spec.MessageType),
		ConversationID: spec.ConversationID,
	}
	checks := []invariant.Kind{invariant.NoFakeSystemAgent, invariant.ConversationExists}
	if scope := req.GetString("scope", ""); scope != "" {
		params.Mode = convid.Scope(scope)
		params.ProjectID = req.GetString("project_id", "")
		params.ContextID = optString(req, "context_id")
		checks = append(checks, invariant.RoutingConsistency)
	}
	for _, kind := range checks {
		if err := t.enforcer.Assert(kind, params); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	msg, err := t.store.CreateMessage(spec)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send message: %v", err)), nil
	}
	return jsonResult(msg)
}

// ─── MsgListTool ─────────────────────────────────────────────────────────────

// MsgListTool handles the msg_list MCP tool.
type MsgListTool struct {
	store *chat.Store
}

// NewMsgListTool creates a MsgListTool.
func NewMsgListTool(store *chat.Store) *MsgListTool {
	return &MsgListTool{store: store}
}

// Definition returns the MCP tool definition for msg_list.
func (t *MsgListTool) Definition() mcp.Tool {
	return mcp.NewTool("msg_list",
		mcp.WithDescription(
			"List a conversation's messages in chronological order. Page 1 holds the most recent "+
				"messages; higher pages go back in time. Pass thread_root_id instead to read one thread.",
		),
		mcp.WithString("conversation_id", mcp.Description("Conversation id")),
		mcp.WithString("thread_root_id", mcp.Description("Return the thread rooted at this message instead")),
		mcp.WithNumber("page", mcp.Description("1-based page number")),
		mcp.WithNumber("limit", mcp.Description("Messages per page")),
		mcp.WithString("before", mcp.Description("Only messages created before this RFC 3339 time")),
		mcp.WithString("after", mcp.Description("Only messages created after this RFC 3339 time")),
		mcp.WithString("message_type",
			mcp.Enum(chat.MessageTypeValues()...),
			mcp.Description("Only messages of this type"),
		),
	)
}

// Handle processes the msg_list tool call.
func (t *MsgListTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if root := req.GetString("thread_root_id", ""); root != "" {
		thread, err := t.store.GetThread(root)
		if err != nil {
			if isNotFound(err) {
				return mcp.NewToolResultError(fmt.Sprintf("message %q not found", root)), nil
			}
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(thread)
	}

	id := req.GetString("conversation_id", "")
	if id == "" {
		return mcp.NewToolResultError("'conversation_id' or 'thread_root_id' is required"), nil
	}
	before, err := timeArg(req, "before")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	after, err := timeArg(req, "after")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	msgs := t.store.GetMessages(id, chat.MessageQuery{
		Page:        intArg(req, "page", 0),
		Limit:       intArg(req, "limit", 0),
		Before:      before,
		After:       after,
		MessageType: chat.MessageType(req.GetString("message_type", "")),
	})
	if len(msgs) == 0 {
		return mcp.NewToolResultText("No messages found."), nil
	}
	return jsonResult(msgs)
}

// ─── TypingTool ──────────────────────────────────────────────────────────────

// TypingTool handles the typing MCP tool.
type TypingTool struct {
	store *chat.Store
}

// NewTypingTool creates a TypingTool.
func NewTypingTool(store *chat.Store) *TypingTool {
	return &TypingTool{store: store}
}

// Definition returns the MCP tool definition for typing.
func (t *TypingTool) Definition() mcp.Tool {
	return mcp.NewTool("typing",
		mcp.WithDescription("Start or stop a typing indicator, or list who is typing in a conversation."),
		mcp.WithString("action",
			mcp.Required(),
			mcp.Enum("start", "stop", "list"),
			mcp.Description("start, stop or list"),
		),
		mcp.WithString("conversation_id", mcp.Required(), mcp.Description("Conversation id")),
		mcp.WithString("participant_id", mcp.Description("User or agent id (start, stop)")),
	)
}

// Handle processes the typing tool call.
func (t *TypingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	convID := req.GetString("conversation_id", "")
	if convID == "" {
		return mcp.NewToolResultError("'conversation_id' is required"), nil
	}
	action := req.GetString("action", "")
	participant := req.GetString("participant_id", "")
	if (action == "start" || action == "stop") && participant == "" {
		return mcp.NewToolResultError("'participant_id' is required"), nil
	}

	switch action {
	case "start":
		if err := t.store.SetTyping(convID, participant); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s is typing in %s", participant, convID)), nil
	case "stop":
		t.store.ClearTyping(convID, participant)
		return mcp.NewToolResultText(fmt.Sprintf("%s stopped typing in %s", participant, convID)), nil
	case "list":
		typing := t.store.Typing(convID)
		if len(typing) == 0 {
			return mcp.NewToolResultText("Nobody is typing."), nil
		}
		ids := make([]string, len(typing))
		for i, ti := range typing {
			ids[i] = ti.ParticipantID
		}
		return mcp.NewToolResultText("Typing: " + strings.Join(ids, ", ")), nil
	default:
		return mcp.NewToolResultError("'action' must be start, stop or list"), nil
	}
}
