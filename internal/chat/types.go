package chat

import (
	"time"

	"github.com/HendryAvila/huddle/internal/convid"
)

// ─── Enums ──────────────────────────────────────────────────────────────────

// MessageType classifies who produced a message.
type MessageType string

// Message types.
const (
	MessageUser   MessageType = "user"
	MessageAgent  MessageType = "agent"
	MessageSystem MessageType = "system"
)

// MemoryType classifies a memory entry.
type MemoryType string

// Memory types.
const (
	MemoryContext   MemoryType = "context"
	MemorySummary   MemoryType = "summary"
	MemoryKeyPoints MemoryType = "key_points"
	MemoryDecisions MemoryType = "decisions"
)

// MemoryTypeValues returns the enum values for tool definitions.
func MemoryTypeValues() []string {
	return []string{string(MemoryContext), string(MemorySummary), string(MemoryKeyPoints), string(MemoryDecisions)}
}

// MessageTypeValues returns the enum values for tool definitions.
func MessageTypeValues() []string {
	return []string{string(MessageUser), string(MessageAgent), string(MessageSystem)}
}

// Importance bounds for memory entries.
const (
	MinImportance     = 1
	MaxImportance     = 10
	DefaultImportance = 5
)

// ─── Entities ───────────────────────────────────────────────────────────────

// Conversation is identified by its canonical conversation id.
type Conversation struct {
	ID        string       `json:"id"`
	ProjectID string       `json:"project_id"`
	TeamID    *string      `json:"team_id,omitempty"`
	AgentID   *string      `json:"agent_id,omitempty"`
	Type      convid.Scope `json:"type"`
	IsActive  bool         `json:"is_active"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// Message belongs to exactly one conversation.
type Message struct {
	ID              string      `json:"id"`
	ConversationID  string      `json:"conversation_id"`
	UserID          *string     `json:"user_id,omitempty"`
	AgentID         *string     `json:"agent_id,omitempty"`
	Content         string      `json:"content"`
	MessageType     MessageType `json:"message_type"`
	ParentMessageID *string     `json:"parent_message_id,omitempty"`
	ThreadRootID    *string     `json:"thread_root_id,omitempty"`
	ThreadDepth     int         `json:"thread_depth"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
	// Seq is the store-wide insertion order, used to break timestamp ties.
	Seq int64 `json:"seq"`
}

// MemoryEntry is a scored, typed fact attached to a conversation.
type MemoryEntry struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	MemoryType     MemoryType `json:"memory_type"`
	Content        string     `json:"content"`
	Importance     int        `json:"importance"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Seq            int64      `json:"seq"`
}

// TypingIndicator marks a participant as currently typing in a conversation.
type TypingIndicator struct {
	ConversationID string    `json:"conversation_id"`
	ParticipantID  string    `json:"participant_id"`
	StartedAt      time.Time `json:"started_at"`
}

// ─── Inputs ─────────────────────────────────────────────────────────────────

// ConversationSpec holds the input for creating a conversation.
type ConversationSpec struct {
	Scope     convid.Scope `json:"scope" validate:"required,oneof=project team agent"`
	ProjectID string       `json:"project_id" validate:"required"`
	// ContextID is the team id or agent id; empty for project scope.
	ContextID string `json:"context_id,omitempty" validate:"required_unless=Scope project,excluded_if=Scope project"`
}

// MessageSpec holds the input for creating a message.
type MessageSpec struct {
	ConversationID  string      `json:"conversation_id" validate:"required"`
	UserID          *string     `json:"user_id,omitempty"`
	AgentID         *string     `json:"agent_id,omitempty"`
	Content         string      `json:"content" validate:"required"`
	MessageType     MessageType `json:"message_type" validate:"required,oneof=user agent system"`
	ParentMessageID *string     `json:"parent_message_id,omitempty"`
}

// memorySpec is validated inside AddMemory.
type memorySpec struct {
	ConversationID string     `validate:"required"`
	MemoryType     MemoryType `validate:"required,oneof=context summary key_points decisions"`
	Content        string     `validate:"required"`
	Importance     int        `validate:"min=1,max=10"`
}

// MessageQuery filters and paginates GetMessages.
// Page is 1-based. A zero Limit with a zero Page returns everything.
type MessageQuery struct {
	Page        int         `json:"page,omitempty"`
	Limit       int         `json:"limit,omitempty"`
	Before      *time.Time  `json:"before,omitempty"`
	After       *time.Time  `json:"after,omitempty"`
	MessageType MessageType `json:"message_type,omitempty"`
}

// ConversationFilter narrows ListConversations.
type ConversationFilter struct {
	ProjectID  string
	Scope      convid.Scope
	ActiveOnly bool
}

// Stats holds aggregate store statistics.
type Stats struct {
	TotalConversations  int      `json:"total_conversations"`
	ActiveConversations int      `json:"active_conversations"`
	TotalMessages       int      `json:"total_messages"`
	TotalMemoryEntries  int      `json:"total_memory_entries"`
	Projects            []string `json:"projects"`
}

// ExportData is the full serializable dump of a store.
type ExportData struct {
	Version       string         `json:"version"`
	ExportedAt    time.Time      `json:"exported_at"`
	Projects      []string       `json:"projects"`
	Conversations []Conversation `json:"conversations"`
	Messages      []Message      `json:"messages"`
	Memories      []MemoryEntry  `json:"memories"`
}

// ImportResult holds counts of imported records.
type ImportResult struct {
	ConversationsImported int `json:"conversations_imported"`
	MessagesImported      int `json:"messages_imported"`
	MemoriesImported      int `json:"memories_imported"`
}
