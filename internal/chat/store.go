// Package chat implements the in-process conversation store.
//
// The Store owns conversations, their messages, their memory entries and
// typing indicators for the lifetime of the process. All collections are
// keyed by id and guarded by a single read/write lock: mutators take the
// write lock for their whole duration, so a cascading delete is never
// observed half-done by a reader.
package chat

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/HendryAvila/huddle/internal/convid"
)

// Errors returned by the store.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
)

// ─── Config ──────────────────────────────────────────────────────────────────

// Config holds store configuration.
type Config struct {
	// DefaultPageSize applies when a query sets Page but not Limit.
	DefaultPageSize int
	// MaxContentLength truncates memory content; 0 disables truncation.
	MaxContentLength int
	// TypingTTL expires typing indicators; 0 keeps them until cleared.
	TypingTTL time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		DefaultPageSize:  50,
		MaxContentLength: 4000,
		TypingTTL:        10 * time.Second,
	}
}

// Option customizes a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces the uuid-based id generator.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// ─── Store ───────────────────────────────────────────────────────────────────

// Store is the in-memory conversation, message and memory store.
type Store struct {
	mu  sync.RWMutex
	cfg Config

	conversations map[string]*Conversation
	messages      map[string]*Message
	byConv        map[string][]string // conversation id → message ids, insertion order
	memories      map[string][]*MemoryEntry
	typing        map[string]map[string]TypingIndicator
	projects      map[string]struct{}
	seq           int64

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// New creates an empty Store. A non-positive DefaultPageSize falls back to
// the default.
func New(cfg Config, opts ...Option) *Store {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultConfig().DefaultPageSize
	}
	s := &Store{
		cfg:           cfg,
		conversations: make(map[string]*Conversation),
		messages:      make(map[string]*Message),
		byConv:        make(map[string][]string),
		memories:      make(map[string][]*MemoryEntry),
		typing:        make(map[string]map[string]TypingIndicator),
		projects:      make(map[string]struct{}),
		now:           time.Now,
		newID:         func() string { return uuid.New().String() },
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "chat-store")
	return s
}

func (s *Store) nextSeq() int64 {
	s.seq++
	return s.seq
}

// ─── Projects ────────────────────────────────────────────────────────────────

// RegisterProject records a project id as known. It is idempotent.
func (s *Store) RegisterProject(projectID string) error {
	if projectID == "" {
		return fmt.Errorf("chat: register project: empty id: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[projectID] = struct{}{}
	return nil
}

// HasProject reports whether the project id is known. It makes the store a
// convid.ProjectSet.
func (s *Store) HasProject(projectID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.projects[projectID]
	return ok
}

// Projects returns the known project ids, sorted.
func (s *Store) Projects() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.projectListLocked()
}

func (s *Store) projectListLocked() []string {
	out := make([]string, 0, len(s.projects))
	for p := range s.projects {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// BootstrapProject registers the project and creates its canonical
// project-scoped conversation. Safe to call repeatedly.
func (s *Store) BootstrapProject(projectID string) (*Conversation, error) {
	return s.CreateConversation(ConversationSpec{Scope: convid.ScopeProject, ProjectID: projectID}, "")
}

// ─── Conversations ───────────────────────────────────────────────────────────

// CreateConversation creates a conversation, or returns the existing one when
// the id is already stored. The id is explicitID when given, otherwise the
// canonical id built from spec. The result is a copy.
func (s *Store) CreateConversation(spec ConversationSpec, explicitID string) (*Conversation, error) {
	if err := validateStruct(spec); err != nil {
		return nil, fmt.Errorf("chat: create conversation: %w", err)
	}
	cid, err := convid.Build(spec.Scope, spec.ProjectID, spec.ContextID)
	if err != nil {
		return nil, fmt.Errorf("chat: create conversation: %w: %w", ErrInvalidArgument, err)
	}
	id := explicitID
	if id == "" {
		id = cid.String()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.conversations[id]; ok {
		return existing.clone(), nil
	}

	now := s.now()
	conv := &Conversation{
		ID:        id,
		ProjectID: spec.ProjectID,
		Type:      spec.Scope,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tid := cid.TeamID(); tid != "" {
		conv.TeamID = &tid
	}
	if aid := cid.AgentID(); aid != "" {
		conv.AgentID = &aid
	}
	s.conversations[id] = conv
	s.projects[spec.ProjectID] = struct{}{}

	s.logger.Debug("conversation created", "conversation_id", id, "project_id", spec.ProjectID, "type", string(spec.Scope))
	return conv.clone(), nil
}

// GetConversation returns a copy of the conversation with the given id.
func (s *Store) GetConversation(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("chat: conversation %q: %w", id, ErrNotFound)
	}
	return conv.clone(), nil
}

// ConversationExists reports whether the id is stored. It makes the store
// an invariant.ConversationLookup.
func (s *Store) ConversationExists(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.conversations[id]
	return ok
}

// ListConversations returns copies of the conversations matching f, oldest
// first.
func (s *Store) ListConversations(f ConversationFilter) []*Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Conversation
	for _, c := range s.conversations {
		if f.ProjectID != "" && c.ProjectID != f.ProjectID {
			continue
		}
		if f.Scope != "" && c.Type != f.Scope {
			continue
		}
		if f.ActiveOnly && !c.IsActive {
			continue
		}
		out = append(out, c.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// clone deep-copies c so callers never share memory with the store.
func (c *Conversation) clone() *Conversation {
	cp := *c
	if c.TeamID != nil {
		tid := *c.TeamID
		cp.TeamID = &tid
	}
	if c.AgentID != nil {
		aid := *c.AgentID
		cp.AgentID = &aid
	}
	return &cp
}

// ArchiveConversation marks the conversation inactive. It returns false if
// the conversation does not exist.
func (s *Store) ArchiveConversation(id string) bool {
	return s.setActive(id, false)
}

// UnarchiveConversation marks the conversation active again. It returns false
// if the conversation does not exist.
func (s *Store) UnarchiveConversation(id string) bool {
	return s.setActive(id, true)
}

func (s *Store) setActive(id string, active bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.conversations[id]
	if !ok {
		return false
	}
	conv.IsActive = active
	conv.UpdatedAt = s.now()
	return true
}

// DeleteConversation removes the conversation together with its messages,
// memory entries and typing indicators. It returns false if the conversation
// does not exist.
func (s *Store) DeleteConversation(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[id]; !ok {
		return false
	}

	msgIDs := s.byConv[id]
	for _, mid := range msgIDs {
		delete(s.messages, mid)
	}
	memCount := len(s.memories[id])

	delete(s.byConv, id)
	delete(s.memories, id)
	delete(s.typing, id)
	delete(s.conversations, id)

	s.logger.Info("conversation deleted",
		"conversation_id", id,
		"messages", len(msgIDs),
		"memories", memCount,
	)
	return true
}

// ─── Stats ───────────────────────────────────────────────────────────────────

// Stats returns aggregate counts.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		TotalConversations: len(s.conversations),
		TotalMessages:      len(s.messages),
		Projects:           s.projectListLocked(),
	}
	for _, c := range s.conversations {
		if c.IsActive {
			st.ActiveConversations++
		}
	}
	for _, bucket := range s.memories {
		st.TotalMemoryEntries += len(bucket)
	}
	return st
}
