package chat

import (
	"fmt"
	"sort"
)

// CreateMessage stores a new message with a fresh id and timestamps.
//
// No invariant checks run here; callers assert no_fake_system_agent and
// conversation_exists beforehand. A ParentMessageID must name a message of
// the same conversation; the reply inherits the parent's thread root.
func (s *Store) CreateMessage(spec MessageSpec) (*Message, error) {
	if err := validateStruct(spec); err != nil {
		return nil, fmt.Errorf("chat: create message: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	msg := &Message{
		ID:             s.newID(),
		ConversationID: spec.ConversationID,
		UserID:         cloneString(spec.UserID),
		AgentID:        cloneString(spec.AgentID),
		Content:        spec.Content,
		MessageType:    spec.MessageType,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if spec.ParentMessageID != nil && *spec.ParentMessageID != "" {
		parent, ok := s.messages[*spec.ParentMessageID]
		if !ok || parent.ConversationID != spec.ConversationID {
			return nil, fmt.Errorf("chat: create message: parent %q not in conversation %q: %w",
				*spec.ParentMessageID, spec.ConversationID, ErrInvalidArgument)
		}
		root := parent.ID
		if parent.ThreadRootID != nil {
			root = *parent.ThreadRootID
		}
		msg.ParentMessageID = cloneString(spec.ParentMessageID)
		msg.ThreadRootID = &root
		msg.ThreadDepth = parent.ThreadDepth + 1
	}

	msg.Seq = s.nextSeq()
	s.messages[msg.ID] = msg
	s.byConv[msg.ConversationID] = append(s.byConv[msg.ConversationID], msg.ID)
	if conv, ok := s.conversations[msg.ConversationID]; ok {
		conv.UpdatedAt = now
	}

	out := *msg
	return &out, nil
}

// GetMessages returns the conversation's messages in chronological order.
//
// Filters apply first; the result is then sorted newest first so that
// page 1 holds the most recent messages, windowed by Page/Limit, and
// finally reversed back to chronological order.
func (s *Store) GetMessages(conversationID string, q MessageQuery) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.byConv[conversationID]
	out := make([]Message, 0, len(ids))
	for _, id := range ids {
		m := s.messages[id]
		if q.MessageType != "" && m.MessageType != q.MessageType {
			continue
		}
		if q.Before != nil && !m.CreatedAt.Before(*q.Before) {
			continue
		}
		if q.After != nil && !m.CreatedAt.After(*q.After) {
			continue
		}
		out = append(out, *m)
	}

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].Seq > out[j].Seq
	})

	if q.Page > 0 || q.Limit > 0 {
		limit := q.Limit
		if limit <= 0 {
			limit = s.cfg.DefaultPageSize
		}
		page := max(q.Page, 1)
		// Bound page before multiplying so huge pages cannot overflow.
		if page-1 > len(out)/limit {
			return []Message{}
		}
		start := (page - 1) * limit
		if start >= len(out) {
			return []Message{}
		}
		end := min(start+limit, len(out))
		out = out[start:end]
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// GetMessage returns a single message by id.
func (s *Store) GetMessage(id string) (*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, fmt.Errorf("chat: message %q: %w", id, ErrNotFound)
	}
	out := *m
	return &out, nil
}

// GetThread returns the root message followed by every reply in its thread,
// in chronological order.
func (s *Store) GetThread(rootID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	root, ok := s.messages[rootID]
	if !ok {
		return nil, fmt.Errorf("chat: thread root %q: %w", rootID, ErrNotFound)
	}
	out := []Message{*root}
	for _, id := range s.byConv[root.ConversationID] {
		m := s.messages[id]
		if m.ThreadRootID != nil && *m.ThreadRootID == rootID {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out[1:], func(i, j int) bool {
		a, b := out[1+i], out[1+j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.Seq < b.Seq
	})
	return out, nil
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
