package chat

import (
	"fmt"
	"sort"
)

// SetTyping marks participantID as typing in the conversation.
func (s *Store) SetTyping(conversationID, participantID string) error {
	if participantID == "" {
		return fmt.Errorf("chat: set typing: empty participant: %w", ErrInvalidArgument)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversationID]; !ok {
		return fmt.Errorf("chat: set typing: conversation %q: %w", conversationID, ErrNotFound)
	}
	byParticipant, ok := s.typing[conversationID]
	if !ok {
		byParticipant = make(map[string]TypingIndicator)
		s.typing[conversationID] = byParticipant
	}
	byParticipant[participantID] = TypingIndicator{
		ConversationID: conversationID,
		ParticipantID:  participantID,
		StartedAt:      s.now(),
	}
	return nil
}

// ClearTyping removes a participant's typing indicator, if any.
func (s *Store) ClearTyping(conversationID, participantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byParticipant, ok := s.typing[conversationID]
	if !ok {
		return
	}
	delete(byParticipant, participantID)
	if len(byParticipant) == 0 {
		delete(s.typing, conversationID)
	}
}

// Typing returns the live typing indicators of a conversation, oldest first.
// Indicators older than TypingTTL are skipped.
func (s *Store) Typing(conversationID string) []TypingIndicator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var out []TypingIndicator
	for _, ind := range s.typing[conversationID] {
		if s.cfg.TypingTTL > 0 && now.Sub(ind.StartedAt) > s.cfg.TypingTTL {
			continue
		}
		out = append(out, ind)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ParticipantID < out[j].ParticipantID
	})
	return out
}
