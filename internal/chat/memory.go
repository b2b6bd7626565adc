package chat

import (
	"fmt"
	"sort"
	"unicode/utf8"
)

// AddMemory appends a memory entry to a conversation's bucket. Entries are
// never updated; they disappear only when the conversation is deleted.
// An importance of 0 means DefaultImportance.
func (s *Store) AddMemory(conversationID string, memoryType MemoryType, content string, importance int) (MemoryEntry, error) {
	if importance == 0 {
		importance = DefaultImportance
	}
	spec := memorySpec{
		ConversationID: conversationID,
		MemoryType:     memoryType,
		Content:        content,
		Importance:     importance,
	}
	if err := validateStruct(spec); err != nil {
		return MemoryEntry{}, fmt.Errorf("chat: add memory: %w", err)
	}
	content = truncate(content, s.cfg.MaxContentLength)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	entry := &MemoryEntry{
		ID:             s.newID(),
		ConversationID: conversationID,
		MemoryType:     memoryType,
		Content:        content,
		Importance:     importance,
		CreatedAt:      now,
		UpdatedAt:      now,
		Seq:            s.nextSeq(),
	}
	s.memories[conversationID] = append(s.memories[conversationID], entry)
	return *entry, nil
}

// Memories returns the entries of one conversation in insertion order.
func (s *Store) Memories(conversationID string) []MemoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyEntries(s.memories[conversationID])
}

// MemoryBuckets returns a snapshot of every non-empty memory bucket keyed by
// conversation id.
func (s *Store) MemoryBuckets() map[string][]MemoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]MemoryEntry, len(s.memories))
	for id, bucket := range s.memories {
		if len(bucket) == 0 {
			continue
		}
		out[id] = copyEntries(bucket)
	}
	return out
}

// SortByImportance orders entries by importance, then newest first.
func SortByImportance(entries []MemoryEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.Importance != b.Importance {
			return a.Importance > b.Importance
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.Seq > b.Seq
	})
}

func copyEntries(in []*MemoryEntry) []MemoryEntry {
	out := make([]MemoryEntry, len(in))
	for i, e := range in {
		out[i] = *e
	}
	return out
}

// truncate caps s at limit bytes, backing off to a rune boundary; limit <= 0
// disables it.
func truncate(s string, limit int) string {
	if limit <= 0 || len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "... [truncated]"
}
