package chat

import (
	"fmt"
	"sort"
)

// ExportVersion is the schema version written by Export.
const ExportVersion = "1"

// Export dumps the whole store. Conversations are ordered by creation time,
// messages and memories by insertion order.
func (s *Store) Export() *ExportData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: s.now(),
		Projects:   s.projectListLocked(),
	}
	for _, c := range s.conversations {
		data.Conversations = append(data.Conversations, *c.clone())
	}
	sort.Slice(data.Conversations, func(i, j int) bool {
		a, b := data.Conversations[i], data.Conversations[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	for _, m := range s.messages {
		data.Messages = append(data.Messages, *m)
	}
	sort.Slice(data.Messages, func(i, j int) bool { return data.Messages[i].Seq < data.Messages[j].Seq })
	for _, bucket := range s.memories {
		for _, e := range bucket {
			data.Memories = append(data.Memories, *e)
		}
	}
	sort.Slice(data.Memories, func(i, j int) bool { return data.Memories[i].Seq < data.Memories[j].Seq })
	return data
}

// Import loads an export into the store. Conversations, messages and memory
// entries whose ids already exist are skipped, so importing the same export
// twice is a no-op. Imported records keep their ids and timestamps but get
// fresh sequence numbers.
func (s *Store) Import(data *ExportData) (*ImportResult, error) {
	if data == nil {
		return nil, fmt.Errorf("chat: import: nil data: %w", ErrInvalidArgument)
	}
	if data.Version != ExportVersion {
		return nil, fmt.Errorf("chat: import: unsupported version %q: %w", data.Version, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	res := &ImportResult{}
	for _, p := range data.Projects {
		if p != "" {
			s.projects[p] = struct{}{}
		}
	}
	for _, c := range data.Conversations {
		if _, exists := s.conversations[c.ID]; exists {
			continue
		}
		s.conversations[c.ID] = c.clone()
		s.projects[c.ProjectID] = struct{}{}
		res.ConversationsImported++
	}

	msgs := append([]Message(nil), data.Messages...)
	sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Seq < msgs[j].Seq })
	for _, m := range msgs {
		if _, exists := s.messages[m.ID]; exists {
			continue
		}
		msg := m
		msg.Seq = s.nextSeq()
		s.messages[m.ID] = &msg
		s.byConv[m.ConversationID] = append(s.byConv[m.ConversationID], m.ID)
		res.MessagesImported++
	}

	known := make(map[string]struct{})
	for _, bucket := range s.memories {
		for _, e := range bucket {
			known[e.ID] = struct{}{}
		}
	}
	mems := append([]MemoryEntry(nil), data.Memories...)
	sort.SliceStable(mems, func(i, j int) bool { return mems[i].Seq < mems[j].Seq })
	for _, e := range mems {
		if _, exists := known[e.ID]; exists {
			continue
		}
		known[e.ID] = struct{}{}
		entry := e
		entry.Seq = s.nextSeq()
		s.memories[e.ConversationID] = append(s.memories[e.ConversationID], &entry)
		res.MemoriesImported++
	}

	s.logger.Info("store imported",
		"conversations", res.ConversationsImported,
		"messages", res.MessagesImported,
		"memories", res.MemoriesImported,
	)
	return res, nil
}
