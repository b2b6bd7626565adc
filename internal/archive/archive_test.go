package archive_test

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/huddle/internal/archive"
	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/convid"
)

func newTestStore(t *testing.T) *chat.Store {
	t.Helper()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := 0
	return chat.New(chat.DefaultConfig(),
		chat.WithClock(func() time.Time {
			now = now.Add(time.Second)
			return now
		}),
		chat.WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("id-%03d", n)
		}),
	)
}

func seed(t *testing.T, s *chat.Store) {
	t.Helper()
	_, err := s.BootstrapProject("saas-startup")
	require.NoError(t, err)
	team, err := s.CreateConversation(chat.ConversationSpec{Scope: convid.ScopeTeam, ProjectID: "saas-startup", ContextID: "design"}, "")
	require.NoError(t, err)

	agent := "sam"
	root, err := s.CreateMessage(chat.MessageSpec{ConversationID: team.ID, AgentID: &agent, Content: "hi", MessageType: chat.MessageAgent})
	require.NoError(t, err)
	_, err = s.CreateMessage(chat.MessageSpec{ConversationID: team.ID, Content: "reply", MessageType: chat.MessageUser, ParentMessageID: &root.ID})
	require.NoError(t, err)

	_, err = s.AddMemory(team.ID, chat.MemoryDecisions, "ship friday", 8)
	require.NoError(t, err)
	require.True(t, s.ArchiveConversation(team.ID))
}

func TestSaveLoad_PreservesSnapshot(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seed(t, s)
	want := s.Export()

	path := filepath.Join(t.TempDir(), "nested", "huddle.db")
	require.NoError(t, archive.Save(ctx, path, want))

	got, err := archive.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSave_ReplacesPreviousSnapshot(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "huddle.db")

	s := newTestStore(t)
	seed(t, s)
	require.NoError(t, archive.Save(ctx, path, s.Export()))

	empty := newTestStore(t)
	_, err := empty.BootstrapProject("acme")
	require.NoError(t, err)
	require.NoError(t, archive.Save(ctx, path, empty.Export()))

	got, err := archive.Load(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []string{"acme"}, got.Projects)
	assert.Len(t, got.Conversations, 1)
	assert.Empty(t, got.Messages)
	assert.Empty(t, got.Memories)
}

func TestLoad_IntoFreshStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "huddle.db")
	s := newTestStore(t)
	seed(t, s)
	require.NoError(t, archive.Save(ctx, path, s.Export()))

	data, err := archive.Load(ctx, path)
	require.NoError(t, err)

	fresh := chat.New(chat.DefaultConfig())
	res, err := fresh.Import(data)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ConversationsImported)
	assert.Equal(t, 2, res.MessagesImported)
	assert.Equal(t, 1, res.MemoriesImported)
	assert.True(t, fresh.HasProject("saas-startup"))

	msgs := fresh.GetMessages("team-saas-startup-design", chat.MessageQuery{})
	require.Len(t, msgs, 2)
	assert.Equal(t, 1, msgs[1].ThreadDepth)
}

func TestLoad_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	_, err := archive.Load(ctx, filepath.Join(dir, "missing.db"))
	assert.Error(t, err)

	assert.Error(t, archive.Save(ctx, filepath.Join(dir, "x.db"), nil))
}
