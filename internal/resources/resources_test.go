package resources

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HendryAvila/huddle/internal/chat"
)

func readText(t *testing.T, contents []mcp.ResourceContents) string {
	t.Helper()
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	return tc.Text
}

func TestHandleStats(t *testing.T) {
	store := chat.New(chat.DefaultConfig())
	_, err := store.BootstrapProject("acme")
	require.NoError(t, err)
	h := NewHandler(store)
	assert.Equal(t, StatsURI, h.StatsResource().URI)

	req := mcp.ReadResourceRequest{}
	req.Params.URI = StatsURI
	contents, err := h.HandleStats(context.Background(), req)
	require.NoError(t, err)

	var st chat.Stats
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents)), &st))
	assert.Equal(t, 1, st.TotalConversations)
	assert.Equal(t, []string{"acme"}, st.Projects)
}

func TestHandleConversations_ActiveOnly(t *testing.T) {
	store := chat.New(chat.DefaultConfig())
	_, err := store.BootstrapProject("acme")
	require.NoError(t, err)
	_, err = store.BootstrapProject("globex")
	require.NoError(t, err)
	require.True(t, store.ArchiveConversation("project-globex"))

	req := mcp.ReadResourceRequest{}
	req.Params.URI = ConversationsURI
	contents, err := NewHandler(store).HandleConversations(context.Background(), req)
	require.NoError(t, err)

	var convs []chat.Conversation
	require.NoError(t, json.Unmarshal([]byte(readText(t, contents)), &convs))
	require.Len(t, convs, 1)
	assert.Equal(t, "project-acme", convs[0].ID)
}
