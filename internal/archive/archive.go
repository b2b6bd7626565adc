// Package archive writes store snapshots to a SQLite file and reads them
// back. A snapshot is an explicit export, not live persistence: the chat
// store never reads from it on its own.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/georgysavva/scany/v2/sqlscan"

	_ "modernc.org/sqlite"

	"github.com/HendryAvila/huddle/internal/chat"
	"github.com/HendryAvila/huddle/internal/convid"
)

// openDB is a package-level var to allow test injection.
var openDB = sql.Open

// ErrNoSnapshot is returned by Load when the file holds no snapshot.
var ErrNoSnapshot = errors.New("archive: no snapshot")

const schema = `
	CREATE TABLE IF NOT EXISTS meta (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY
	);
	CREATE TABLE IF NOT EXISTS conversations (
		id         TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		team_id    TEXT,
		agent_id   TEXT,
		type       TEXT NOT NULL,
		is_active  INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS messages (
		id                TEXT PRIMARY KEY,
		conversation_id   TEXT NOT NULL,
		user_id           TEXT,
		agent_id          TEXT,
		content           TEXT NOT NULL,
		message_type      TEXT NOT NULL,
		parent_message_id TEXT,
		thread_root_id    TEXT,
		thread_depth      INTEGER NOT NULL,
		created_at        INTEGER NOT NULL,
		updated_at        INTEGER NOT NULL,
		seq               INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS memories (
		id              TEXT PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		memory_type     TEXT NOT NULL,
		content         TEXT NOT NULL,
		importance      INTEGER NOT NULL,
		created_at      INTEGER NOT NULL,
		updated_at      INTEGER NOT NULL,
		seq             INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_messages_conv ON messages(conversation_id);
	CREATE INDEX IF NOT EXISTS idx_memories_conv ON memories(conversation_id);
`

// ─── Rows ────────────────────────────────────────────────────────────────────

// Timestamps are stored as unix nanoseconds so ordering ties survive.

type conversationRow struct {
	ID        string  `db:"id"`
	ProjectID string  `db:"project_id"`
	TeamID    *string `db:"team_id"`
	AgentID   *string `db:"agent_id"`
	Type      string  `db:"type"`
	IsActive  bool    `db:"is_active"`
	CreatedAt int64   `db:"created_at"`
	UpdatedAt int64   `db:"updated_at"`
}

type messageRow struct {
	ID              string  `db:"id"`
	ConversationID  string  `db:"conversation_id"`
	UserID          *string `db:"user_id"`
	AgentID         *string `db:"agent_id"`
	Content         string  `db:"content"`
	MessageType     string  `db:"message_type"`
	ParentMessageID *string `db:"parent_message_id"`
	ThreadRootID    *string `db:"thread_root_id"`
	ThreadDepth     int     `db:"thread_depth"`
	CreatedAt       int64   `db:"created_at"`
	UpdatedAt       int64   `db:"updated_at"`
	Seq             int64   `db:"seq"`
}

type memoryRow struct {
	ID             string `db:"id"`
	ConversationID string `db:"conversation_id"`
	MemoryType     string `db:"memory_type"`
	Content        string `db:"content"`
	Importance     int    `db:"importance"`
	CreatedAt      int64  `db:"created_at"`
	UpdatedAt      int64  `db:"updated_at"`
	Seq            int64  `db:"seq"`
}

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }

// ─── Save ────────────────────────────────────────────────────────────────────

// Save writes data to the SQLite file at path, replacing any previous
// snapshot in it. Parent directories are created as needed.
func Save(ctx context.Context, path string, data *chat.ExportData) error {
	if data == nil {
		return errors.New("archive: nil snapshot")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("archive: create dir: %w", err)
	}
	db, err := open(ctx, path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, table := range []string{"meta", "projects", "conversations", "messages", "memories"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("archive: clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"version":     data.Version,
		"exported_at": data.ExportedAt.UTC().Format(time.RFC3339Nano),
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO meta (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("archive: write meta: %w", err)
		}
	}
	for _, p := range data.Projects {
		if _, err := tx.ExecContext(ctx, `INSERT INTO projects (id) VALUES (?)`, p); err != nil {
			return fmt.Errorf("archive: write project %q: %w", p, err)
		}
	}
	for _, c := range data.Conversations {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO conversations (id, project_id, team_id, agent_id, type, is_active, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.ProjectID, c.TeamID, c.AgentID, string(c.Type), c.IsActive,
			c.CreatedAt.UnixNano(), c.UpdatedAt.UnixNano())
		if err != nil {
			return fmt.Errorf("archive: write conversation %q: %w", c.ID, err)
		}
	}
	for _, m := range data.Messages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO messages (id, conversation_id, user_id, agent_id, content, message_type,
			 parent_message_id, thread_root_id, thread_depth, created_at, updated_at, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.ID, m.ConversationID, m.UserID, m.AgentID, m.Content, string(m.MessageType),
			m.ParentMessageID, m.ThreadRootID, m.ThreadDepth,
			m.CreatedAt.UnixNano(), m.UpdatedAt.UnixNano(), m.Seq)
		if err != nil {
			return fmt.Errorf("archive: write message %q: %w", m.ID, err)
		}
	}
	for _, e := range data.Memories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO memories (id, conversation_id, memory_type, content, importance, created_at, updated_at, seq)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			e.ID, e.ConversationID, string(e.MemoryType), e.Content, e.Importance,
			e.CreatedAt.UnixNano(), e.UpdatedAt.UnixNano(), e.Seq)
		if err != nil {
			return fmt.Errorf("archive: write memory %q: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

// ─── Load ────────────────────────────────────────────────────────────────────

// Load reads the snapshot stored at path. Records come back in their
// original insertion order.
func Load(ctx context.Context, path string) (*chat.ExportData, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	db, err := open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var meta []struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}
	if err := sqlscan.Select(ctx, db, &meta, `SELECT key, value FROM meta`); err != nil {
		return nil, fmt.Errorf("archive: read meta: %w", err)
	}
	if len(meta) == 0 {
		return nil, ErrNoSnapshot
	}

	data := &chat.ExportData{}
	for _, kv := range meta {
		switch kv.Key {
		case "version":
			data.Version = kv.Value
		case "exported_at":
			t, err := time.Parse(time.RFC3339Nano, kv.Value)
			if err != nil {
				return nil, fmt.Errorf("archive: exported_at: %w", err)
			}
			data.ExportedAt = t
		}
	}

	if err := sqlscan.Select(ctx, db, &data.Projects, `SELECT id FROM projects ORDER BY id`); err != nil {
		return nil, fmt.Errorf("archive: read projects: %w", err)
	}

	var convs []conversationRow
	if err := sqlscan.Select(ctx, db, &convs,
		`SELECT id, project_id, team_id, agent_id, type, is_active, created_at, updated_at
		 FROM conversations ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("archive: read conversations: %w", err)
	}
	for _, r := range convs {
		data.Conversations = append(data.Conversations, chat.Conversation{
			ID:        r.ID,
			ProjectID: r.ProjectID,
			TeamID:    r.TeamID,
			AgentID:   r.AgentID,
			Type:      convid.Scope(r.Type),
			IsActive:  r.IsActive,
			CreatedAt: fromNanos(r.CreatedAt),
			UpdatedAt: fromNanos(r.UpdatedAt),
		})
	}

	var msgs []messageRow
	if err := sqlscan.Select(ctx, db, &msgs,
		`SELECT id, conversation_id, user_id, agent_id, content, message_type, parent_message_id,
		        thread_root_id, thread_depth, created_at, updated_at, seq
		 FROM messages ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("archive: read messages: %w", err)
	}
	for _, r := range msgs {
		data.Messages = append(data.Messages, chat.Message{
			ID:              r.ID,
			ConversationID:  r.ConversationID,
			UserID:          r.UserID,
			AgentID:         r.AgentID,
			Content:         r.Content,
			MessageType:     chat.MessageType(r.MessageType),
			ParentMessageID: r.ParentMessageID,
			ThreadRootID:    r.ThreadRootID,
			ThreadDepth:     r.ThreadDepth,
			CreatedAt:       fromNanos(r.CreatedAt),
			UpdatedAt:       fromNanos(r.UpdatedAt),
			Seq:             r.Seq,
		})
	}

	var mems []memoryRow
	if err := sqlscan.Select(ctx, db, &mems,
		`SELECT id, conversation_id, memory_type, content, importance, created_at, updated_at, seq
		 FROM memories ORDER BY seq`); err != nil {
		return nil, fmt.Errorf("archive: read memories: %w", err)
	}
	for _, r := range mems {
		data.Memories = append(data.Memories, chat.MemoryEntry{
			ID:             r.ID,
			ConversationID: r.ConversationID,
			MemoryType:     chat.MemoryType(r.MemoryType),
			Content:        r.Content,
			Importance:     r.Importance,
			CreatedAt:      fromNanos(r.CreatedAt),
			UpdatedAt:      fromNanos(r.UpdatedAt),
			Seq:            r.Seq,
		})
	}
	return data, nil
}

func open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := openDB("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: open database: %w", err)
	}
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("archive: pragma %q: %w", p, err)
		}
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return db, nil
}
