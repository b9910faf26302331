package memory

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nlquery/orchestrator/internal/wfstate"
)

// SQLiteStore persists conversation turns in a single-file SQLite
// database (WAL mode, single-writer pool, busy timeout) using a
// conversation_messages schema.
type SQLiteStore struct {
	db   *sql.DB
	mu   sync.Mutex
	seen map[string]time.Time
}

// NewSQLiteStore opens (and migrates) the conversation memory database at
// path. Use ":memory:" for tests and demos.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("memory: open: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("memory: %s: %w", pragma, err)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversation_messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("memory: create conversation_messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "CREATE INDEX IF NOT EXISTS idx_conv_msgs_conv ON conversation_messages(conversation_id, id)"); err != nil {
		return fmt.Errorf("memory: create index: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) LoadLastN(ctx context.Context, conversationID string, n int) ([]wfstate.Turn, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT role, content FROM (
			SELECT role, content, id FROM conversation_messages
			WHERE conversation_id = ?
			ORDER BY id DESC
			LIMIT ?
		) ORDER BY id ASC
	`, conversationID, n)
	if err != nil {
		return nil, fmt.Errorf("memory: load: %w", err)
	}
	defer rows.Close()

	var turns []wfstate.Turn
	for rows.Next() {
		var t wfstate.Turn
		var role string
		if err := rows.Scan(&role, &t.Content); err != nil {
			return nil, fmt.Errorf("memory: scan: %w", err)
		}
		t.Role = wfstate.Role(role)
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

func (s *SQLiteStore) SaveUser(ctx context.Context, conversationID, content string) error {
	return s.save(ctx, conversationID, wfstate.RoleUser, content)
}

func (s *SQLiteStore) SaveAI(ctx context.Context, conversationID, content string) error {
	return s.save(ctx, conversationID, wfstate.RoleAssistant, content)
}

func (s *SQLiteStore) save(ctx context.Context, conversationID string, role wfstate.Role, content string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversation_messages (conversation_id, role, content) VALUES (?, ?, ?)`,
		conversationID, string(role), content)
	if err != nil {
		return fmt.Errorf("memory: save: %w", err)
	}
	return nil
}

// RecentlyAnswered implements spec.md §4.11's dedup rule: the same
// conversation asking the same query text again within DedupWindow is a
// duplicate submission, not a fresh turn. An in-process mutex-guarded
// timestamp map backs this rather than a SQL query, since the window is
// short-lived and per-process state is sufficient.
func (s *SQLiteStore) RecentlyAnswered(ctx context.Context, conversationID, query string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := conversationID + "\x00" + query
	now := time.Now()
	if last, ok := s.seen[key]; ok && now.Sub(last) < DedupWindow {
		return true, nil
	}
	if s.seen == nil {
		s.seen = make(map[string]time.Time)
	}
	s.seen[key] = now
	return false, nil
}
