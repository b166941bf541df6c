package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register "sqlite" driver
)

// SQLiteStore is a Store backed by a local SQLite database, so conversation
// history survives server restarts.
type SQLiteStore struct {
	db           *sql.DB
	maxExchanges int
}

// DefaultDBPath returns the default path for the session database. It
// resolves to ~/.lectern/sessions.db, creating the directory if needed.
func DefaultDBPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("session: could not determine home directory: %w", err)
	}
	dir := filepath.Join(home, ".lectern")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("session: could not create %s: %w", dir, err)
	}
	return filepath.Join(dir, "sessions.db"), nil
}

// OpenSQLite opens (or creates) a SQLiteStore at the given path and runs the
// schema migration. Use ":memory:" for an in-memory database in tests.
// maxExchanges <= 0 falls back to DefaultMaxExchanges.
func OpenSQLite(path string, maxExchanges int) (*SQLiteStore, error) {
	if maxExchanges <= 0 {
		maxExchanges = DefaultMaxExchanges
	}

	// WAL mode improves concurrent read performance and is safe for single-host use.
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("session: open %s: %w", path, err)
	}
	// Limit to a single writer connection to avoid SQLITE_BUSY under concurrent writes.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, maxExchanges: maxExchanges}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// migrate creates the schema if it does not already exist.
func (s *SQLiteStore) migrate() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS exchanges (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id     TEXT    NOT NULL,
    user_text      TEXT    NOT NULL,
    assistant_text TEXT    NOT NULL,
    created_at     INTEGER NOT NULL  -- Unix timestamp (seconds)
);
CREATE INDEX IF NOT EXISTS idx_exchanges_session
    ON exchanges (session_id, id);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("session: migrate: %w", err)
	}
	return nil
}

// Create allocates a new session id. No row is written: a session with no
// exchanges is indistinguishable from a fresh one by design.
func (s *SQLiteStore) Create(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

// History returns the formatted exchange history, oldest first. The window
// is enforced at Append time, so a plain ordered scan suffices.
func (s *SQLiteStore) History(ctx context.Context, id string) (string, error) {
	const q = `SELECT user_text, assistant_text FROM exchanges WHERE session_id = ? ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, q, id)
	if err != nil {
		return "", fmt.Errorf("session: history: %w", err)
	}
	defer rows.Close()

	var exchanges []Exchange
	for rows.Next() {
		var e Exchange
		if err := rows.Scan(&e.User, &e.Assistant); err != nil {
			return "", fmt.Errorf("session: history scan: %w", err)
		}
		exchanges = append(exchanges, e)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("session: history rows: %w", err)
	}
	return formatHistory(exchanges), nil
}

// Append inserts the exchange and deletes rows beyond the newest
// maxExchanges, all in one transaction so concurrent appends to the same
// session cannot overshoot the window.
func (s *SQLiteStore) Append(ctx context.Context, id, userText, assistantText string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("session: append begin: %w", err)
	}
	defer tx.Rollback()

	const ins = `INSERT INTO exchanges (session_id, user_text, assistant_text, created_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, ins, id, userText, assistantText, time.Now().Unix()); err != nil {
		return fmt.Errorf("session: append insert: %w", err)
	}

	const win = `
DELETE FROM exchanges
WHERE session_id = ?
  AND id NOT IN (
    SELECT id FROM exchanges WHERE session_id = ? ORDER BY id DESC LIMIT ?
  )`
	if _, err := tx.ExecContext(ctx, win, id, id, s.maxExchanges); err != nil {
		return fmt.Errorf("session: append window: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("session: append commit: %w", err)
	}
	return nil
}

// Close releases the database connection pool.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("session: close: %w", err)
	}
	return nil
}
