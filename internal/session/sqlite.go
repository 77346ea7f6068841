package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/me/audictl/pkg/model"

	_ "modernc.org/sqlite"
)

// schema holds the DDL for the session table. Each statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS session_kv (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
	)`,
}

// SQLiteStore keeps the session as rows of a key/value table, one row per
// fixed key. Save and Clear each run in a single transaction.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database at dbPath and migrates it.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("create session directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger.With("component", "session", "backend", "sqlite"),
	}
	if err := s.migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Load reads whichever keys are present.
func (s *SQLiteStore) Load(ctx context.Context) (model.Session, error) {
	var sess model.Session
	rows, err := s.db.QueryContext(ctx,
		`SELECT key, value FROM session_kv WHERE key IN (?, ?, ?)`,
		KeyToken, KeyRole, KeyUsername)
	if err != nil {
		return sess, fmt.Errorf("query session: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return model.Session{}, fmt.Errorf("scan session: %w", err)
		}
		switch k {
		case KeyToken:
			sess.Token = v
		case KeyRole:
			sess.Role = v
		case KeyUsername:
			sess.Username = v
		}
	}
	if err := rows.Err(); err != nil {
		return model.Session{}, fmt.Errorf("iterate session: %w", err)
	}
	return sess, nil
}

// Save replaces all three keys. Empty fields are stored as absent.
func (s *SQLiteStore) Save(ctx context.Context, sess model.Session) error {
	s.logger.Debug("sql", "op", "upsert", "table", "session_kv", "username", sess.Username)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	fields := []struct{ key, value string }{
		{KeyToken, sess.Token},
		{KeyRole, sess.Role},
		{KeyUsername, sess.Username},
	}
	for _, f := range fields {
		if f.value == "" {
			if _, err := tx.ExecContext(ctx, `DELETE FROM session_kv WHERE key = ?`, f.key); err != nil {
				return fmt.Errorf("delete %s: %w", f.key, err)
			}
			continue
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO session_kv (key, value, updated_at) VALUES (?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			f.key, f.value)
		if err != nil {
			return fmt.Errorf("store %s: %w", f.key, err)
		}
	}
	return tx.Commit()
}

// Clear removes all session keys.
func (s *SQLiteStore) Clear(ctx context.Context) error {
	s.logger.Debug("sql", "op", "delete", "table", "session_kv")
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM session_kv WHERE key IN (?, ?, ?)`,
		KeyToken, KeyRole, KeyUsername)
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
