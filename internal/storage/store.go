package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// KV is the whole-value key-value contract the viewer reads and writes
// through. Values are opaque bytes; a missing key reports found=false.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store defines the interface for quipu data operations.
type Store interface {
	KV
	RecordAction(ctx context.Context, action, detail string) error
	RecentActions(ctx context.Context, limit int) ([]Action, error)
	GetStats(ctx context.Context) (*Stats, error)
	Close() error
}

// SQLiteStore implements Store backed by a SQLite database.
type SQLiteStore struct {
	db *sql.DB

	// Prepared statements
	getValue     *sql.Stmt
	setValue     *sql.Stmt
	insertAction *sql.Stmt
}

// NewSQLiteStore creates a new SQLiteStore from an already-opened and migrated database.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	s := &SQLiteStore{db: db}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getValue, err = s.db.Prepare(`SELECT value FROM kv_store WHERE key = ?`)
	if err != nil {
		return err
	}

	// A single statement replaces the whole value, so readers never see a
	// partially written record.
	s.setValue, err = s.db.Prepare(`
		INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.insertAction, err = s.db.Prepare(`
		INSERT INTO audit_log (action, detail, ts) VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// Get returns the stored value for key. A missing key is not an error.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.getValue.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set replaces the whole value stored under key.
func (s *SQLiteStore) Set(ctx context.Context, key string, value []byte) error {
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.setValue.ExecContext(ctx, key, value, ts); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// RecordAction appends an entry to the audit log.
func (s *SQLiteStore) RecordAction(ctx context.Context, action, detail string) error {
	ts := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.insertAction.ExecContext(ctx, action, detail, ts); err != nil {
		return fmt.Errorf("record action: %w", err)
	}
	return nil
}

// RecentActions returns the newest audit entries first.
func (s *SQLiteStore) RecentActions(ctx context.Context, limit int) ([]Action, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, action, detail, ts FROM audit_log ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()

	actions := []Action{}
	for rows.Next() {
		var a Action
		var tsStr string
		if err := rows.Scan(&a.ID, &a.Action, &a.Detail, &tsStr); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Timestamp, _ = parseTimestamp(tsStr)
		actions = append(actions, a)
	}

	return actions, rows.Err()
}

// GetStats returns size and freshness information about the stored record.
func (s *SQLiteStore) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	var size sql.NullInt64
	var updated sql.NullString
	err := s.db.QueryRowContext(ctx,
		"SELECT length(value), updated_at FROM kv_store WHERE key = ?", RecordKey,
	).Scan(&size, &updated)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("record size: %w", err)
	default:
		stats.RecordStored = true
		stats.RecordBytes = size.Int64
		if updated.Valid {
			stats.UpdatedAt, _ = parseTimestamp(updated.String)
		}
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&stats.TotalActions)
	if err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}

	return stats, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteStore) Close() error {
	stmts := []*sql.Stmt{s.getValue, s.setValue, s.insertAction}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
