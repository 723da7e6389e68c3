package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSnapshotStore keeps statistics snapshots in a local SQLite file, for
// deployments without PostgreSQL access to the statistics table.
type SQLiteSnapshotStore struct {
	db  *sql.DB
	key string
}

// OpenSQLiteSnapshotStore opens (and creates if needed) the store at path.
func OpenSQLiteSnapshotStore(path, key string) (*SQLiteSnapshotStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if key == "" {
		key = DefaultSnapshotKey
	}

	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS roulette_statistics (
			id TEXT PRIMARY KEY,
			data TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		)`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create statistics table: %w", err)
	}

	return &SQLiteSnapshotStore{db: db, key: key}, nil
}

// Close releases the database handle.
func (s *SQLiteSnapshotStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveSnapshot upserts the snapshot.
func (s *SQLiteSnapshotStore) SaveSnapshot(ctx context.Context, data []byte) error {
	const query = `
		INSERT INTO roulette_statistics (id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`

	if _, err := s.db.ExecContext(ctx, query, s.key, string(data), time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to save statistics snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot. The bool is false when none exists.
func (s *SQLiteSnapshotStore) LoadSnapshot(ctx context.Context) ([]byte, bool, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM roulette_statistics WHERE id = ?`, s.key).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load statistics snapshot: %w", err)
	}
	return []byte(data), true, nil
}
