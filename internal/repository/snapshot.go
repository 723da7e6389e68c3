package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultSnapshotKey names the process-wide statistics row.
const DefaultSnapshotKey = "house"

// SnapshotRepository stores opaque statistics snapshots in PostgreSQL.
type SnapshotRepository struct {
	pool *pgxpool.Pool
	key  string
}

// NewSnapshotRepository creates a SnapshotRepository writing the row named key.
func NewSnapshotRepository(pool *pgxpool.Pool, key string) *SnapshotRepository {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &SnapshotRepository{pool: pool, key: key}
}

// SaveSnapshot upserts the snapshot. data must be a JSON document.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, data []byte) error {
	const query = `
		INSERT INTO roulette_statistics (id, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, r.key, string(data)); err != nil {
		return fmt.Errorf("failed to save statistics snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot. The bool is false when none exists.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) ([]byte, bool, error) {
	const query = `SELECT data::text FROM roulette_statistics WHERE id = $1`

	var data string
	err := r.pool.QueryRow(ctx, query, r.key).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to load statistics snapshot: %w", err)
	}
	return []byte(data), true, nil
}
