// Package postgres provides the PostgreSQL snapshot store on pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ucmflow/ucmflow/internal/core/snapshot"
	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
)

// SnapshotStore implements snapshot.Store on a pgx connection pool.
type SnapshotStore struct {
	pool      *pgxpool.Pool
	tableName string
}

// NewSnapshotStore creates a store writing to the "snapshots" table.
func NewSnapshotStore(pool *pgxpool.Pool) *SnapshotStore {
	return &SnapshotStore{pool: pool, tableName: "snapshots"}
}

// EnsureSchema creates the snapshots table if it does not exist.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			payload BYTEA NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)
	`, s.tableName)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create snapshot table: %w", err)
	}
	return nil
}

// Save upserts a record, assigning an id and creation time when absent.
func (s *SnapshotStore) Save(ctx context.Context, rec *snapshot.Record) error {
	if rec == nil || len(rec.Payload) == 0 {
		return snapshot.ErrInvalidRecord
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			payload = EXCLUDED.payload,
			created_at = EXCLUDED.created_at
	`, s.tableName)
	if _, err := s.pool.Exec(ctx, query, rec.ID, rec.Name, rec.Payload, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	metrics.IncSnapshotsSaved()
	return nil
}

// Load retrieves a record by id.
func (s *SnapshotStore) Load(ctx context.Context, id string) (*snapshot.Record, error) {
	query := fmt.Sprintf(`SELECT id, name, payload, created_at FROM %s WHERE id = $1`, s.tableName)
	rec := &snapshot.Record{}
	err := s.pool.QueryRow(ctx, query, id).Scan(&rec.ID, &rec.Name, &rec.Payload, &rec.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, snapshot.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return rec, nil
}

// List returns all records ordered by creation time.
func (s *SnapshotStore) List(ctx context.Context) ([]*snapshot.Record, error) {
	query := fmt.Sprintf(`SELECT id, name, payload, created_at FROM %s ORDER BY created_at`, s.tableName)
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*snapshot.Record
	for rows.Next() {
		rec := &snapshot.Record{}
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.Payload, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Delete removes a record by id.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.tableName)
	tag, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return snapshot.ErrNotFound
	}
	return nil
}
