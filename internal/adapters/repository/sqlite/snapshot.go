// Package sqlite provides the SQLite snapshot store on database/sql with
// the CGO-free modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ucmflow/ucmflow/internal/core/snapshot"
	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
)

// SnapshotStore implements snapshot.Store on a SQLite database.
type SnapshotStore struct {
	db        *sql.DB
	tableName string
}

// NewSnapshotStore creates a store writing to the "snapshots" table.
func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, tableName: "snapshots"}
}

// WithTableName overrides the table name. Only alphanumeric and underscore
// are permitted, preventing SQL injection through identifiers.
func (s *SnapshotStore) WithTableName(name string) *SnapshotStore {
	if isSafeIdent(name) {
		s.tableName = name
	}
	return s
}

func isSafeIdent(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' {
			continue
		}
		return false
	}
	return true
}

// EnsureSchema creates the snapshots table if it does not exist.
func (s *SnapshotStore) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			payload BLOB NOT NULL,
			created_at TIMESTAMP NOT NULL
		)
	`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query); err != nil {
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
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			payload = excluded.payload,
			created_at = excluded.created_at
	`, s.tableName)
	if _, err := s.db.ExecContext(ctx, query, rec.ID, rec.Name, rec.Payload, rec.CreatedAt); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	metrics.IncSnapshotsSaved()
	return nil
}

// Load retrieves a record by id.
func (s *SnapshotStore) Load(ctx context.Context, id string) (*snapshot.Record, error) {
	query := fmt.Sprintf(`SELECT id, name, payload, created_at FROM %s WHERE id = ?`, s.tableName)
	rec := &snapshot.Record{}
	err := s.db.QueryRowContext(ctx, query, id).Scan(&rec.ID, &rec.Name, &rec.Payload, &rec.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
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
	rows, err := s.db.QueryContext(ctx, query)
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
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?`, s.tableName)
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return snapshot.ErrNotFound
	}
	return nil
}
