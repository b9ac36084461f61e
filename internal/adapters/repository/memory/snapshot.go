// Package memory provides the in-memory snapshot store, the default backing
// for the History collaborator in tests and local sessions.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ucmflow/ucmflow/internal/core/snapshot"
	"github.com/ucmflow/ucmflow/internal/infrastructure/metrics"
)

// SnapshotStore implements snapshot.Store with a mutex-guarded map. Records
// are copied on the way in and out so callers cannot alias stored state.
type SnapshotStore struct {
	mu      sync.RWMutex
	records map[string]*snapshot.Record
}

// NewSnapshotStore creates an empty in-memory snapshot store.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{records: make(map[string]*snapshot.Record)}
}

// Save stores a record, assigning an id and creation time when absent.
func (s *SnapshotStore) Save(ctx context.Context, rec *snapshot.Record) error {
	if rec == nil || len(rec.Payload) == 0 {
		return snapshot.ErrInvalidRecord
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	s.records[rec.ID] = copyRecord(rec)
	metrics.IncSnapshotsSaved()
	return nil
}

// Load retrieves a record by id.
func (s *SnapshotStore) Load(ctx context.Context, id string) (*snapshot.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, snapshot.ErrNotFound
	}
	return copyRecord(rec), nil
}

// List returns all records ordered by creation time.
func (s *SnapshotStore) List(ctx context.Context) ([]*snapshot.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*snapshot.Record, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a record by id.
func (s *SnapshotStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return snapshot.ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func copyRecord(rec *snapshot.Record) *snapshot.Record {
	out := *rec
	out.Payload = append([]byte{}, rec.Payload...)
	return &out
}
