// Package snapshot defines the persisted-snapshot contract used by the
// History/undo collaborator. A record's payload is an opaque serialized
// graph snapshot; stores never look inside it.
package snapshot

import (
	"context"
	"errors"
	"time"
)

// Record is one persisted snapshot.
type Record struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists snapshot records. Implementations must treat Payload as
// opaque bytes.
type Store interface {
	Save(ctx context.Context, rec *Record) error
	Load(ctx context.Context, id string) (*Record, error)
	List(ctx context.Context) ([]*Record, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound      = errors.New("snapshot not found")
	ErrInvalidRecord = errors.New("invalid snapshot record")
)
