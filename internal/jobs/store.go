// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a job id is unknown to the store.
	ErrNotFound = errors.New("job not found")

	// ErrConflict is returned for illegal status transitions.
	ErrConflict = errors.New("job state conflict")

	// ErrLeaseTimeout is returned when no job became available within the
	// lease wait window.
	ErrLeaseTimeout = errors.New("no job available before lease timeout")
)

// Store persists jobs. Update applies the mutation inside the store's
// transaction so concurrent updates never lose writes.
type Store interface {
	Put(ctx context.Context, job *Job) error
	Get(ctx context.Context, id uuid.UUID) (*Job, error)
	Update(ctx context.Context, id uuid.UUID, fn func(*Job) error) (*Job, error)
	List(ctx context.Context) ([]*Job, error)
	Close() error
}

// Open creates a store for the configured backend. Path is ignored by the
// memory backend.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "badger":
		return OpenBadgerStore(path)
	case "sqlite":
		return OpenSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown job store backend: %s", backend)
	}
}
