// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps jobs in memory. Used for tests and ephemeral setups.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[uuid.UUID]*Job
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: map[uuid.UUID]*Job{}}
}

// Put stores a copy of the job.
func (s *MemoryStore) Put(_ context.Context, job *Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job.Clone()
	return nil
}

// Get returns a copy of the job or ErrNotFound.
func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return job.Clone(), nil
}

// Update applies fn to the stored job under the store lock.
func (s *MemoryStore) Update(_ context.Context, id uuid.UUID, fn func(*Job) error) (*Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := job.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	s.jobs[id] = working
	return working.Clone(), nil
}

// List returns all jobs ordered by enqueue time, newest first.
func (s *MemoryStore) List(_ context.Context) ([]*Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j.Clone())
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].EnqueuedAt.After(out[k].EnqueuedAt)
	})
	return out, nil
}

// Close is a no-op for the memory backend.
func (s *MemoryStore) Close() error { return nil }
