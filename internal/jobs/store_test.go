// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viktor-platform/scia-bridge/internal/params"
)

func storeBackends(t *testing.T) map[string]Store {
	t.Helper()
	badgerStore, err := OpenBadgerStore(filepath.Join(t.TempDir(), "badger"))
	require.NoError(t, err)
	sqliteStore, err := OpenSQLiteStore(filepath.Join(t.TempDir(), "jobs.db"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"badger": badgerStore,
		"sqlite": sqliteStore,
	}
}

func testJob(at time.Time) *Job {
	return &Job{
		ID:         uuid.New(),
		Definition: params.Defaults(),
		Status:     StatusQueued,
		EnqueuedAt: at.UTC(),
		Timeout:    DefaultTimeout,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { require.NoError(t, store.Close()) }()
			ctx := context.Background()

			job := testJob(time.Now())
			require.NoError(t, store.Put(ctx, job))

			got, err := store.Get(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, job.ID, got.ID)
			assert.Equal(t, StatusQueued, got.Status)
			assert.Equal(t, job.Definition, got.Definition)
			assert.Equal(t, job.Timeout, got.Timeout)

			_, err = store.Get(ctx, uuid.New())
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreUpdateIsTransactional(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { require.NoError(t, store.Close()) }()
			ctx := context.Background()

			job := testJob(time.Now())
			require.NoError(t, store.Put(ctx, job))

			// a failing mutation must not be persisted
			_, err := store.Update(ctx, job.ID, func(j *Job) error {
				j.Status = StatusFailed
				return fmt.Errorf("abort")
			})
			require.Error(t, err)
			got, err := store.Get(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, StatusQueued, got.Status)

			updated, err := store.Update(ctx, job.ID, func(j *Job) error {
				now := time.Now().UTC()
				j.Status = StatusRunning
				j.StartedAt = &now
				j.WorkerID = "worker-1"
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, StatusRunning, updated.Status)

			got, err = store.Get(ctx, job.ID)
			require.NoError(t, err)
			assert.Equal(t, StatusRunning, got.Status)
			assert.Equal(t, "worker-1", got.WorkerID)

			_, err = store.Update(ctx, uuid.New(), func(*Job) error { return nil })
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStoreListNewestFirst(t *testing.T) {
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { require.NoError(t, store.Close()) }()
			ctx := context.Background()

			base := time.Now().Add(-time.Hour)
			var ids []uuid.UUID
			for i := 0; i < 3; i++ {
				job := testJob(base.Add(time.Duration(i) * time.Minute))
				require.NoError(t, store.Put(ctx, job))
				ids = append(ids, job.ID)
			}

			all, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, ids[2], all[0].ID)
			assert.Equal(t, ids[0], all[2].ID)
		})
	}
}

func TestStoreListOrdersSubsecondTimestamps(t *testing.T) {
	// fractions like .1 and .15 within the same second misorder when the
	// stored text trims trailing zeros
	for name, store := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			defer func() { require.NoError(t, store.Close()) }()
			ctx := context.Background()

			base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
			first := testJob(base.Add(100 * time.Millisecond))
			second := testJob(base.Add(150 * time.Millisecond))
			require.NoError(t, store.Put(ctx, first))
			require.NoError(t, store.Put(ctx, second))

			all, err := store.List(ctx)
			require.NoError(t, err)
			require.Len(t, all, 2)
			assert.Equal(t, second.ID, all[0].ID)
			assert.Equal(t, first.ID, all[1].ID)
		})
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("memory", "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
	require.NoError(t, s.Close())

	s, err = Open("sqlite", filepath.Join(dir, "jobs.db"))
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open("postgres", "")
	require.Error(t, err)
}
