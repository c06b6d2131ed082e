// SPDX-License-Identifier: MIT

package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const badgerJobPrefix = "job:"

// BadgerStore persists jobs in a badger key-value database. Updates run
// inside a badger transaction, so concurrent mutations of the same job are
// serialized by the store.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (or creates) the database at path.
func OpenBadgerStore(path string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger job store: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func badgerJobKey(id uuid.UUID) []byte {
	return []byte(badgerJobPrefix + id.String())
}

// Put stores the job as JSON.
func (s *BadgerStore) Put(_ context.Context, job *Job) error {
	buf, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerJobKey(job.ID), buf)
	})
}

// Get returns the job or ErrNotFound.
func (s *BadgerStore) Get(_ context.Context, id uuid.UUID) (*Job, error) {
	var out Job
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(badgerJobKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return &out, nil
}

// Update applies fn inside a badger transaction.
func (s *BadgerStore) Update(_ context.Context, id uuid.UUID, fn func(*Job) error) (*Job, error) {
	key := badgerJobKey(id)
	var out Job
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &out)
		}); err != nil {
			return err
		}
		if err := fn(&out); err != nil {
			return err
		}
		buf, err := json.Marshal(&out)
		if err != nil {
			return err
		}
		return txn.Set(key, buf)
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// List returns all jobs ordered by enqueue time, newest first.
func (s *BadgerStore) List(_ context.Context) ([]*Job, error) {
	var out []*Job
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		prefix := []byte(badgerJobPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var job Job
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &job)
			}); err != nil {
				return err
			}
			out = append(out, &job)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	sort.Slice(out, func(i, k int) bool {
		return out[i].EnqueuedAt.After(out[k].EnqueuedAt)
	})
	return out, nil
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error { return s.db.Close() }
