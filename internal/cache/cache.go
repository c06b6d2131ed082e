// SPDX-License-Identifier: MIT

// Package cache is the short-lived response cache for the view and
// model endpoints, keyed by a hash of the bridge definition.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/viktor-platform/scia-bridge/internal/metrics"
)

// Cache stores rendered responses. A miss is (nil, false, nil); errors
// are reserved for backend failures.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// Key derives a stable key from a view name and a definition. The
// definition is serialized to JSON before hashing, so definitions with
// equal fields share a key.
func Key(view string, definition any) (string, error) {
	payload, err := json.Marshal(definition)
	if err != nil {
		return "", fmt.Errorf("hash cache key: %w", err)
	}
	h := sha256.New()
	h.Write([]byte(view))
	h.Write([]byte{0})
	h.Write(payload)
	return view + ":" + hex.EncodeToString(h.Sum(nil))[:32], nil
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is the in-process implementation. Expired entries are dropped
// lazily on read and swept whenever the map grows past maxEntries.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
}

const defaultMaxEntries = 1024

// NewMemory returns an in-memory cache. maxEntries <= 0 selects the
// default bound.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[key]
	if !ok || time.Now().After(e.expiresAt) {
		if ok {
			delete(m.entries, key)
		}
		metrics.RecordCacheMiss()
		return nil, false, nil
	}
	metrics.RecordCacheHit()
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.entries) >= m.maxEntries {
		m.evictLocked()
	}
	stored := make([]byte, len(value))
	copy(stored, value)
	m.entries[key] = entry{value: stored, expiresAt: time.Now().Add(ttl)}
	return nil
}

// evictLocked drops expired entries first and, if none expired, the
// entry closest to expiry.
func (m *Memory) evictLocked() {
	now := time.Now()
	var oldestKey string
	var oldest time.Time
	for k, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, k)
			continue
		}
		if oldestKey == "" || e.expiresAt.Before(oldest) {
			oldestKey, oldest = k, e.expiresAt
		}
	}
	if len(m.entries) >= m.maxEntries && oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

// Len reports the current entry count.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Close() error { return nil }

// Disabled is the no-op cache used when caching is turned off.
type Disabled struct{}

func (Disabled) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Disabled) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}
func (Disabled) Close() error { return nil }
