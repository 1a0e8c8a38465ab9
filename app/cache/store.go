// Package cache keeps generated pages per key and regenerates them with
// stale-while-revalidate semantics.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrMiss = errors.New("cache: miss")

// Entry is one generated value and its freshness window.
type Entry struct {
	Value       []byte        `json:"value"`
	GeneratedAt time.Time     `json:"generatedAt"`
	TTL         time.Duration `json:"ttl"`
}

// Stale reports whether the entry's window has elapsed at now.
func (e *Entry) Stale(now time.Time) bool {
	return now.Sub(e.GeneratedAt) >= e.TTL
}

// Store persists entries. Get returns ErrMiss for unknown keys.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mutex   sync.RWMutex
	entries map[string]*Entry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*Entry)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) (*Entry, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	return entry, nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, entry *Entry) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.entries[key] = entry
	return nil
}
