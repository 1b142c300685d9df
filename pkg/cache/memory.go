package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

type memoryEntry struct {
	value      []byte
	insertedAt time.Time
	ttl        time.Duration
}

func (e memoryEntry) expiredAt(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

// Memory is a thread-safe in-process Cache. Each Set replaces the entry in a
// single map write, so readers observe whole values only.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock replaces the time source. Used by tests to pin entry ages
// without sleeping.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		if now != nil {
			m.now = now
		}
	}
}

// NewMemory creates an empty in-process cache.
func NewMemory(opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Get returns the value under key, lazily evicting it when its TTL has
// elapsed.
func (m *Memory) Get(ctx context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if entry.expiredAt(m.now()) {
		m.mu.Lock()
		// Re-check under the write lock: a concurrent Set may have refreshed
		// the entry between the read and this eviction.
		if current, ok := m.entries[key]; ok && current.expiredAt(m.now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false
	}

	return entry.value, true
}

// Set stores value under key for ttl.
func (m *Memory) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	m.mu.Lock()
	m.entries[key] = memoryEntry{
		value:      value,
		insertedAt: m.now(),
		ttl:        ttl,
	}
	m.mu.Unlock()
}

// Invalidate removes the key itself and all keys sharing the prefix.
func (m *Memory) Invalidate(ctx context.Context, prefixOrKey string) {
	m.mu.Lock()
	for key := range m.entries {
		if strings.HasPrefix(key, prefixOrKey) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included until a
// read evicts them.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
