package cache

import (
	"sync"
	"time"
)

// Memory implements Store with an in-process map.
//
// There is no size bound and no background sweep: the key space is bounded by
// the indicator catalog, and stale entries are dropped when they are next read.
// The mutex only guards the map itself; callers that miss and refetch do so
// outside of it, so two concurrent misses on one key both fetch and the last
// Set wins.
type Memory struct {
	mu      sync.Mutex
	entries map[string]Entry
	now     func() time.Time
}

// Option configures a Memory store.
type Option func(*Memory)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Memory) { m.now = now }
}

// NewMemory creates an empty in-memory store.
func NewMemory(opts ...Option) *Memory {
	m := &Memory{
		entries: make(map[string]Entry),
		now:     time.Now,
	}
	for _, o := range opts {
		o(m)
	}
	return m
}

// Get implements Reader.
func (m *Memory) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	if !m.now().Before(entry.ExpiresAt) {
		delete(m.entries, key)
		return nil, false
	}
	return entry.Value, true
}

// Set implements Writer.
func (m *Memory) Set(key string, value any, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = Entry{
		Value:     value,
		ExpiresAt: m.now().Add(ttl),
	}
}

// Len reports the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
