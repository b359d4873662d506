package cache

import (
	"context"
	"sync"
	"time"
)

const defaultMaxEntries = 1000

type memoryEntry struct {
	value  []byte
	expiry time.Time
}

// Memory is an in-process TTL cache with a bounded entry count. When full it
// evicts the entry closest to expiry, matching the provider caches' original
// behavior. Safe for concurrent use.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]memoryEntry
	maxEntries int
	now        func() time.Time
}

// NewMemory creates a memory cache holding at most maxEntries entries.
// maxEntries <= 0 selects the default of 1000.
func NewMemory(maxEntries int) *Memory {
	if maxEntries <= 0 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		entries:    make(map[string]memoryEntry),
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !m.now().Before(entry.expiry) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; !exists && len(m.entries) >= m.maxEntries {
		m.evictSoonest()
	}

	m.entries[key] = memoryEntry{
		value:  value,
		expiry: m.now().Add(ttl),
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// evictSoonest removes the entry with the earliest expiry. Caller holds mu.
func (m *Memory) evictSoonest() {
	var oldestKey string
	var oldestExpiry time.Time
	first := true
	for key, entry := range m.entries {
		if first || entry.expiry.Before(oldestExpiry) {
			oldestKey = key
			oldestExpiry = entry.expiry
			first = false
		}
	}
	if !first {
		delete(m.entries, oldestKey)
	}
}
