package cache

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	payload   []byte
	expiresAt time.Time
}

// Memory is an in-process Store with lazy eviction. Used in tests and
// as a fallback when neither Redis nor Postgres is configured.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]memoryEntry), now: time.Now}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(e.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	// Copy so callers cannot mutate the cached payload.
	out := make([]byte, len(e.payload))
	copy(out, e.payload)
	return out, true, nil
}

func (m *Memory) Put(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	owned := make([]byte, len(payload))
	copy(owned, payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{payload: owned, expiresAt: m.now().Add(ttl)}
	return nil
}

func (m *Memory) Invalidate(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Len reports the number of entries currently held, expired or not.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
