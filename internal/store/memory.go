package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps every key in process memory. It is the default backend
// when no remote database is configured.
type MemoryStore struct {
	mu       sync.Mutex
	data     map[string][]byte
	deadline map[string]time.Time
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:     make(map[string][]byte),
		deadline: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Get returns a copy of the raw value, or nil when absent
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.evict(key)
	return clone(m.data[key]), nil
}

// Update runs fn while holding the store lock
func (m *MemoryStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	m.evict(key)
	next, err := fn(clone(m.data[key]))
	if err != nil {
		return err
	}
	if next == nil {
		return nil
	}
	m.data[key] = clone(next)
	delete(m.deadline, key)
	return nil
}

// Delete removes a key
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	delete(m.deadline, key)
	return nil
}

// Expire drops key once ttl has passed. Other expired keys are swept on the
// way.
func (m *MemoryStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k := range m.deadline {
		m.evict(k)
	}
	if _, ok := m.data[key]; ok {
		m.deadline[key] = m.now().Add(ttl)
	}
	return nil
}

// evict must be called with mu held
func (m *MemoryStore) evict(key string) {
	deadline, ok := m.deadline[key]
	if !ok || m.now().Before(deadline) {
		return
	}
	delete(m.data, key)
	delete(m.deadline, key)
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
