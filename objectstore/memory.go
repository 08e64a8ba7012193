package objectstore

import (
	"context"
	"sync"
)

// MemoryStore records deletions in memory.
type MemoryStore struct {
	mu      sync.Mutex
	deleted []string

	// FailWith, when non-nil, is returned by every Delete.
	FailWith error
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}
	m.deleted = append(m.deleted, key)
	return nil
}

// Deleted returns the keys deleted so far, in order.
func (m *MemoryStore) Deleted() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.deleted))
	copy(out, m.deleted)
	return out
}
