package secondary

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// MemoryStorage is an in-process [Storage] with TTL semantics driven by an
// injectable clock. It is intended for tests and single-process demos.
type MemoryStorage struct {
	mu      sync.Mutex
	prefix  string
	now     func() time.Time
	entries map[string]memoryEntry

	// FailWith, when non-nil, is returned (wrapped) by every operation.
	FailWith error
}

// NewMemoryStorage returns an empty [MemoryStorage]. A nil clock uses time.Now.
func NewMemoryStorage(now func() time.Time) *MemoryStorage {
	if now == nil {
		now = time.Now
	}
	return &MemoryStorage{
		prefix:  DefaultPrefix,
		now:     now,
		entries: make(map[string]memoryEntry),
	}
}

func (s *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return "", false, wrapUnavailable(s.FailWith)
	}
	entry, ok := s.entries[s.prefix+key]
	if !ok {
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && !s.now().Before(entry.expiresAt) {
		delete(s.entries, s.prefix+key)
		return "", false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStorage) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return wrapUnavailable(s.FailWith)
	}
	entry := memoryEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.entries[s.prefix+key] = entry
	return nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return wrapUnavailable(s.FailWith)
	}
	delete(s.entries, s.prefix+key)
	return nil
}

// Keys returns the namespaced keys currently held, expired ones included.
func (s *MemoryStorage) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.entries))
	for k := range s.entries {
		out = append(out, k)
	}
	return out
}

func wrapUnavailable(err error) error {
	return fmt.Errorf("%w: %w", ErrUnavailable, err)
}
