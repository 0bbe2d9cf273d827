// Package session persists the signed-in user of a browser client. A session
// is stored as two fields, user and token, that are always written, read and
// removed together.
package session

import (
	"context"
	"maps"
	"sync"
	"time"
)

// Field names inside a stored session.
const (
	FieldUser  = "user"
	FieldToken = "token"
)

// Store keeps field maps keyed by session id. Set replaces all fields of a
// session in one atomic step and Delete removes them in one atomic step, so a
// reader never observes a partially written session.
type Store interface {
	// Get returns the stored fields, or an empty map when the session is absent.
	Get(ctx context.Context, sid string) (map[string]string, error)
	Set(ctx context.Context, sid string, fields map[string]string) error
	Delete(ctx context.Context, sid string) error
}

type memoryEntry struct {
	fields  map[string]string
	expires time.Time
}

// MemoryStore is an in-process Store. Entries expire after ttl when ttl > 0.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, sid string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[sid]
	if !ok {
		return map[string]string{}, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, sid)
		return map[string]string{}, nil
	}
	return maps.Clone(e.fields), nil
}

func (s *MemoryStore) Set(_ context.Context, sid string, fields map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := memoryEntry{fields: maps.Clone(fields)}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.entries[sid] = e
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, sid)
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
