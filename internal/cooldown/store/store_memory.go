package store

import (
	"context"
	"sync"
	"time"

	"ballot/internal/cooldown/models"
)

type memKey struct {
	scope      string
	identifier string
}

// InMemoryStore keeps entries in process memory. State is lost on restart.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[memKey]models.Entry
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{entries: make(map[memKey]models.Entry)}
}

func (s *InMemoryStore) Get(_ context.Context, scope, identifier string, now time.Time) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[memKey{scope, identifier}]
	if !ok || e.Expired(now) {
		return nil, nil
	}
	return &e, nil
}

func (s *InMemoryStore) Put(_ context.Context, entry *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[memKey{entry.Scope, entry.Identifier}] = *entry
	return nil
}

func (s *InMemoryStore) Claim(_ context.Context, entry *models.Entry, now time.Time) (*models.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := memKey{entry.Scope, entry.Identifier}
	if e, ok := s.entries[k]; ok && !e.Expired(now) {
		return &e, nil
	}
	s.entries[k] = *entry
	return nil, nil
}

func (s *InMemoryStore) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if e.Expired(now) {
			delete(s.entries, k)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored entries, expired or not.
func (s *InMemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
