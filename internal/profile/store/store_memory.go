// Package store persists voter profiles. Email uniqueness is case-insensitive
// and reported as sentinel.ErrAlreadyUsed.
package store

import (
	"context"
	"strings"
	"sync"

	"ballot/internal/profile/models"
	"ballot/pkg/platform/sentinel"
)

type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[string]models.Profile
	byEmail map[string]string
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[string]models.Profile),
		byEmail: make(map[string]string),
	}
}

func (s *InMemoryStore) Create(_ context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.ToLower(p.Email)
	if _, ok := s.byEmail[key]; ok {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[p.ID] = *p
	s.byEmail[key] = p.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.byID[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &p, nil
}

func (s *InMemoryStore) FindByEmail(_ context.Context, email string) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	p := s.byID[id]
	return &p, nil
}
