package athlete

import (
	"context"
	"sync"

	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// InMemoryStore keeps athlete records in process memory. It favors clarity
// over performance and backs unit tests and local development.
type InMemoryStore struct {
	mu       sync.RWMutex
	byID     map[domain.AthleteID]*Athlete
	byWallet map[domain.Address]domain.AthleteID
	byVault  map[domain.Address]domain.AthleteID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:     make(map[domain.AthleteID]*Athlete),
		byWallet: make(map[domain.Address]domain.AthleteID),
		byVault:  make(map[domain.Address]domain.AthleteID),
	}
}

func (s *InMemoryStore) Save(_ context.Context, a *Athlete) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byWallet[a.Wallet]; ok && existing != a.ID {
		return sentinel.ErrConflict
	}
	if existing, ok := s.byVault[a.Vault]; ok && existing != a.ID {
		return sentinel.ErrConflict
	}
	clone := *a
	s.byID[a.ID] = &clone
	s.byWallet[a.Wallet] = a.ID
	s.byVault[a.Vault] = a.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.AthleteID) (*Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.byID[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByVault(_ context.Context, vault domain.Address) (*Athlete, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byVault[vault]; ok {
		clone := *s.byID[id]
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}
