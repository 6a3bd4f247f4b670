package payout

import (
	"context"
	"sync"

	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// InMemoryStore keeps payout records in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	byDeal map[domain.DealID]*Payout
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byDeal: make(map[domain.DealID]*Payout)}
}

func (s *InMemoryStore) Create(_ context.Context, p *Payout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byDeal[p.DealID]; ok {
		return sentinel.ErrConflict
	}
	clone := *p
	clone.Transfers = append([]Transfer(nil), p.Transfers...)
	s.byDeal[p.DealID] = &clone
	return nil
}

func (s *InMemoryStore) FindByDeal(_ context.Context, dealID domain.DealID) (*Payout, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.byDeal[dealID]; ok {
		clone := *p
		clone.Transfers = append([]Transfer(nil), p.Transfers...)
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}
