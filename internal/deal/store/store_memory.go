package store

import (
	"context"
	"sync"
	"time"

	"nilgate/internal/deal/models"
	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// InMemoryStore keeps deals in process memory. The single mutex makes every
// operation, including the status check-and-set, trivially atomic.
type InMemoryStore struct {
	mu        sync.RWMutex
	deals     map[domain.DealID]*models.Deal
	byChainID map[domain.ChainDealID]domain.DealID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		deals:     make(map[domain.DealID]*models.Deal),
		byChainID: make(map[domain.ChainDealID]domain.DealID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, d *models.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byChainID[d.ChainID]; ok {
		return sentinel.ErrConflict
	}
	if _, ok := s.deals[d.ID]; ok {
		return sentinel.ErrConflict
	}
	s.deals[d.ID] = d.Clone()
	s.byChainID[d.ChainID] = d.ID
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id domain.DealID) (*models.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if d, ok := s.deals[id]; ok {
		return d.Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) GetByChainID(_ context.Context, chainID domain.ChainDealID) (*models.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byChainID[chainID]; ok {
		return s.deals[id].Clone(), nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.DealID, from, to domain.DealStatus, disputeReason string, at time.Time) (*models.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deals[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if d.Status != from {
		return nil, sentinel.ErrStatusConflict
	}
	d.Status = to
	d.UpdatedAt = at
	if to == domain.StatusDisputed {
		d.DisputeReason = disputeReason
	}
	return d.Clone(), nil
}
