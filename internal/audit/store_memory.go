package audit

import (
	"context"
	"sync"

	"nilgate/pkg/domain"
)

// InMemoryStore keeps the trail in process memory for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *InMemoryStore) ListByDeal(_ context.Context, dealID domain.DealID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Entry
	for _, e := range s.entries {
		if e.DealID == dealID {
			out = append(out, e)
		}
	}
	return out, nil
}
