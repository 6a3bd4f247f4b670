package issuer

import (
	"context"
	"sync"

	"nilgate/pkg/domain"
	"nilgate/pkg/platform/sentinel"
)

// Store persists issuers. Names are unique.
type Store interface {
	Save(ctx context.Context, i *Issuer) error
	FindByName(ctx context.Context, name string) (*Issuer, error)
	FindByID(ctx context.Context, id domain.IssuerID) (*Issuer, error)
}

// InMemoryStore keeps issuers in process memory.
type InMemoryStore struct {
	mu     sync.RWMutex
	byID   map[domain.IssuerID]*Issuer
	byName map[string]domain.IssuerID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:   make(map[domain.IssuerID]*Issuer),
		byName: make(map[string]domain.IssuerID),
	}
}

func (s *InMemoryStore) Save(_ context.Context, i *Issuer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.byName[i.Name]; ok && existing != i.ID {
		return sentinel.ErrConflict
	}
	clone := *i
	clone.SecretHash = append([]byte(nil), i.SecretHash...)
	s.byID[i.ID] = &clone
	s.byName[i.Name] = i.ID
	return nil
}

func (s *InMemoryStore) FindByName(_ context.Context, name string) (*Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.byName[name]; ok {
		clone := *s.byID[id]
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.IssuerID) (*Issuer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i, ok := s.byID[id]; ok {
		clone := *i
		return &clone, nil
	}
	return nil, sentinel.ErrNotFound
}
