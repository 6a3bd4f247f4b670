package attestation

import (
	"context"
	"sync"

	"nilgate/pkg/domain"
)

type key struct {
	kind    domain.SubjectKind
	subject string
	typ     domain.AttestationType
	issuer  string
}

// InMemoryStore keeps attestations in process memory for tests and local runs.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[key]*Attestation
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[key]*Attestation)}
}

func (s *InMemoryStore) Put(_ context.Context, a *Attestation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *a
	s.records[key{a.Subject.Kind, a.Subject.ID, a.Type, a.Issuer}] = &clone
	return nil
}

func (s *InMemoryStore) Query(_ context.Context, subject domain.Subject, typ domain.AttestationType) ([]*Attestation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Attestation
	for k, a := range s.records {
		if k.kind == subject.Kind && k.subject == subject.ID && k.typ == typ {
			clone := *a
			out = append(out, &clone)
		}
	}
	return out, nil
}
