package events

import (
	"context"
	"sync"
	"time"
)

// Publisher delivers lifecycle events. Implementations must tolerate slow or
// dead sinks without blocking the caller beyond ctx.
type Publisher interface {
	Emit(ctx context.Context, e Event) error
	Close() error
}

// Fanout delivers each event to every publisher in order. Emit returns the
// first error but still reaches the remaining sinks; Close closes all of them.
type Fanout []Publisher

func NewFanout(publishers ...Publisher) Fanout {
	return Fanout(publishers)
}

func (f Fanout) Emit(ctx context.Context, e Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Emit(ctx, e); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (f Fanout) Close() error {
	var firstErr error
	for _, p := range f {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MemorySink collects events in memory for tests and local runs.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(_ context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *MemorySink) Close() error { return nil }

// Events returns a snapshot of everything emitted so far.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// OfType filters the snapshot by event type.
func (s *MemorySink) OfType(t Type) []Event {
	var out []Event
	for _, e := range s.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
