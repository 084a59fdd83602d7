package memory

import (
	"context"
	"sync"

	"keyledger/internal/events"
	"keyledger/pkg/domain"
)

// InMemoryStore keeps committed events in sequence order.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []events.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Publish(_ context.Context, batch []events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

// All returns every committed event.
func (s *InMemoryStore) All() []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]events.Event{}, s.events...)
}

// ByKind returns committed events of one kind.
func (s *InMemoryStore) ByKind(kind events.Kind) []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []events.Event
	for _, e := range s.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// ByEmitter returns committed events emitted by one pool or the registry.
func (s *InMemoryStore) ByEmitter(emitter domain.Address) []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []events.Event
	for _, e := range s.events {
		if e.Emitter == emitter {
			out = append(out, e)
		}
	}
	return out
}

// Last returns the most recent event, if any.
func (s *InMemoryStore) Last() (events.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.events) == 0 {
		return events.Event{}, false
	}
	return s.events[len(s.events)-1], true
}
