package archive

import (
	"context"
	"sync"

	"keyledger/internal/lock/models"
	"keyledger/pkg/domain"
	"keyledger/pkg/platform/sentinel"
)

// InMemoryStore keeps encoded tombstones in process memory.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[domain.Address][]byte
	order []domain.Address
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{items: make(map[domain.Address][]byte)}
}

func (s *InMemoryStore) Put(_ context.Context, snap models.Snapshot) error {
	b, err := Encode(snap)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[snap.Address]; !exists {
		s.order = append(s.order, snap.Address)
	}
	s.items[snap.Address] = b
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, addr domain.Address) (models.Snapshot, error) {
	s.mu.RLock()
	b, ok := s.items[addr]
	s.mu.RUnlock()
	if !ok {
		return models.Snapshot{}, sentinel.ErrNotFound
	}
	return Decode(b)
}

func (s *InMemoryStore) List(_ context.Context) ([]domain.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Address{}, s.order...), nil
}
