package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"cartwright/internal/domain"
)

// MemoryStore holds carts in process memory. Suitable for tests and
// single-node deployments; expiry is left to process lifetime.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]domain.CartState
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[string]domain.CartState)}
}

func (s *MemoryStore) Create(ctx context.Context) (string, error) {
	cartID := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cartID] = domain.CartState{}
	return cartID, nil
}

func (s *MemoryStore) Get(ctx context.Context, cartID string) (domain.CartState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.carts[cartID]
	if !ok {
		return domain.CartState{}, nil
	}
	return state.Clone(), nil
}

func (s *MemoryStore) Set(ctx context.Context, cartID string, state domain.CartState) error {
	if state == nil {
		state = domain.CartState{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[cartID] = state.Clone()
	return nil
}
