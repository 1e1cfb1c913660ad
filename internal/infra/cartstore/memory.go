package cartstore

import (
	"context"
	"sync"

	"storefront/internal/domain/model"
)

// REDIS_URL が無いときのプロセス内保存
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[string]model.CartSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: map[string]model.CartSnapshot{}}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (model.CartSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.carts[sessionID]
	if !ok {
		return model.CartSnapshot{Items: []model.CartItem{}}, nil
	}
	items := make([]model.CartItem, len(snap.Items))
	copy(items, snap.Items)
	return model.CartSnapshot{Items: items}, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, snap model.CartSnapshot) error {
	items := make([]model.CartItem, len(snap.Items))
	copy(items, snap.Items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[sessionID] = model.CartSnapshot{Items: items}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
	return nil
}
