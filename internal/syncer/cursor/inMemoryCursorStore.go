package cursor

import (
	"context"
	"sync"
)

type InMemoryCursorStore struct {
	mu     sync.RWMutex
	marker int64
}

func InitInMemoryCursorStore() *InMemoryCursorStore {
	return &InMemoryCursorStore{}
}

func (s *InMemoryCursorStore) Load(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.marker, nil
}

func (s *InMemoryCursorStore) Save(ctx context.Context, marker int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = marker
	return nil
}

func (s *InMemoryCursorStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.marker = 0
	return nil
}
