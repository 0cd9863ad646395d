package store

import (
	"context"
	"sync"
)

// MemoryStore is a map-backed Store for tests and local development.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Get(_ context.Context, profileID, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[profileID+":"+key]
	if !ok {
		return nil, ErrNotFound
	}
	cp := make([]byte, len(val))
	copy(cp, val)
	return cp, nil
}

func (s *MemoryStore) Set(_ context.Context, profileID, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[profileID+":"+key] = cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, profileID, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, profileID+":"+key)
	return nil
}
