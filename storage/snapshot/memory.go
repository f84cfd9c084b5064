package snapshot

import (
	"context"
	"sync"
)

// MemStore keeps the collections in memory; used by tests and the memory driver.
type MemStore struct {
	mu    sync.RWMutex
	data  map[string][]byte
	saves int
}

var _ Store = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Load(_ context.Context) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyData(s.data), nil
}

func (s *MemStore) Save(_ context.Context, data map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range copyData(data) {
		s.data[k] = v
	}
	s.saves++
	return nil
}

// Saves returns how many times Save was called.
func (s *MemStore) Saves() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.saves
}

func (s *MemStore) Close() error { return nil }

func copyData(data map[string][]byte) map[string][]byte {
	out := make(map[string][]byte, len(data))
	for k, v := range data {
		out[k] = append([]byte(nil), v...)
	}
	return out
}
