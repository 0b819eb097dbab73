package memory

import (
	"context"
	"fmt"
	"notion-mini/core"
	"sync"
)

type keyValueStore struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func NewKeyValueStore() core.KeyValueStore {
	return &keyValueStore{values: make(map[string][]byte)}
}

func (s *keyValueStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if val, ok := s.values[key]; ok {
		return append([]byte(nil), val...), nil
	}
	return nil, fmt.Errorf("key %s: %w", key, core.ErrNotFound)
}

func (s *keyValueStore) Set(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = append([]byte(nil), value...)
	return nil
}
