package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store used by tests and the memory backend.
// An optional capacity (total encoded bytes) simulates a full store.
type MemoryStore struct {
	mu       sync.Mutex
	values   map[string][]byte
	capacity int // 0 means unbounded
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}}
}

// NewBoundedMemoryStore caps the total encoded size so ErrStorageFull paths
// can be exercised.
func NewBoundedMemoryStore(capacity int) *MemoryStore {
	return &MemoryStore{values: map[string][]byte{}, capacity: capacity}
}

func (s *MemoryStore) Get(_ context.Context, key string, into any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return true, fmt.Errorf("decode key %s: %w", key, err)
	}
	return true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode key %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capacity > 0 {
		total := len(raw)
		for k, v := range s.values {
			if k != key {
				total += len(v)
			}
		}
		if total > s.capacity {
			return fmt.Errorf("write key %s: %w", key, ErrStorageFull)
		}
	}
	s.values[key] = raw
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	s.values = map[string][]byte{}
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a key with unparseable bytes. Test hook for the
// state-reset recovery path.
func (s *MemoryStore) Corrupt(key string) {
	s.mu.Lock()
	s.values[key] = []byte("{not json")
	s.mu.Unlock()
}
