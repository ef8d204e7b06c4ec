package kvstore

import (
	"fmt"
	"sync"
)

// InMemory is a Store backed by a map
type InMemory struct {
	mu     sync.RWMutex
	values map[string]string
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty in-memory store
func NewInMemory() *InMemory {
	return &InMemory{
		values: make(map[string]string),
	}
}

func (m *InMemory) Get(key string) (string, error) {
	if key == "" {
		return "", fmt.Errorf("key is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound
	}
	return v, nil
}

func (m *InMemory) Set(key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.values[key] = value
	return nil
}

func (m *InMemory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Len reports the number of stored keys
func (m *InMemory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
