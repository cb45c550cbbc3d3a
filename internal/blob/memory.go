package blob

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject

	// FailKeys makes Put fail for matching keys; used to exercise
	// partial-failure paths in uploader tests. The count decrements per
	// failure so transient errors can be simulated.
	FailKeys map[string]int
}

type memoryObject struct {
	data []byte
	opts PutOptions
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects:  make(map[string]memoryObject),
		FailKeys: make(map[string]int),
	}
}

func (m *MemoryStore) Put(_ context.Context, key string, data []byte, opts PutOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n, ok := m.FailKeys[key]; ok && n != 0 {
		if n > 0 {
			m.FailKeys[key] = n - 1
		}
		return &transientError{key: key}
	}

	m.objects[key] = memoryObject{data: append([]byte(nil), data...), opts: opts}
	return nil
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound{Key: key}
	}
	return append([]byte(nil), obj.data...), nil
}

func (m *MemoryStore) List(_ context.Context, prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStore) Close() error { return nil }

// Options returns the metadata recorded for a key, for test assertions.
func (m *MemoryStore) Options(key string) (PutOptions, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.opts, ok
}

// Len returns the number of stored objects.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

type transientError struct {
	key string
}

func (e *transientError) Error() string {
	return "simulated put failure: " + e.key
}
