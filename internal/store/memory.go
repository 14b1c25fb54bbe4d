package store

import (
	"context"
	"sync"

	"github.com/serroba/shortener-demo-go/internal/shortener"
)

// MemoryStore is an in-memory registry of codes issued by the mock backend.
// It lives as long as the process and is never persisted.
type MemoryStore struct {
	mu   sync.RWMutex
	urls map[string]string // code -> url
}

// NewMemoryStore creates a new in-memory code registry.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		urls: make(map[string]string),
	}
}

func (m *MemoryStore) SaveIfAbsent(_ context.Context, code, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.urls[code]; ok && existing != url {
		return shortener.ErrCodeTaken
	}

	m.urls[code] = url

	return nil
}

func (m *MemoryStore) Get(_ context.Context, code string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	url, ok := m.urls[code]
	if !ok {
		return "", shortener.ErrNotFound
	}

	return url, nil
}

// Len returns the number of issued codes.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.urls)
}

// Compile-time check.
var _ shortener.Registry = (*MemoryStore)(nil)
