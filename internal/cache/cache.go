// Package cache memoizes calculation reports by their input tuple. Results
// are pure functions of the key, so a cache only saves work.
package cache

import (
	"context"
	"sync"
)

// Cache stores serialized reports by key.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key string, value string) error
}

// MemoryCache is an in-process Cache bounded to a number of entries. When
// full, it starts over empty.
type MemoryCache struct {
	mu         sync.RWMutex
	data       map[string]string
	maxEntries int
}

// NewMemoryCache returns a MemoryCache holding at most maxEntries reports;
// zero or less means unbounded.
func NewMemoryCache(maxEntries int) *MemoryCache {
	return &MemoryCache{
		data:       make(map[string]string),
		maxEntries: maxEntries,
	}
}

// Get implements Cache.
func (m *MemoryCache) Get(_ context.Context, key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	val, ok := m.data[key]
	return val, ok
}

// Set implements Cache.
func (m *MemoryCache) Set(_ context.Context, key string, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.data[key]; !exists && m.maxEntries > 0 && len(m.data) >= m.maxEntries {
		m.data = make(map[string]string)
	}
	m.data[key] = value
	return nil
}

// Len returns the number of stored entries.
func (m *MemoryCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// NopCache never stores anything.
type NopCache struct{}

// Get implements Cache.
func (NopCache) Get(context.Context, string) (string, bool) { return "", false }

// Set implements Cache.
func (NopCache) Set(context.Context, string, string) error { return nil }
