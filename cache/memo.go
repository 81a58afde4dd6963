// Package cache provides bounded memoisation backed by an LRU.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memo remembers the results of a pure function for the most recently used
// keys.
type Memo[K comparable, V any] struct {
	cache *lru.Cache[K, V]
	mu    sync.RWMutex
}

// NewMemo creates a memo holding at most size entries.
func NewMemo[K comparable, V any](size int) (*Memo[K, V], error) {
	c, err := lru.New[K, V](size)
	if err != nil {
		return nil, err
	}
	return &Memo[K, V]{cache: c}, nil
}

// GetOrCompute returns the cached value for key, calling compute and storing
// its result on a miss.
func (m *Memo[K, V]) GetOrCompute(key K, compute func(K) V) V {
	// Fast path
	m.mu.RLock()
	if v, ok := m.cache.Get(key); ok {
		m.mu.RUnlock()
		return v
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if v, ok := m.cache.Get(key); ok {
		return v
	}
	v := compute(key)
	m.cache.Add(key, v)
	return v
}
