// Package registry provides a small thread-safe keyed registry.
package registry

import (
	"sort"
	"sync"
)

// Registry holds values indexed by a string key.
// It uses sync.RWMutex since lookups vastly outnumber registrations.
type Registry[V any] struct {
	mu      sync.RWMutex
	entries map[string]V
}

// New creates an empty registry.
func New[V any]() *Registry[V] {
	return &Registry[V]{
		entries: make(map[string]V),
	}
}

// Register adds or replaces the value for key.
func (r *Registry[V]) Register(key string, value V) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[key] = value
}

// Get returns the value for key and whether it exists.
func (r *Registry[V]) Get(key string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[key]
	return v, ok
}

// Has reports whether key is registered.
func (r *Registry[V]) Has(key string) bool {
	_, ok := r.Get(key)
	return ok
}

// Keys returns the registered keys in sorted order.
func (r *Registry[V]) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of entries.
func (r *Registry[V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
