// ABOUTME: Generic key to value registry used to map decoded kinds to view providers.
// ABOUTME: Registration is idempotent: the first registrant of a key wins.

package adapter

import "sync"

// Registry maps keys to values. Safe for concurrent use.
type Registry[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]V
	order   []K
}

// New returns an empty registry.
func New[K comparable, V any]() *Registry[K, V] {
	return &Registry[K, V]{entries: make(map[K]V)}
}

// Register stores v under k unless k is already present. It reports whether
// the value was stored; an existing entry is never overwritten.
func (r *Registry[K, V]) Register(k K, v V) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[K]V)
	}
	if _, exists := r.entries[k]; exists {
		return false
	}
	r.entries[k] = v
	r.order = append(r.order, k)
	return true
}

// Lookup returns the value registered under k.
func (r *Registry[K, V]) Lookup(k K) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[k]
	return v, ok
}

// Keys returns registered keys in registration order.
func (r *Registry[K, V]) Keys() []K {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]K(nil), r.order...)
}

// Len returns the number of entries.
func (r *Registry[K, V]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
