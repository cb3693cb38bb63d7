// ABOUTME: Plugin registry for registering and retrieving plugins.
// ABOUTME: Registries are built explicitly and ordered by plugin priority.

package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/2389/qreader/internal/decoder"
)

// Registry holds plugins by name and keeps registration order.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{plugins: make(map[string]Plugin)}
}

// Register adds a plugin to the registry
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := p.Name()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}
	r.plugins[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a plugin by name
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// All returns plugins by priority, ties broken by registration order
func (r *Registry) All() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	plugins := make([]Plugin, 0, len(r.order))
	for _, name := range r.order {
		plugins = append(plugins, r.plugins[name])
	}
	sort.SliceStable(plugins, func(i, j int) bool {
		return plugins[i].Priority() < plugins[j].Priority()
	})
	return plugins
}

// Decoders flattens every plugin's decoders in dispatch order.
func (r *Registry) Decoders() []decoder.Decoder {
	var decoders []decoder.Decoder
	for _, p := range r.All() {
		decoders = append(decoders, p.Decoders()...)
	}
	return decoders
}

// LoadDecoders implements decoder.Loader for a fixed plugin set.
func (r *Registry) LoadDecoders() ([]decoder.Decoder, error) {
	return r.Decoders(), nil
}
