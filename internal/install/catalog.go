// ABOUTME: Combines built-in plugins with installed packages into one plugin set.
// ABOUTME: Serves the decoder manager and the view resolver; rebuilt lazily after changes.

package install

import (
	"sync"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/logger"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

// Catalog is the live plugin set: built-ins first, then installed packages
// in install order.
type Catalog struct {
	builtins  *core.Registry
	installer *Manager

	mu      sync.Mutex
	stale   bool
	plugins *core.Registry
	views   *view.Registry
}

var (
	_ decoder.Loader = (*Catalog)(nil)
	_ view.Source    = (*Catalog)(nil)
)

// NewCatalog subscribes to installer so every change invalidates the set.
// installer may be nil, leaving only the built-ins.
func NewCatalog(builtins *core.Registry, installer *Manager) *Catalog {
	c := &Catalog{
		builtins:  builtins,
		installer: installer,
		stale:     true,
		plugins:   core.NewRegistry(),
		views:     view.NewRegistry(),
	}
	if installer != nil {
		installer.OnChange(func(Event) { c.Invalidate() })
	}
	return c
}

// Invalidate marks the set for rebuilding on next use.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stale = true
}

// LoadDecoders implements decoder.Loader.
func (c *Catalog) LoadDecoders() ([]decoder.Decoder, error) {
	plugins, _, err := c.snapshot()
	if err != nil {
		return nil, err
	}
	return plugins.Decoders(), nil
}

// ViewRegistry implements view.Source. A failed rebuild serves the previous views.
func (c *Catalog) ViewRegistry() *view.Registry {
	_, views, err := c.snapshot()
	if err != nil {
		logger.With("install").Warn("rebuilding views failed, keeping previous set", "error", err)
	}
	return views
}

// Plugins returns every plugin in dispatch order.
func (c *Catalog) Plugins() []core.Plugin {
	plugins, _, err := c.snapshot()
	if err != nil {
		logger.With("install").Warn("rebuilding plugins failed, keeping previous set", "error", err)
	}
	return plugins.All()
}

// Plugin returns the named built-in plugin or installed package.
func (c *Catalog) Plugin(name string) (core.Plugin, bool) {
	plugins, _, err := c.snapshot()
	if err != nil {
		logger.With("install").Warn("rebuilding plugins failed, keeping previous set", "error", err)
	}
	return plugins.Get(name)
}

func (c *Catalog) snapshot() (*core.Registry, *view.Registry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.stale {
		return c.plugins, c.views, nil
	}
	plugins, views, err := c.build()
	if err != nil {
		return c.plugins, c.views, err
	}
	c.plugins, c.views, c.stale = plugins, views, false
	return plugins, views, nil
}

func (c *Catalog) build() (*core.Registry, *view.Registry, error) {
	plugins := core.NewRegistry()
	if c.builtins != nil {
		for _, p := range c.builtins.All() {
			if err := plugins.Register(p); err != nil {
				return nil, nil, err
			}
		}
	}

	if c.installer != nil {
		packages, err := c.installer.List()
		if err != nil {
			return nil, nil, err
		}
		for _, p := range packages {
			if err := plugins.Register(p); err != nil {
				logger.With("install").Warn("package shadows a loaded plugin, skipping", "name", p.Name(), "error", err)
			}
		}
	}

	var bindings []view.Binding
	for _, p := range plugins.All() {
		bindings = append(bindings, p.Views()...)
	}
	return plugins, view.NewRegistry(bindings...), nil
}
