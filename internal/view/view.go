// ABOUTME: View providers turn decoded QR codes into presentable output.
// ABOUTME: Built-in variants render by type switch; plugins extend through a keyed registry.

package view

import (
	"errors"
	"io"

	"github.com/2389/qreader/internal/adapter"
	"github.com/2389/qreader/internal/qrcode"
)

// Capability names an output format.
type Capability string

const (
	CapabilityHTML Capability = "html"
	CapabilityText Capability = "text"
	CapabilityVCF  Capability = "vcf"
)

// ErrNoView is returned when nothing can render a code in the requested capability.
// Callers fall back to RenderRaw.
var ErrNoView = errors.New("no view for code")

// Provider renders a code.
type Provider interface {
	Render(w io.Writer, code qrcode.QrCode) error
}

// ProviderFunc adapts a function into a Provider.
type ProviderFunc func(w io.Writer, code qrcode.QrCode) error

func (f ProviderFunc) Render(w io.Writer, code qrcode.QrCode) error {
	return f(w, code)
}

// Key identifies a provider slot.
type Key struct {
	Kind       qrcode.Kind
	Capability Capability
}

// Binding is a provider contributed by a plugin.
type Binding struct {
	Kind       qrcode.Kind
	Capability Capability
	Provider   Provider
}

// Key returns the registry key of b.
func (b Binding) Key() Key {
	return Key{Kind: b.Kind, Capability: b.Capability}
}

// Registry maps (kind, capability) pairs to plugin providers.
type Registry = adapter.Registry[Key, Provider]

// NewRegistry returns a registry holding bindings. Later duplicates are ignored.
func NewRegistry(bindings ...Binding) *Registry {
	r := adapter.New[Key, Provider]()
	for _, b := range bindings {
		r.Register(b.Key(), b.Provider)
	}
	return r
}

// Source supplies the current plugin view registry.
type Source interface {
	ViewRegistry() *Registry
}

// StaticSource is a Source over a fixed registry.
type StaticSource struct {
	Registry *Registry
}

func (s StaticSource) ViewRegistry() *Registry {
	if s.Registry == nil {
		return NewRegistry()
	}
	return s.Registry
}
