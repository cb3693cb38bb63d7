// ABOUTME: Resolves the provider for a (code, capability) pair.
// ABOUTME: Built-in variants are matched first; plugin bindings fill the remaining slots.

package view

import (
	"fmt"
	"io"

	"github.com/2389/qreader/internal/qrcode"
)

// Origin tells where a listed view comes from.
type Origin string

const (
	OriginBuiltin Origin = "builtin"
	OriginPlugin  Origin = "plugin"
)

// Listing describes one available view.
type Listing struct {
	Kind       qrcode.Kind `json:"kind"`
	Capability Capability  `json:"capability"`
	Origin     Origin      `json:"origin"`
}

// Resolver finds providers. Safe for concurrent use when its Source is.
type Resolver struct {
	source Source
}

// NewResolver returns a resolver consulting source for plugin views.
// A nil source means built-ins only.
func NewResolver(source Source) *Resolver {
	if source == nil {
		source = StaticSource{}
	}
	return &Resolver{source: source}
}

// Resolve returns the provider for code in capability, or ErrNoView.
func (r *Resolver) Resolve(code qrcode.QrCode, capability Capability) (Provider, error) {
	if code == nil {
		return nil, ErrNoView
	}
	if p, ok := builtin(code, capability); ok {
		return p, nil
	}
	if p, ok := r.source.ViewRegistry().Lookup(Key{Kind: code.Kind(), Capability: capability}); ok {
		return p, nil
	}
	return nil, fmt.Errorf("%w: %s as %s", ErrNoView, code.Kind(), capability)
}

// Render resolves and runs the provider for code.
func (r *Resolver) Render(w io.Writer, code qrcode.QrCode, capability Capability) error {
	p, err := r.Resolve(code, capability)
	if err != nil {
		return err
	}
	return p.Render(w, code)
}

// Capabilities lists every capability code can be rendered in.
func (r *Resolver) Capabilities(code qrcode.QrCode) []Capability {
	if code == nil {
		return nil
	}
	var out []Capability
	seen := make(map[Capability]bool)
	for _, l := range r.Views() {
		if l.Kind == code.Kind() && !seen[l.Capability] {
			seen[l.Capability] = true
			out = append(out, l.Capability)
		}
	}
	return out
}

// Views lists built-in views followed by plugin views that are not shadowed by one.
func (r *Resolver) Views() []Listing {
	var out []Listing
	builtins := make(map[Key]bool)
	for _, kind := range qrcode.Kinds() {
		for _, c := range builtinCapabilities(kind) {
			builtins[Key{Kind: kind, Capability: c}] = true
			out = append(out, Listing{Kind: kind, Capability: c, Origin: OriginBuiltin})
		}
	}
	for _, k := range r.source.ViewRegistry().Keys() {
		if builtins[k] {
			continue
		}
		out = append(out, Listing{Kind: k.Kind, Capability: k.Capability, Origin: OriginPlugin})
	}
	return out
}

func builtinCapabilities(kind qrcode.Kind) []Capability {
	if kind == qrcode.KindContact {
		return []Capability{CapabilityHTML, CapabilityText, CapabilityVCF}
	}
	return []Capability{CapabilityHTML, CapabilityText}
}

func builtin(code qrcode.QrCode, capability Capability) (Provider, bool) {
	switch c := code.(type) {
	case *qrcode.Contact:
		switch capability {
		case CapabilityHTML:
			return ProviderFunc(RenderHTML), true
		case CapabilityText:
			return ProviderFunc(RenderText), true
		case CapabilityVCF:
			return ProviderFunc(func(w io.Writer, _ qrcode.QrCode) error { return RenderVCF(w, c) }), true
		}
	case *qrcode.URL, *qrcode.HTTPLink, *qrcode.Mail, *qrcode.SMS, *qrcode.Telephone, *qrcode.Text:
		switch capability {
		case CapabilityHTML:
			return ProviderFunc(RenderHTML), true
		case CapabilityText:
			return ProviderFunc(RenderText), true
		}
	}
	return nil, false
}
