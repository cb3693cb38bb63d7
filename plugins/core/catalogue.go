// ABOUTME: Compile-time catalogue of built-in plugins and named classes.
// ABOUTME: Built-in plugins register here from init(); installed packages reference classes by name.

package core

import (
	"fmt"
	"sort"
	"sync"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/view"
)

// DecoderFactory builds a fresh decoder instance for a class name.
type DecoderFactory func() decoder.Decoder

// ViewFactory builds a fresh view provider for a class name.
type ViewFactory func() view.Provider

var (
	catalogueMu    sync.RWMutex
	builtins       = make(map[string]Plugin)
	builtinOrder   []string
	decoderClasses = make(map[string]DecoderFactory)
	viewClasses    = make(map[string]ViewFactory)
)

// Register adds a built-in plugin. Called from init(); duplicates panic.
func Register(p Plugin) {
	catalogueMu.Lock()
	defer catalogueMu.Unlock()

	name := p.Name()
	if _, exists := builtins[name]; exists {
		panic(fmt.Sprintf("plugin %q already registered", name))
	}
	builtins[name] = p
	builtinOrder = append(builtinOrder, name)
}

// Builtins returns a new Registry holding every built-in plugin.
func Builtins() *Registry {
	catalogueMu.RLock()
	defer catalogueMu.RUnlock()

	r := NewRegistry()
	for _, name := range builtinOrder {
		// names are unique in the catalogue
		_ = r.Register(builtins[name])
	}
	return r
}

// RegisterDecoderClass makes a decoder available to installed packages under class.
func RegisterDecoderClass(class string, f DecoderFactory) {
	catalogueMu.Lock()
	defer catalogueMu.Unlock()

	if _, exists := decoderClasses[class]; exists {
		panic(fmt.Sprintf("decoder class %q already registered", class))
	}
	decoderClasses[class] = f
}

// RegisterViewClass makes a view provider available to installed packages under class.
func RegisterViewClass(class string, f ViewFactory) {
	catalogueMu.Lock()
	defer catalogueMu.Unlock()

	if _, exists := viewClasses[class]; exists {
		panic(fmt.Sprintf("view class %q already registered", class))
	}
	viewClasses[class] = f
}

// DecoderClass instantiates the decoder registered under class.
func DecoderClass(class string) (decoder.Decoder, bool) {
	catalogueMu.RLock()
	f, ok := decoderClasses[class]
	catalogueMu.RUnlock()
	if !ok {
		return nil, false
	}
	return f(), true
}

// ViewClass instantiates the view provider registered under class.
func ViewClass(class string) (view.Provider, bool) {
	catalogueMu.RLock()
	f, ok := viewClasses[class]
	catalogueMu.RUnlock()
	if !ok {
		return nil, false
	}
	return f(), true
}

// Classes lists registered class names per destination, sorted.
func Classes() map[string][]string {
	catalogueMu.RLock()
	defer catalogueMu.RUnlock()

	out := map[string][]string{"decoder": {}, "view": {}}
	for name := range decoderClasses {
		out["decoder"] = append(out["decoder"], name)
	}
	for name := range viewClasses {
		out["view"] = append(out["view"], name)
	}
	sort.Strings(out["decoder"])
	sort.Strings(out["view"])
	return out
}
