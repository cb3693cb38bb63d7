// ABOUTME: Tests for plugin registry thread-safe operations and functionality.
// ABOUTME: Validates registration, priority ordering, duplicate detection, and concurrent access.

package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/internal/view"
)

// mockPlugin implements the Plugin interface for testing
type mockPlugin struct {
	name     string
	priority int
	decoders []decoder.Decoder
}

func (m *mockPlugin) Name() string {
	return m.name
}

func (m *mockPlugin) Brief() string {
	return "mock " + m.name
}

func (m *mockPlugin) Health() HealthStatus {
	return Healthy("OK")
}

func (m *mockPlugin) Priority() int {
	return m.priority
}

func (m *mockPlugin) Decoders() []decoder.Decoder {
	return m.decoders
}

func (m *mockPlugin) Views() []view.Binding {
	return nil
}

func TestRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&mockPlugin{name: "test-plugin"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if len(r.plugins) != 1 {
		t.Errorf("expected 1 plugin in registry, got %d", len(r.plugins))
	}

	if _, exists := r.plugins["test-plugin"]; !exists {
		t.Error("plugin 'test-plugin' not found in registry")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(&mockPlugin{name: "duplicate"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := r.Register(&mockPlugin{name: "duplicate"}); err == nil {
		t.Error("expected error on duplicate registration, got nil")
	}
	if len(r.All()) != 1 {
		t.Errorf("duplicate registration changed the registry: %d plugins", len(r.All()))
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockPlugin{name: "test-plugin"})

	retrieved, ok := r.Get("test-plugin")
	if !ok {
		t.Fatal("expected to find 'test-plugin', but it wasn't found")
	}

	if retrieved.Name() != "test-plugin" {
		t.Errorf("expected plugin name 'test-plugin', got %q", retrieved.Name())
	}

	if _, ok := r.Get("non-existent"); ok {
		t.Error("expected Get to return false for non-existent plugin")
	}
}

func TestAllOrdersByPriorityThenRegistration(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockPlugin{name: "late", priority: 50})
	r.Register(&mockPlugin{name: "first-tie", priority: 10})
	r.Register(&mockPlugin{name: "second-tie", priority: 10})
	r.Register(&mockPlugin{name: "middle", priority: 20})

	want := []string{"first-tie", "second-tie", "middle", "late"}
	var got []string
	for _, p := range r.All() {
		got = append(got, p.Name())
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("All() order = %v, want %v", got, want)
	}
}

func TestDecodersFollowPluginOrder(t *testing.T) {
	mk := func(name string) decoder.Decoder {
		return &decoder.Func{ID: name, Accepted: []string{"x"}, Fn: func([]byte) qrcode.QrCode { return qrcode.NewText(name) }}
	}

	r := NewRegistry()
	r.Register(&mockPlugin{name: "b", priority: 2, decoders: []decoder.Decoder{mk("b1")}})
	r.Register(&mockPlugin{name: "a", priority: 1, decoders: []decoder.Decoder{mk("a1"), mk("a2")}})

	decoders, err := r.LoadDecoders()
	if err != nil {
		t.Fatalf("LoadDecoders() error = %v", err)
	}

	var names []string
	for _, d := range decoders {
		names = append(names, d.Name())
	}
	if fmt.Sprint(names) != "[a1 a2 b1]" {
		t.Errorf("decoder order = %v, want [a1 a2 b1]", names)
	}

	// priority decides dispatch
	m := decoder.NewManager(decoders...)
	if got := m.Decode([]byte("x:1")).String(); got != "a1" {
		t.Errorf("Decode() = %q, want a1", got)
	}
}

func TestThreadSafeConcurrentRegistration(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	pluginCount := 100

	for i := 0; i < pluginCount; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			r.Register(&mockPlugin{name: fmt.Sprintf("plugin-%d", index), priority: index % 7})
		}(i)
	}

	wg.Wait()

	if len(r.All()) != pluginCount {
		t.Errorf("expected %d plugins after concurrent registration, got %d", pluginCount, len(r.All()))
	}
}

func TestThreadSafeMixedOperations(t *testing.T) {
	r := NewRegistry()
	for i := 0; i < 5; i++ {
		r.Register(&mockPlugin{name: string(rune('a' + i))})
	}

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(3)

		go func() {
			defer wg.Done()
			r.Get("a")
		}()

		go func() {
			defer wg.Done()
			r.All()
		}()

		go func() {
			defer wg.Done()
			r.Decoders()
		}()
	}

	wg.Wait()

	if len(r.All()) != 5 {
		t.Errorf("inconsistent state: All() returned %d plugins, want 5", len(r.All()))
	}
}

func TestEmptyRegistry(t *testing.T) {
	r := NewRegistry()

	if len(r.All()) != 0 {
		t.Errorf("expected empty All() result, got %d plugins", len(r.All()))
	}

	if len(r.Decoders()) != 0 {
		t.Errorf("expected no decoders, got %d", len(r.Decoders()))
	}

	if _, ok := r.Get("anything"); ok {
		t.Error("expected Get to return false for empty registry")
	}
}

func TestClassCatalogue(t *testing.T) {
	RegisterDecoderClass("test.echo", func() decoder.Decoder {
		return &decoder.Func{ID: "echo", Accepted: []string{"echo"}, Fn: func(b []byte) qrcode.QrCode { return qrcode.NewText(string(b)) }}
	})

	d, ok := DecoderClass("test.echo")
	if !ok {
		t.Fatal("expected test.echo to resolve")
	}
	if d.Name() != "echo" {
		t.Errorf("Name() = %q, want echo", d.Name())
	}

	if _, ok := DecoderClass("test.missing"); ok {
		t.Error("expected unknown class to be missing")
	}
	if _, ok := ViewClass("test.missing"); ok {
		t.Error("expected unknown view class to be missing")
	}

	found := false
	for _, name := range Classes()["decoder"] {
		if name == "test.echo" {
			found = true
		}
	}
	if !found {
		t.Error("Classes() does not list test.echo")
	}

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate class registration")
		}
	}()
	RegisterDecoderClass("test.echo", nil)
}
