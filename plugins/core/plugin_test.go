// ABOUTME: Tests for plugin interface contracts and health reporting.
// ABOUTME: Validates that the mock plugin satisfies Plugin and health helpers behave.

package core

import "testing"

var _ Plugin = (*mockPlugin)(nil)

func TestHealthy(t *testing.T) {
	status := Healthy("ready")

	if status.Status != "healthy" {
		t.Errorf("expected status 'healthy', got %q", status.Status)
	}
	if status.Message != "ready" {
		t.Errorf("expected message 'ready', got %q", status.Message)
	}
}

func TestPluginInterfaceMetadata(t *testing.T) {
	var p Plugin = &mockPlugin{name: "test-plugin", priority: 7}

	if p.Name() != "test-plugin" {
		t.Errorf("expected Name() to return 'test-plugin', got %q", p.Name())
	}
	if p.Brief() == "" {
		t.Error("expected non-empty Brief()")
	}
	if p.Priority() != 7 {
		t.Errorf("expected Priority() 7, got %d", p.Priority())
	}
	if p.Health().Status != "healthy" {
		t.Errorf("expected healthy plugin, got %q", p.Health().Status)
	}
	if p.Views() != nil {
		t.Error("expected no views from mock plugin")
	}
}
