// ABOUTME: Core plugin interface for the qreader plugin system.
// ABOUTME: A plugin contributes decoders and, optionally, view providers.

package core

import (
	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/view"
)

// Plugin defines the contract shared by built-in decoder packages and
// installed packages.
type Plugin interface {
	// Metadata
	Name() string
	Brief() string
	Health() HealthStatus

	// Priority orders plugins; lower values dispatch first.
	Priority() int

	// Contributions
	Decoders() []decoder.Decoder
	Views() []view.Binding
}

// HealthStatus represents plugin health
type HealthStatus struct {
	Status  string `json:"status"` // "healthy", "degraded", "unavailable"
	Message string `json:"message"`
}

// Healthy is the status reported by plugins with nothing to check.
func Healthy(message string) HealthStatus {
	return HealthStatus{Status: "healthy", Message: message}
}
