// ABOUTME: Builds the dependency graph shared by the server and the CLI commands.
// ABOUTME: Store, install manager, plugin catalog, decoder dispatch, view resolver and scanner.

package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/2389/qreader/internal/config"
	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/install"
	"github.com/2389/qreader/internal/logger"
	"github.com/2389/qreader/internal/store"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

// Wire bundles every long-lived component.
type Wire struct {
	Config    *config.Config
	Store     *store.Store
	Installer *install.Manager
	Catalog   *install.Catalog
	Decoders  *decoder.Manager
	Views     *view.Resolver
	Scanner   *Scanner
}

// NewWire constructs the dependency graph from cfg and reconciles the package
// catalogue with the packages directory.
func NewWire(ctx context.Context, cfg *config.Config) (*Wire, error) {
	if cfg.DBPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	s, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	installer, err := install.NewManager(cfg.PackagesDir, s)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to open packages directory: %w", err)
	}

	// The catalog subscribes first so decoders always reload from a fresh plugin set
	catalog := install.NewCatalog(core.Builtins(), installer)
	decoders := decoder.NewLoadingManager(catalog)
	installer.OnChange(func(install.Event) { decoders.Invalidate() })

	if err := installer.Sync(ctx); err != nil {
		logger.Warn("package catalogue sync failed", "error", err)
	}

	return &Wire{
		Config:    cfg,
		Store:     s,
		Installer: installer,
		Catalog:   catalog,
		Decoders:  decoders,
		Views:     view.NewResolver(catalog),
		Scanner:   NewScanner(decoders, s),
	}, nil
}

// Close releases the store.
func (w *Wire) Close() error {
	return w.Store.Close()
}
