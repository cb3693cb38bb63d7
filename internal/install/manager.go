// ABOUTME: Installs, removes and lists package archives in the private packages directory.
// ABOUTME: The directory is authoritative; the SQLite catalogue mirrors it and listeners hear every change.

package install

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/2389/qreader/internal/logger"
	"github.com/2389/qreader/internal/store"
	"golang.org/x/crypto/blake2b"
)

// Catalogue persists package metadata. *store.Store implements it.
type Catalogue interface {
	UpsertPackage(ctx context.Context, p *store.PackageRecord) error
	DeletePackage(ctx context.Context, name string) error
	ListPackages(ctx context.Context) ([]*store.PackageRecord, error)
}

// EventType names a change to the installed set.
type EventType string

const (
	EventInstalled EventType = "installed"
	EventRemoved   EventType = "removed"
	EventSynced    EventType = "synced"
)

// Event describes a change to the installed set.
type Event struct {
	Type    EventType
	Package string
	Version string
}

// Manager owns the packages directory. Install and Remove are serialised.
type Manager struct {
	mu        sync.Mutex
	dir       string
	catalogue Catalogue

	listenersMu sync.RWMutex
	listeners   []func(Event)
}

// NewManager creates dir if needed. catalogue may be nil.
func NewManager(dir string, catalogue Catalogue) (*Manager, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	return &Manager{dir: dir, catalogue: catalogue}, nil
}

// Dir returns the packages directory.
func (m *Manager) Dir() string {
	return m.dir
}

// OnChange registers fn to run after every install, removal and sync.
// Listeners run synchronously in registration order.
func (m *Manager) OnChange(fn func(Event)) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(e Event) {
	m.listenersMu.RLock()
	listeners := append(([]func(Event))(nil), m.listeners...)
	m.listenersMu.RUnlock()

	for _, fn := range listeners {
		fn(e)
	}
}

// Install copies the archive at src into the packages directory.
func (m *Manager) Install(ctx context.Context, src string) (*Package, error) {
	if !hasExtension(src) {
		return nil, corrupted(fmt.Errorf("%s does not have the %s extension", src, Extension))
	}
	f, err := os.Open(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, src)
		}
		return nil, &IOError{Op: "open", Path: src, Err: err}
	}
	defer f.Close()

	return m.InstallReader(ctx, filepath.Base(src), f)
}

// InstallReader installs an archive read from r; filename supplies the extension check.
func (m *Manager) InstallReader(ctx context.Context, filename string, r io.Reader) (*Package, error) {
	if !hasExtension(filename) {
		return nil, corrupted(fmt.Errorf("%s does not have the %s extension", filename, Extension))
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &IOError{Op: "read", Path: filename, Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a, err := ReadArchive(data)
	if err != nil {
		return nil, corrupted(err)
	}
	defer a.Close()

	p, err := load(a)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	dest := m.path(p.Name())
	if existing, err := loadFile(dest); err == nil && existing.SemVer.GreaterThan(p.SemVer) {
		return nil, fmt.Errorf("%w: %s %s is newer than %s", ErrOutdated, p.Name(), existing.Version, p.Version)
	}

	if err := writeAtomic(dest, data); err != nil {
		return nil, err
	}

	p.Path = dest
	p.Digest = digest(data)
	p.Size = int64(len(data))
	p.InstalledAt = time.Now().UTC()
	if info, err := os.Stat(dest); err == nil {
		p.InstalledAt = info.ModTime()
	}

	m.record(ctx, p)
	logger.With("install").Info("package installed", "name", p.Name(), "version", p.Version,
		"decoders", len(p.decoders), "views", len(p.views))

	m.notify(Event{Type: EventInstalled, Package: p.Name(), Version: p.Version})
	return p, nil
}

// Remove deletes the named package.
func (m *Manager) Remove(ctx context.Context, name string) error {
	if !validName(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.path(name)
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", ErrNotFound, name)
		}
		return &IOError{Op: "remove", Path: p, Err: err}
	}

	if m.catalogue != nil {
		if err := m.catalogue.DeletePackage(ctx, name); err != nil {
			logger.With("install").Warn("failed to delete catalogue row", "name", name, "error", err)
		}
	}
	logger.With("install").Info("package removed", "name", name)

	m.notify(Event{Type: EventRemoved, Package: name})
	return nil
}

// Get loads the named package.
func (m *Manager) Get(name string) (*Package, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return loadFile(m.path(name))
}

// List loads every package in the directory in install order. Archives that
// no longer load are logged and left out.
func (m *Manager) List() ([]*Package, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, &IOError{Op: "readdir", Path: m.dir, Err: err}
	}

	var packages []*Package
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !hasExtension(entry.Name()) {
			continue
		}
		p, err := loadFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			logger.With("install").Warn("skipping unreadable package", "file", entry.Name(), "error", err)
			continue
		}
		packages = append(packages, p)
	}

	sort.SliceStable(packages, func(i, j int) bool {
		if !packages[i].InstalledAt.Equal(packages[j].InstalledAt) {
			return packages[i].InstalledAt.Before(packages[j].InstalledAt)
		}
		return packages[i].Name() < packages[j].Name()
	})
	return packages, nil
}

// Sync makes the catalogue match the directory.
func (m *Manager) Sync(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	packages, err := m.List()
	if err != nil {
		return err
	}

	removed := 0
	if m.catalogue != nil {
		present := make(map[string]bool, len(packages))
		for _, p := range packages {
			present[p.Name()] = true
			m.record(ctx, p)
		}

		records, err := m.catalogue.ListPackages(ctx)
		if err != nil {
			return fmt.Errorf("list catalogue: %w", err)
		}
		for _, r := range records {
			if present[r.Name] {
				continue
			}
			if err := m.catalogue.DeletePackage(ctx, r.Name); err != nil {
				return fmt.Errorf("delete stale catalogue row %q: %w", r.Name, err)
			}
			removed++
		}
	}

	logger.With("install").Info("packages synced", "installed", len(packages), "stale_rows", removed)
	m.notify(Event{Type: EventSynced})
	return nil
}

func (m *Manager) record(ctx context.Context, p *Package) {
	if m.catalogue == nil {
		return
	}
	err := m.catalogue.UpsertPackage(ctx, &store.PackageRecord{
		Name:         p.Name(),
		Brief:        p.Brief(),
		Version:      p.Version,
		Digest:       p.Digest,
		SizeBytes:    p.Size,
		DecoderCount: len(p.decoders),
		ViewCount:    len(p.views),
		InstalledAt:  p.InstalledAt.UTC(),
	})
	if err != nil {
		logger.With("install").Warn("failed to record package", "name", p.Name(), "error", err)
	}
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.dir, name+Extension)
}

func hasExtension(name string) bool {
	return strings.EqualFold(filepath.Ext(name), Extension)
}

// writeAtomic writes data next to dest and renames it into place.
func writeAtomic(dest string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".install-*")
	if err != nil {
		return &IOError{Op: "create", Path: dest, Err: err}
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return &IOError{Op: "write", Path: dest, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return &IOError{Op: "sync", Path: dest, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &IOError{Op: "close", Path: dest, Err: err}
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		cleanup()
		return &IOError{Op: "rename", Path: dest, Err: err}
	}
	return nil
}

func digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
