// ABOUTME: An installed package loaded from its archive.
// ABOUTME: Satisfies the plugin contract so packages dispatch alongside built-ins.

package install

import (
	"fmt"
	"os"
	"time"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/logger"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
	"github.com/Masterminds/semver/v3"
)

// packagePriority orders installed packages after every built-in plugin.
const packagePriority = 1000

// Package is a loaded package archive.
type Package struct {
	Metadata
	SemVer      *semver.Version
	Path        string
	Digest      string
	Size        int64
	InstalledAt time.Time

	decoders []decoder.Decoder
	views    []view.Binding
	skipped  int
}

var _ core.Plugin = (*Package)(nil)

func (p *Package) Name() string  { return p.Metadata.Name }
func (p *Package) Brief() string { return p.Metadata.Brief }
func (p *Package) Priority() int { return packagePriority }

func (p *Package) Health() core.HealthStatus {
	if p.skipped > 0 {
		return core.HealthStatus{
			Status:  "degraded",
			Message: fmt.Sprintf("%d declared classes could not be loaded", p.skipped),
		}
	}
	return core.Healthy(fmt.Sprintf("version %s", p.Version))
}

func (p *Package) Decoders() []decoder.Decoder {
	return append([]decoder.Decoder(nil), p.decoders...)
}

func (p *Package) Views() []view.Binding {
	return append([]view.Binding(nil), p.views...)
}

// load reads and validates an archive. Classes that fail to resolve are
// logged and skipped; a package with no usable class is corrupted.
func load(a *Archive) (*Package, error) {
	md, err := a.Metadata()
	if err != nil {
		return nil, corrupted(err)
	}
	if md.Name == "" {
		return nil, corrupted(fmt.Errorf("package.xml has no name"))
	}
	if !validName(md.Name) {
		return nil, corrupted(fmt.Errorf("invalid package name %q", md.Name))
	}
	sv, err := semver.NewVersion(md.Version)
	if err != nil {
		return nil, corrupted(fmt.Errorf("invalid version %q: %w", md.Version, err))
	}

	p := &Package{Metadata: md, SemVer: sv}
	log := logger.With("install")

	decoderEntries, err := a.Classes(DestinationDecoder)
	if err != nil {
		return nil, corrupted(err)
	}
	for _, e := range decoderEntries {
		d, err := resolveDecoder(a, e)
		if err != nil {
			log.Warn("skipping decoder class", "package", md.Name, "class", e.Class, "error", err)
			p.skipped++
			continue
		}
		p.decoders = append(p.decoders, d)
	}

	viewEntries, err := a.Classes(DestinationView)
	if err != nil {
		return nil, corrupted(err)
	}
	for _, e := range viewEntries {
		b, err := resolveView(a, e)
		if err != nil {
			log.Warn("skipping view class", "package", md.Name, "class", e.Class, "error", err)
			p.skipped++
			continue
		}
		p.views = append(p.views, b)
	}

	if len(p.decoders)+len(p.views) == 0 {
		return nil, corrupted(fmt.Errorf("package %q declares no usable classes", md.Name))
	}
	return p, nil
}

// loadFile loads the package stored at path.
func loadFile(path string) (*Package, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, &IOError{Op: "stat", Path: path, Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &IOError{Op: "read", Path: path, Err: err}
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
	p.Path = path
	p.Digest = digest(data)
	p.Size = info.Size()
	p.InstalledAt = info.ModTime()
	return p, nil
}

func validName(name string) bool {
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return name != "." && name != ".."
}
