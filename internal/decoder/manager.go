// ABOUTME: Dispatches raw payloads to the first decoder that supports their scheme.
// ABOUTME: Holds an ordered decoder set, optionally rebuilt lazily from a Loader.

package decoder

import (
	"sync"

	"github.com/2389/qreader/internal/logger"
	"github.com/2389/qreader/internal/qrcode"
)

// Loader supplies the full decoder set in priority order.
type Loader interface {
	LoadDecoders() ([]Decoder, error)
}

// Result describes one dispatch.
type Result struct {
	Scheme  string
	Decoder string
	Code    qrcode.QrCode
}

// Manager selects and invokes decoders. Safe for concurrent use.
type Manager struct {
	mu       sync.RWMutex
	loader   Loader
	decoders []Decoder
	stale    bool
}

// NewManager returns a manager over a fixed decoder list. Order is priority.
func NewManager(decoders ...Decoder) *Manager {
	return &Manager{decoders: append([]Decoder(nil), decoders...)}
}

// NewLoadingManager returns a manager that loads its decoders on first use
// and again after every Invalidate.
func NewLoadingManager(loader Loader) *Manager {
	return &Manager{loader: loader, stale: true}
}

// Invalidate drops the loaded set; the next dispatch reloads it.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loader != nil {
		m.stale = true
	}
}

// Decoders returns a snapshot of the current decoder set.
func (m *Manager) Decoders() []Decoder {
	m.refresh()

	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Decoder(nil), m.decoders...)
}

// Select returns the first decoder declaring scheme.
func (m *Manager) Select(scheme string) (Decoder, bool) {
	for _, d := range m.Decoders() {
		if Supports(d, scheme) {
			return d, true
		}
	}
	return nil, false
}

// Decode returns the typed result for data, or nil when no scheme can be
// extracted, no decoder declares it, or the selected decoder rejects it.
func (m *Manager) Decode(data []byte) qrcode.QrCode {
	return m.Resolve(data).Code
}

// Resolve is Decode with the scheme and decoder name that were used. Only the
// first matching decoder runs; a nil result from it is final.
func (m *Manager) Resolve(data []byte) Result {
	scheme, ok := ExtractScheme(data)
	if !ok {
		return Result{}
	}

	d, ok := m.Select(scheme)
	if !ok {
		logger.Debug("no decoder for scheme", "scheme", scheme)
		return Result{Scheme: scheme}
	}

	return Result{Scheme: scheme, Decoder: d.Name(), Code: safeDecode(d, data)}
}

func safeDecode(d Decoder, data []byte) (code qrcode.QrCode) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("decoder panicked", "decoder", d.Name(), "panic", r)
			code = nil
		}
	}()
	return d.Decode(data)
}

func (m *Manager) refresh() {
	m.mu.RLock()
	stale := m.stale
	m.mu.RUnlock()
	if !stale {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stale {
		return
	}

	decoders, err := m.loader.LoadDecoders()
	if err != nil {
		logger.Warn("reloading decoders failed, keeping previous set", "error", err, "decoders", len(m.decoders))
		return
	}
	m.decoders = decoders
	m.stale = false
}
