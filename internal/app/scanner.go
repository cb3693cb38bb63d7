// ABOUTME: Decodes payloads and records them in scan history.
// ABOUTME: Shared by the HTTP API, the websocket stream and the seed command.

package app

import (
	"context"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/store"
	"github.com/2389/qreader/internal/view"
)

const maxSummary = 120

// ScanStore persists scans. *store.Store implements it.
type ScanStore interface {
	SaveScan(ctx context.Context, scan *store.Scan) error
}

// Scanner couples dispatch with persistence.
type Scanner struct {
	decoders *decoder.Manager
	store    ScanStore
}

// NewScanner returns a scanner. s may be nil, in which case nothing is saved.
func NewScanner(decoders *decoder.Manager, s ScanStore) *Scanner {
	return &Scanner{decoders: decoders, store: s}
}

// Decode dispatches payload and, when save is set, records the outcome for device.
func (sc *Scanner) Decode(ctx context.Context, device string, payload []byte, save bool) (*store.Scan, decoder.Result, error) {
	res := sc.decoders.Resolve(payload)
	scan := NewScan(device, payload, res)

	if save && sc.store != nil {
		if err := sc.store.SaveScan(ctx, scan); err != nil {
			return nil, res, err
		}
	}
	return scan, res, nil
}

// Scan implements seed.Scanner.
func (sc *Scanner) Scan(ctx context.Context, device string, payload []byte) (bool, error) {
	scan, _, err := sc.Decode(ctx, device, payload, true)
	if err != nil {
		return false, err
	}
	return scan.Decoded(), nil
}

// NewScan builds the history row for one dispatch.
func NewScan(device string, payload []byte, res decoder.Result) *store.Scan {
	scan := &store.Scan{
		DeviceID: device,
		Payload:  append([]byte(nil), payload...),
		Scheme:   res.Scheme,
		Decoder:  res.Decoder,
	}
	if res.Code != nil {
		scan.Kind = string(res.Code.Kind())
		scan.Fields = res.Code.Fields()
		scan.Summary = truncate(res.Code.String())
	} else {
		scan.Summary = truncate(view.PrintableText(payload))
	}
	return scan
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxSummary {
		return s
	}
	return string(r[:maxSummary-1]) + "…"
}
