// ABOUTME: Decoder contract shared by built-in and installed decoders.
// ABOUTME: A decoder declares its schemes and turns raw bytes into a QrCode or nil.

package decoder

import (
	"strings"

	"github.com/2389/qreader/internal/qrcode"
)

// Decoder converts payloads of the schemes it declares into typed results.
// Decode returns nil when the payload is malformed for the matched scheme.
type Decoder interface {
	Name() string
	Schemes() []string
	Decode(data []byte) qrcode.QrCode
}

// Supports reports whether d declares scheme, ignoring case.
func Supports(d Decoder, scheme string) bool {
	for _, s := range d.Schemes() {
		if strings.EqualFold(s, scheme) {
			return true
		}
	}
	return false
}

// Func adapts a plain function into a Decoder.
type Func struct {
	ID       string
	Accepted []string
	Fn       func(data []byte) qrcode.QrCode
}

func (f *Func) Name() string                     { return f.ID }
func (f *Func) Schemes() []string                { return f.Accepted }
func (f *Func) Decode(data []byte) qrcode.QrCode { return f.Fn(data) }

type redeclared struct {
	Decoder
	schemes []string
}

func (r *redeclared) Schemes() []string { return r.schemes }

// WithSchemes returns d declared under a different scheme list.
func WithSchemes(d Decoder, schemes []string) Decoder {
	return &redeclared{Decoder: d, schemes: append([]string(nil), schemes...)}
}

// Remainder returns data after its extracted scheme and colon.
func Remainder(data []byte) (string, bool) {
	scheme, ok := ExtractScheme(data)
	if !ok {
		return "", false
	}
	return string(data[len(scheme)+1:]), true
}
