// ABOUTME: Plain text decoder plugin for TEXT: payloads.
// ABOUTME: Lowest priority built-in; its decoder class also serves as a catch-all for packages.

package text

import (
	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

func init() {
	core.Register(&TextPlugin{})
	core.RegisterDecoderClass("text", func() decoder.Decoder { return NewDecoder() })
}

type TextPlugin struct{}

func (p *TextPlugin) Name() string {
	return "text"
}

func (p *TextPlugin) Brief() string {
	return "Free text"
}

func (p *TextPlugin) Health() core.HealthStatus {
	return core.Healthy("Text decoder operational")
}

func (p *TextPlugin) Priority() int {
	return 50
}

func (p *TextPlugin) Decoders() []decoder.Decoder {
	return []decoder.Decoder{NewDecoder()}
}

func (p *TextPlugin) Views() []view.Binding {
	return nil
}

// NewDecoder returns a decoder turning everything after the scheme into Text.
func NewDecoder() decoder.Decoder {
	return &decoder.Func{ID: "text", Accepted: []string{"TEXT"}, Fn: decode}
}

func decode(data []byte) qrcode.QrCode {
	rest, ok := decoder.Remainder(data)
	if !ok {
		return nil
	}
	return qrcode.NewText(rest)
}
