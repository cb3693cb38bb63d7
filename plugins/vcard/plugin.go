// ABOUTME: vCard decoder plugin for BEGIN:VCARD payloads.
// ABOUTME: Contributes the contact decoder and the vcf view class.

package vcard

import (
	"io"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

func init() {
	core.Register(&VCardPlugin{})

	core.RegisterDecoderClass("vcard", func() decoder.Decoder { return NewDecoder() })
	core.RegisterViewClass("vcf", func() view.Provider {
		return view.ProviderFunc(func(w io.Writer, code qrcode.QrCode) error {
			contact, ok := code.(*qrcode.Contact)
			if !ok {
				return view.ErrNoView
			}
			return view.RenderVCF(w, contact)
		})
	})
}

type VCardPlugin struct{}

func (p *VCardPlugin) Name() string {
	return "vcard"
}

func (p *VCardPlugin) Brief() string {
	return "vCard 2.1, 3.0 and 4.0 contacts"
}

func (p *VCardPlugin) Health() core.HealthStatus {
	return core.Healthy("vCard decoder operational")
}

func (p *VCardPlugin) Priority() int {
	return 30
}

func (p *VCardPlugin) Decoders() []decoder.Decoder {
	return []decoder.Decoder{NewDecoder()}
}

func (p *VCardPlugin) Views() []view.Binding {
	return nil
}
