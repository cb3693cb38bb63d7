// ABOUTME: Docomo decoder plugin for MATMSG, MEBKM and MECARD payloads.
// ABOUTME: Registers the plugin and its decoder classes in the built-in catalogue.

package docomo

import (
	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

func init() {
	core.Register(&DocomoPlugin{})

	core.RegisterDecoderClass("docomo", func() decoder.Decoder { return NewDecoder() })
	core.RegisterDecoderClass("docomo.mail", func() decoder.Decoder {
		return &decoder.Func{ID: "docomo.mail", Accepted: []string{"MATMSG"}, Fn: DecodeMail}
	})
	core.RegisterDecoderClass("docomo.bookmark", func() decoder.Decoder {
		return &decoder.Func{ID: "docomo.bookmark", Accepted: []string{"MEBKM"}, Fn: DecodeBookmark}
	})
	core.RegisterDecoderClass("docomo.card", func() decoder.Decoder {
		return &decoder.Func{ID: "docomo.card", Accepted: []string{"MECARD"}, Fn: DecodeCard}
	})
}

type DocomoPlugin struct{}

func (p *DocomoPlugin) Name() string {
	return "docomo"
}

func (p *DocomoPlugin) Brief() string {
	return "NTT Docomo mail, bookmark and contact formats"
}

func (p *DocomoPlugin) Health() core.HealthStatus {
	return core.Healthy("Docomo decoder operational")
}

func (p *DocomoPlugin) Priority() int {
	return 20
}

func (p *DocomoPlugin) Decoders() []decoder.Decoder {
	return []decoder.Decoder{NewDecoder()}
}

func (p *DocomoPlugin) Views() []view.Binding {
	return nil
}
