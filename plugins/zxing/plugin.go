// ABOUTME: Decoder plugin for the MMSTO and BIZCARD formats popularised by ZXing.
// ABOUTME: Registers the plugin and its decoder classes in the built-in catalogue.

package zxing

import (
	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

func init() {
	core.Register(&ZXingPlugin{})

	core.RegisterDecoderClass("zxing", func() decoder.Decoder { return NewDecoder() })
	core.RegisterDecoderClass("zxing.bizcard", func() decoder.Decoder {
		return &decoder.Func{ID: "zxing.bizcard", Accepted: []string{"BIZCARD"}, Fn: DecodeBizCard}
	})
}

type ZXingPlugin struct{}

func (p *ZXingPlugin) Name() string {
	return "zxing"
}

func (p *ZXingPlugin) Brief() string {
	return "MMS drafts and business cards"
}

func (p *ZXingPlugin) Health() core.HealthStatus {
	return core.Healthy("ZXing formats decoder operational")
}

func (p *ZXingPlugin) Priority() int {
	return 40
}

func (p *ZXingPlugin) Decoders() []decoder.Decoder {
	return []decoder.Decoder{NewDecoder()}
}

func (p *ZXingPlugin) Views() []view.Binding {
	return nil
}
