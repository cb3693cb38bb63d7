// ABOUTME: Base decoder plugin for web links, mail, telephone and SMS payloads.
// ABOUTME: Registers the standard URI schemes and the generic html/text view classes.

package base

import (
	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

func init() {
	core.Register(&BasePlugin{})

	core.RegisterDecoderClass("base", func() decoder.Decoder { return NewDecoder() })
	core.RegisterDecoderClass("base.http", func() decoder.Decoder {
		return &decoder.Func{ID: "base.http", Accepted: []string{"http", "https"}, Fn: DecodeHTTP}
	})
	core.RegisterDecoderClass("base.url", func() decoder.Decoder {
		return &decoder.Func{ID: "base.url", Accepted: []string{"URLTO"}, Fn: DecodeURL}
	})
	core.RegisterDecoderClass("base.mailto", func() decoder.Decoder {
		return &decoder.Func{ID: "base.mailto", Accepted: []string{"mailto"}, Fn: DecodeMailto}
	})
	core.RegisterDecoderClass("base.tel", func() decoder.Decoder {
		return &decoder.Func{ID: "base.tel", Accepted: []string{"tel"}, Fn: DecodeTel}
	})
	core.RegisterDecoderClass("base.sms", func() decoder.Decoder {
		return &decoder.Func{ID: "base.sms", Accepted: []string{"sms", "SMSTO"}, Fn: DecodeSMS}
	})

	core.RegisterViewClass("html", func() view.Provider { return view.ProviderFunc(view.RenderHTML) })
	core.RegisterViewClass("text", func() view.Provider { return view.ProviderFunc(view.RenderText) })
}

type BasePlugin struct{}

func (p *BasePlugin) Name() string {
	return "base"
}

func (p *BasePlugin) Brief() string {
	return "Web links, e-mail, telephone and SMS"
}

func (p *BasePlugin) Health() core.HealthStatus {
	return core.Healthy("Base decoder operational")
}

func (p *BasePlugin) Priority() int {
	return 10
}

func (p *BasePlugin) Decoders() []decoder.Decoder {
	return []decoder.Decoder{NewDecoder()}
}

func (p *BasePlugin) Views() []view.Binding {
	return nil
}
