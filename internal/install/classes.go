// ABOUTME: Resolves class declarations of a package into decoders and view bindings.
// ABOUTME: Compiled classes come from the catalogue; others from classes/<class>.xml definitions.

package install

import (
	"bytes"
	"encoding/xml"
	"fmt"
	htmltemplate "html/template"
	"io"
	"regexp"
	"strings"
	"text/template"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/internal/view"
	"github.com/2389/qreader/plugins/core"
)

type decoderDefinition struct {
	XMLName xml.Name          `xml:"decoder"`
	Kind    string            `xml:"kind,attr"`
	Pattern string            `xml:"pattern"`
	Fields  []fieldDefinition `xml:"field"`
}

type fieldDefinition struct {
	Name     string `xml:"name,attr"`
	Template string `xml:"template,attr"`
	Body     string `xml:",chardata"`
}

type viewDefinition struct {
	XMLName  xml.Name `xml:"view"`
	Template string   `xml:"template"`
}

// patternDecoder decodes with a regular expression whose named groups feed
// one text template per result field.
type patternDecoder struct {
	name    string
	kind    qrcode.Kind
	pattern *regexp.Regexp
	fields  map[string]*template.Template
}

func (d *patternDecoder) Name() string      { return d.name }
func (d *patternDecoder) Schemes() []string { return nil }

func (d *patternDecoder) Decode(data []byte) qrcode.QrCode {
	scheme, _ := decoder.ExtractScheme(data)
	rest, ok := decoder.Remainder(data)
	if !ok {
		return nil
	}
	m := d.pattern.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}

	groups := map[string]string{"scheme": scheme, "payload": rest}
	for i, name := range d.pattern.SubexpNames() {
		if name != "" {
			groups[name] = m[i]
		}
	}

	fields := make(map[string]string, len(d.fields))
	for name, tmpl := range d.fields {
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, groups); err != nil {
			return nil
		}
		fields[name] = buf.String()
	}

	code, err := qrcode.FromFields(d.kind, fields)
	if err != nil {
		return nil
	}
	return code
}

func parseDecoderDefinition(name string, data []byte) (decoder.Decoder, error) {
	var def decoderDefinition
	if err := xml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse decoder definition: %w", err)
	}

	kind := qrcode.Kind(def.Kind)
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", qrcode.ErrUnknownKind, def.Kind)
	}
	re, err := regexp.Compile(strings.TrimSpace(def.Pattern))
	if err != nil {
		return nil, fmt.Errorf("compile pattern: %w", err)
	}
	if len(def.Fields) == 0 {
		return nil, fmt.Errorf("decoder definition %q has no fields", name)
	}

	d := &patternDecoder{name: name, kind: kind, pattern: re, fields: make(map[string]*template.Template)}
	for _, f := range def.Fields {
		text := f.Template
		if text == "" {
			text = strings.TrimSpace(f.Body)
		}
		tmpl, err := template.New(f.Name).Option("missingkey=zero").Parse(text)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		d.fields[f.Name] = tmpl
	}
	return d, nil
}

// viewData is what view definition templates execute against.
type viewData struct {
	Kind    string
	Text    string
	Payload string
	Fields  map[string]string
}

func parseViewDefinition(data []byte) (view.Provider, error) {
	var def viewDefinition
	if err := xml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parse view definition: %w", err)
	}
	tmpl, err := htmltemplate.New("view").Parse(strings.TrimSpace(def.Template))
	if err != nil {
		return nil, fmt.Errorf("parse view template: %w", err)
	}

	return view.ProviderFunc(func(w io.Writer, code qrcode.QrCode) error {
		return tmpl.Execute(w, viewData{
			Kind:    string(code.Kind()),
			Text:    code.String(),
			Payload: qrcode.Encode(code),
			Fields:  code.Fields(),
		})
	}), nil
}

// resolveDecoder turns a decoder entry into a decoder declared under the
// entry's schemes (comma separated).
func resolveDecoder(a *Archive, e Entry) (decoder.Decoder, error) {
	var schemes []string
	for _, s := range strings.Split(e.Scheme(), ",") {
		if s = strings.TrimSpace(s); s != "" {
			schemes = append(schemes, s)
		}
	}
	if len(schemes) == 0 {
		return nil, fmt.Errorf("decoder class %q declares no scheme", e.Class)
	}

	if d, ok := core.DecoderClass(e.Class); ok {
		return decoder.WithSchemes(d, schemes), nil
	}
	data, ok := a.Definition(e.Class)
	if !ok {
		return nil, fmt.Errorf("unknown decoder class %q", e.Class)
	}
	d, err := parseDecoderDefinition(e.Class, data)
	if err != nil {
		return nil, err
	}
	return decoder.WithSchemes(d, schemes), nil
}

// resolveView turns a view entry into a binding.
func resolveView(a *Archive, e Entry) (view.Binding, error) {
	kind := qrcode.Kind(e.Kind())
	if !kind.Valid() {
		return view.Binding{}, fmt.Errorf("view class %q: %w: %q", e.Class, qrcode.ErrUnknownKind, e.Kind())
	}
	if e.Capability() == "" {
		return view.Binding{}, fmt.Errorf("view class %q declares no capability", e.Class)
	}
	binding := view.Binding{Kind: kind, Capability: view.Capability(e.Capability())}

	if p, ok := core.ViewClass(e.Class); ok {
		binding.Provider = p
		return binding, nil
	}
	data, ok := a.Definition(e.Class)
	if !ok {
		return view.Binding{}, fmt.Errorf("unknown view class %q", e.Class)
	}
	p, err := parseViewDefinition(data)
	if err != nil {
		return view.Binding{}, err
	}
	binding.Provider = p
	return binding, nil
}
