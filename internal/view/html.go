// ABOUTME: HTML renderer for decoded QR codes.
// ABOUTME: Generates semantic HTML with Tailwind CSS from kind display schemas.

package view

import (
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/2389/qreader/internal/qrcode"
)

const qrImageSize = 192

// RenderHTML writes a detail card for code: field list, actions and a QR image
// of the canonical payload.
func RenderHTML(w io.Writer, code qrcode.QrCode) error {
	schema := SchemaFor(code.Kind())
	fields := code.Fields()

	var sb strings.Builder
	sb.WriteString(`<div class="bg-white rounded-lg shadow overflow-hidden">`)
	sb.WriteString(fmt.Sprintf(`<div class="px-6 py-4 border-b border-gray-200"><h2 class="text-lg font-semibold text-gray-900">%s</h2></div>`,
		html.EscapeString(schema.Display)))

	sb.WriteString(`<div class="flex flex-col md:flex-row">`)
	sb.WriteString(`<dl class="flex-1 divide-y divide-gray-200">`)
	for _, field := range schema.Fields {
		value, ok := fields[field.Name]
		if !ok {
			continue
		}
		sb.WriteString(`<div class="px-6 py-4 grid grid-cols-3 gap-4">`)
		sb.WriteString(fmt.Sprintf(`<dt class="text-sm font-medium text-gray-500">%s</dt>`,
			html.EscapeString(field.Display)))
		sb.WriteString(fmt.Sprintf(`<dd class="text-sm text-gray-900 col-span-2">%s</dd>`,
			formatHTMLValue(field.Type, value)))
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</dl>`)

	if svg, err := generateQRSVG(qrcode.Encode(code), qrImageSize); err == nil {
		sb.WriteString(`<div class="p-6 flex-none">`)
		sb.WriteString(svg)
		sb.WriteString(`</div>`)
	}
	sb.WriteString(`</div>`)

	if actions := Actions(code); len(actions) > 0 {
		sb.WriteString(`<div class="px-6 py-4 bg-gray-50 space-x-3">`)
		sb.WriteString(RenderActions(actions))
		sb.WriteString(`</div>`)
	}

	sb.WriteString(`</div>`)

	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderActions generates action links. Actions without an href render as
// disabled buttons carrying their name for client-side handling.
func RenderActions(actions []Action) string {
	var sb strings.Builder

	for i, action := range actions {
		if i > 0 {
			sb.WriteString(" ")
		}
		if action.Href == "" || !SafeHref(action.Href) {
			sb.WriteString(fmt.Sprintf(`<button type="button" data-action="%s" class="text-blue-600 hover:text-blue-900">%s</button>`,
				html.EscapeString(action.Name),
				html.EscapeString(action.Label)))
			continue
		}
		sb.WriteString(fmt.Sprintf(`<a href="%s" data-action="%s" class="text-blue-600 hover:text-blue-900">%s</a>`,
			html.EscapeString(action.Href),
			html.EscapeString(action.Name),
			html.EscapeString(action.Label)))
	}

	return sb.String()
}

func formatHTMLValue(fieldType, value string) string {
	if value == "" {
		return `<span class="text-gray-400">No value</span>`
	}

	switch fieldType {
	case "link":
		if !SafeHref(value) {
			return `<span class="break-all">` + html.EscapeString(value) + `</span>`
		}
		return fmt.Sprintf(`<a href="%s" class="text-blue-600 hover:text-blue-900 break-all">%s</a>`,
			html.EscapeString(value), html.EscapeString(value))
	case "email":
		var links []string
		for _, e := range strings.Split(value, ",") {
			links = append(links, fmt.Sprintf(`<a href="mailto:%s" class="text-blue-600 hover:text-blue-900">%s</a>`,
				html.EscapeString(e), html.EscapeString(e)))
		}
		return strings.Join(links, ", ")
	case "tel":
		var links []string
		for _, t := range strings.Split(value, ",") {
			links = append(links, fmt.Sprintf(`<a href="tel:%s" class="text-blue-600 hover:text-blue-900">%s</a>`,
				html.EscapeString(t), html.EscapeString(t)))
		}
		return strings.Join(links, ", ")
	case "multiline":
		return `<span class="whitespace-pre-wrap">` + html.EscapeString(value) + `</span>`
	default:
		return html.EscapeString(value)
	}
}
