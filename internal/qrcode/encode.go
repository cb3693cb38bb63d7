// ABOUTME: Formats a QrCode back into a payload string suitable for a QR symbol.
// ABOUTME: Output uses the schemes the built-in decoders read, so it decodes to an equal value.

package qrcode

import (
	"net/url"
	"strings"
)

// Encode returns the canonical payload for code.
func Encode(code QrCode) string {
	switch c := code.(type) {
	case *URL:
		if c.title != "" {
			return "MEBKM:TITLE:" + docomoEscape(c.title) + ";URL:" + docomoEscape(c.link) + ";;"
		}
		return "URLTO:" + c.link
	case *HTTPLink:
		return c.link
	case *Mail:
		query := url.Values{}
		if c.subject != "" {
			query.Set("subject", c.subject)
		}
		if c.body != "" {
			query.Set("body", c.body)
		}
		s := "mailto:" + url.PathEscape(c.receiver)
		if len(query) > 0 {
			s += "?" + query.Encode()
		}
		return s
	case *SMS:
		return "SMSTO:" + c.receiver + ":" + c.body
	case *Telephone:
		return "tel:" + c.telephone
	case *Text:
		return "TEXT:" + c.text
	case *Contact:
		var sb strings.Builder
		sb.WriteString("MECARD:")
		field := func(key, value string) {
			if value != "" {
				sb.WriteString(key + ":" + docomoEscape(value) + ";")
			}
		}
		field("N", c.name)
		for _, t := range c.telephones {
			field("TEL", t)
		}
		for _, e := range c.emails {
			field("EMAIL", e)
		}
		field("ADR", c.address)
		field("URL", c.url)
		field("ORG", c.organization)
		field("NOTE", c.note)
		sb.WriteString(";")
		return sb.String()
	default:
		return ""
	}
}

var docomoEscaper = strings.NewReplacer(`\`, `\\`, `;`, `\;`, `:`, `\:`, `,`, `\,`)

func docomoEscape(s string) string {
	return docomoEscaper.Replace(s)
}
