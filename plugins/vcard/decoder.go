// ABOUTME: Parses vCard text (2.1, 3.0, 4.0) into a Contact.
// ABOUTME: Handles folded lines, property groups, parameters and quoted-printable values.

package vcard

import (
	"io"
	"mime/quotedprintable"
	"regexp"
	"strings"

	"github.com/2389/qreader/internal/qrcode"
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Name() string { return "vcard" }

func (d *Decoder) Schemes() []string { return []string{"BEGIN"} }

func (d *Decoder) Decode(data []byte) qrcode.QrCode {
	props, ok := parse(string(data))
	if !ok {
		return nil
	}

	info := qrcode.ContactInfo{}
	for _, p := range props {
		switch p.name {
		case "FN":
			info.Name = unescape(p.value)
		case "N":
			if info.Name == "" {
				info.Name = structuredName(p.value)
			}
		case "TEL":
			info.Telephones = append(info.Telephones, strings.TrimPrefix(unescape(p.value), "tel:"))
		case "EMAIL":
			info.Emails = append(info.Emails, unescape(p.value))
		case "ADR":
			if info.Address == "" {
				info.Address = joinComponents(p.value, ", ")
			}
		case "URL":
			if info.URL == "" {
				info.URL = unescape(p.value)
			}
		case "ORG":
			if info.Organization == "" {
				info.Organization = joinComponents(p.value, ", ")
			}
		case "NOTE":
			if info.Note == "" {
				info.Note = unescape(p.value)
			}
		}
	}

	contact, err := qrcode.NewContact(info)
	if err != nil {
		return nil
	}
	return contact
}

type property struct {
	name   string
	params map[string]string
	value  string
}

var folding = regexp.MustCompile(`\r?\n[ \t]`)

// parse unfolds and splits a BEGIN:VCARD ... END:VCARD block.
func parse(text string) ([]property, bool) {
	text = folding.ReplaceAllString(text, "")
	lines := strings.FieldsFunc(text, func(r rune) bool { return r == '\n' || r == '\r' })
	if len(lines) < 2 || !strings.EqualFold(strings.TrimSpace(lines[0]), "BEGIN:VCARD") {
		return nil, false
	}

	var props []property
	for _, line := range lines[1:] {
		if strings.EqualFold(strings.TrimSpace(line), "END:VCARD") {
			return props, true
		}
		p, ok := parseLine(line)
		if !ok {
			continue
		}
		props = append(props, p)
	}
	return nil, false
}

func parseLine(line string) (property, bool) {
	head, value, ok := strings.Cut(line, ":")
	if !ok {
		return property{}, false
	}

	parts := strings.Split(head, ";")
	name := strings.ToUpper(parts[0])
	if _, after, grouped := strings.Cut(name, "."); grouped {
		name = after
	}

	params := make(map[string]string)
	for _, param := range parts[1:] {
		k, v, hasValue := strings.Cut(param, "=")
		if !hasValue {
			// vCard 2.1 bare parameter such as TEL;CELL
			params["TYPE"] = strings.ToUpper(k)
			continue
		}
		params[strings.ToUpper(k)] = v
	}

	if strings.EqualFold(params["ENCODING"], "QUOTED-PRINTABLE") {
		if decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(value))); err == nil {
			value = string(decoded)
		}
	}

	return property{name: name, params: params, value: value}, true
}

// structuredName turns Family;Given;Additional;Prefix;Suffix into display order.
func structuredName(value string) string {
	parts := splitEscaped(value, ';')
	for len(parts) < 5 {
		parts = append(parts, "")
	}
	order := []string{parts[3], parts[1], parts[2], parts[0], parts[4]}
	var out []string
	for _, p := range order {
		if p = strings.TrimSpace(unescape(p)); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

func joinComponents(value, sep string) string {
	var out []string
	for _, p := range splitEscaped(value, ';') {
		if p = strings.TrimSpace(unescape(p)); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}

// splitEscaped splits on sep, ignoring backslash-escaped separators.
func splitEscaped(s string, sep byte) []string {
	var parts []string
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case sep:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

var unescaper = strings.NewReplacer(`\\`, `\`, `\n`, "\n", `\N`, "\n", `\,`, ",", `\;`, ";", `\:`, ":")

func unescape(s string) string {
	return unescaper.Replace(s)
}
