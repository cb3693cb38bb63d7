// ABOUTME: vCard 3.0 export for contacts.
// ABOUTME: Lines are CRLF terminated and values escaped per RFC 2426.

package view

import (
	"io"
	"strings"

	"github.com/2389/qreader/internal/qrcode"
)

var vcardEscaper = strings.NewReplacer(`\`, `\\`, ",", `\,`, ";", `\;`, "\r\n", `\n`, "\n", `\n`)

// RenderVCF writes contact as a vCard.
func RenderVCF(w io.Writer, contact *qrcode.Contact) error {
	var sb strings.Builder
	line := func(name, value string) {
		if value != "" {
			sb.WriteString(name + ":" + value + "\r\n")
		}
	}

	line("BEGIN", "VCARD")
	line("VERSION", "3.0")

	name := contact.Name()
	if name == "" {
		name = contact.String()
	}
	line("FN", vcardEscaper.Replace(name))
	line("N", vcardEscaper.Replace(name)+";;;;")
	line("ORG", vcardEscaper.Replace(contact.Organization()))
	for _, t := range contact.Telephones() {
		line("TEL;TYPE=VOICE", vcardEscaper.Replace(t))
	}
	for _, e := range contact.Emails() {
		line("EMAIL;TYPE=INTERNET", vcardEscaper.Replace(e))
	}
	if contact.Address() != "" {
		line("ADR", ";;"+vcardEscaper.Replace(contact.Address())+";;;;")
	}
	line("URL", contact.URL())
	line("NOTE", vcardEscaper.Replace(contact.Note()))
	line("END", "VCARD")

	_, err := io.WriteString(w, sb.String())
	return err
}
