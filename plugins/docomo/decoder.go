// ABOUTME: Decodes Docomo KEY:value; payloads into mail, link and contact codes.
// ABOUTME: Values may escape ; : , and \ with a backslash.

package docomo

import (
	"strings"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
)

var schemes = []string{"MATMSG", "MEBKM", "MECARD"}

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Name() string { return "docomo" }

func (d *Decoder) Schemes() []string { return schemes }

func (d *Decoder) Decode(data []byte) qrcode.QrCode {
	scheme, ok := decoder.ExtractScheme(data)
	if !ok {
		return nil
	}

	switch strings.ToUpper(scheme) {
	case "MATMSG":
		return DecodeMail(data)
	case "MEBKM":
		return DecodeBookmark(data)
	case "MECARD":
		return DecodeCard(data)
	default:
		return nil
	}
}

// DecodeMail reads TO (required), SUB and BODY.
func DecodeMail(data []byte) qrcode.QrCode {
	payload := string(data)
	to, ok := decoder.DocomoField(payload, "TO")
	if !ok {
		return nil
	}
	subject, _ := decoder.DocomoField(payload, "SUB")
	body, _ := decoder.DocomoField(payload, "BODY")

	mail, err := qrcode.NewMail(to, subject, body)
	if err != nil {
		return nil
	}
	return mail
}

// DecodeBookmark reads URL (required) and TITLE. Untitled http(s) links become
// HTTPLink; everything else is a URL.
func DecodeBookmark(data []byte) qrcode.QrCode {
	payload := string(data)
	link, ok := decoder.DocomoField(payload, "URL")
	if !ok || link == "" {
		return nil
	}
	title, _ := decoder.DocomoField(payload, "TITLE")

	if title == "" {
		if h, err := qrcode.NewHTTPLink(link); err == nil {
			return h
		}
	}
	u, err := qrcode.NewURL(link, title)
	if err != nil {
		return nil
	}
	return u
}

// DecodeCard reads a MECARD contact.
func DecodeCard(data []byte) qrcode.QrCode {
	payload := string(data)
	name, _ := decoder.DocomoField(payload, "N")
	address, _ := decoder.DocomoField(payload, "ADR")
	link, _ := decoder.DocomoField(payload, "URL")
	org, _ := decoder.DocomoField(payload, "ORG")
	note, _ := decoder.DocomoField(payload, "NOTE")

	contact, err := qrcode.NewContact(qrcode.ContactInfo{
		Name:         name,
		Telephones:   decoder.DocomoFields(payload, "TEL"),
		Emails:       decoder.DocomoFields(payload, "EMAIL"),
		Address:      address,
		URL:          link,
		Organization: org,
		Note:         note,
	})
	if err != nil {
		return nil
	}
	return contact
}
