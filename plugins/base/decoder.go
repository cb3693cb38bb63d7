// ABOUTME: Decodes standard URI payloads (http, URLTO, mailto, tel, sms) into typed codes.
// ABOUTME: Malformed payloads yield nil; nothing here returns errors or panics.

package base

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
)

var schemes = []string{"http", "https", "URLTO", "mailto", "tel", "sms", "SMSTO"}

// Decoder handles every scheme of the base plugin.
type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Name() string { return "base" }

func (d *Decoder) Schemes() []string { return schemes }

func (d *Decoder) Decode(data []byte) qrcode.QrCode {
	scheme, ok := decoder.ExtractScheme(data)
	if !ok {
		return nil
	}

	switch strings.ToLower(scheme) {
	case "http", "https":
		return DecodeHTTP(data)
	case "urlto":
		return DecodeURL(data)
	case "mailto":
		return DecodeMailto(data)
	case "tel":
		return DecodeTel(data)
	case "sms", "smsto":
		return DecodeSMS(data)
	default:
		return nil
	}
}

// DecodeHTTP accepts the whole payload as an absolute http(s) URL.
func DecodeHTTP(data []byte) qrcode.QrCode {
	link, err := qrcode.NewHTTPLink(string(data))
	if err != nil {
		return nil
	}
	return link
}

// DecodeURL parses the text after the scheme as an absolute URI.
func DecodeURL(data []byte) qrcode.QrCode {
	rest, ok := decoder.Remainder(data)
	if !ok {
		return nil
	}
	u, err := qrcode.NewURL(strings.TrimSpace(rest), "")
	if err != nil {
		return nil
	}
	return u
}

var (
	subjectPattern = regexp.MustCompile(`(?i)(?:^|&)subject=([^&]*)`)
	bodyPattern    = regexp.MustCompile(`(?i)(?:^|&)body=([^&]*)`)
)

// DecodeMailto reads receiver, subject and body from a mailto URI.
func DecodeMailto(data []byte) qrcode.QrCode {
	if _, err := url.Parse(string(data)); err != nil {
		return nil
	}
	rest, ok := decoder.Remainder(data)
	if !ok {
		return nil
	}

	receiver, query, _ := strings.Cut(rest, "?")
	var subject, body string
	if m := subjectPattern.FindStringSubmatch(query); m != nil {
		subject = decoder.PathUnescape(m[1])
	}
	if m := bodyPattern.FindStringSubmatch(query); m != nil {
		body = decoder.PathUnescape(m[1])
	}

	mail, err := qrcode.NewMail(decoder.PathUnescape(receiver), subject, body)
	if err != nil {
		return nil
	}
	return mail
}

// DecodeTel takes everything after the scheme as the number.
func DecodeTel(data []byte) qrcode.QrCode {
	rest, ok := decoder.Remainder(data)
	if !ok {
		return nil
	}
	tel, err := qrcode.NewTelephone(rest)
	if err != nil {
		return nil
	}
	return tel
}

// DecodeSMS reads receivers and body from sms/SMSTO payloads.
func DecodeSMS(data []byte) qrcode.QrCode {
	rest, ok := decoder.Remainder(data)
	if !ok {
		return nil
	}
	receiver, body, ok := decoder.ParseSMS(rest)
	if !ok {
		return nil
	}
	sms, err := qrcode.NewSMS(receiver, body)
	if err != nil {
		return nil
	}
	return sms
}
