// ABOUTME: Decodes MMSTO drafts and BIZCARD business cards.
// ABOUTME: MMSTO shares the SMSTO grammar; BIZCARD uses KEY:value; fields.

package zxing

import (
	"strings"

	"github.com/2389/qreader/internal/decoder"
	"github.com/2389/qreader/internal/qrcode"
)

type Decoder struct{}

func NewDecoder() *Decoder {
	return &Decoder{}
}

func (d *Decoder) Name() string { return "zxing" }

func (d *Decoder) Schemes() []string { return []string{"MMSTO", "BIZCARD"} }

func (d *Decoder) Decode(data []byte) qrcode.QrCode {
	scheme, ok := decoder.ExtractScheme(data)
	if !ok {
		return nil
	}

	switch strings.ToUpper(scheme) {
	case "MMSTO":
		return DecodeMMS(data)
	case "BIZCARD":
		return DecodeBizCard(data)
	default:
		return nil
	}
}

// DecodeMMS reads an MMSTO:number:body draft as an SMS.
func DecodeMMS(data []byte) qrcode.QrCode {
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

// DecodeBizCard reads N (first name), X (last name), T (title), C (company),
// A (address), B and M (phones), E (email).
func DecodeBizCard(data []byte) qrcode.QrCode {
	payload := string(data)
	field := func(key string) string {
		v, _ := decoder.DocomoField(payload, key)
		return strings.TrimSpace(v)
	}

	name := strings.TrimSpace(field("N") + " " + field("X"))
	var telephones []string
	telephones = append(telephones, decoder.DocomoFields(payload, "B")...)
	telephones = append(telephones, decoder.DocomoFields(payload, "M")...)

	contact, err := qrcode.NewContact(qrcode.ContactInfo{
		Name:         name,
		Telephones:   telephones,
		Emails:       decoder.DocomoFields(payload, "E"),
		Address:      field("A"),
		Organization: field("C"),
		Note:         field("T"),
	})
	if err != nil {
		return nil
	}
	return contact
}
