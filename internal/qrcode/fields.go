// ABOUTME: Rebuilds QrCode variants from field maps and compares them by value.
// ABOUTME: Used by declarative package decoders and by the scan history store.

package qrcode

import (
	"fmt"
	"maps"
)

// FromFields builds the variant named by kind from its field map, applying the
// same validation as the constructors.
func FromFields(kind Kind, fields map[string]string) (QrCode, error) {
	switch kind {
	case KindURL:
		return NewURL(fields["link"], fields["title"])
	case KindHTTPLink:
		return NewHTTPLink(fields["link"])
	case KindMail:
		return NewMail(fields["receiver"], fields["subject"], fields["body"])
	case KindSMS:
		return NewSMS(fields["receiver"], fields["body"])
	case KindTelephone:
		return NewTelephone(fields["telephone"])
	case KindText:
		return NewText(fields["text"]), nil
	case KindContact:
		return NewContact(ContactInfo{
			Name:         fields["name"],
			Telephones:   splitList(fields["telephone"]),
			Emails:       splitList(fields["email"]),
			Address:      fields["address"],
			URL:          fields["url"],
			Organization: fields["organization"],
			Note:         fields["note"],
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// Equal reports whether a and b are the same variant with the same values.
func Equal(a, b QrCode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && maps.Equal(a.Fields(), b.Fields())
}
