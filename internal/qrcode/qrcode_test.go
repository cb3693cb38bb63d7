// ABOUTME: Tests for QrCode constructors, field maps and value equality.
// ABOUTME: Covers validation failures and FromFields reconstruction for every kind.

package qrcode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPLink(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"plain http", "http://example.com", false},
		{"https with path", "https://example.com/a?b=c", false},
		{"upper case scheme", "HTTP://EXAMPLE.COM", false},
		{"not a url", "not a url", true},
		{"relative", "/just/a/path", true},
		{"other scheme", "ftp://example.com", true},
		{"no host", "http:opaque", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link, err := NewHTTPLink(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLink)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.raw, link.Link())
			assert.Equal(t, KindHTTPLink, link.Kind())
		})
	}
}

func TestConstructorsRejectMissingValues(t *testing.T) {
	_, err := NewMail("", "s", "b")
	assert.ErrorIs(t, err, ErrMissingReceiver)

	_, err = NewSMS("  ", "hi")
	assert.ErrorIs(t, err, ErrMissingReceiver)

	_, err = NewTelephone("")
	assert.ErrorIs(t, err, ErrEmptyTelephone)

	_, err = NewContact(ContactInfo{Address: "somewhere"})
	assert.ErrorIs(t, err, ErrEmptyContact)

	_, err = NewURL("example.com", "")
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestFieldsOmitEmptyValues(t *testing.T) {
	mail, err := NewMail("a@b.com", "", "hello")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"receiver": "a@b.com", "body": "hello"}, mail.Fields())
}

func TestSMSReceivers(t *testing.T) {
	sms, err := NewSMS("555, 556,,557", "")
	require.NoError(t, err)

	assert.Equal(t, []string{"555", "556", "557"}, sms.Receivers())
}

func TestFromFieldsRoundTrip(t *testing.T) {
	url, _ := NewURL("geo:1,2", "Office")
	link, _ := NewHTTPLink("http://example.com")
	mail, _ := NewMail("a@b.com", "s", "b")
	sms, _ := NewSMS("555,555", "hi")
	tel, _ := NewTelephone("12345")
	contact, _ := NewContact(ContactInfo{
		Name:       "Doe,John",
		Telephones: []string{"+1555", "+1556"},
		Emails:     []string{"j@d.com"},
		Note:       "met at conf",
	})

	codes := []QrCode{url, link, mail, sms, tel, NewText("free text"), contact}
	for _, code := range codes {
		t.Run(string(code.Kind()), func(t *testing.T) {
			rebuilt, err := FromFields(code.Kind(), code.Fields())
			require.NoError(t, err)
			assert.True(t, Equal(code, rebuilt), "rebuilt %v != %v", rebuilt.Fields(), code.Fields())
		})
	}
}

func TestFromFieldsUnknownKind(t *testing.T) {
	_, err := FromFields(Kind("hologram"), nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
	assert.False(t, Kind("hologram").Valid())
	assert.True(t, KindContact.Valid())
}

func TestEqual(t *testing.T) {
	a, _ := NewTelephone("1")
	b, _ := NewTelephone("1")
	c, _ := NewTelephone("2")

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, NewText("1")))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(a, nil))
}

func TestContactAccessorsCopy(t *testing.T) {
	contact, err := NewContact(ContactInfo{Name: "Ann", Telephones: []string{"1"}})
	require.NoError(t, err)

	phones := contact.Telephones()
	phones[0] = "changed"
	assert.Equal(t, []string{"1"}, contact.Telephones())
}
