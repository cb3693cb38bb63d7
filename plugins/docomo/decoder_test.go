// ABOUTME: Tests for the Docomo decoder.
// ABOUTME: Covers MATMSG, MEBKM and MECARD including escapes and missing fields.

package docomo

import (
	"testing"

	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/plugins/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMATMSG(t *testing.T) {
	code := NewDecoder().Decode([]byte("MATMSG:TO:a@b.com;SUB:s;BODY:b;;"))
	require.NotNil(t, code)
	mail, ok := code.(*qrcode.Mail)
	require.True(t, ok)
	assert.Equal(t, "a@b.com", mail.Receiver())
	assert.Equal(t, "s", mail.Subject())
	assert.Equal(t, "b", mail.Body())
}

func TestDecodeMATMSGWithoutReceiver(t *testing.T) {
	assert.Nil(t, NewDecoder().Decode([]byte("MATMSG:SUB:s;BODY:b;;")))
	assert.Nil(t, NewDecoder().Decode([]byte("MATMSG:SUB:re:TO:x;;")), "TO inside the subject is not a field")
	assert.Nil(t, NewDecoder().Decode([]byte("MATMSG:TO:;SUB:s;;")))
}

func TestDecodeMATMSGEscapes(t *testing.T) {
	code := NewDecoder().Decode([]byte(`MATMSG:TO:a@b.com;SUB:re\: lunch;BODY:at 12\; ok?;;`))
	require.NotNil(t, code)
	assert.Equal(t, map[string]string{"receiver": "a@b.com", "subject": "re: lunch", "body": "at 12; ok?"}, code.Fields())
}

func TestDecodeMEBKM(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		kind    qrcode.Kind
		fields  map[string]string
	}{
		{
			name:    "untitled http link",
			payload: `MEBKM:URL:http\://example.com;;`,
			kind:    qrcode.KindHTTPLink,
			fields:  map[string]string{"link": "http://example.com"},
		},
		{
			name:    "titled link",
			payload: `MEBKM:TITLE:Example;URL:https\://example.com;;`,
			kind:    qrcode.KindURL,
			fields:  map[string]string{"link": "https://example.com", "title": "Example"},
		},
		{
			name:    "non-http link",
			payload: `MEBKM:URL:ftp\://example.com;;`,
			kind:    qrcode.KindURL,
			fields:  map[string]string{"link": "ftp://example.com"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := NewDecoder().Decode([]byte(tt.payload))
			require.NotNil(t, code)
			assert.Equal(t, tt.kind, code.Kind())
			assert.Equal(t, tt.fields, code.Fields())
		})
	}

	assert.Nil(t, NewDecoder().Decode([]byte("MEBKM:TITLE:x;;")))
	assert.Nil(t, NewDecoder().Decode([]byte("MEBKM:URL:not a link;;")))
}

func TestDecodeMECARD(t *testing.T) {
	code := NewDecoder().Decode([]byte(`MECARD:N:Doe\,Jane;TEL:+1555;TEL:+1556;EMAIL:j@d.com;ADR:1 Main St;ORG:ACME;NOTE:hi;;`))
	require.NotNil(t, code)
	c, ok := code.(*qrcode.Contact)
	require.True(t, ok)
	assert.Equal(t, "Doe,Jane", c.Name())
	assert.Equal(t, []string{"+1555", "+1556"}, c.Telephones())
	assert.Equal(t, []string{"j@d.com"}, c.Emails())
	assert.Equal(t, "1 Main St", c.Address())
	assert.Equal(t, "ACME", c.Organization())
	assert.Equal(t, "hi", c.Note())

	assert.Nil(t, NewDecoder().Decode([]byte("MECARD:ADR:nowhere;;")), "contact needs name, phone or email")
}

func TestMECARDRoundTrip(t *testing.T) {
	contact, err := qrcode.NewContact(qrcode.ContactInfo{
		Name:       "Jane; the \\ Doe",
		Telephones: []string{"1", "2"},
		Emails:     []string{"a@b.c"},
		URL:        "https://x.y",
		Note:       "a:b,c",
	})
	require.NoError(t, err)

	got := NewDecoder().Decode([]byte(qrcode.Encode(contact)))
	assert.True(t, qrcode.Equal(contact, got), "encoded %q", qrcode.Encode(contact))

	titled, err := qrcode.NewURL("https://example.com", "Ex;ample")
	require.NoError(t, err)
	assert.True(t, qrcode.Equal(titled, NewDecoder().Decode([]byte(qrcode.Encode(titled)))))
}

func TestRegisteredInCatalogue(t *testing.T) {
	p, ok := core.Builtins().Get("docomo")
	require.True(t, ok)
	assert.Equal(t, 20, p.Priority())

	d, ok := core.DecoderClass("docomo.mail")
	require.True(t, ok)
	assert.NotNil(t, d.Decode([]byte("MATMSG:TO:x@y.z;;")))
}
