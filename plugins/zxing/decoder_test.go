// ABOUTME: Tests for the MMSTO and BIZCARD decoders.
// ABOUTME: Checks field mapping and rejection of empty cards.

package zxing

import (
	"testing"

	"github.com/2389/qreader/internal/qrcode"
	"github.com/2389/qreader/plugins/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeMMSTO(t *testing.T) {
	code := NewDecoder().Decode([]byte("MMSTO:+1555:photo attached"))
	require.NotNil(t, code)
	sms, ok := code.(*qrcode.SMS)
	require.True(t, ok)
	assert.Equal(t, "+1555", sms.Receiver())
	assert.Equal(t, "photo attached", sms.Body())

	assert.Nil(t, NewDecoder().Decode([]byte("MMSTO:")))
}

func TestDecodeBIZCARD(t *testing.T) {
	code := NewDecoder().Decode([]byte("BIZCARD:N:Sean;X:Owen;T:Software Engineer;C:Google;" +
		"A:76 9th Avenue, New York;B:+12125551212;M:+12125551213;E:srowen@example.com;;"))
	require.NotNil(t, code)
	c, ok := code.(*qrcode.Contact)
	require.True(t, ok)

	assert.Equal(t, "Sean Owen", c.Name())
	assert.Equal(t, "Google", c.Organization())
	assert.Equal(t, "Software Engineer", c.Note())
	assert.Equal(t, "76 9th Avenue, New York", c.Address())
	assert.Equal(t, []string{"+12125551212", "+12125551213"}, c.Telephones())
	assert.Equal(t, []string{"srowen@example.com"}, c.Emails())
}

func TestDecodeBIZCARDEmpty(t *testing.T) {
	assert.Nil(t, NewDecoder().Decode([]byte("BIZCARD:C:Nobody Inc;;")))
}

func TestRegistered(t *testing.T) {
	p, ok := core.Builtins().Get("zxing")
	require.True(t, ok)
	assert.Equal(t, 40, p.Priority())

	_, ok = core.DecoderClass("zxing.bizcard")
	assert.True(t, ok)
}
