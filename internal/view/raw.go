// ABOUTME: Raw fallback display for payloads that could not be decoded or viewed.
// ABOUTME: Shows a hex dump next to the printable text of the bytes.

package view

import (
	"encoding/hex"
	"io"
	"strings"
)

// RenderRaw writes a hex dump of data followed by its printable text.
func RenderRaw(w io.Writer, data []byte) error {
	if _, err := io.WriteString(w, hex.Dump(data)); err != nil {
		return err
	}
	_, err := io.WriteString(w, PrintableText(data)+"\n")
	return err
}

// PrintableText replaces every byte outside printable ASCII, other than
// newlines and tabs, with a dot.
func PrintableText(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data))
	for _, b := range data {
		switch {
		case b == '\n' || b == '\t':
			sb.WriteByte(b)
		case b >= 0x20 && b <= 0x7e:
			sb.WriteByte(b)
		default:
			sb.WriteByte('.')
		}
	}
	return sb.String()
}
