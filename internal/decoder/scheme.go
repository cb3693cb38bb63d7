// ABOUTME: Extracts the leading scheme token from a raw QR payload.
// ABOUTME: The token selects which registered decoder handles the payload.

package decoder

const (
	firstPrintable = 0x20
	lastPrintable  = 0x7e
)

// ExtractScheme returns the bytes before the first ':' in data. It reports
// false when data is empty, holds no colon, starts with one, or when a byte
// outside printable ASCII appears before the colon.
func ExtractScheme(data []byte) (string, bool) {
	for i, b := range data {
		if b == ':' {
			if i == 0 {
				return "", false
			}
			return string(data[:i]), true
		}
		if b < firstPrintable || b > lastPrintable {
			return "", false
		}
	}
	return "", false
}
