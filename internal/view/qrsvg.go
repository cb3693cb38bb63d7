package view

import (
	"fmt"
	"strings"

	"rsc.io/qr"
)

// generateQRSVG produces a self-contained SVG string for the given QR data.
// White background, black modules; safe to inline in HTML.
func generateQRSVG(data string, size int) (string, error) {
	code, err := qr.Encode(data, qr.M)
	if err != nil {
		return "", fmt.Errorf("failed to encode QR: %w", err)
	}

	n := code.Size
	if n == 0 {
		return "", fmt.Errorf("empty QR code")
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d" shape-rendering="crispEdges">`,
		n, n, size, size,
	))
	sb.WriteString(fmt.Sprintf(`<rect width="%d" height="%d" fill="#fff"/>`, n, n))

	// one path per row keeps the markup small for dense codes
	for y := 0; y < n; y++ {
		var row strings.Builder
		for x := 0; x < n; x++ {
			if code.Black(x, y) {
				row.WriteString(fmt.Sprintf("M%d %dh1v1h-1z", x, y))
			}
		}
		if row.Len() > 0 {
			sb.WriteString(`<path fill="#000" d="` + row.String() + `"/>`)
		}
	}

	sb.WriteString(`</svg>`)
	return sb.String(), nil
}
