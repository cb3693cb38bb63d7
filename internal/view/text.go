// ABOUTME: Terminal renderer for decoded QR codes styled with lipgloss.
// ABOUTME: Prints the kind title followed by aligned label/value lines.

package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/2389/qreader/internal/qrcode"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.AdaptiveColor{Light: "#5A2D91", Dark: "#B388FF"})
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#9E9E9E"})
	actionStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#64B5F6"})
)

// RenderText writes a plain-terminal view of code.
func RenderText(w io.Writer, code qrcode.QrCode) error {
	schema := SchemaFor(code.Kind())
	fields := code.Fields()

	width := 0
	for _, f := range schema.Fields {
		if _, ok := fields[f.Name]; ok && len(f.Display) > width {
			width = len(f.Display)
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(schema.Display))
	sb.WriteString("\n")
	for _, f := range schema.Fields {
		value, ok := fields[f.Name]
		if !ok {
			continue
		}
		label := fmt.Sprintf("%-*s", width, f.Display)
		sb.WriteString("  " + labelStyle.Render(label) + "  " + indentContinuation(value, width+4) + "\n")
	}

	for _, a := range Actions(code) {
		if a.Href == "" {
			continue
		}
		sb.WriteString("  " + actionStyle.Render(a.Label+": "+a.Href) + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func indentContinuation(value string, indent int) string {
	return strings.ReplaceAll(value, "\n", "\n"+strings.Repeat(" ", indent))
}
