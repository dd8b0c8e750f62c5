package cli

import (
	"fmt"
	"io"
	"palettecore/pkg/domain"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Adaptive colors that work in both light and dark terminals.
var (
	ColorSuccess = lipgloss.AdaptiveColor{Dark: "#22c55e", Light: "#16a34a"}
	ColorError   = lipgloss.AdaptiveColor{Dark: "#ef4444", Light: "#dc2626"}
	ColorMuted   = lipgloss.AdaptiveColor{Dark: "#6b7280", Light: "#9ca3af"}
	ColorAccent  = lipgloss.AdaptiveColor{Dark: "#a78bfa", Light: "#7c3aed"}
)

var (
	StyleSuccess = lipgloss.NewStyle().Foreground(ColorSuccess)
	StyleError   = lipgloss.NewStyle().Foreground(ColorError)
	StyleMuted   = lipgloss.NewStyle().Foreground(ColorMuted)
	StyleID      = lipgloss.NewStyle().Foreground(ColorAccent)
	StyleBold    = lipgloss.NewStyle().Bold(true)
)

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconInfo    = "→"
	swatch      = "  "
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", StyleSuccess.Render(IconSuccess), fmt.Sprintf(format, args...))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", StyleMuted.Render(IconInfo), fmt.Sprintf(format, args...))
}

// RenderID renders a numeric id in the accent color.
func RenderID(id int64) string {
	return StyleID.Render(fmt.Sprintf("#%d", id))
}

// RenderSwatch renders a block in the color's own hex value. Colors without a
// hex value render as muted placeholders.
func RenderSwatch(hex string) string {
	if hex == "" {
		return StyleMuted.Render("··")
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}
	return lipgloss.NewStyle().Background(lipgloss.Color(hex)).Render(swatch)
}

func colorLine(c domain.Color) string {
	label := c.Name
	if c.VendorCode != "" {
		label = strings.TrimSpace(c.VendorCode + " " + c.Name)
	}
	family := "-"
	if c.Family != nil {
		family = string(*c.Family)
	}
	return fmt.Sprintf("%s %s  %s  %s", RenderSwatch(c.Hex), RenderID(c.ID), label, StyleMuted.Render(family))
}
