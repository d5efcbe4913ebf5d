// Package styles defines the colour palette and shared lipgloss styles
// for the terminal UI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Palette names the colours the TUI draws with. Views never pick
// colours directly; they render through the Styles built from a
// palette, so swapping the palette restyles the whole UI.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
	Chrome     lipgloss.Color
}

// DefaultPalette is the built-in dark palette.
func DefaultPalette() Palette {
	return Palette{
		Primary:    "#89B4FA", // blue
		Secondary:  "#94E2D5", // teal
		Foreground: "#CDD6F4",
		Muted:      "#6C7086",
		Success:    "#A6E3A1",
		Error:      "#F38BA8",
		Border:     "#45475A",
		Chrome:     "#181825", // status bar background
	}
}

// Styles holds the pre-built lipgloss styles the views render with.
// Every view shares one instance so the look stays consistent.
type Styles struct {
	palette Palette

	// Text.
	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Help     lipgloss.Style

	// Containers and chrome.
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles builds the style set from a palette.
func NewStyles(p Palette) *Styles {
	base := lipgloss.NewStyle().Foreground(p.Foreground)
	frame := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border)

	return &Styles{
		palette: p,

		Title:    lipgloss.NewStyle().Foreground(p.Primary).Bold(true),
		Subtitle: lipgloss.NewStyle().Foreground(p.Secondary).Bold(true),
		Normal:   base,
		Muted:    lipgloss.NewStyle().Foreground(p.Muted),
		Selected: base.Bold(true).Background(p.Primary),
		Error:    lipgloss.NewStyle().Foreground(p.Error),
		Success:  lipgloss.NewStyle().Foreground(p.Success),
		Help:     lipgloss.NewStyle().Foreground(p.Muted),

		InputField: frame.Padding(0, 1),
		StatusBar: lipgloss.NewStyle().
			Foreground(p.Muted).
			Background(p.Chrome).
			Padding(0, 1),
		Border: frame,
	}
}

// DefaultStyles builds the style set from the default palette.
func DefaultStyles() *Styles {
	return NewStyles(DefaultPalette())
}

// Palette returns the palette these styles were built from.
func (s *Styles) Palette() Palette {
	return s.palette
}
