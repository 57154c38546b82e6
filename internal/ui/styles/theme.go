// Package styles holds the terminal palette shared by the UI components.
package styles

import "github.com/charmbracelet/lipgloss"

// Palette is the set of colors the UI draws with.
type Palette struct {
	Accent    lipgloss.Color
	AccentAlt lipgloss.Color

	Fg       lipgloss.Color
	FgMuted  lipgloss.Color
	FgSubtle lipgloss.Color

	BgCursor lipgloss.Color
	Border   lipgloss.Color

	Favorite lipgloss.Color
	Error    lipgloss.Color
}

var palette = Palette{
	Accent:    lipgloss.Color("#7dd3fc"),
	AccentAlt: lipgloss.Color("#a78bfa"),
	Fg:        lipgloss.Color("#c8c8c8"),
	FgMuted:   lipgloss.Color("#8a8a8a"),
	FgSubtle:  lipgloss.Color("#5a5a5a"),
	BgCursor:  lipgloss.Color("#2f2f2f"),
	Border:    lipgloss.Color("#585858"),
	Favorite:  lipgloss.Color("#f472b6"),
	Error:     lipgloss.Color("#ff5555"),
}

// P returns the palette.
func P() Palette { return palette }

var (
	Base    = lipgloss.NewStyle().Foreground(palette.Fg)
	Title   = Base.Bold(true)
	Muted   = lipgloss.NewStyle().Foreground(palette.FgMuted)
	Subtle  = lipgloss.NewStyle().Foreground(palette.FgSubtle)
	Playing = lipgloss.NewStyle().Foreground(palette.Accent).Bold(true)
	Cursor  = lipgloss.NewStyle().Background(palette.BgCursor).Foreground(palette.Fg)
	Heart   = lipgloss.NewStyle().Foreground(palette.Favorite)
	Error   = lipgloss.NewStyle().Foreground(palette.Error)

	Panel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(palette.Border)
)
