package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available theme names.
const (
	ThemeDefault ThemeName = "default" // Purple/green dark theme
	ThemeMonokai ThemeName = "monokai"
	ThemeDracula ThemeName = "dracula"
	ThemeNord    ThemeName = "nord" // Cool blue-gray
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeMonokai),
		string(ThemeDracula),
		string(ThemeNord),
	}
}

// IsValidTheme checks if a theme name is one of the built-in themes.
func IsValidTheme(name string) bool {
	return slices.Contains(BuiltinThemes(), name)
}

// ColorPalette defines the color scheme for a theme.
type ColorPalette struct {
	// Primary accent color (selection, titles)
	Primary lipgloss.Color
	// Secondary accent color (success states)
	Secondary lipgloss.Color
	Warning   lipgloss.Color
	Error     lipgloss.Color
	// Muted color (de-emphasized text)
	Muted   lipgloss.Color
	Surface lipgloss.Color
	Text    lipgloss.Color
	Border  lipgloss.Color
	Blue    lipgloss.Color
}

// DefaultPalette returns the default purple/green dark theme palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   "#A78BFA",
		Secondary: "#10B981",
		Warning:   "#F59E0B",
		Error:     "#F87171",
		Muted:     "#9CA3AF",
		Surface:   "#1F2937",
		Text:      "#F9FAFB",
		Border:    "#6B7280",
		Blue:      "#60A5FA",
	}
}

// MonokaiPalette returns the classic Monokai editor palette.
func MonokaiPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   "#F92672",
		Secondary: "#A6E22E",
		Warning:   "#E6DB74",
		Error:     "#F92672",
		Muted:     "#75715E",
		Surface:   "#272822",
		Text:      "#F8F8F2",
		Border:    "#49483E",
		Blue:      "#66D9EF",
	}
}

// DraculaPalette returns the Dracula palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   "#BD93F9",
		Secondary: "#50FA7B",
		Warning:   "#F1FA8C",
		Error:     "#FF5555",
		Muted:     "#6272A4",
		Surface:   "#282A36",
		Text:      "#F8F8F2",
		Border:    "#44475A",
		Blue:      "#8BE9FD",
	}
}

// NordPalette returns the Nord palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   "#88C0D0",
		Secondary: "#A3BE8C",
		Warning:   "#EBCB8B",
		Error:     "#BF616A",
		Muted:     "#4C566A",
		Surface:   "#2E3440",
		Text:      "#ECEFF4",
		Border:    "#3B4252",
		Blue:      "#81A1C1",
	}
}

// GetPalette returns the palette for a theme, falling back to the default
// palette for unknown names.
func GetPalette(name ThemeName) *ColorPalette {
	switch name {
	case ThemeMonokai:
		return MonokaiPalette()
	case ThemeDracula:
		return DraculaPalette()
	case ThemeNord:
		return NordPalette()
	default:
		return DefaultPalette()
	}
}
