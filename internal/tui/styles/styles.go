// Package styles holds the lipgloss styles of the frame graph viewer.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/framegraph/internal/export"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// ThemedStyles contains the lipgloss styles built from a palette and the
// graph colours shared with the exporters.
type ThemedStyles struct {
	Palette *ColorPalette

	// Graph colours, as configured for the exporters
	PassColor      lipgloss.Color
	EndPassColor   lipgloss.Color
	ResourceColor  lipgloss.Color
	ColorEdgeColor lipgloss.Color
	DepthEdgeColor lipgloss.Color

	Primary   lipgloss.Style
	Secondary lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Muted     lipgloss.Style
	Text      lipgloss.Style

	Title  lipgloss.Style
	Header lipgloss.Style

	// Sidebar
	Sidebar      lipgloss.Style
	FrameHeader  lipgloss.Style
	PassItem     lipgloss.Style
	PassSelected lipgloss.Style
	EndPassMark  lipgloss.Style

	// Detail panel
	Detail       lipgloss.Style
	SectionTitle lipgloss.Style
	Resource     lipgloss.Style
	EdgeItem     lipgloss.Style
	EdgeSelected lipgloss.Style
	Tooltip      lipgloss.Style

	// Footer
	StatusBar    lipgloss.Style
	HelpKey      lipgloss.Style
	HelpDesc     lipgloss.Style
	FilterPrompt lipgloss.Style
	HelpBox      lipgloss.Style
}

// NewThemedStyles creates a ThemedStyles from the given palette and graph style.
func NewThemedStyles(p *ColorPalette, gs export.Style) *ThemedStyles {
	s := &ThemedStyles{
		Palette:        p,
		PassColor:      lipgloss.Color(gs.PassColor),
		EndPassColor:   lipgloss.Color(gs.EndPassColor),
		ResourceColor:  lipgloss.Color(gs.ResourceColor),
		ColorEdgeColor: lipgloss.Color(gs.ColorEdgeColor),
		DepthEdgeColor: lipgloss.Color(gs.DepthEdgeColor),
	}

	s.Primary = lipgloss.NewStyle().Foreground(p.Primary)
	s.Secondary = lipgloss.NewStyle().Foreground(p.Secondary)
	s.Warning = lipgloss.NewStyle().Foreground(p.Warning)
	s.Error = lipgloss.NewStyle().Foreground(p.Error).Bold(true)
	s.Muted = lipgloss.NewStyle().Foreground(p.Muted)
	s.Text = lipgloss.NewStyle().Foreground(p.Text)

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(p.Primary)
	s.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Text).
		Background(p.Surface).
		Padding(0, 1)

	s.Sidebar = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	s.FrameHeader = lipgloss.NewStyle().Bold(true).Foreground(p.Blue)
	s.PassItem = lipgloss.NewStyle().Foreground(p.Text)
	s.PassSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Surface).
		Background(p.Primary)
	s.EndPassMark = lipgloss.NewStyle().Foreground(s.EndPassColor)

	s.Detail = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	s.SectionTitle = lipgloss.NewStyle().Bold(true).Foreground(p.Primary).MarginTop(1)
	s.Resource = lipgloss.NewStyle().Foreground(s.ResourceColor)
	s.EdgeItem = lipgloss.NewStyle().Foreground(p.Text)
	s.EdgeSelected = lipgloss.NewStyle().Bold(true).Foreground(p.Warning)
	s.Tooltip = lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(p.Muted).
		Foreground(p.Text).
		Padding(0, 1)

	s.StatusBar = lipgloss.NewStyle().Foreground(p.Muted)
	s.HelpKey = lipgloss.NewStyle().Bold(true).Foreground(p.Secondary)
	s.HelpDesc = lipgloss.NewStyle().Foreground(p.Muted)
	s.FilterPrompt = lipgloss.NewStyle().Bold(true).Foreground(p.Warning)
	s.HelpBox = lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)

	return s
}

// ForTheme builds styles for a named theme.
func ForTheme(name string, gs export.Style) *ThemedStyles {
	return NewThemedStyles(GetPalette(ThemeName(name)), gs)
}

// EdgeColor returns the colour of an edge kind.
func (s *ThemedStyles) EdgeColor(k framegraph.EdgeKind) lipgloss.Color {
	if k == framegraph.ColorEdge {
		return s.ColorEdgeColor
	}
	return s.DepthEdgeColor
}

// EdgeStyle returns the style for an edge line.
func (s *ThemedStyles) EdgeStyle(k framegraph.EdgeKind, selected bool) lipgloss.Style {
	if selected {
		return s.EdgeSelected
	}
	return s.EdgeItem.Foreground(s.EdgeColor(k))
}
