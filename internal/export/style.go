// Package export renders frame graphs as Graphviz DOT, node-editor models,
// JSON snapshots and SVG.
package export

import (
	"strings"

	"github.com/Iron-Ham/framegraph/internal/config"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// Style holds the presentation settings shared by every renderer.
type Style struct {
	// Direction is "LR" or "TB".
	Direction string
	FontName  string

	PassColor      string
	EndPassColor   string
	ResourceColor  string
	ColorEdgeColor string
	DepthEdgeColor string
}

// DefaultStyle returns the built-in style.
func DefaultStyle() Style {
	return StyleFromConfig(config.Default())
}

// StyleFromConfig builds a Style from the view and colour settings.
func StyleFromConfig(cfg *config.Config) Style {
	dir := strings.ToUpper(cfg.View.Direction)
	if dir != "TB" {
		dir = "LR"
	}
	return Style{
		Direction:      dir,
		FontName:       cfg.View.FontName,
		PassColor:      cfg.Colors.Pass,
		EndPassColor:   cfg.Colors.EndPass,
		ResourceColor:  cfg.Colors.Resource,
		ColorEdgeColor: cfg.Colors.ColorEdge,
		DepthEdgeColor: cfg.Colors.DepthEdge,
	}
}

// EdgeColor returns the colour for an edge kind.
func (s Style) EdgeColor(k framegraph.EdgeKind) string {
	if k == framegraph.ColorEdge {
		return s.ColorEdgeColor
	}
	return s.DepthEdgeColor
}

// PassFill returns the fill colour of a pass node.
func (s Style) PassFill(g *framegraph.Graph, p framegraph.Pass) string {
	if g.IsEndPass(p) {
		return s.EndPassColor
	}
	return s.PassColor
}
