package framegraph

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/framegraph/internal/capture"
)

// TextureTooltip describes a texture, prefixed by a usage line such as the
// output of UsageInfo. The usage line is omitted when empty.
func (g *Graph) TextureTooltip(id capture.ResourceID, usage string) string {
	if id.IsNull() {
		return "Empty Resource"
	}
	t, ok := g.Texture(id)
	if !ok {
		return "Unknown Resource"
	}

	var lines []string
	if usage != "" {
		lines = append(lines, usage)
	}
	lines = append(lines, fmt.Sprintf("Format: %s", t.Format.Name))
	switch {
	case t.Format.Depth && t.Format.Stencil:
		lines = append(lines, "Depth-Stencil Format")
	case t.Format.Depth:
		lines = append(lines, "Depth Format")
	}
	if t.Format.SRGB {
		lines = append(lines, "SRGB Format")
	}
	if t.MSSamples > 1 {
		lines = append(lines, fmt.Sprintf("MSAA Samples: %d", t.MSSamples))
	}
	return strings.Join(lines, "\n")
}

// PassTooltip is the pass label followed, for end passes, by a description
// of the first colour output or "No Thumbnail".
func (g *Graph) PassTooltip(p Pass) string {
	lines := []string{p.Title(), g.PassLabel(p)}
	if !g.IsEndPass(p) {
		return strings.Join(lines, "\n")
	}
	out := capture.NullResource
	if len(p.Outputs) > 0 {
		out = p.Outputs[0]
	}
	if t, ok := g.Texture(out); ok && t.Thumbnail != "" {
		lines = append(lines, g.ResourceName(out), g.TextureTooltip(out, g.UsageInfo(p.EffectiveEventID, out)))
	} else {
		lines = append(lines, "No Thumbnail")
	}
	return strings.Join(lines, "\n")
}

// EdgeTooltip names the resource an edge carries, its usage in both passes
// and the texture description.
func (g *Graph) EdgeTooltip(e Edge) string {
	return strings.Join([]string{
		g.ResourceName(e.Resource),
		"From: " + g.UsageInfo(e.From, e.Resource),
		"To: " + g.UsageInfo(e.To, e.Resource),
		g.TextureTooltip(e.Resource, ""),
	}, "\n")
}

// ResourceUsageLines is the usage attribute of a resource node in the
// detailed view: one line per producing and consuming pass.
func (g *Graph) ResourceUsageLines(res capture.ResourceID) []string {
	var lines []string
	seen := make(map[string]bool)
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			lines = append(lines, s)
		}
	}
	for _, e := range g.Edges {
		if e.Resource != res {
			continue
		}
		add(g.UsageInfo(e.From, res))
		add(g.UsageInfo(e.To, res))
	}
	return lines
}
