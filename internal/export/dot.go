package export

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// SimpleDOT renders passes grouped into one cluster per frame, joined by
// one edge per dependency.
func SimpleDOT(g *framegraph.Graph, style Style) string {
	w := newDOTWriter("SimpleFrameGraph", style)
	w.frames(g, style)
	for _, e := range g.Edges {
		w.line(1, "pass_%d -> pass_%d [%s];", e.From, e.To, attrs(
			"color", style.EdgeColor(e.Kind),
			"fromEid", e.From,
			"toEid", e.To,
			"resourceId", e.Resource.String(),
			"edgeKind", e.Kind.String(),
			"tooltip", g.EdgeTooltip(e),
		))
	}
	return w.close()
}

// DetailedDOT renders passes plus one node per shared resource; each edge
// runs producer -> resource -> consumer.
func DetailedDOT(g *framegraph.Graph, style Style) string {
	w := newDOTWriter("DetailedFrameGraph", style)
	w.frames(g, style)

	for _, r := range g.SharedResources() {
		w.line(1, "resource_%s [%s];", r.Number(), attrs(
			"label", g.ResourceName(r),
			"shape", "ellipse",
			"style", "filled",
			"fillcolor", style.ResourceColor,
			"nodeType", "resource",
			"resourceId", r.String(),
			"usage", strings.Join(g.ResourceUsageLines(r), "\n"),
			"tooltip", g.TextureTooltip(r, ""),
		))
	}

	type produced struct {
		from uint32
		res  capture.ResourceID
	}
	seen := make(map[produced]bool)
	for _, e := range g.Edges {
		color := style.EdgeColor(e.Kind)
		if key := (produced{e.From, e.Resource}); !seen[key] {
			seen[key] = true
			w.line(1, "pass_%d -> resource_%s [%s];", e.From, e.Resource.Number(), attrs(
				"color", color,
				"fromEid", e.From,
				"resourceId", e.Resource.String(),
			))
		}
		w.line(1, "resource_%s -> pass_%d [%s];", e.Resource.Number(), e.To, attrs(
			"color", color,
			"toEid", e.To,
			"resourceId", e.Resource.String(),
		))
	}
	return w.close()
}

type dotWriter struct {
	b strings.Builder
}

func newDOTWriter(name string, style Style) *dotWriter {
	w := &dotWriter{}
	w.line(0, "digraph %s {", name)
	w.line(1, "rankdir=%s;", style.Direction)
	w.line(1, "node [fontname=%s];", quote(style.FontName))
	w.line(1, "edge [fontname=%s];", quote(style.FontName))
	return w
}

func (w *dotWriter) frames(g *framegraph.Graph, style Style) {
	for _, f := range g.Frames() {
		w.line(1, "subgraph cluster_%d {", f.Number)
		w.line(2, "label=%s;", quote(fmt.Sprintf("Frame #%d", f.Number)))
		for _, eid := range f.Passes {
			p, err := g.Pass(eid)
			if err != nil {
				continue
			}
			w.line(2, "pass_%d [%s];", eid, attrs(
				"label", g.PassLabel(p),
				"shape", "box",
				"style", "filled",
				"fillcolor", style.PassFill(g, p),
				"eid", eid,
				"nodeType", "pass",
				"passName", p.Title(),
				"tooltip", g.PassTooltip(p),
			))
		}
		w.line(1, "}")
	}
}

func (w *dotWriter) line(indent int, format string, args ...any) {
	w.b.WriteString(strings.Repeat("  ", indent))
	fmt.Fprintf(&w.b, format, args...)
	w.b.WriteByte('\n')
}

func (w *dotWriter) close() string {
	w.line(0, "}")
	return w.b.String()
}

// attrs formats alternating keys and values as a DOT attribute list.
// Strings are quoted; other values are written bare.
func attrs(kv ...any) string {
	parts := make([]string, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		var v string
		switch val := kv[i+1].(type) {
		case string:
			v = quote(val)
		default:
			v = fmt.Sprint(val)
		}
		parts = append(parts, fmt.Sprintf("%v=%s", kv[i], v))
	}
	return strings.Join(parts, ", ")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
