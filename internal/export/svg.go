package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"io"
	"math"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/recording"
	"github.com/gogpu/gg/text"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/layout"
	"github.com/Iron-Ham/framegraph/internal/thumbnail"
)

// Thumbnails supplies end-pass previews. *thumbnail.Loader implements it.
type Thumbnails interface {
	Get(t capture.Texture) (thumbnail.Thumb, error)
}

const (
	thumbGap  = 4
	arrowLen  = 8
	arrowHalf = 4
)

var (
	inkColor   = gg.Hex("#333333")
	frameColor = gg.Hex("#888888")
)

// endThumb returns the preview of an end pass's first output, if any.
func endThumb(g *framegraph.Graph, p framegraph.Pass, thumbs Thumbnails) (thumbnail.Thumb, bool) {
	if thumbs == nil || len(p.Outputs) == 0 || !g.IsEndPass(p) {
		return thumbnail.Thumb{}, false
	}
	t, ok := g.Texture(p.Outputs[0])
	if !ok || t.Thumbnail == "" {
		return thumbnail.Thumb{}, false
	}
	th, err := thumbs.Get(t)
	if err != nil || th.Image == nil {
		return thumbnail.Thumb{}, false
	}
	return th, true
}

// LayoutGraph lays out the simple view of g, with one cluster per frame
// and room reserved for end-pass thumbnails.
func LayoutGraph(g *framegraph.Graph, opts layout.Options, thumbs Thumbnails) *layout.Result {
	nodes := make([]layout.Node, 0, len(g.Passes))
	for _, p := range g.Passes {
		n := layout.Node{
			ID:      p.NodeID(),
			Label:   g.PassLabel(p),
			Cluster: fmt.Sprintf("Frame #%d", p.Frame),
		}
		if th, ok := endThumb(g, p, thumbs); ok {
			w, h := layout.MeasureLabel(n.Label)
			n.MinWidth = max(w, float64(th.Width)) + 2*opts.Padding
			n.MinHeight = h + thumbGap + float64(th.Height) + 2*opts.Padding
		}
		nodes = append(nodes, n)
	}
	edges := make([]layout.Edge, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, layout.Edge{From: passNodeID(e.From), To: passNodeID(e.To)})
	}
	return layout.Layout(nodes, edges, opts)
}

// svgGroup names the commands recorded between one Push and its Pop.
type svgGroup struct {
	ID, Class, Title string
}

// scene records drawing commands and the group of every Push, in order.
type scene struct {
	rec    *recording.Recorder
	groups []svgGroup
}

func (s *scene) group(grp svgGroup, draw func(rec *recording.Recorder)) {
	s.groups = append(s.groups, grp)
	s.rec.Push()
	draw(s.rec)
	s.rec.Pop()
}

// record draws a laid-out simple view as gg recording commands. It returns
// the recording and the group annotations consumed by each Save on
// playback. thumbs may be nil.
func record(g *framegraph.Graph, res *layout.Result, style Style, thumbs Thumbnails, padding float64) (*recording.Recording, []svgGroup) {
	sc := &scene{rec: recording.NewRecorder(int(math.Ceil(res.Width)), int(math.Ceil(res.Height)))}
	lineH := layout.LineHeight()
	ascent := float64(layout.Face.Metrics().Ascent.Ceil())

	for _, c := range res.Clusters {
		r := c.Bound
		sc.group(svgGroup{Class: "frame"}, func(rec *recording.Recorder) {
			rec.SetStrokeStyle(recording.NewSolidBrush(frameColor))
			rec.SetLineWidth(1)
			rec.SetDash(4, 2)
			rec.DrawRectangle(r.X, r.Y, r.W, r.H)
			rec.Stroke()
			rec.ClearDash()
			rec.SetFillStyle(recording.NewSolidBrush(inkColor))
			rec.DrawString(c.ID, r.X+padding, r.Y+lineH+padding/2)
		})
	}

	routes := make(map[[2]string][]layout.Point, len(res.Routes))
	for _, r := range res.Routes {
		routes[[2]string{r.From, r.To}] = r.Points
	}
	for _, e := range g.Edges {
		pts, ok := routes[[2]string{passNodeID(e.From), passNodeID(e.To)}]
		if !ok || len(pts) < 2 {
			continue
		}
		col := gg.Hex(style.EdgeColor(e.Kind))
		grp := svgGroup{ID: e.ID(), Class: "edge " + e.Kind.String(), Title: g.EdgeTooltip(e)}
		sc.group(grp, func(rec *recording.Recorder) {
			rec.SetStrokeStyle(recording.NewSolidBrush(col))
			rec.SetLineWidth(1.5)
			rec.MoveTo(pts[0].X, pts[0].Y)
			for _, p := range pts[1:] {
				rec.LineTo(p.X, p.Y)
			}
			rec.Stroke()
			arrowhead(rec, pts[len(pts)-2], pts[len(pts)-1], col)
		})
	}

	for _, p := range g.Passes {
		n, ok := res.Node(p.NodeID())
		if !ok {
			continue
		}
		fill := gg.Hex(style.PassFill(g, p))
		sc.group(svgGroup{ID: n.ID, Class: "pass", Title: g.PassTooltip(p)}, func(rec *recording.Recorder) {
			rec.SetFillStyle(recording.NewSolidBrush(fill))
			rec.SetStrokeStyle(recording.NewSolidBrush(inkColor))
			rec.SetLineWidth(1)
			rec.DrawRoundedRectangle(n.X, n.Y, n.W, n.H, 3)
			rec.FillStroke()

			rec.SetFillStyle(recording.NewSolidBrush(inkColor))
			lines := strings.Split(n.Label, "\n")
			for i, line := range lines {
				if line != "" {
					rec.DrawString(line, n.X+padding, n.Y+padding+ascent+float64(i)*lineH)
				}
			}
			if th, ok := endThumb(g, p, thumbs); ok {
				y := n.Y + padding + float64(len(lines))*lineH + thumbGap
				rec.DrawImageScaled(th.Image, n.X+padding, y, float64(th.Width), float64(th.Height))
			}
		})
	}
	return sc.rec.FinishRecording(), sc.groups
}

// arrowhead fills a triangle whose tip sits on to, pointing away from from.
func arrowhead(rec *recording.Recorder, from, to layout.Point, col gg.RGBA) {
	dx, dy := to.X-from.X, to.Y-from.Y
	d := math.Hypot(dx, dy)
	if d == 0 {
		return
	}
	ux, uy := dx/d, dy/d
	bx, by := to.X-ux*arrowLen, to.Y-uy*arrowLen
	rec.SetFillStyle(recording.NewSolidBrush(col))
	rec.MoveTo(to.X, to.Y)
	rec.LineTo(bx-uy*arrowHalf, by+ux*arrowHalf)
	rec.LineTo(bx+uy*arrowHalf, by-ux*arrowHalf)
	rec.ClosePath()
	rec.Fill()
}

// SVG draws a laid-out simple view. thumbs may be nil.
func SVG(g *framegraph.Graph, res *layout.Result, style Style, thumbs Thumbnails, padding float64) (string, error) {
	r, groups := record(g, res, style, thumbs, padding)
	b := newSVGBackend(groups)
	if err := r.Playback(b); err != nil {
		return "", errors.NewExportError("render svg", err).WithFormat(string(FormatSVG))
	}
	var out strings.Builder
	if _, err := b.WriteTo(&out); err != nil {
		return "", errors.NewExportError("write svg", err).WithFormat(string(FormatSVG))
	}
	return out.String(), nil
}

// svgBackend is a recording.Backend that writes SVG elements. Each Save
// opens the next annotated group and Restore closes it. The recorder hands
// over points already transformed, so transforms are ignored, and clipping
// is never recorded.
type svgBackend struct {
	groups []svgGroup
	next   int
	buf    bytes.Buffer
	err    error
}

var _ recording.WriterBackend = (*svgBackend)(nil)

func newSVGBackend(groups []svgGroup) *svgBackend {
	return &svgBackend{groups: groups}
}

func (b *svgBackend) Begin(width, height int) error {
	b.buf.Reset()
	b.next, b.err = 0, nil
	fmt.Fprintf(&b.buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="monospace" font-size="12">`+"\n",
		width, height, width, height)
	return nil
}

func (b *svgBackend) End() error {
	b.buf.WriteString("</svg>\n")
	return b.err
}

func (b *svgBackend) Save() {
	var grp svgGroup
	if b.next < len(b.groups) {
		grp = b.groups[b.next]
		b.next++
	}
	b.buf.WriteString("<g")
	if grp.ID != "" {
		fmt.Fprintf(&b.buf, ` id="%s"`, esc(grp.ID))
	}
	if grp.Class != "" {
		fmt.Fprintf(&b.buf, ` class="%s"`, esc(grp.Class))
	}
	b.buf.WriteString(">")
	if grp.Title != "" {
		fmt.Fprintf(&b.buf, "<title>%s</title>", esc(grp.Title))
	}
}

func (b *svgBackend) Restore() { b.buf.WriteString("</g>\n") }

func (b *svgBackend) SetTransform(recording.Matrix)        {}
func (b *svgBackend) SetClip(*gg.Path, recording.FillRule) {}
func (b *svgBackend) ClearClip()                           {}

func (b *svgBackend) FillPath(path *gg.Path, brush recording.Brush, rule recording.FillRule) {
	fmt.Fprintf(&b.buf, `<path d="%s" fill="%s"`, pathData(path), paint(brush))
	if rule == recording.FillRuleEvenOdd {
		b.buf.WriteString(` fill-rule="evenodd"`)
	}
	b.buf.WriteString("/>")
}

func (b *svgBackend) StrokePath(path *gg.Path, brush recording.Brush, stroke recording.Stroke) {
	fmt.Fprintf(&b.buf, `<path d="%s" fill="none" stroke="%s" stroke-width="%s"`, pathData(path), paint(brush), num(stroke.Width))
	if len(stroke.DashPattern) > 0 {
		dash := make([]string, len(stroke.DashPattern))
		for i, d := range stroke.DashPattern {
			dash[i] = num(d)
		}
		fmt.Fprintf(&b.buf, ` stroke-dasharray="%s"`, strings.Join(dash, " "))
	}
	b.buf.WriteString("/>")
}

func (b *svgBackend) FillRect(rect recording.Rect, brush recording.Brush) {
	fmt.Fprintf(&b.buf, `<rect x="%s" y="%s" width="%s" height="%s" fill="%s"/>`,
		num(rect.X()), num(rect.Y()), num(rect.Width()), num(rect.Height()), paint(brush))
}

func (b *svgBackend) DrawImage(img image.Image, _, dst recording.Rect, _ recording.ImageOptions) {
	uri, err := thumbnail.EncodeDataURI(img)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return
	}
	fmt.Fprintf(&b.buf, `<image x="%s" y="%s" width="%s" height="%s" href="%s"/>`,
		num(dst.X()), num(dst.Y()), num(dst.Width()), num(dst.Height()), uri)
}

// DrawText relies on the root font attributes; the recording carries no face.
func (b *svgBackend) DrawText(s string, x, y float64, _ text.Face, brush recording.Brush) {
	fmt.Fprintf(&b.buf, `<text x="%s" y="%s" fill="%s">%s</text>`, num(x), num(y), paint(brush), esc(s))
}

func (b *svgBackend) WriteTo(w io.Writer) (int64, error) {
	return b.buf.WriteTo(w)
}

func pathData(p *gg.Path) string {
	var d []string
	pt := func(p gg.Point) string { return num(p.X) + "," + num(p.Y) }
	for _, el := range p.Elements() {
		switch el := el.(type) {
		case gg.MoveTo:
			d = append(d, "M"+pt(el.Point))
		case gg.LineTo:
			d = append(d, "L"+pt(el.Point))
		case gg.QuadTo:
			d = append(d, "Q"+pt(el.Control)+" "+pt(el.Point))
		case gg.CubicTo:
			d = append(d, "C"+pt(el.Control1)+" "+pt(el.Control2)+" "+pt(el.Point))
		case gg.Close:
			d = append(d, "Z")
		}
	}
	return strings.Join(d, " ")
}

// paint renders a solid brush as #rrggbb. Gradients never occur here.
func paint(brush recording.Brush) string {
	var c gg.RGBA
	switch br := brush.(type) {
	case recording.SolidBrush:
		c = br.Color
	case *recording.SolidBrush:
		c = br.Color
	default:
		return "none"
	}
	to8 := func(v float64) int { return int(math.Round(math.Max(0, math.Min(1, v)) * 255)) }
	return fmt.Sprintf("#%02x%02x%02x", to8(c.R), to8(c.G), to8(c.B))
}

func num(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}

func esc(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}
