package export

import (
	"encoding/json"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// PassView is a pass with its presentation fields.
type PassView struct {
	framegraph.Pass
	Label string `json:"label"`
	End   bool   `json:"end"`
}

// EdgeView is an edge with the name of the resource it carries.
type EdgeView struct {
	framegraph.Edge
	ID           string `json:"id"`
	ResourceName string `json:"resourceName"`
}

// Snapshot is the stable JSON form of a graph.
type Snapshot struct {
	API      string                `json:"api,omitempty"`
	Frame    *uint32               `json:"frame,omitempty"`
	BuildID  string                `json:"buildId"`
	Version  string                `json:"version"`
	Stats    framegraph.Stats      `json:"stats"`
	Frames   []framegraph.Frame    `json:"frames"`
	Passes   []PassView            `json:"passes"`
	Edges    []EdgeView            `json:"edges"`
	Usages   framegraph.UsageIndex `json:"usages"`
	Textures []capture.Texture     `json:"textures"`
}

// NewSnapshot collects the exported view of g.
func NewSnapshot(g *framegraph.Graph) Snapshot {
	s := Snapshot{
		API:      g.FrameInfo.API,
		BuildID:  g.BuildID,
		Version:  g.Version,
		Stats:    g.Stats(),
		Frames:   g.Frames(),
		Passes:   make([]PassView, 0, len(g.Passes)),
		Usages:   g.Usages,
		Textures: g.Textures,
	}
	if n := g.FrameInfo.FrameNumber; n != capture.UnknownFrame {
		s.Frame = &n
	}
	for _, p := range g.Passes {
		s.Passes = append(s.Passes, NewPassView(g, p))
	}
	s.Edges = EdgeViews(g, g.Edges)
	return s
}

// NewPassView adds the label and end-pass flag to p.
func NewPassView(g *framegraph.Graph, p framegraph.Pass) PassView {
	return PassView{Pass: p, Label: g.PassLabel(p), End: g.IsEndPass(p)}
}

// EdgeViews adds ids and resource names to edges. The result is never nil.
func EdgeViews(g *framegraph.Graph, edges []framegraph.Edge) []EdgeView {
	out := make([]EdgeView, 0, len(edges))
	for _, e := range edges {
		out = append(out, EdgeView{Edge: e, ID: e.ID(), ResourceName: g.ResourceName(e.Resource)})
	}
	return out
}

// JSON encodes the snapshot of g with two-space indentation.
func JSON(g *framegraph.Graph) ([]byte, error) {
	return json.MarshalIndent(NewSnapshot(g), "", "  ")
}
