package framegraph

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

// Frame groups the passes of one captured frame.
type Frame struct {
	Number     uint32   `json:"number"`
	EndEventID uint32   `json:"endEventId"`
	Passes     []uint32 `json:"passes"` // effective event ids in order
}

// Graph is the result of a build. It is immutable once returned and safe
// for concurrent reads. Decoded graphs must be Restore'd before use.
type Graph struct {
	BuildID   string                        `json:"buildId"`
	Version   string                        `json:"version"`
	BuiltAt   time.Time                     `json:"builtAt"`
	FrameInfo capture.FrameInfo             `json:"frameInfo"`
	Passes    []Pass                        `json:"passes"`
	Edges     []Edge                        `json:"edges"`
	Usages    UsageIndex                    `json:"usages"`
	Textures  []capture.Texture             `json:"textures"`
	Names     map[capture.ResourceID]string `json:"names,omitempty"`

	index *graphIndex
}

type graphIndex struct {
	passes   map[uint32]int
	textures map[capture.ResourceID]int
	frames   []Frame
	outgoing map[uint32][]int
	incoming map[uint32][]int
}

// Restore rebuilds the lookup tables of a graph decoded from a snapshot.
func (g *Graph) Restore() *Graph {
	ix := &graphIndex{
		passes:   make(map[uint32]int, len(g.Passes)),
		textures: make(map[capture.ResourceID]int, len(g.Textures)),
		outgoing: make(map[uint32][]int),
		incoming: make(map[uint32][]int),
	}
	for i, p := range g.Passes {
		ix.passes[p.EffectiveEventID] = i
		n := len(ix.frames)
		if n == 0 || ix.frames[n-1].Number != p.Frame {
			ix.frames = append(ix.frames, Frame{Number: p.Frame})
			n++
		}
		ix.frames[n-1].Passes = append(ix.frames[n-1].Passes, p.EffectiveEventID)
		ix.frames[n-1].EndEventID = p.EffectiveEventID
	}
	for i, t := range g.Textures {
		ix.textures[t.ID] = i
	}
	for i, e := range g.Edges {
		ix.outgoing[e.From] = append(ix.outgoing[e.From], i)
		ix.incoming[e.To] = append(ix.incoming[e.To], i)
	}
	if g.Usages == nil {
		g.Usages = make(UsageIndex)
	}
	g.index = ix
	return g
}

func (g *Graph) idx() *graphIndex {
	if g.index == nil {
		g.Restore()
	}
	return g.index
}

// Pass returns the pass with effective event id eid.
func (g *Graph) Pass(eid uint32) (Pass, error) {
	i, ok := g.idx().passes[eid]
	if !ok {
		return Pass{}, errors.NewNotFoundError("pass", strconv.FormatUint(uint64(eid), 10)).
			WithCause(errors.ErrPassNotFound)
	}
	return g.Passes[i], nil
}

// EffectiveEventID returns the effective id of the first pass whose
// effective id is at least eid, i.e. the pass an event belongs to.
func (g *Graph) EffectiveEventID(eid uint32) (uint32, error) {
	i, _ := slices.BinarySearchFunc(g.Passes, eid, func(p Pass, eid uint32) int {
		switch {
		case p.EffectiveEventID < eid:
			return -1
		case p.EffectiveEventID > eid:
			return 1
		default:
			return 0
		}
	})
	if i >= len(g.Passes) {
		return 0, errors.NewNotFoundError("event", strconv.FormatUint(uint64(eid), 10)).
			WithCause(errors.ErrEventNotFound)
	}
	return g.Passes[i].EffectiveEventID, nil
}

// Frames returns the frames in capture order.
func (g *Graph) Frames() []Frame {
	return g.idx().frames
}

// FrameOf returns the frame containing the pass.
func (g *Graph) FrameOf(p Pass) (Frame, bool) {
	for _, f := range g.idx().frames {
		if f.Number == p.Frame {
			return f, true
		}
	}
	return Frame{}, false
}

// IsEndPass reports whether no pass depends on p before its frame ends.
// The last pass of a frame is always an end pass.
func (g *Graph) IsEndPass(p Pass) bool {
	f, ok := g.FrameOf(p)
	if !ok || p.EffectiveEventID >= f.EndEventID {
		return true
	}
	return len(g.idx().outgoing[p.EffectiveEventID]) == 0
}

// EndPasses returns the end passes in order.
func (g *Graph) EndPasses() []Pass {
	var out []Pass
	for _, p := range g.Passes {
		if g.IsEndPass(p) {
			out = append(out, p)
		}
	}
	return out
}

// Outgoing returns the edges leaving the pass.
func (g *Graph) Outgoing(eid uint32) []Edge {
	return g.edgesAt(g.idx().outgoing[eid])
}

// Incoming returns the edges entering the pass.
func (g *Graph) Incoming(eid uint32) []Edge {
	return g.edgesAt(g.idx().incoming[eid])
}

// EdgeByID looks an edge up by the identifier returned from Edge.ID.
func (g *Graph) EdgeByID(id string) (Edge, error) {
	for _, e := range g.Edges {
		if e.ID() == id {
			return e, nil
		}
	}
	return Edge{}, errors.NewNotFoundError("edge", id)
}

func (g *Graph) edgesAt(ids []int) []Edge {
	out := make([]Edge, len(ids))
	for i, id := range ids {
		out[i] = g.Edges[id]
	}
	return out
}

// UsageInfo describes the last usage of res inside the pass as
// "EID <n>:<usage>", or "No Usage".
func (g *Graph) UsageInfo(eid uint32, res capture.ResourceID) string {
	u, ok := g.Usages.Last(eid, res)
	if !ok {
		return "No Usage"
	}
	return fmt.Sprintf("EID %d:%s", u.EventID, u.Usage)
}

// TargetInfo summarises the pass's targets.
func TargetInfo(p Pass) string {
	n := p.ColorTargetCount()
	switch {
	case n == 0 && !p.HasDepth():
		return "No Targets"
	case n > 0 && p.HasDepth():
		return fmt.Sprintf("%d Targets + Depth", n)
	case n > 0:
		return fmt.Sprintf("%d Targets", n)
	default:
		return "Depth"
	}
}

// PassLabel is the multi-line node label: pass number, targets and the
// resolution of the first draw attachment when known.
func (g *Graph) PassLabel(p Pass) string {
	lines := []string{fmt.Sprintf("Pass %d", p.ID), TargetInfo(p)}
	if id, ok := p.Draws.First(); ok {
		if t, ok := g.Texture(id); ok && t.Width > 0 && t.Height > 0 {
			lines = append(lines, fmt.Sprintf("%d x %d", t.Width, t.Height))
		}
	}
	return strings.Join(lines, "\n")
}

// SharedResources returns every resource carried by at least one edge.
func (g *Graph) SharedResources() []capture.ResourceID {
	var out ResourceSet
	for _, e := range g.Edges {
		out = out.With(e.Resource)
	}
	return out
}

// Texture returns the texture with this id.
func (g *Graph) Texture(id capture.ResourceID) (capture.Texture, bool) {
	i, ok := g.idx().textures[id]
	if !ok {
		return capture.Texture{}, false
	}
	return g.Textures[i], true
}

// ResourceName returns the display name of a resource.
func (g *Graph) ResourceName(id capture.ResourceID) string {
	if t, ok := g.Texture(id); ok && t.Name != "" {
		return t.Name
	}
	if name, ok := g.Names[id]; ok && name != "" {
		return name
	}
	return id.String()
}

// Stats summarises the graph.
type Stats struct {
	Frames    int `json:"frames"`
	Passes    int `json:"passes"`
	EndPasses int `json:"endPasses"`
	Edges     int `json:"edges"`
	Textures  int `json:"textures"`
	Shared    int `json:"sharedResources"`
}

// Stats counts the graph's frames, passes and edges.
func (g *Graph) Stats() Stats {
	return Stats{
		Frames:    len(g.Frames()),
		Passes:    len(g.Passes),
		EndPasses: len(g.EndPasses()),
		Edges:     len(g.Edges),
		Textures:  len(g.Textures),
		Shared:    len(g.SharedResources()),
	}
}
