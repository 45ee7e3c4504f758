package framegraph

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

// EdgeKind classifies what a dependency edge carries.
type EdgeKind uint8

const (
	// ColorEdge carries a colour target or copy result.
	ColorEdge EdgeKind = iota
	// DepthEdge carries anything else, typically a depth target.
	DepthEdge
)

func (k EdgeKind) String() string {
	switch k {
	case ColorEdge:
		return "color"
	case DepthEdge:
		return "depth"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k EdgeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *EdgeKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "color":
		*k = ColorEdge
	case "depth":
		*k = DepthEdge
	default:
		return errors.NewValidationError("unknown edge kind").WithValue(string(text))
	}
	return nil
}

// Edge is a dependency from the pass that last wrote a resource to a later
// pass that reads it.
type Edge struct {
	From      uint32                `json:"from"`
	To        uint32                `json:"to"`
	Resource  capture.ResourceID    `json:"resource"`
	Kind      EdgeKind              `json:"kind"`
	FromUsage capture.ResourceUsage `json:"fromUsage"`
	ToUsage   capture.ResourceUsage `json:"toUsage"`
}

// ID identifies the edge in exports.
func (e Edge) ID() string {
	return fmt.Sprintf("edge_%d_%d_%s", e.From, e.To, e.Resource.Number())
}

// LinkDependencies connects each read attachment to the most recent earlier
// pass that drew the same resource. passes must be in replay order.
func LinkDependencies(passes []Pass, usages UsageIndex) []Edge {
	lastWriter := make(map[capture.ResourceID]int)
	var edges []Edge

	for j, to := range passes {
		for _, r := range to.Reads {
			i, ok := lastWriter[r]
			if !ok {
				continue
			}
			from := passes[i]
			e := Edge{From: from.EffectiveEventID, To: to.EffectiveEventID, Resource: r, Kind: DepthEdge}
			if u, ok := usages.Last(from.EffectiveEventID, r); ok {
				e.FromUsage = u.Usage
				if u.Usage.IsColorProducer() {
					e.Kind = ColorEdge
				}
			}
			if u, ok := usages.Last(to.EffectiveEventID, r); ok {
				e.ToUsage = u.Usage
			}
			edges = append(edges, e)
		}
		for _, r := range to.Draws {
			lastWriter[r] = j
		}
	}

	slices.SortFunc(edges, compareEdges)
	return edges
}

func compareEdges(a, b Edge) int {
	return cmp.Or(
		cmp.Compare(a.From, b.From),
		cmp.Compare(a.To, b.To),
		cmp.Compare(a.Resource, b.Resource),
	)
}

// MarkDependencies returns copies of passes with DependReads and DependDraws
// derived from edges.
func MarkDependencies(passes []Pass, edges []Edge) []Pass {
	byEID := make(map[uint32]int, len(passes))
	out := make([]Pass, len(passes))
	for i, p := range passes {
		p.DependReads, p.DependDraws = nil, nil
		out[i] = p
		byEID[p.EffectiveEventID] = i
	}
	for _, e := range edges {
		if i, ok := byEID[e.From]; ok {
			out[i].DependDraws = out[i].DependDraws.With(e.Resource)
		}
		if i, ok := byEID[e.To]; ok {
			out[i].DependReads = out[i].DependReads.With(e.Resource)
		}
	}
	return out
}
