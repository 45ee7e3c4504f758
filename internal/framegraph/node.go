package framegraph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

// View selects how a graph is presented.
type View uint8

const (
	// SimpleView shows passes joined directly by edges.
	SimpleView View = iota
	// DetailedView routes every edge through a node for its resource.
	DetailedView
	// NodeView shows passes as nodes with one port per dependent resource.
	NodeView
)

var viewNames = [...]string{"simple", "detailed", "nodes"}

func (v View) String() string {
	if int(v) < len(viewNames) {
		return viewNames[v]
	}
	return "unknown"
}

// Next cycles to the following view.
func (v View) Next() View {
	return (v + 1) % View(len(viewNames))
}

// ParseView parses a view name.
func ParseView(s string) (View, error) {
	for i, name := range viewNames {
		if strings.EqualFold(s, name) {
			return View(i), nil
		}
	}
	return SimpleView, fmt.Errorf("%w: %q", errors.ErrUnknownView, s)
}

// Node is a vertex of a presented graph: a PassNode or a ResourceNode.
type Node interface {
	NodeID() string
	isNode()
}

// PassNode is a pass, identified by its effective event id.
type PassNode struct {
	EffectiveEventID uint32
}

// NodeID implements Node.
func (n PassNode) NodeID() string { return fmt.Sprintf("pass_%d", n.EffectiveEventID) }
func (PassNode) isNode()          {}

// ResourceNode is a shared resource in the detailed view.
type ResourceNode struct {
	Resource capture.ResourceID
}

// NodeID implements Node.
func (n ResourceNode) NodeID() string { return "resource_" + n.Resource.Number() }
func (ResourceNode) isNode()          {}

// ParseNodeID parses the identifier produced by NodeID.
func ParseNodeID(id string) (Node, error) {
	switch {
	case strings.HasPrefix(id, "pass_"):
		n, err := strconv.ParseUint(strings.TrimPrefix(id, "pass_"), 10, 32)
		if err == nil {
			return PassNode{EffectiveEventID: uint32(n)}, nil
		}
	case strings.HasPrefix(id, "resource_"):
		res, err := capture.ParseResourceID(strings.TrimPrefix(id, "resource_"))
		if err == nil {
			return ResourceNode{Resource: res}, nil
		}
	}
	return nil, errors.NewValidationError("malformed node id").WithField("node").WithValue(id)
}

// Nodes returns the nodes of the graph as shown in view v.
func (g *Graph) Nodes(v View) []Node {
	nodes := make([]Node, 0, len(g.Passes))
	for _, p := range g.Passes {
		nodes = append(nodes, PassNode{EffectiveEventID: p.EffectiveEventID})
	}
	if v == DetailedView {
		for _, r := range g.SharedResources() {
			nodes = append(nodes, ResourceNode{Resource: r})
		}
	}
	return nodes
}

// IntentKind is something a viewer should do in response to a selection.
type IntentKind uint8

const (
	// JumpToEvent moves the capture cursor to an event.
	JumpToEvent IntentKind = iota
	// OpenTexture shows a resource in the texture viewer.
	OpenTexture
	// InspectResource shows a resource in the resource inspector.
	InspectResource
)

func (k IntentKind) String() string {
	switch k {
	case JumpToEvent:
		return "jump"
	case OpenTexture:
		return "texture"
	case InspectResource:
		return "inspect"
	default:
		return "unknown"
	}
}

// Intent is a viewer action.
type Intent struct {
	Kind     IntentKind
	EventID  uint32
	Resource capture.ResourceID
}

// Selection is a selected node or edge.
type Selection struct {
	Node Node
	Edge *Edge
	View View
}

// Select maps a selection to the intents a viewer should carry out.
func Select(sel Selection) []Intent {
	if sel.Edge != nil {
		e := sel.Edge
		if sel.View == SimpleView {
			return []Intent{
				{Kind: OpenTexture, Resource: e.Resource},
				{Kind: InspectResource, Resource: e.Resource},
				{Kind: JumpToEvent, EventID: e.From},
			}
		}
		return []Intent{{Kind: InspectResource, Resource: e.Resource}}
	}

	switch n := sel.Node.(type) {
	case PassNode:
		return []Intent{{Kind: JumpToEvent, EventID: n.EffectiveEventID}}
	case ResourceNode:
		return []Intent{{Kind: OpenTexture, Resource: n.Resource}}
	default:
		return nil
	}
}
