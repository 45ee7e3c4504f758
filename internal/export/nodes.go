package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// Port is a named attachment point on a model node.
type Port struct {
	ID       string             `json:"id"`
	Name     string             `json:"name"`
	Resource capture.ResourceID `json:"resource"`
}

// ModelNode is one pass in the node-editor model.
type ModelNode struct {
	ID               string `json:"id"`
	EffectiveEventID uint32 `json:"eid"`
	Title            string `json:"title"`
	Label            string `json:"label"`
	Frame            uint32 `json:"frame"`
	End              bool   `json:"end"`
	In               []Port `json:"in"`
	Out              []Port `json:"out"`
}

// Connection joins an out-port of one node to an in-port of another.
type Connection struct {
	From     string              `json:"from"`
	FromPort string              `json:"fromPort"`
	To       string              `json:"to"`
	ToPort   string              `json:"toPort"`
	Resource capture.ResourceID  `json:"resource"`
	Kind     framegraph.EdgeKind `json:"kind"`
}

// Model is the node-editor view of a frame graph: passes with one in-port
// per resource they read from an earlier pass and one out-port per
// resource a later pass reads.
type Model struct {
	Nodes       []ModelNode  `json:"nodes"`
	Connections []Connection `json:"connections"`

	dag graph.Graph[string, ModelNode]
}

// NodeModel builds the node-editor model of g. Nodes are listed in a
// stable topological order.
func NodeModel(g *framegraph.Graph) (*Model, error) {
	dag := graph.New(func(n ModelNode) string { return n.ID }, graph.Directed(), graph.Acyclic())
	order := make(map[string]int, len(g.Passes))

	for i, p := range g.Passes {
		n := ModelNode{
			ID:               p.NodeID(),
			EffectiveEventID: p.EffectiveEventID,
			Title:            p.Title(),
			Label:            g.PassLabel(p),
			Frame:            p.Frame,
			End:              g.IsEndPass(p),
		}
		for _, r := range p.DependReads {
			n.In = append(n.In, Port{ID: portID(p, "in", r), Name: g.ResourceName(r), Resource: r})
		}
		for _, r := range p.DependDraws {
			n.Out = append(n.Out, Port{ID: portID(p, "out", r), Name: g.ResourceName(r), Resource: r})
		}
		if err := dag.AddVertex(n,
			graph.VertexAttribute("shape", "record"),
			graph.VertexAttribute("label", recordLabel(n)),
		); err != nil {
			return nil, errors.NewExportError("add node "+n.ID, err).WithFormat("nodes")
		}
		order[n.ID] = i
	}

	m := &Model{dag: dag}
	for _, e := range g.Edges {
		from, to := passNodeID(e.From), passNodeID(e.To)
		m.Connections = append(m.Connections, Connection{
			From:     from,
			FromPort: fmt.Sprintf("%s_out_%s", from, e.Resource.Number()),
			To:       to,
			ToPort:   fmt.Sprintf("%s_in_%s", to, e.Resource.Number()),
			Resource: e.Resource,
			Kind:     e.Kind,
		})

		// Several resources between the same passes share one DAG edge.
		if existing, err := dag.Edge(from, to); err == nil {
			label := existing.Properties.Attributes["label"] + `\n` + quoteEscaper.Replace(g.ResourceName(e.Resource))
			if err := dag.UpdateEdge(from, to, graph.EdgeAttribute("label", label)); err != nil {
				return nil, errors.NewExportError("update connection", err).WithFormat("nodes")
			}
			continue
		}
		if err := dag.AddEdge(from, to,
			graph.EdgeAttribute("label", quoteEscaper.Replace(g.ResourceName(e.Resource))),
			graph.EdgeWeight(1),
		); err != nil {
			return nil, errors.NewExportError("add connection", err).WithFormat("nodes")
		}
	}

	ids, err := graph.StableTopologicalSort(dag, func(a, b string) bool {
		return order[a] < order[b]
	})
	if err != nil {
		return nil, errors.NewExportError("order nodes", err).WithFormat("nodes")
	}
	for _, id := range ids {
		n, err := dag.Vertex(id)
		if err != nil {
			return nil, errors.NewExportError("lookup node "+id, err).WithFormat("nodes")
		}
		m.Nodes = append(m.Nodes, n)
	}
	return m, nil
}

// NodeModelDOT writes the model as DOT using record-shaped nodes.
func NodeModelDOT(m *Model, w io.Writer) error {
	if err := draw.DOT(m.dag, w); err != nil {
		return errors.NewExportError("render node model", err).WithFormat("nodes")
	}
	return nil
}

func passNodeID(eid uint32) string {
	return "pass_" + strconv.FormatUint(uint64(eid), 10)
}

func portID(p framegraph.Pass, dir string, r capture.ResourceID) string {
	return fmt.Sprintf("%s_%s_%s", p.NodeID(), dir, r.Number())
}

// recordLabel lays the node out as {in ports | title | out ports}.
func recordLabel(n ModelNode) string {
	ports := func(ps []Port) string {
		names := make([]string, len(ps))
		for i, p := range ps {
			names[i] = fmt.Sprintf("<%s> %s", p.ID, recordEscaper.Replace(p.Name))
		}
		return strings.Join(names, "|")
	}
	return fmt.Sprintf("{{%s}|%s|{%s}}", ports(n.In), recordEscaper.Replace(n.Title), ports(n.Out))
}

// draw.DOT quotes attribute values without escaping them.
var quoteEscaper = strings.NewReplacer(`"`, `\"`)

var recordEscaper = strings.NewReplacer(`"`, `\"`, `{`, `\{`, `}`, `\}`, `|`, `\|`, `<`, `\<`, `>`, `\>`)
