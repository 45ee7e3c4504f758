// Package layout places the nodes of a directed graph in layers and routes
// straight edges between them, for rendering without an external layout
// engine.
//
// The layout runs the Sugiyama phases in order: cycle removal, longest-path
// layering over a topological order, barycentric crossing reduction,
// coordinate assignment and edge routing. Each phase is a field of
// [Phases] so a caller can swap one out. Node sizes are measured from their
// label text with a fixed-width bitmap face, so the result matches what an
// SVG renderer using a monospace font will draw.
package layout

import (
	"cmp"
	"errors"
	"math"
	"slices"
	"strings"

	dgraph "github.com/dominikbraun/graph"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// Direction is the axis along which layers advance.
type Direction string

// Supported directions.
const (
	LeftToRight Direction = "LR"
	TopToBottom Direction = "TB"
)

// Node is a vertex to place.
type Node struct {
	ID string
	// Label is measured to size the node; lines are separated by '\n'.
	Label string
	// Cluster groups nodes into a labelled bounding box. Empty means none.
	Cluster string
	// MinWidth and MinHeight reserve extra room, e.g. for an image.
	MinWidth, MinHeight float64
}

// Edge is a directed connection between two node ids.
type Edge struct {
	From, To string
}

// Options tunes the layout.
type Options struct {
	Direction    Direction
	LayerSpacing float64
	NodeSpacing  float64
	// Sweeps is the number of barycentric ordering passes.
	Sweeps int
	// Padding is the space between a label and its node border.
	Padding float64
	// Margin surrounds the whole drawing.
	Margin float64
	// SeparateClusters keeps every cluster in its own range of layers.
	SeparateClusters bool
}

// DefaultOptions matches the default view configuration.
func DefaultOptions() Options {
	return Options{
		Direction:        LeftToRight,
		LayerSpacing:     80,
		NodeSpacing:      24,
		Sweeps:           8,
		Padding:          8,
		Margin:           16,
		SeparateClusters: true,
	}
}

// Point is a position in drawing units.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned box.
type Rect struct {
	X, Y, W, H float64
}

// Center returns the midpoint of r.
func (r Rect) Center() Point {
	return Point{r.X + r.W/2, r.Y + r.H/2}
}

// Placed is a node with its final geometry.
type Placed struct {
	Node
	Rect
	Layer int
	Order int
}

// Route is the polyline drawn for an edge, from the source border to the
// target border.
type Route struct {
	Edge
	Points []Point
}

// Cluster is the bounding box of a group of nodes.
type Cluster struct {
	ID    string
	Bound Rect
}

// Result is a finished layout.
type Result struct {
	Width, Height float64
	Nodes         []Placed
	Routes        []Route
	Clusters      []Cluster
	Layers        int
	// Crossings is the number of crossing edge pairs between adjacent
	// layers after ordering.
	Crossings int

	byID map[string]int
}

// Node returns the placed node with this id.
func (r *Result) Node(id string) (Placed, bool) {
	i, ok := r.byID[id]
	if !ok {
		return Placed{}, false
	}
	return r.Nodes[i], true
}

// Face is the font used to measure labels.
var Face font.Face = basicfont.Face7x13

// LineHeight is the vertical advance between label lines.
func LineHeight() float64 {
	return float64(Face.Metrics().Height.Ceil())
}

// MeasureLabel returns the width and height of a multi-line label.
func MeasureLabel(label string) (w, h float64) {
	lines := strings.Split(label, "\n")
	for _, line := range lines {
		w = math.Max(w, float64(font.MeasureString(Face, line).Ceil()))
	}
	return w, float64(len(lines)) * LineHeight()
}

// Phases breaks the layered layout into its steps. The zero value is not
// usable; start from [DefaultPhases].
type Phases struct {
	// RemoveCycles turns g into a DAG. Routes keep the original direction.
	RemoveCycles func(g *Graph)
	// AssignLevels returns the nodes of every layer.
	AssignLevels func(g *Graph, separateClusters bool) [][]int
	// AssignOrder permutes each layer in place to reduce crossings.
	AssignOrder func(g *Graph, layers [][]int, sweeps int)
}

// DefaultPhases reverses cycle-closing edges, layers by longest path and
// orders by barycentric sweeps.
func DefaultPhases() Phases {
	return Phases{
		RemoveCycles: (*Graph).reverseCycles,
		AssignLevels: (*Graph).assignLayers,
		AssignOrder:  (*Graph).reduceCrossings,
	}
}

// Layout places nodes and routes edges. Edges naming unknown nodes and
// self loops are ignored.
func Layout(nodes []Node, edges []Edge, opts Options) *Result {
	return DefaultPhases().Layout(nodes, edges, opts)
}

// Layout runs the phases over nodes and edges.
func (ph Phases) Layout(nodes []Node, edges []Edge, opts Options) *Result {
	if opts.Direction != TopToBottom {
		opts.Direction = LeftToRight
	}

	g := newGraph(nodes, edges)
	ph.RemoveCycles(g)
	layers := ph.AssignLevels(g, opts.SeparateClusters)
	ph.AssignOrder(g, layers, opts.Sweeps)

	res := &Result{Layers: len(layers), Crossings: g.crossings(), byID: make(map[string]int, len(nodes))}
	res.Nodes = make([]Placed, len(nodes))
	for i, n := range nodes {
		w, h := MeasureLabel(n.Label)
		res.Nodes[i] = Placed{
			Node: n,
			Rect: Rect{
				W: math.Max(w+2*opts.Padding, n.MinWidth),
				H: math.Max(h+2*opts.Padding, n.MinHeight),
			},
			Layer: g.layer[i],
		}
		res.byID[n.ID] = i
	}

	assignCoordinates(res, layers, opts)
	res.Routes = route(res, g)
	res.Clusters = clusters(res, opts)
	res.normalise(opts.Margin)
	return res
}

// Graph is the working state shared by the phases. Vertices are node
// indexes.
type Graph struct {
	nodes []Node
	dag   dgraph.Graph[int, int]
	succ  [][]int
	pred  [][]int
	// edges keeps the input direction for routing.
	edges    [][2]int
	reversed int
	layer    []int
	order    []int
}

func newGraph(nodes []Node, edges []Edge) *Graph {
	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}
	g := &Graph{
		nodes: nodes,
		dag:   dgraph.New(dgraph.IntHash, dgraph.Directed(), dgraph.PreventCycles()),
		succ:  make([][]int, len(nodes)),
		pred:  make([][]int, len(nodes)),
		layer: make([]int, len(nodes)),
		order: make([]int, len(nodes)),
	}
	for v := range nodes {
		_ = g.dag.AddVertex(v)
	}
	for _, e := range edges {
		from, ok1 := index[e.From]
		to, ok2 := index[e.To]
		if !ok1 || !ok2 || from == to {
			continue
		}
		g.edges = append(g.edges, [2]int{from, to})
	}
	return g
}

// Reversed returns how many edges were flipped to break cycles.
func (g *Graph) Reversed() int { return g.reversed }

// reverseCycles adds edges in input order and flips any edge that would
// close a cycle. Flipping cannot close another one: that would need a path
// both ways between the same two nodes.
func (g *Graph) reverseCycles() {
	for _, e := range g.edges {
		err := g.dag.AddEdge(e[0], e[1])
		if errors.Is(err, dgraph.ErrEdgeCreatesCycle) {
			if g.dag.AddEdge(e[1], e[0]) == nil {
				g.reversed++
			}
		}
	}
	g.linkNeighbours()
}

func (g *Graph) linkNeighbours() {
	adj, err := g.dag.AdjacencyMap()
	if err != nil {
		return
	}
	for from, targets := range adj {
		for to := range targets {
			g.succ[from] = append(g.succ[from], to)
			g.pred[to] = append(g.pred[to], from)
		}
	}
	for v := range g.nodes {
		slices.Sort(g.succ[v])
		slices.Sort(g.pred[v])
	}
}

// topoOrder is Kahn's algorithm over the acyclic graph, always taking the
// lowest-indexed ready node so nodes given together stay together.
// dgraph.StableTopologicalSort drains breadth-first instead, which
// interleaves clusters whose roots are ready at the start.
func (g *Graph) topoOrder() []int {
	indeg := make([]int, len(g.nodes))
	var ready []int
	for v := range g.nodes {
		indeg[v] = len(g.pred[v])
		if indeg[v] == 0 {
			ready = append(ready, v)
		}
	}

	order := make([]int, 0, len(g.nodes))
	for len(ready) > 0 {
		slices.Sort(ready)
		v := ready[0]
		ready = ready[1:]
		order = append(order, v)
		for _, w := range g.succ[v] {
			indeg[w]--
			if indeg[w] == 0 {
				ready = append(ready, w)
			}
		}
	}
	return order
}

// assignLayers puts each node one layer after its deepest placed
// predecessor and returns the nodes of every layer.
func (g *Graph) assignLayers(separate bool) [][]int {
	deepest, floor := -1, 0
	cluster, started := "", false
	for _, v := range g.topoOrder() {
		if separate && (!started || g.nodes[v].Cluster != cluster) {
			if started {
				floor = deepest + 1
			}
			cluster, started = g.nodes[v].Cluster, true
		}
		l := floor
		for _, u := range g.pred[v] {
			l = max(l, g.layer[u]+1)
		}
		g.layer[v] = l
		deepest = max(deepest, l)
	}

	layers := make([][]int, deepest+1)
	for v := range g.nodes {
		layers[g.layer[v]] = append(layers[g.layer[v]], v)
	}
	for _, layer := range layers {
		for i, v := range layer {
			g.order[v] = i
		}
	}
	return layers
}

// reduceCrossings reorders each layer by the mean position of its
// neighbours, alternating downward and upward sweeps.
func (g *Graph) reduceCrossings(layers [][]int, sweeps int) {
	for s := 0; s < sweeps; s++ {
		if s%2 == 0 {
			for l := 1; l < len(layers); l++ {
				g.sortLayer(layers[l], g.pred)
			}
		} else {
			for l := len(layers) - 2; l >= 0; l-- {
				g.sortLayer(layers[l], g.succ)
			}
		}
	}
}

func (g *Graph) sortLayer(layer []int, neighbours [][]int) {
	bary := make(map[int]float64, len(layer))
	for _, v := range layer {
		if len(neighbours[v]) == 0 {
			bary[v] = float64(g.order[v])
			continue
		}
		sum := 0.0
		for _, u := range neighbours[v] {
			sum += float64(g.order[u])
		}
		bary[v] = sum / float64(len(neighbours[v]))
	}
	slices.SortStableFunc(layer, func(a, b int) int {
		return cmp.Compare(bary[a], bary[b])
	})
	for i, v := range layer {
		g.order[v] = i
	}
}

// crossings counts pairs of edges between adjacent layers that cross.
func (g *Graph) crossings() int {
	n := 0
	for i, a := range g.edges {
		for _, b := range g.edges[i+1:] {
			if g.layer[a[0]] != g.layer[b[0]] || g.layer[a[1]] != g.layer[b[1]] {
				continue
			}
			d1 := g.order[a[0]] - g.order[b[0]]
			d2 := g.order[a[1]] - g.order[b[1]]
			if d1*d2 < 0 {
				n++
			}
		}
	}
	return n
}

// assignCoordinates stacks each layer's nodes across the layer axis,
// centred on the widest layer, and advances layers by their thickest node.
func assignCoordinates(res *Result, layers [][]int, opts Options) {
	lr := opts.Direction == LeftToRight
	along := func(p *Placed) float64 { // extent along the layer axis
		if lr {
			return p.W
		}
		return p.H
	}
	across := func(p *Placed) float64 {
		if lr {
			return p.H
		}
		return p.W
	}

	spans := make([]float64, len(layers))
	maxSpan := 0.0
	for l, layer := range layers {
		for i, v := range layer {
			if i > 0 {
				spans[l] += opts.NodeSpacing
			}
			spans[l] += across(&res.Nodes[v])
		}
		maxSpan = math.Max(maxSpan, spans[l])
	}

	pos := 0.0
	for l, layer := range layers {
		thick := 0.0
		for _, v := range layer {
			thick = math.Max(thick, along(&res.Nodes[v]))
		}
		offset := (maxSpan - spans[l]) / 2
		for i, v := range layer {
			p := &res.Nodes[v]
			p.Order = i
			a := pos + (thick-along(p))/2
			if lr {
				p.X, p.Y = a, offset
			} else {
				p.X, p.Y = offset, a
			}
			offset += across(p) + opts.NodeSpacing
		}
		pos += thick + opts.LayerSpacing
	}
}

func route(res *Result, g *Graph) []Route {
	routes := make([]Route, 0, len(g.edges))
	for _, e := range g.edges {
		from, to := res.Nodes[e[0]], res.Nodes[e[1]]
		a, b := from.Center(), to.Center()
		routes = append(routes, Route{
			Edge:   Edge{From: from.ID, To: to.ID},
			Points: []Point{clip(from.Rect, b), clip(to.Rect, a)},
		})
	}
	return routes
}

// clip returns where the segment from r's centre towards p leaves r.
func clip(r Rect, p Point) Point {
	c := r.Center()
	dx, dy := p.X-c.X, p.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}
	sx, sy := math.Inf(1), math.Inf(1)
	if dx != 0 {
		sx = (r.W / 2) / math.Abs(dx)
	}
	if dy != 0 {
		sy = (r.H / 2) / math.Abs(dy)
	}
	s := math.Min(math.Min(sx, sy), 1)
	return Point{c.X + dx*s, c.Y + dy*s}
}

func clusters(res *Result, opts Options) []Cluster {
	var out []Cluster
	index := make(map[string]int)
	pad := opts.NodeSpacing / 2
	header := LineHeight() + opts.Padding
	for _, n := range res.Nodes {
		if n.Cluster == "" {
			continue
		}
		i, ok := index[n.Cluster]
		if !ok {
			i = len(out)
			index[n.Cluster] = i
			out = append(out, Cluster{ID: n.Cluster, Bound: Rect{
				X: n.X - pad, Y: n.Y - pad - header,
				W: n.W + 2*pad, H: n.H + 2*pad + header,
			}})
			continue
		}
		b := &out[i].Bound
		minX, minY := math.Min(b.X, n.X-pad), math.Min(b.Y, n.Y-pad-header)
		maxX, maxY := math.Max(b.X+b.W, n.X+n.W+pad), math.Max(b.Y+b.H, n.Y+n.H+pad)
		*b = Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
	}
	return out
}

// normalise shifts the drawing so it starts at the margin and records its
// size.
func (r *Result) normalise(margin float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	grow := func(x, y, w, h float64) {
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x+w), math.Max(maxY, y+h)
	}
	for _, n := range r.Nodes {
		grow(n.X, n.Y, n.W, n.H)
	}
	for _, c := range r.Clusters {
		grow(c.Bound.X, c.Bound.Y, c.Bound.W, c.Bound.H)
	}
	if math.IsInf(minX, 1) {
		r.Width, r.Height = 2*margin, 2*margin
		return
	}

	dx, dy := margin-minX, margin-minY
	for i := range r.Nodes {
		r.Nodes[i].X += dx
		r.Nodes[i].Y += dy
	}
	for i := range r.Clusters {
		r.Clusters[i].Bound.X += dx
		r.Clusters[i].Bound.Y += dy
	}
	for i := range r.Routes {
		for j := range r.Routes[i].Points {
			r.Routes[i].Points[j].X += dx
			r.Routes[i].Points[j].Y += dy
		}
	}
	r.Width = maxX - minX + 2*margin
	r.Height = maxY - minY + 2*margin
}
