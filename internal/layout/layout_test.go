package layout

import (
	"math"
	"testing"
)

func chain(ids ...string) ([]Node, []Edge) {
	var nodes []Node
	var edges []Edge
	for i, id := range ids {
		nodes = append(nodes, Node{ID: id, Label: id})
		if i > 0 {
			edges = append(edges, Edge{From: ids[i-1], To: id})
		}
	}
	return nodes, edges
}

func TestLayout_Layers(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
	edges := []Edge{{"a", "b"}, {"b", "d"}, {"a", "d"}, {"c", "d"}, {"x", "a"}, {"a", "a"}}

	res := Layout(nodes, edges, DefaultOptions())
	want := map[string]int{"a": 0, "b": 1, "c": 0, "d": 2}
	for id, layer := range want {
		n, ok := res.Node(id)
		if !ok {
			t.Fatalf("node %q missing", id)
		}
		if n.Layer != layer {
			t.Errorf("layer(%s) = %d, want %d", id, n.Layer, layer)
		}
	}
	if res.Layers != 3 {
		t.Errorf("Layers = %d, want 3", res.Layers)
	}
	if len(res.Routes) != 4 {
		t.Errorf("routes = %d, want 4 (unknown ids and self loops dropped)", len(res.Routes))
	}
}

func TestLayout_Direction(t *testing.T) {
	nodes, edges := chain("a", "b", "c")

	lr := Layout(nodes, edges, DefaultOptions())
	a, _ := lr.Node("a")
	b, _ := lr.Node("b")
	if !(b.X > a.X+a.W) || a.Y != b.Y {
		t.Errorf("LR: a=%+v b=%+v, want b to the right of a on the same row", a.Rect, b.Rect)
	}

	opts := DefaultOptions()
	opts.Direction = TopToBottom
	tb := Layout(nodes, edges, opts)
	a, _ = tb.Node("a")
	b, _ = tb.Node("b")
	if !(b.Y > a.Y+a.H) || a.X != b.X {
		t.Errorf("TB: a=%+v b=%+v, want b below a in the same column", a.Rect, b.Rect)
	}
}

func TestLayout_Clusters(t *testing.T) {
	nodes := []Node{
		{ID: "a", Label: "a", Cluster: "f1"},
		{ID: "b", Label: "b", Cluster: "f1"},
		{ID: "c", Label: "c", Cluster: "f2"},
	}
	res := Layout(nodes, nil, DefaultOptions())

	if len(res.Clusters) != 2 {
		t.Fatalf("clusters = %d, want 2", len(res.Clusters))
	}
	c, _ := res.Node("c")
	if c.Layer != 1 {
		t.Errorf("layer(c) = %d, want 1 (clusters kept apart)", c.Layer)
	}
	f1 := res.Clusters[0].Bound
	for _, id := range []string{"a", "b"} {
		n, _ := res.Node(id)
		if n.X < f1.X || n.Y < f1.Y || n.X+n.W > f1.X+f1.W || n.Y+n.H > f1.Y+f1.H {
			t.Errorf("node %s %+v outside cluster %+v", id, n.Rect, f1)
		}
	}
	f2 := res.Clusters[1].Bound
	if f1.X+f1.W > f2.X {
		t.Errorf("clusters overlap: %+v and %+v", f1, f2)
	}

	opts := DefaultOptions()
	opts.SeparateClusters = false
	if c, _ := Layout(nodes, nil, opts).Node("c"); c.Layer != 0 {
		t.Errorf("layer(c) without separation = %d, want 0", c.Layer)
	}
}

func TestLayout_CrossingReduction(t *testing.T) {
	// Initial order a1 a2 / b1 b2 with edges a1->b2, a2->b1 crosses once.
	nodes := []Node{{ID: "a1"}, {ID: "a2"}, {ID: "b1"}, {ID: "b2"}}
	edges := []Edge{{"a1", "b2"}, {"a2", "b1"}}

	opts := DefaultOptions()
	opts.Sweeps = 0
	if got := Layout(nodes, edges, opts).Crossings; got != 1 {
		t.Fatalf("crossings without sweeps = %d, want 1", got)
	}
	opts.Sweeps = 2
	if got := Layout(nodes, edges, opts).Crossings; got != 0 {
		t.Errorf("crossings after sweeps = %d, want 0", got)
	}
}

func TestLayout_Bounds(t *testing.T) {
	nodes, edges := chain("first", "second\nline")
	opts := DefaultOptions()
	res := Layout(nodes, edges, opts)

	for _, n := range res.Nodes {
		if n.X < opts.Margin-1e-9 || n.Y < opts.Margin-1e-9 {
			t.Errorf("node %s at %v,%v inside the margin", n.ID, n.X, n.Y)
		}
		if n.X+n.W > res.Width || n.Y+n.H > res.Height {
			t.Errorf("node %s exceeds the drawing %vx%v", n.ID, res.Width, res.Height)
		}
	}

	second, ok := res.Node("second\nline")
	if !ok {
		t.Fatal("multi-line node missing from result")
	}
	_, h := MeasureLabel("second\nline")
	if second.H != h+2*opts.Padding {
		t.Errorf("height = %v, want %v", second.H, h+2*opts.Padding)
	}
}

func TestLayout_RoutesTouchBorders(t *testing.T) {
	nodes, edges := chain("a", "b")
	res := Layout(nodes, edges, DefaultOptions())
	a, _ := res.Node("a")
	b, _ := res.Node("b")
	pts := res.Routes[0].Points
	if len(pts) != 2 {
		t.Fatalf("points = %v", pts)
	}
	if math.Abs(pts[0].X-(a.X+a.W)) > 1e-9 {
		t.Errorf("route starts at %v, want right border of a at %v", pts[0].X, a.X+a.W)
	}
	if math.Abs(pts[1].X-b.X) > 1e-9 {
		t.Errorf("route ends at %v, want left border of b at %v", pts[1].X, b.X)
	}
}

func TestLayout_Cycles(t *testing.T) {
	nodes := []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}}
	edges := []Edge{{"a", "b"}, {"b", "c"}, {"c", "a"}}

	g := newGraph(nodes, edges)
	g.reverseCycles()
	if g.Reversed() != 1 {
		t.Errorf("Reversed() = %d, want 1", g.Reversed())
	}

	res := Layout(nodes, edges, DefaultOptions())
	want := map[string]int{"a": 0, "b": 1, "c": 2}
	for id, layer := range want {
		if n, _ := res.Node(id); n.Layer != layer {
			t.Errorf("layer(%s) = %d, want %d", id, n.Layer, layer)
		}
	}
	if len(res.Routes) != 3 {
		t.Fatalf("routes = %d, want 3", len(res.Routes))
	}
	back := res.Routes[2]
	if back.From != "c" || back.To != "a" {
		t.Errorf("reversed edge routed as %s->%s, want c->a", back.From, back.To)
	}
	c, _ := res.Node("c")
	if math.Abs(back.Points[0].X-c.X) > 1e-9 {
		t.Errorf("back edge starts at %v, want left border of c at %v", back.Points[0].X, c.X)
	}
}

func TestPhases_Swap(t *testing.T) {
	nodes := []Node{{ID: "a1"}, {ID: "a2"}, {ID: "b1"}, {ID: "b2"}}
	edges := []Edge{{"a1", "b2"}, {"a2", "b1"}}

	ph := DefaultPhases()
	ph.AssignOrder = func(*Graph, [][]int, int) {}
	if got := ph.Layout(nodes, edges, DefaultOptions()).Crossings; got != 1 {
		t.Errorf("crossings with ordering disabled = %d, want 1", got)
	}
}

func TestMeasureLabel(t *testing.T) {
	w1, h1 := MeasureLabel("abc")
	w2, h2 := MeasureLabel("abcdef\nab")
	if w1 != 21 || w2 != 42 {
		t.Errorf("widths = %v, %v; want 21 and 42 for a 7px face", w1, w2)
	}
	if h2 != 2*h1 {
		t.Errorf("two-line height = %v, want %v", h2, 2*h1)
	}
}

func TestLayout_Empty(t *testing.T) {
	res := Layout(nil, nil, DefaultOptions())
	if len(res.Nodes) != 0 || res.Width != 32 || res.Height != 32 {
		t.Errorf("empty layout = %+v", res)
	}
}
