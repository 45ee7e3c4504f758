package framegraph

import (
	"slices"
	"testing"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

func resID(n uint64) capture.ResourceID { return capture.ResourceID(n) }

func TestParseView(t *testing.T) {
	for _, v := range []View{SimpleView, DetailedView, NodeView} {
		got, err := ParseView(v.String())
		if err != nil || got != v {
			t.Errorf("ParseView(%q) = %v, %v", v.String(), got, err)
		}
	}
	if got, _ := ParseView("DETAILED"); got != DetailedView {
		t.Errorf("ParseView(DETAILED) = %v, want detailed", got)
	}
	if _, err := ParseView("tree"); !errors.Is(err, errors.ErrUnknownView) {
		t.Errorf("ParseView(tree) error = %v", err)
	}
	if NodeView.Next() != SimpleView || SimpleView.Next() != DetailedView {
		t.Error("Next() does not cycle")
	}
}

func TestGraph_Nodes(t *testing.T) {
	g := sampleGraph(t)

	ids := func(nodes []Node) []string {
		out := make([]string, len(nodes))
		for i, n := range nodes {
			out[i] = n.NodeID()
		}
		return out
	}

	if got := ids(g.Nodes(SimpleView)); !slices.Equal(got, []string{"pass_2", "pass_4", "pass_6", "pass_8"}) {
		t.Errorf("simple nodes = %v", got)
	}
	want := []string{"pass_2", "pass_4", "pass_6", "pass_8", "resource_10", "resource_11", "resource_12", "resource_20"}
	if got := ids(g.Nodes(DetailedView)); !slices.Equal(got, want) {
		t.Errorf("detailed nodes = %v", got)
	}
}

func TestSelect(t *testing.T) {
	edge := &Edge{From: 4, To: 6, Resource: 10}
	tests := []struct {
		name string
		sel  Selection
		want []Intent
	}{
		{
			name: "pass node",
			sel:  Selection{Node: PassNode{EffectiveEventID: 6}},
			want: []Intent{{Kind: JumpToEvent, EventID: 6}},
		},
		{
			name: "resource node",
			sel:  Selection{Node: ResourceNode{Resource: 12}, View: DetailedView},
			want: []Intent{{Kind: OpenTexture, Resource: 12}},
		},
		{
			name: "simple edge",
			sel:  Selection{Edge: edge, View: SimpleView},
			want: []Intent{
				{Kind: OpenTexture, Resource: 10},
				{Kind: InspectResource, Resource: 10},
				{Kind: JumpToEvent, EventID: 4},
			},
		},
		{
			name: "detailed edge",
			sel:  Selection{Edge: edge, View: DetailedView},
			want: []Intent{{Kind: InspectResource, Resource: 10}},
		},
		{
			name: "nothing",
			sel:  Selection{},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Select(tt.sel); !slices.Equal(got, tt.want) {
				t.Errorf("Select() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseNodeID(t *testing.T) {
	tests := []struct {
		id      string
		want    Node
		wantErr bool
	}{
		{id: "pass_6", want: PassNode{EffectiveEventID: 6}},
		{id: "resource_12", want: ResourceNode{Resource: resID(12)}},
		{id: "pass_x", wantErr: true},
		{id: "resource_", wantErr: true},
		{id: "edge_2_6_20", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseNodeID(tt.id)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrInvalidInput) {
					t.Errorf("ParseNodeID(%q) error = %v, want ErrInvalidInput", tt.id, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseNodeID(%q) error = %v", tt.id, err)
			}
			if got != tt.want {
				t.Errorf("ParseNodeID(%q) = %#v, want %#v", tt.id, got, tt.want)
			}
			if got.NodeID() != tt.id {
				t.Errorf("NodeID() = %q, want %q", got.NodeID(), tt.id)
			}
		})
	}
}
