package framegraph

import (
	"strings"
	"testing"
)

func TestGraph_TextureTooltip(t *testing.T) {
	g := sampleGraph(t)
	tests := []struct {
		name  string
		id    uint64
		usage string
		want  string
	}{
		{"null", 0, "x", "Empty Resource"},
		{"unknown", 77, "x", "Unknown Resource"},
		{"colour", 10, "EID 4:ColorTarget", "EID 4:ColorTarget\nFormat: R8G8B8A8_UNORM"},
		{"srgb", 12, "", "Format: R8G8B8A8_SRGB\nSRGB Format"},
		{"depth", 20, "", "Format: D32_FLOAT\nDepth Format"},
		{"depth stencil msaa", 21, "", "Format: D24_UNORM_S8_UINT\nDepth-Stencil Format\nMSAA Samples: 4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.TextureTooltip(resID(tt.id), tt.usage); got != tt.want {
				t.Errorf("TextureTooltip() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGraph_PassTooltip(t *testing.T) {
	g := sampleGraph(t)

	gbuffer, _ := g.Pass(4)
	if got := g.PassTooltip(gbuffer); strings.Contains(got, "Thumbnail") {
		t.Errorf("non-end pass tooltip mentions a thumbnail: %q", got)
	}

	lighting, _ := g.Pass(6)
	got := g.PassTooltip(lighting)
	for _, want := range []string{"Pass #3", "Lighting", "EID 5:ColorTarget", "SRGB Format"} {
		if !strings.Contains(got, want) {
			t.Errorf("lighting tooltip %q missing %q", got, want)
		}
	}

	post, _ := g.Pass(8)
	if got := g.PassTooltip(post); !strings.HasSuffix(got, "No Thumbnail") {
		t.Errorf("post tooltip = %q, want No Thumbnail", got)
	}
}

func TestGraph_EdgeTooltip(t *testing.T) {
	g := sampleGraph(t)
	got := g.EdgeTooltip(g.Edges[0])
	want := "Shadow Map\nFrom: EID 2:DepthStencilTarget\nTo: EID 5:PS_Resource\nFormat: D32_FLOAT\nDepth Format"
	if got != want {
		t.Errorf("EdgeTooltip() = %q, want %q", got, want)
	}
}

func TestGraph_ResourceUsageLines(t *testing.T) {
	g := sampleGraph(t)
	got := strings.Join(g.ResourceUsageLines(12), "|")
	if got != "EID 5:ColorTarget|EID 7:PS_Resource" {
		t.Errorf("ResourceUsageLines(12) = %q", got)
	}
}
