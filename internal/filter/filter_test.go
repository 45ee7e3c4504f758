package filter

import (
	"context"
	"slices"
	"testing"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/testutil"
)

func sampleGraph(t *testing.T) *framegraph.Graph {
	t.Helper()
	g, err := framegraph.Build(context.Background(), testutil.SampleDocument(t), framegraph.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	return g
}

func ids(passes []framegraph.Pass) []uint32 {
	out := make([]uint32, 0, len(passes))
	for _, p := range passes {
		out = append(out, p.EffectiveEventID)
	}
	return out
}

func TestNew(t *testing.T) {
	f := New()

	for _, cat := range Categories {
		if !f.IsCategoryEnabled(cat.Key) {
			t.Errorf("category %q should be enabled by default", cat.Key)
		}
	}
	if f.Pattern() != "" {
		t.Errorf("Pattern() = %q, want empty", f.Pattern())
	}
	if f.HasActiveFilter() {
		t.Error("new filter should not be active")
	}
}

func TestCategoryOf(t *testing.T) {
	g := sampleGraph(t)
	want := map[uint32]string{
		2: CategoryDepth,
		4: CategoryColor,
		6: CategoryEnd,
		8: CategoryEnd,
	}
	for eid, cat := range want {
		p, err := g.Pass(eid)
		if err != nil {
			t.Fatalf("Pass(%d) error = %v", eid, err)
		}
		if got := CategoryOf(g, p); got != cat {
			t.Errorf("CategoryOf(pass %d) = %q, want %q", eid, got, cat)
		}
	}
}

func TestCategoryOf_NoTargets(t *testing.T) {
	// A compute pass with no targets feeds a draw through a storage image.
	src := &testutil.EventsSource{
		EventList: []capture.Event{
			{EventID: 1, Name: "vkCmdDispatch"},
			{EventID: 2, Name: "vkCmdDraw", Outputs: []capture.ResourceID{6}},
			{EventID: 3, Name: "vkQueuePresentKHR", FrameEnd: true},
		},
		UsageList: []capture.EventUsage{
			{EventID: 1, Usage: capture.CSRWResource, Resource: 5},
			{EventID: 2, Usage: capture.PSResource, Resource: 5},
			{EventID: 2, Usage: capture.ColorTarget, Resource: 6},
		},
	}
	g, err := framegraph.Build(context.Background(), src, framegraph.Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	p, err := g.Pass(1)
	if err != nil {
		t.Fatalf("Pass(1) error = %v", err)
	}
	if g.IsEndPass(p) {
		t.Fatal("dispatch pass should feed the draw")
	}
	if got := CategoryOf(g, p); got != CategoryDepth {
		t.Errorf("CategoryOf(dispatch) = %q, want %q", got, CategoryDepth)
	}
}

func TestToggleCategory(t *testing.T) {
	f := New()
	f.ToggleCategory(CategoryEnd)
	if f.IsCategoryEnabled(CategoryEnd) {
		t.Error("end should be disabled after toggle")
	}
	if f.AllEnabled() {
		t.Error("AllEnabled() should be false")
	}
	f.ToggleCategory("unknown")
	if f.IsCategoryEnabled("unknown") {
		t.Error("unknown categories should not be added")
	}

	f.ToggleAll()
	if !f.AllEnabled() {
		t.Error("ToggleAll() with one disabled should enable all")
	}
	f.ToggleAll()
	for _, cat := range Categories {
		if f.IsCategoryEnabled(cat.Key) {
			t.Errorf("category %q should be disabled", cat.Key)
		}
	}
}

func TestApply(t *testing.T) {
	g := sampleGraph(t)

	tests := []struct {
		name     string
		pattern  string
		disabled []string
		want     []uint32
	}{
		{name: "no filter", want: []uint32{2, 4, 6, 8}},
		{name: "pass and resource names", pattern: "gbuffer", want: []uint32{4, 6}},
		{name: "case insensitive", pattern: "GBUFFER 1", want: []uint32{4}},
		{name: "glob over pass name", pattern: "vkCmdDraw(post*", want: []uint32{8}},
		{name: "resource name", pattern: "shadow map", want: []uint32{2, 6}},
		{name: "resource id", pattern: "ResourceId::12", want: []uint32{6, 8}},
		{name: "title", pattern: "pass #3", want: []uint32{6}},
		{name: "no match", pattern: "compute*", want: []uint32{}},
		{name: "end passes hidden", disabled: []string{CategoryEnd}, want: []uint32{2, 4}},
		{name: "category and pattern", pattern: "*", disabled: []string{CategoryColor, CategoryDepth}, want: []uint32{6, 8}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := Compile(tt.pattern)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.pattern, err)
			}
			for _, key := range tt.disabled {
				f.ToggleCategory(key)
			}
			got := ids(f.Apply(g))
			if !slices.Equal(got, tt.want) {
				t.Errorf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetPattern_Invalid(t *testing.T) {
	f := New()
	if err := f.SetPattern("gbuffer"); err != nil {
		t.Fatalf("SetPattern() error = %v", err)
	}

	err := f.SetPattern("[unterminated")
	if err == nil {
		t.Fatal("SetPattern() should reject a malformed glob")
	}
	if !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
	if f.Pattern() != "gbuffer" {
		t.Errorf("Pattern() = %q, previous pattern should be kept", f.Pattern())
	}

	f.Clear()
	if f.HasActiveFilter() {
		t.Error("Clear() should deactivate the filter")
	}
}

func TestNames(t *testing.T) {
	g := sampleGraph(t)
	p, err := g.Pass(6)
	if err != nil {
		t.Fatal(err)
	}
	names := Names(g, p)
	for _, want := range []string{"vkQueuePresentKHR", "Pass #3", "Lighting", "GBuffer Albedo", "ResourceId::20"} {
		if !slices.Contains(names, want) {
			t.Errorf("Names() missing %q in %v", want, names)
		}
	}
}
