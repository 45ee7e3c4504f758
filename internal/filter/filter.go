// Package filter selects passes by category and by a glob pattern matched
// against pass names and the names of the resources a pass touches.
package filter

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// Category defines a pass category with its display properties.
type Category struct {
	Key      string // Internal key (e.g., "end")
	Label    string // Display label (e.g., "End passes")
	Shortcut string // Keyboard shortcut in the viewer
}

// Category keys. Every pass falls into exactly one.
const (
	CategoryEnd   = "end"
	CategoryColor = "color"
	CategoryDepth = "depth"
)

// Categories is the standard set of pass categories.
var Categories = []Category{
	{Key: CategoryEnd, Label: "End passes", Shortcut: "1"},
	{Key: CategoryColor, Label: "Colour passes", Shortcut: "2"},
	{Key: CategoryDepth, Label: "Depth-only passes", Shortcut: "3"},
}

// Filter manages category-based and glob-based pass filtering.
// The zero value is not usable; call New.
type Filter struct {
	categories map[string]bool
	pattern    string
	glob       glob.Glob
}

// New creates a Filter with all categories enabled and no pattern.
func New() *Filter {
	f := &Filter{categories: make(map[string]bool, len(Categories))}
	for _, cat := range Categories {
		f.categories[cat.Key] = true
	}
	return f
}

// Compile returns a Filter for pattern, or a validation error if the glob
// is malformed.
func Compile(pattern string) (*Filter, error) {
	f := New()
	if err := f.SetPattern(pattern); err != nil {
		return nil, err
	}
	return f, nil
}

// CategoryOf returns the category key of p within g. Passes without colour
// targets count as depth passes, whether or not they write depth.
func CategoryOf(g *framegraph.Graph, p framegraph.Pass) string {
	switch {
	case g.IsEndPass(p):
		return CategoryEnd
	case p.ColorTargetCount() == 0:
		return CategoryDepth
	default:
		return CategoryColor
	}
}

// IsCategoryEnabled returns whether a specific category is shown.
func (f *Filter) IsCategoryEnabled(key string) bool {
	return f.categories[key]
}

// ToggleCategory toggles the enabled state of a category.
func (f *Filter) ToggleCategory(key string) {
	if _, ok := f.categories[key]; ok {
		f.categories[key] = !f.categories[key]
	}
}

// ToggleAll disables every category if all are enabled, otherwise
// enables them all.
func (f *Filter) ToggleAll() {
	all := f.AllEnabled()
	for k := range f.categories {
		f.categories[k] = !all
	}
}

// AllEnabled reports whether every category is shown.
func (f *Filter) AllEnabled() bool {
	for _, v := range f.categories {
		if !v {
			return false
		}
	}
	return true
}

// Pattern returns the current pattern as typed.
func (f *Filter) Pattern() string { return f.pattern }

// SetPattern compiles pattern. Matching is case-insensitive, and a pattern
// without glob metacharacters matches anywhere in a name. On error the
// previous pattern stays in effect.
func (f *Filter) SetPattern(pattern string) error {
	if pattern == "" {
		f.Clear()
		return nil
	}
	expr := strings.ToLower(pattern)
	if !strings.ContainsAny(expr, "*?[{\\") {
		expr = "*" + expr + "*"
	}
	g, err := glob.Compile(expr)
	if err != nil {
		return errors.NewValidationError("invalid filter pattern").
			WithField("filter").
			WithValue(pattern)
	}
	f.pattern = pattern
	f.glob = g
	return nil
}

// Clear removes the pattern.
func (f *Filter) Clear() {
	f.pattern = ""
	f.glob = nil
}

// HasActiveFilter reports whether any pass can be hidden.
func (f *Filter) HasActiveFilter() bool {
	return !f.AllEnabled() || f.glob != nil
}

// Match reports whether p should be shown.
func (f *Filter) Match(g *framegraph.Graph, p framegraph.Pass) bool {
	if !f.categories[CategoryOf(g, p)] {
		return false
	}
	if f.glob == nil {
		return true
	}
	for _, s := range Names(g, p) {
		if f.glob.Match(strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// Apply returns the passes of g that match, in graph order.
func (f *Filter) Apply(g *framegraph.Graph) []framegraph.Pass {
	if !f.HasActiveFilter() {
		return g.Passes
	}
	out := make([]framegraph.Pass, 0, len(g.Passes))
	for _, p := range g.Passes {
		if f.Match(g, p) {
			out = append(out, p)
		}
	}
	return out
}

// Names lists the strings a pattern is matched against: the pass name and
// title, then the name and id of every resource the pass reads or writes.
func Names(g *framegraph.Graph, p framegraph.Pass) []string {
	names := []string{p.Name, p.Title()}
	seen := make(map[string]bool)
	add := func(set []capture.ResourceID) {
		for _, id := range set {
			key := id.String()
			if seen[key] {
				continue
			}
			seen[key] = true
			names = append(names, g.ResourceName(id), key)
		}
	}
	add(p.Outputs)
	if !p.DepthOut.IsNull() {
		add([]capture.ResourceID{p.DepthOut})
	}
	add(p.Reads)
	add(p.Draws)
	return names
}
