// Package testutil provides capture fixtures shared by framegraph tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Iron-Ham/framegraph/internal/capture"
)

// SampleJSON is a two-frame deferred-lighting capture.
//
//	frame 1: shadow (eid 1-2) -> gbuffer (3-4) -> lighting + present (5-6)
//	frame 2: post (7-8), reading the lighting result
//
// Expected passes have effective event ids 2, 4, 6 and 8. Expected edges:
//
//	2 -> 6 over ResourceId::20 (depth)
//	4 -> 6 over ResourceId::10 and ResourceId::11 (colour)
//	6 -> 8 over ResourceId::12 (colour)
const SampleJSON = `{
  "api": "Vulkan",
  "actions": [
    {"eventId": 1, "name": "Shadow", "depthOut": "ResourceId::20", "children": [
      {"eventId": 1, "name": "vkCmdDraw(shadow 0)", "depthOut": "ResourceId::20"},
      {"eventId": 2, "name": "vkCmdDraw(shadow 1)", "depthOut": "ResourceId::20"}
    ]},
    {"eventId": 3, "name": "vkCmdDraw(gbuffer 0)", "outputs": ["ResourceId::10", "ResourceId::11"], "depthOut": "ResourceId::21"},
    {"eventId": 4, "name": "vkCmdDraw(gbuffer 1)", "outputs": ["ResourceId::10", "ResourceId::11"], "depthOut": "ResourceId::21"},
    {"eventId": 5, "name": "vkCmdDraw(lighting)", "outputs": ["ResourceId::12"]},
    {"eventId": 6, "name": "vkQueuePresentKHR", "present": true},
    {"eventId": 7, "name": "vkCmdDraw(post 0)", "outputs": ["ResourceId::13"]},
    {"eventId": 8, "name": "vkCmdDraw(post 1)", "outputs": ["ResourceId::13"]}
  ],
  "textures": [
    {"id": "ResourceId::10", "name": "GBuffer Albedo", "width": 1920, "height": 1080, "format": {"name": "R8G8B8A8_UNORM"}},
    {"id": "ResourceId::11", "name": "GBuffer Normal", "width": 1920, "height": 1080, "format": {"name": "R16G16B16A16_FLOAT"}},
    {"id": "ResourceId::12", "name": "Lighting", "width": 1920, "height": 1080, "format": {"name": "R8G8B8A8_SRGB", "srgb": true}, "thumbnail": "thumbs/lighting.png"},
    {"id": "ResourceId::13", "name": "Backbuffer", "width": 1920, "height": 1080, "format": {"name": "B8G8R8A8_UNORM"}},
    {"id": "ResourceId::20", "name": "Shadow Map", "width": 2048, "height": 2048, "format": {"name": "D32_FLOAT", "depth": true}},
    {"id": "ResourceId::21", "name": "Scene Depth", "width": 1920, "height": 1080, "msSamples": 4, "format": {"name": "D24_UNORM_S8_UINT", "depth": true, "stencil": true}}
  ],
  "resources": [
    {"id": "ResourceId::50", "name": "Swapchain"}
  ],
  "usages": [
    {"resource": "ResourceId::20", "event": 1, "usage": "DepthStencilTarget"},
    {"resource": "ResourceId::20", "event": 2, "usage": "DepthStencilTarget"},
    {"resource": "ResourceId::20", "event": 5, "usage": "PS_Resource"},
    {"resource": "ResourceId::10", "event": 3, "usage": "ColorTarget"},
    {"resource": "ResourceId::10", "event": 4, "usage": "ColorTarget"},
    {"resource": "ResourceId::10", "event": 5, "usage": "PS_Resource"},
    {"resource": "ResourceId::11", "event": 3, "usage": "ColorTarget"},
    {"resource": "ResourceId::11", "event": 5, "usage": "PS_Resource"},
    {"resource": "ResourceId::21", "event": 3, "usage": "DepthStencilTarget"},
    {"resource": "ResourceId::21", "event": 4, "usage": "DepthStencilTarget"},
    {"resource": "ResourceId::12", "event": 5, "usage": "ColorTarget"},
    {"resource": "ResourceId::12", "event": 7, "usage": "PS_Resource"},
    {"resource": "ResourceId::13", "event": 7, "usage": "ColorTarget"},
    {"resource": "ResourceId::13", "event": 8, "usage": "ColorTarget"}
  ]
}
`

// SampleYAML is a small single-frame capture in YAML form.
const SampleYAML = `api: D3D11
frame: 41
actions:
  - eventId: 10
    name: Draw(depth prepass)
    depthOut: 7
  - eventId: 11
    name: Draw(opaque)
    outputs: ["ResourceId::5"]
    depthOut: 7
  - eventId: 12
    name: Present()
    present: true
textures:
  - id: 5
    name: Backbuffer
    width: 1280
    height: 720
    format: {name: R8G8B8A8_UNORM}
  - id: 7
    name: Depth
    width: 1280
    height: 720
    format: {name: D24_UNORM_S8_UINT, depth: true, stencil: true}
usages:
  - {resource: 7, event: 10, usage: DepthStencilTarget}
  - {resource: 7, event: 11, usage: DepthStencilTarget}
  - {resource: 5, event: 11, usage: ColorTarget}
`

// SampleDocument decodes SampleJSON.
func SampleDocument(t testing.TB) *capture.Document {
	t.Helper()
	doc, err := capture.Decode(strings.NewReader(SampleJSON), capture.FormatJSON)
	if err != nil {
		t.Fatalf("decode sample capture: %v", err)
	}
	return doc
}

// WriteCapture writes content to dir/name and returns the path.
func WriteCapture(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("create capture dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	return path
}

// WriteSample writes SampleJSON into a fresh temp dir and returns its path.
func WriteSample(t testing.TB) string {
	t.Helper()
	return WriteCapture(t, t.TempDir(), "frame.json", SampleJSON)
}

// FailingSource wraps a Source and fails Usage for one resource.
type FailingSource struct {
	capture.Source
	FailOn capture.ResourceID
	Err    error
}

// Usage implements capture.Source.
func (f *FailingSource) Usage(ctx context.Context, id capture.ResourceID) ([]capture.EventUsage, error) {
	if id == f.FailOn {
		return nil, f.Err
	}
	return f.Source.Usage(ctx, id)
}

// EventsSource builds a Source from literal events and usages, with one
// 1x1 texture per resource seen in usages.
type EventsSource struct {
	EventList   []capture.Event
	UsageList   []capture.EventUsage
	TextureList []capture.Texture
}

// Events implements capture.Source.
func (s *EventsSource) Events(context.Context) ([]capture.Event, error) {
	return s.EventList, nil
}

// Textures implements capture.Source.
func (s *EventsSource) Textures(context.Context) ([]capture.Texture, error) {
	if s.TextureList != nil {
		return s.TextureList, nil
	}
	seen := make(map[capture.ResourceID]bool)
	var out []capture.Texture
	for _, u := range s.UsageList {
		if !seen[u.Resource] {
			seen[u.Resource] = true
			out = append(out, capture.Texture{ID: u.Resource, Width: 1, Height: 1})
		}
	}
	return out, nil
}

// Usage implements capture.Source.
func (s *EventsSource) Usage(_ context.Context, id capture.ResourceID) ([]capture.EventUsage, error) {
	var out []capture.EventUsage
	for _, u := range s.UsageList {
		if u.Resource == id {
			out = append(out, u)
		}
	}
	return out, nil
}
