package capture

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// TextureFormat describes a texture's pixel format.
type TextureFormat struct {
	Name    string `json:"name" yaml:"name" validate:"max=64"`
	Depth   bool   `json:"depth,omitempty" yaml:"depth,omitempty"`
	Stencil bool   `json:"stencil,omitempty" yaml:"stencil,omitempty"`
	SRGB    bool   `json:"srgb,omitempty" yaml:"srgb,omitempty"`
}

var formatAliases = map[string]gputypes.TextureFormat{
	"R8G8B8A8_UNORM":    gputypes.TextureFormatRGBA8Unorm,
	"RGBA8":             gputypes.TextureFormatRGBA8Unorm,
	"RGBA8_UNORM":       gputypes.TextureFormatRGBA8Unorm,
	"B8G8R8A8_UNORM":    gputypes.TextureFormatBGRA8Unorm,
	"BGRA8":             gputypes.TextureFormatBGRA8Unorm,
	"BGRA8_UNORM":       gputypes.TextureFormatBGRA8Unorm,
	"R8_UNORM":          gputypes.TextureFormatR8Unorm,
	"R8":                gputypes.TextureFormatR8Unorm,
	"D24_UNORM_S8_UINT": gputypes.TextureFormatDepth24PlusStencil8,
	"D24S8":             gputypes.TextureFormatDepth24PlusStencil8,
}

// GPU maps the format name onto the WebGPU format it corresponds to, or
// TextureFormatUndefined when there is no direct equivalent.
func (f TextureFormat) GPU() gputypes.TextureFormat {
	if gf, ok := formatAliases[strings.ToUpper(strings.TrimSpace(f.Name))]; ok {
		return gf
	}
	return gputypes.TextureFormatUndefined
}

// BytesPerPixel is the texel size for formats with a known layout, or 0.
func (f TextureFormat) BytesPerPixel() int {
	switch f.GPU() {
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatBGRA8Unorm,
		gputypes.TextureFormatDepth24PlusStencil8:
		return 4
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 0
	}
}

// Texture describes a texture resource in the capture.
type Texture struct {
	ID        ResourceID    `json:"id" yaml:"id" validate:"required"`
	Name      string        `json:"name,omitempty" yaml:"name,omitempty"`
	Width     uint32        `json:"width" yaml:"width"`
	Height    uint32        `json:"height" yaml:"height"`
	Depth     uint32        `json:"depth,omitempty" yaml:"depth,omitempty"`
	Mips      uint32        `json:"mips,omitempty" yaml:"mips,omitempty"`
	ArraySize uint32        `json:"arraySize,omitempty" yaml:"arraySize,omitempty"`
	MSSamples uint32        `json:"msSamples,omitempty" yaml:"msSamples,omitempty"`
	Format    TextureFormat `json:"format" yaml:"format"`
	// Thumbnail is an optional preview image path, relative to the capture file.
	Thumbnail string `json:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
}

// DisplayName returns the texture name, or its id when unnamed.
func (t Texture) DisplayName() string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID.String()
}

// ByteSize estimates the top mip's memory footprint, or 0 when the format
// layout is unknown.
func (t Texture) ByteSize() uint64 {
	bpp := t.Format.BytesPerPixel()
	if bpp == 0 {
		return 0
	}
	depth := max(t.Depth, 1)
	layers := max(t.ArraySize, 1)
	samples := max(t.MSSamples, 1)
	return uint64(t.Width) * uint64(t.Height) * uint64(depth) * uint64(layers) * uint64(samples) * uint64(bpp)
}
