// Package thumbnail loads texture preview images, scales them down and
// encodes them as PNG data URIs for embedding in SVG output.
package thumbnail

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif" // register decoders
	_ "image/jpeg"
	"image/png"
	"os"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/errors"
)

// DefaultMaxEdge is the longest side of a thumbnail when none is set.
const DefaultMaxEdge = 96

// Resolver maps a texture to the path of its preview image.
type Resolver func(t capture.Texture) string

// Thumb is a scaled preview.
type Thumb struct {
	Image  image.Image
	Width  int
	Height int
}

type entry struct {
	thumb Thumb
	err   error
}

// Loader produces thumbnails and memoises them per resource. It is safe
// for concurrent use.
type Loader struct {
	maxEdge int
	resolve Resolver

	mu    sync.Mutex
	cache map[capture.ResourceID]entry
}

// NewLoader returns a Loader scaling images to fit maxEdge. A nil resolve
// uses the texture's Thumbnail path as is.
func NewLoader(maxEdge int, resolve Resolver) *Loader {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	if resolve == nil {
		resolve = func(t capture.Texture) string { return t.Thumbnail }
	}
	return &Loader{maxEdge: maxEdge, resolve: resolve, cache: make(map[capture.ResourceID]entry)}
}

// Get returns the thumbnail of t. Textures without a preview image yield
// a not-found error.
func (l *Loader) Get(t capture.Texture) (Thumb, error) {
	l.mu.Lock()
	if e, ok := l.cache[t.ID]; ok {
		l.mu.Unlock()
		return e.thumb, e.err
	}
	l.mu.Unlock()

	thumb, err := l.load(t)

	l.mu.Lock()
	l.cache[t.ID] = entry{thumb, err}
	l.mu.Unlock()
	return thumb, err
}

// Forget drops every memoised thumbnail, e.g. after the capture reloads.
func (l *Loader) Forget() {
	l.mu.Lock()
	defer l.mu.Unlock()
	clear(l.cache)
}

func (l *Loader) load(t capture.Texture) (Thumb, error) {
	path := l.resolve(t)
	if path == "" {
		return Thumb{}, errors.NewNotFoundError("thumbnail", t.ID.String()).WithCause(errors.ErrResourceNotFound)
	}

	f, err := os.Open(path)
	if err != nil {
		return Thumb{}, thumbError("open thumbnail", path, err)
	}
	defer func() { _ = f.Close() }()

	src, _, err := image.Decode(f)
	if err != nil {
		return Thumb{}, thumbError("decode thumbnail", path, err)
	}

	img := Scale(src, l.maxEdge)
	b := img.Bounds()
	return Thumb{Image: img, Width: b.Dx(), Height: b.Dy()}, nil
}

// thumbError marks a broken preview as a warning: the graph renders without it.
func thumbError(msg, path string, err error) error {
	return errors.NewCaptureError(msg, err).WithPath(path).WithSeverity(errors.SeverityWarning)
}

// Scale shrinks src to fit within maxEdge on its longest side, keeping
// the aspect ratio. Images that already fit are returned unchanged.
func Scale(src image.Image, maxEdge int) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxEdge && h <= maxEdge {
		return src
	}

	nw, nh := maxEdge, maxEdge
	if w >= h {
		nh = max(1, h*maxEdge/w)
	} else {
		nw = max(1, w*maxEdge/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}

// EncodeDataURI encodes img as a base64 PNG data URI.
func EncodeDataURI(img image.Image) (string, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode thumbnail: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
