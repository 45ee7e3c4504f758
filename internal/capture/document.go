package capture

import (
	"bytes"
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/framegraph/internal/errors"
)

// Format is the on-disk encoding of a capture document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForPath picks the document format from a file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.NewCaptureError("unrecognised capture extension", errors.ErrUnsupportedCapture).WithPath(path)
	}
}

// NamedResource names a non-texture resource such as a framebuffer or buffer.
type NamedResource struct {
	ID   ResourceID `json:"id" yaml:"id" validate:"required"`
	Name string     `json:"name" yaml:"name"`
}

// Document is a capture exported to disk. It implements Source,
// FrameInfoProvider and ResourceNamer.
type Document struct {
	API         string          `json:"api,omitempty" yaml:"api,omitempty" validate:"max=32"`
	Frame       *uint32         `json:"frame,omitempty" yaml:"frame,omitempty"`
	Actions     []Action        `json:"actions" yaml:"actions" validate:"dive"`
	TextureList []Texture       `json:"textures,omitempty" yaml:"textures,omitempty" validate:"dive"`
	Resources   []NamedResource `json:"resources,omitempty" yaml:"resources,omitempty" validate:"dive"`
	Usages      []EventUsage    `json:"usages,omitempty" yaml:"usages,omitempty" validate:"dive"`

	// Path is where the document was loaded from, if anywhere.
	Path string `json:"-" yaml:"-"`

	events     []Event
	textures   map[ResourceID]int
	names      map[ResourceID]string
	byResource map[ResourceID][]EventUsage
}

var documentValidate = func() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("usage", func(fl validator.FieldLevel) bool {
		return ResourceUsage(fl.Field().Uint()).Valid()
	})
	return v
}()

// Load reads, decodes and checks the capture document at path.
func Load(path string) (*Document, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCaptureError("read capture", err).WithPath(path)
	}
	doc, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		var captureErr *errors.CaptureError
		if errors.As(err, &captureErr) {
			return nil, captureErr.WithPath(path)
		}
		return nil, err
	}
	doc.Path = path
	return doc, nil
}

// Decode strictly decodes a document: unknown fields and trailing data are
// errors. The result is validated and indexed.
func Decode(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatJSON:
		if err := decodeJSON(r, &doc); err != nil {
			return nil, errors.NewCaptureError("parse capture json", fmt.Errorf("%w: %v", errors.ErrInvalidCapture, err))
		}
	case FormatYAML:
		if err := decodeYAML(r, &doc); err != nil {
			return nil, errors.NewCaptureError("parse capture yaml", fmt.Errorf("%w: %v", errors.ErrInvalidCapture, err))
		}
	default:
		return nil, errors.NewCaptureError(fmt.Sprintf("format %q", format), errors.ErrUnsupportedCapture)
	}

	if err := doc.Check(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func decodeJSON(r io.Reader, doc *Document) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(doc); err != nil {
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("trailing data")
		}
		return err
	}
	return nil
}

func decodeYAML(r io.Reader, doc *Document) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(doc); err != nil {
		if err == io.EOF {
			return fmt.Errorf("empty document")
		}
		return err
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		if err == nil {
			return fmt.Errorf("trailing data")
		}
		return err
	}
	return nil
}

// Check validates struct constraints and referential integrity, then
// builds the lookup indexes. Documents built in code must be checked
// before use as a Source.
func (d *Document) Check() error {
	if err := documentValidate.Struct(d); err != nil {
		return errors.NewCaptureError("validate capture", fmt.Errorf("%w: %v", errors.ErrInvalidCapture, err))
	}

	d.events = FlattenActions(d.Actions)
	known := make(map[uint32]struct{}, len(d.events))
	for i, e := range d.events {
		if _, dup := known[e.EventID]; dup {
			return errors.NewCaptureError(fmt.Sprintf("event %d appears twice", e.EventID), errors.ErrDuplicateEvent)
		}
		if i > 0 && e.EventID < d.events[i-1].EventID {
			return errors.NewCaptureError(
				fmt.Sprintf("event %d follows event %d", e.EventID, d.events[i-1].EventID),
				errors.ErrInvalidCapture,
			)
		}
		known[e.EventID] = struct{}{}
	}

	d.textures = make(map[ResourceID]int, len(d.TextureList))
	d.names = make(map[ResourceID]string, len(d.TextureList)+len(d.Resources))
	for i, t := range d.TextureList {
		if _, dup := d.textures[t.ID]; dup {
			return errors.NewCaptureError(fmt.Sprintf("texture %s appears twice", t.ID), errors.ErrInvalidCapture)
		}
		d.textures[t.ID] = i
		if t.Name != "" {
			d.names[t.ID] = t.Name
		}
	}
	for _, r := range d.Resources {
		if _, ok := d.names[r.ID]; !ok && r.Name != "" {
			d.names[r.ID] = r.Name
		}
	}

	d.byResource = make(map[ResourceID][]EventUsage)
	for i, u := range d.Usages {
		if _, ok := known[u.EventID]; !ok {
			return errors.NewCaptureError(
				fmt.Sprintf("usages[%d] refers to unknown event %d", i, u.EventID),
				fmt.Errorf("%w: %w", errors.ErrInvalidCapture, errors.ErrEventNotFound),
			)
		}
		d.byResource[u.Resource] = append(d.byResource[u.Resource], u)
	}
	for id := range d.byResource {
		slices.SortStableFunc(d.byResource[id], func(a, b EventUsage) int {
			return cmp.Compare(a.EventID, b.EventID)
		})
	}
	return nil
}

// Digest returns the hex SHA-256 of the document's canonical JSON form.
func (d *Document) Digest() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", errors.NewCaptureError("encode capture", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Events implements Source.
func (d *Document) Events(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if d.events == nil && len(d.Actions) > 0 {
		return nil, errors.NewCaptureError("document not checked", errors.ErrCaptureNotLoaded)
	}
	return slices.Clone(d.events), nil
}

// EventCount returns the number of flattened events once the document is checked.
func (d *Document) EventCount() int { return len(d.events) }

// Textures implements Source.
func (d *Document) Textures(ctx context.Context) ([]Texture, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(d.TextureList), nil
}

// Usage implements Source.
func (d *Document) Usage(ctx context.Context, id ResourceID) ([]EventUsage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(d.byResource[id]), nil
}

// FrameInfo implements FrameInfoProvider.
func (d *Document) FrameInfo() FrameInfo {
	info := FrameInfo{FrameNumber: UnknownFrame, API: d.API}
	if d.Frame != nil {
		info.FrameNumber = *d.Frame
	}
	return info
}

// ResourceName implements ResourceNamer.
func (d *Document) ResourceName(id ResourceID) (string, bool) {
	name, ok := d.names[id]
	return name, ok
}

// Texture looks a texture up by id.
func (d *Document) Texture(id ResourceID) (Texture, bool) {
	i, ok := d.textures[id]
	if !ok {
		return Texture{}, false
	}
	return d.TextureList[i], true
}

// ThumbnailPath resolves a texture's thumbnail relative to the document.
func (d *Document) ThumbnailPath(t Texture) string {
	if t.Thumbnail == "" || filepath.IsAbs(t.Thumbnail) || d.Path == "" {
		return t.Thumbnail
	}
	return filepath.Join(filepath.Dir(d.Path), t.Thumbnail)
}
