package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Iron-Ham/framegraph/internal/config"
	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/layout"
)

// Format names an export output.
type Format string

// Supported formats. FormatNodes is the node model as JSON; FormatNodesDOT
// renders the same model as DOT.
const (
	FormatDOT      Format = "dot"
	FormatDetailed Format = "detailed"
	FormatNodes    Format = "nodes"
	FormatNodesDOT Format = "nodes-dot"
	FormatJSON     Format = "json"
	FormatSVG      Format = "svg"
)

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatDOT, FormatDetailed, FormatNodes, FormatNodesDOT, FormatJSON, FormatSVG}
}

// ParseFormat parses a format name. "simple" is accepted for "dot".
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "simple" {
		return FormatDOT, nil
	}
	for _, f := range Formats() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", errors.NewExportError("parse format", errors.ErrUnknownFormat).WithFormat(s)
}

// ForView returns the DOT format that renders view v.
func ForView(v framegraph.View) Format {
	switch v {
	case framegraph.DetailedView:
		return FormatDetailed
	case framegraph.NodeView:
		return FormatNodesDOT
	default:
		return FormatDOT
	}
}

// Extension is the file extension conventionally used for f.
func (f Format) Extension() string {
	switch f {
	case FormatJSON, FormatNodes:
		return ".json"
	case FormatSVG:
		return ".svg"
	default:
		return ".dot"
	}
}

// ContentType is the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatJSON, FormatNodes:
		return "application/json"
	case FormatSVG:
		return "image/svg+xml"
	default:
		return "text/vnd.graphviz"
	}
}

// Options configures Write.
type Options struct {
	Style  Style
	Layout layout.Options
	// Thumbs provides end-pass previews for SVG output. May be nil.
	Thumbs Thumbnails
}

// DefaultOptions returns the built-in style and layout.
func DefaultOptions() Options {
	return Options{Style: DefaultStyle(), Layout: layout.DefaultOptions()}
}

// OptionsFromConfig derives export options from the view settings.
func OptionsFromConfig(cfg *config.Config) Options {
	lo := layout.DefaultOptions()
	lo.Direction = layout.Direction(StyleFromConfig(cfg).Direction)
	if cfg.View.LayerSpacing > 0 {
		lo.LayerSpacing = float64(cfg.View.LayerSpacing)
	}
	if cfg.View.NodeSpacing > 0 {
		lo.NodeSpacing = float64(cfg.View.NodeSpacing)
	}
	if cfg.View.CrossingSweeps >= 0 {
		lo.Sweeps = cfg.View.CrossingSweeps
	}
	return Options{Style: StyleFromConfig(cfg), Layout: lo}
}

// Write renders g in format f to w.
func Write(w io.Writer, g *framegraph.Graph, f Format, opts Options) error {
	if g == nil {
		return errors.NewExportError("render", errors.ErrGraphNotBuilt).WithFormat(string(f))
	}

	var out string
	switch f {
	case FormatDOT:
		out = SimpleDOT(g, opts.Style)
	case FormatDetailed:
		out = DetailedDOT(g, opts.Style)
	case FormatNodes, FormatNodesDOT:
		m, err := NodeModel(g)
		if err != nil {
			return err
		}
		if f == FormatNodesDOT {
			return NodeModelDOT(m, w)
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(m); err != nil {
			return errors.NewExportError("encode node model", err).WithFormat(string(f))
		}
		return nil
	case FormatJSON:
		data, err := JSON(g)
		if err != nil {
			return errors.NewExportError("encode snapshot", err).WithFormat(string(f))
		}
		out = string(data) + "\n"
	case FormatSVG:
		lo := opts.Layout
		if lo.Direction == "" {
			lo.Direction = layout.Direction(opts.Style.Direction)
		}
		res := LayoutGraph(g, lo, opts.Thumbs)
		svg, err := SVG(g, res, opts.Style, opts.Thumbs, lo.Padding)
		if err != nil {
			return err
		}
		out = svg
	default:
		return errors.NewExportError("render", errors.ErrUnknownFormat).WithFormat(string(f))
	}

	if _, err := io.WriteString(w, out); err != nil {
		return errors.NewExportError(fmt.Sprintf("write %s", f), err).WithFormat(string(f))
	}
	return nil
}
