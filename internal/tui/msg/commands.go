package msg

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/framegraph/internal/errors"
	"github.com/Iron-Ham/framegraph/internal/export"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/workspace"
)

// Load returns a command that loads the capture, using the cache when it can.
func Load(ctx context.Context, ws *workspace.Workspace) tea.Cmd {
	return func() tea.Msg {
		g, err := ws.Load(ctx)
		return GraphMsg{Graph: g, Err: err}
	}
}

// Rebuild returns a command that rebuilds the graph, bypassing the cache.
func Rebuild(ctx context.Context, ws *workspace.Workspace) tea.Cmd {
	return func() tea.Msg {
		g, err := ws.Rebuild(ctx)
		return GraphMsg{Graph: g, Err: err}
	}
}

// ExportPath is where Export writes the DOT of view v for a capture.
func ExportPath(dir, capturePath string, v framegraph.View) string {
	base := strings.TrimSuffix(filepath.Base(capturePath), filepath.Ext(capturePath))
	f := export.ForView(v)
	return filepath.Join(dir, base+"."+v.String()+f.Extension())
}

// Export returns a command that writes the graph of view v next to dir.
func Export(ws *workspace.Workspace, v framegraph.View, dir string) tea.Cmd {
	return func() tea.Msg {
		path := ExportPath(dir, ws.Path(), v)
		f, err := os.Create(path)
		if err != nil {
			return ExportedMsg{Path: path, Err: errors.Wrap(err, "create export file")}
		}
		err = ws.Export(f, export.ForView(v))
		if cerr := f.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
			return ExportedMsg{Path: path, Err: err}
		}
		return ExportedMsg{Path: path}
	}
}

// ClearInfoAfter returns a command that sends ClearInfoMsg after d.
func ClearInfoAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return ClearInfoMsg{}
	})
}
