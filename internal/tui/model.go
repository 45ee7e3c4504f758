// Package tui is the terminal frame graph viewer.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/Iron-Ham/framegraph/internal/filter"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/tui/keymap"
	"github.com/Iron-Ham/framegraph/internal/tui/styles"
	"github.com/Iron-Ham/framegraph/internal/workspace"
)

// Layout constants
const (
	SidebarMinWidth = 20
	// sidebar border (2) + padding (2) + gap (1)
	sidebarChrome = 5
	// header + status line + footer
	chromeHeight = 4
)

// Model holds the viewer state.
type Model struct {
	ctx    context.Context
	ws     *workspace.Workspace
	keymap *keymap.Keymap
	styles *styles.ThemedStyles

	graph   *framegraph.Graph
	view    framegraph.View
	filter  *filter.Filter
	visible []framegraph.Pass

	// cursor indexes visible; edgeCursor indexes selectedEdges, -1 for none
	cursor     int
	edgeCursor int

	mode    keymap.Mode
	input   textinput.Model
	spinner spinner.Model
	// prevPattern is restored when filter entry is cancelled
	prevPattern string

	building bool
	progress framegraph.Progress

	// intents holds the outcome of the last selection
	intents []framegraph.Intent

	exportDir    string
	sidebarWidth int
	width        int
	height       int
	ready        bool
	quitting     bool

	infoMessage  string
	errorMessage string
}

// NewModel creates a viewer model for ws. Exports are written to exportDir.
func NewModel(ctx context.Context, ws *workspace.Workspace, exportDir string) Model {
	cfg := ws.Config()

	view, err := framegraph.ParseView(cfg.View.Default)
	if err != nil {
		view = framegraph.SimpleView
	}

	ti := textinput.New()
	ti.CharLimit = 128

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	width := cfg.TUI.SidebarWidth
	if width < SidebarMinWidth {
		width = SidebarMinWidth
	}

	st := styles.ForTheme(cfg.TUI.Theme, ws.ExportOptions().Style)
	sp.Style = st.Primary

	return Model{
		ctx:          ctx,
		ws:           ws,
		keymap:       keymap.DefaultKeymap(),
		styles:       st,
		view:         view,
		filter:       filter.New(),
		edgeCursor:   -1,
		mode:         keymap.ModeNormal,
		input:        ti,
		spinner:      sp,
		building:     true,
		exportDir:    exportDir,
		sidebarWidth: width,
	}
}

// Graph returns the graph on display, or nil before the first build.
func (m Model) Graph() *framegraph.Graph { return m.graph }

// GraphView returns the active graph view.
func (m Model) GraphView() framegraph.View { return m.view }

// Mode returns the current input mode.
func (m Model) Mode() keymap.Mode { return m.mode }

// Intents returns the intents produced by the last selection.
func (m Model) Intents() []framegraph.Intent { return m.intents }

// Visible returns the passes that pass the current filter.
func (m Model) Visible() []framegraph.Pass { return m.visible }

// Selected returns the pass under the cursor.
func (m Model) Selected() (framegraph.Pass, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return framegraph.Pass{}, false
	}
	return m.visible[m.cursor], true
}

// selectedEdges lists the edges of the selected pass, incoming first.
func (m Model) selectedEdges() []framegraph.Edge {
	p, ok := m.Selected()
	if !ok || m.graph == nil {
		return nil
	}
	in := m.graph.Incoming(p.EffectiveEventID)
	out := m.graph.Outgoing(p.EffectiveEventID)
	edges := make([]framegraph.Edge, 0, len(in)+len(out))
	edges = append(edges, in...)
	return append(edges, out...)
}

// SelectedEdge returns the focused edge of the selected pass.
func (m Model) SelectedEdge() (framegraph.Edge, bool) {
	edges := m.selectedEdges()
	if m.edgeCursor < 0 || m.edgeCursor >= len(edges) {
		return framegraph.Edge{}, false
	}
	return edges[m.edgeCursor], true
}

// setGraph installs a new graph and keeps the cursor on the same pass when
// it still exists.
func (m *Model) setGraph(g *framegraph.Graph) {
	if g == nil {
		return
	}
	var keep uint32
	if p, ok := m.Selected(); ok {
		keep = p.EffectiveEventID
	}
	m.graph = g
	m.refilter()
	if keep != 0 {
		m.moveTo(keep)
	}
}

// refilter recomputes the visible passes and clamps the cursors.
func (m *Model) refilter() {
	if m.graph == nil {
		m.visible = nil
		return
	}
	var keep uint32
	if p, ok := m.Selected(); ok {
		keep = p.EffectiveEventID
	}
	m.visible = m.filter.Apply(m.graph)
	if keep == 0 || !m.moveTo(keep) {
		m.setCursor(m.cursor)
	}
}

// moveTo puts the cursor on the visible pass with effective id eid.
func (m *Model) moveTo(eid uint32) bool {
	for i, p := range m.visible {
		if p.EffectiveEventID == eid {
			m.setCursor(i)
			return true
		}
	}
	return false
}

func (m *Model) setCursor(i int) {
	if i >= len(m.visible) {
		i = len(m.visible) - 1
	}
	if i < 0 {
		i = 0
	}
	if i != m.cursor {
		m.edgeCursor = -1
	}
	m.cursor = i
}

// listHeight is the number of sidebar rows available for passes.
func (m Model) listHeight() int {
	h := m.height - chromeHeight - 2
	if h < 3 {
		h = 3
	}
	return h
}

func (m Model) detailWidth() int {
	w := m.width - m.sidebarWidth - sidebarChrome
	if w < 20 {
		w = 20
	}
	return w
}
