package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Iron-Ham/framegraph/internal/capture"
	"github.com/Iron-Ham/framegraph/internal/filter"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/tui/keymap"
	"github.com/Iron-Ham/framegraph/internal/util"
)

// View renders the viewer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Loading..."
	}
	if m.mode == keymap.ModeHelp {
		return m.renderHelp()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSidebar(),
		" ",
		m.renderDetail(),
	)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderStatus(),
		m.renderFooter(),
	)
}

func (m Model) renderHeader() string {
	parts := []string{"framegraph", filepath.Base(m.ws.Path()), "view: " + m.view.String()}
	if m.graph != nil {
		st := m.graph.Stats()
		parts = append(parts, fmt.Sprintf("%d frames  %d passes  %d edges", st.Frames, st.Passes, st.Edges))
	}
	if m.building {
		status := m.spinner.View() + " building"
		if m.progress.Stage != "" {
			status += fmt.Sprintf(" %s %d%%", m.progress.Stage, int(m.progress.Fraction*100))
		}
		parts = append(parts, status)
	}
	return util.Truncate(m.styles.Header.Render(strings.Join(parts, "  │  ")), max(m.width, 10))
}

// passMarker distinguishes end, colour and depth-only passes.
func (m Model) passMarker(p framegraph.Pass) string {
	switch filter.CategoryOf(m.graph, p) {
	case filter.CategoryEnd:
		return m.styles.EndPassMark.Render("●")
	case filter.CategoryDepth:
		return lipgloss.NewStyle().Foreground(m.styles.DepthEdgeColor).Render("◆")
	default:
		return lipgloss.NewStyle().Foreground(m.styles.PassColor).Render("○")
	}
}

func (m Model) renderSidebar() string {
	height := m.listHeight()
	// padding (2) and the marker column (2) share the width
	inner := m.sidebarWidth

	var rows []string
	cursorRow := 0
	var frame uint32
	for i, p := range m.visible {
		if i == 0 || p.Frame != frame {
			frame = p.Frame
			rows = append(rows, m.styles.FrameHeader.Render(fmt.Sprintf("Frame %d", frame)))
		}
		text := util.Truncate(fmt.Sprintf("%4d %s %s", p.EffectiveEventID, p.Title(), p.Name), inner-4)
		if i == m.cursor {
			cursorRow = len(rows)
			text = m.styles.PassSelected.Render(text)
		} else {
			text = m.styles.PassItem.Render(text)
		}
		rows = append(rows, m.passMarker(p)+" "+text)
	}

	switch {
	case m.graph == nil:
		rows = []string{m.styles.Muted.Render("No graph yet")}
	case len(rows) == 0:
		rows = []string{m.styles.Muted.Render("No passes match")}
	}

	start := 0
	if cursorRow >= height {
		start = cursorRow - height + 1
	}
	end := min(start+height, len(rows))
	content := strings.Join(rows[start:end], "\n")

	return m.styles.Sidebar.
		Width(inner).
		Height(height).
		Render(content)
}

func (m Model) renderDetail() string {
	width := m.detailWidth()
	height := m.listHeight()

	p, ok := m.Selected()
	if !ok || m.graph == nil {
		return m.styles.Detail.Width(width).Height(height).Render(m.styles.Muted.Render("Nothing selected"))
	}
	g := m.graph

	var b strings.Builder
	title := fmt.Sprintf("%s  EID %d", p.Title(), p.EffectiveEventID)
	if p.Start != p.End {
		title += fmt.Sprintf("  (events %d-%d)", p.Start, p.End)
	}
	b.WriteString(m.styles.Title.Render(title))
	b.WriteString("\n")
	if p.Name != "" {
		b.WriteString(m.styles.Text.Render(p.Name))
		b.WriteString("\n")
	}
	b.WriteString(m.styles.Muted.Render(strings.ReplaceAll(g.PassLabel(p), "\n", " · ")))
	if g.IsEndPass(p) {
		b.WriteString(" " + m.styles.EndPassMark.Render("[end]"))
	}
	b.WriteString("\n")

	m.writeResources(&b, "Targets", p.EffectiveEventID, targets(p))
	m.writeResources(&b, "Reads", p.EffectiveEventID, p.Reads)

	edges := m.selectedEdges()
	nIn := len(g.Incoming(p.EffectiveEventID))
	if len(edges) > 0 {
		b.WriteString(m.styles.SectionTitle.Render("Dependencies"))
		b.WriteString("\n")
		for i, e := range edges {
			arrow, other := "←", e.From
			if i >= nIn {
				arrow, other = "→", e.To
			}
			line := fmt.Sprintf("%s pass %d  %s (%s)", arrow, other, g.ResourceName(e.Resource), e.Kind)
			b.WriteString(m.styles.EdgeStyle(e.Kind, i == m.edgeCursor).Render(line))
			b.WriteString("\n")
		}
	}

	if e, ok := m.SelectedEdge(); ok {
		b.WriteString(m.styles.Tooltip.Render(g.EdgeTooltip(e)))
		b.WriteString("\n")
	}

	if len(m.intents) > 0 {
		b.WriteString(m.styles.SectionTitle.Render("Selection"))
		b.WriteString("\n")
		for _, in := range m.intents {
			b.WriteString(m.styles.Secondary.Render(intentText(in)))
			b.WriteString("\n")
		}
	}

	lines := strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for i, l := range lines {
		lines[i] = util.Truncate(l, width-2)
	}
	return m.styles.Detail.Width(width).Height(height).Render(strings.Join(lines, "\n"))
}

func targets(p framegraph.Pass) []capture.ResourceID {
	ids := make([]capture.ResourceID, 0, len(p.Outputs)+1)
	for _, id := range p.Outputs {
		if !id.IsNull() {
			ids = append(ids, id)
		}
	}
	if p.HasDepth() {
		ids = append(ids, p.DepthOut)
	}
	return ids
}

func (m Model) writeResources(b *strings.Builder, title string, eid uint32, ids []capture.ResourceID) {
	if len(ids) == 0 {
		return
	}
	b.WriteString(m.styles.SectionTitle.Render(title))
	b.WriteString("\n")
	for _, id := range ids {
		b.WriteString("  " + m.styles.Resource.Render(m.graph.ResourceName(id)))
		b.WriteString(" " + m.styles.Muted.Render(m.graph.UsageInfo(eid, id)))
		b.WriteString("\n")
	}
}

func intentText(in framegraph.Intent) string {
	switch in.Kind {
	case framegraph.JumpToEvent:
		return fmt.Sprintf("%s → event %d", in.Kind, in.EventID)
	default:
		return fmt.Sprintf("%s → %s", in.Kind, in.Resource)
	}
}

func (m Model) renderStatus() string {
	switch {
	case m.mode == keymap.ModeFilter || m.mode == keymap.ModeJump:
		line := m.styles.FilterPrompt.Render(m.input.View())
		if m.errorMessage != "" {
			line += "  " + m.styles.Error.Render(m.errorMessage)
		}
		return line
	case m.errorMessage != "":
		return m.styles.Error.Render(util.Truncate(m.errorMessage, max(m.width, 10)))
	case m.infoMessage != "":
		return m.styles.Secondary.Render(m.infoMessage)
	}

	var parts []string
	if pat := m.filter.Pattern(); pat != "" {
		parts = append(parts, "filter: "+pat)
	}
	for _, c := range filter.Categories {
		mark := "✓"
		if !m.filter.IsCategoryEnabled(c.Key) {
			mark = "✗"
		}
		parts = append(parts, fmt.Sprintf("[%s %s %s]", c.Shortcut, c.Key, mark))
	}
	if m.graph != nil {
		parts = append(parts, fmt.Sprintf("%d/%d passes", len(m.visible), len(m.graph.Passes)))
	}
	return m.styles.StatusBar.Render(strings.Join(parts, "  "))
}

var footerHints = []struct{ key, desc string }{
	{"j/k", "pass"},
	{"tab", "edge"},
	{"enter", "select"},
	{"g", "jump"},
	{"v", "view"},
	{"/", "filter"},
	{"e", "export"},
	{"r", "rebuild"},
	{"?", "help"},
	{"q", "quit"},
}

func (m Model) renderFooter() string {
	hints := make([]string, 0, len(footerHints))
	for _, h := range footerHints {
		hints = append(hints, m.styles.HelpKey.Render(h.key)+" "+m.styles.HelpDesc.Render(h.desc))
	}
	return util.Truncate(strings.Join(hints, "  "), max(m.width, 10))
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Keys"))
	b.WriteString("\n")
	byCategory := m.keymap.GetBindingsByCategory(keymap.ModeNormal)
	for _, cat := range m.keymap.GetCategories(keymap.ModeNormal) {
		b.WriteString("\n" + m.styles.SectionTitle.UnsetMargins().Render(cat) + "\n")
		seen := make(map[keymap.Command]bool)
		for _, kb := range byCategory[cat] {
			if seen[kb.Command] {
				continue
			}
			seen[kb.Command] = true
			keys := make([]string, 0, 2)
			for _, other := range m.keymap.GetBindingsForCommand(kb.Command, keymap.ModeNormal) {
				keys = append(keys, other.String())
			}
			fmt.Fprintf(&b, "  %s %s\n",
				m.styles.HelpKey.Render(fmt.Sprintf("%-14s", strings.Join(keys, "/"))),
				m.styles.HelpDesc.Render(kb.Description))
		}
	}
	return m.styles.HelpBox.Render(strings.TrimRight(b.String(), "\n"))
}
