package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/framegraph/internal/event"
	"github.com/Iron-Ham/framegraph/internal/filter"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/tui/keymap"
	"github.com/Iron-Ham/framegraph/internal/tui/msg"
)

const infoTimeout = 4 * time.Second

// Init loads the capture.
func (m Model) Init() tea.Cmd {
	return tea.Batch(msg.Load(m.ctx, m.ws), m.spinner.Tick)
}

// Update handles messages.
func (m Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch mm := message.(type) {
	case tea.WindowSizeMsg:
		m.width = mm.Width
		m.height = mm.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(mm)

	case spinner.TickMsg:
		if !m.building {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(mm)
		return m, cmd

	case msg.GraphMsg:
		m.building = false
		if mm.Err != nil {
			m.errorMessage = mm.Err.Error()
			return m, nil
		}
		m.errorMessage = ""
		m.setGraph(mm.Graph)
		return m, nil

	case msg.BusMsg:
		return m.handleEvent(mm.Event)

	case msg.ExportedMsg:
		if mm.Err != nil {
			m.errorMessage = "export failed: " + mm.Err.Error()
			return m, nil
		}
		return m.info("wrote " + mm.Path)

	case msg.ClearInfoMsg:
		m.infoMessage = ""
		return m, nil
	}
	return m, nil
}

// handleEvent applies a workspace event.
func (m Model) handleEvent(e event.Event) (tea.Model, tea.Cmd) {
	switch ev := e.(type) {
	case event.CaptureChangedEvent:
		return m.info("capture changed, reloading")
	case event.BuildStartedEvent:
		wasBuilding := m.building
		m.building = true
		m.progress = framegraph.Progress{}
		if wasBuilding {
			return m, nil
		}
		return m, m.spinner.Tick
	case event.BuildProgressEvent:
		m.progress = framegraph.Progress{Stage: ev.Stage, Fraction: ev.Fraction}
	case event.BuildFinishedEvent:
		m.building = false
		m.errorMessage = ""
		m.setGraph(ev.Graph)
		if ev.Cached {
			return m.info("loaded from cache")
		}
		return m.info(fmt.Sprintf("built in %s", ev.Duration.Round(time.Millisecond)))
	case event.BuildFailedEvent:
		m.building = false
		m.errorMessage = ev.Err.Error()
	}
	return m, nil
}

func (m Model) info(s string) (tea.Model, tea.Cmd) {
	m.infoMessage = s
	return m, msg.ClearInfoAfter(infoTimeout)
}

func (m Model) handleKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case keymap.ModeFilter, keymap.ModeJump:
		return m.handleEntryKey(key)
	}

	cmd, ok := m.keymap.GetBinding(key, m.mode)
	if !ok {
		return m, nil
	}
	return m.execute(cmd)
}

// handleEntryKey handles keys while typing a filter or an event id.
func (m Model) handleEntryKey(key tea.KeyMsg) (tea.Model, tea.Cmd) {
	if cmd, ok := m.keymap.GetBinding(key, m.mode); ok {
		switch cmd {
		case keymap.CmdQuit:
			m.quitting = true
			return m, tea.Quit
		case keymap.CmdCancel:
			if m.mode == keymap.ModeFilter {
				_ = m.filter.SetPattern(m.prevPattern)
				m.refilter()
			}
			m.errorMessage = ""
			m.leaveEntry()
			return m, nil
		case keymap.CmdConfirm:
			if m.mode == keymap.ModeJump {
				m.jump(m.input.Value())
			}
			m.leaveEntry()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(key)
	if m.mode == keymap.ModeFilter {
		if err := m.filter.SetPattern(m.input.Value()); err != nil {
			m.errorMessage = err.Error()
		} else {
			m.errorMessage = ""
			m.refilter()
		}
	}
	return m, cmd
}

func (m *Model) enterEntry(mode keymap.Mode, prompt, value string) tea.Cmd {
	m.mode = mode
	m.input.Prompt = prompt
	m.input.SetValue(value)
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) leaveEntry() {
	m.mode = keymap.ModeNormal
	m.input.Blur()
	m.input.Reset()
}

// jump moves the cursor to the pass containing event text.
func (m *Model) jump(text string) {
	if m.graph == nil {
		m.errorMessage = "no graph loaded"
		return
	}
	eid, err := strconv.ParseUint(strings.TrimSpace(text), 10, 32)
	if err != nil {
		m.errorMessage = fmt.Sprintf("invalid event id %q", text)
		return
	}
	effective, err := m.graph.EffectiveEventID(uint32(eid))
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.reveal(effective)
	m.errorMessage = ""
}

// reveal moves to a pass, clearing the filter when it hides the pass.
func (m *Model) reveal(eid uint32) {
	if m.moveTo(eid) {
		return
	}
	m.resetFilter()
	m.moveTo(eid)
}

// resetFilter drops the pattern and shows every category.
func (m *Model) resetFilter() {
	m.filter.Clear()
	if !m.filter.AllEnabled() {
		m.filter.ToggleAll()
	}
	m.refilter()
}

// execute runs a normal or help mode command.
func (m Model) execute(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	case keymap.CmdQuit:
		m.quitting = true
		return m, tea.Quit
	case keymap.CmdToggleHelp:
		if m.mode == keymap.ModeHelp {
			m.mode = keymap.ModeNormal
		} else {
			m.mode = keymap.ModeHelp
		}
		return m, nil

	case keymap.CmdNextPass:
		m.setCursor(m.cursor + 1)
	case keymap.CmdPrevPass:
		m.setCursor(m.cursor - 1)
	case keymap.CmdFirstPass:
		m.setCursor(0)
	case keymap.CmdLastPass:
		m.setCursor(len(m.visible) - 1)
	case keymap.CmdNextFrame:
		m.stepFrame(1)
	case keymap.CmdPrevFrame:
		m.stepFrame(-1)

	case keymap.CmdNextEdge:
		m.stepEdge(1)
	case keymap.CmdPrevEdge:
		m.stepEdge(-1)
	case keymap.CmdSelect:
		m.selectCurrent()

	case keymap.CmdCycleView:
		m.view = m.view.Next()
		return m.info("view: " + m.view.String())
	case keymap.CmdEnterFilter:
		m.prevPattern = m.filter.Pattern()
		return m, m.enterEntry(keymap.ModeFilter, "/", m.filter.Pattern())
	case keymap.CmdEnterJump:
		return m, m.enterEntry(keymap.ModeJump, "event: ", "")
	case keymap.CmdToggleEnd:
		m.toggleCategory(filter.CategoryEnd)
	case keymap.CmdToggleColor:
		m.toggleCategory(filter.CategoryColor)
	case keymap.CmdToggleDepth:
		m.toggleCategory(filter.CategoryDepth)
	case keymap.CmdClearFilter:
		m.intents = nil
		m.errorMessage = ""
		m.resetFilter()

	case keymap.CmdExport:
		if m.graph == nil {
			m.errorMessage = "no graph loaded"
			return m, nil
		}
		return m, msg.Export(m.ws, m.view, m.exportDir)
	case keymap.CmdRebuild:
		if m.building {
			return m, nil
		}
		m.building = true
		return m, tea.Batch(msg.Rebuild(m.ctx, m.ws), m.spinner.Tick)
	}
	return m, nil
}

func (m *Model) toggleCategory(key string) {
	m.filter.ToggleCategory(key)
	m.refilter()
}

// stepFrame moves to the first visible pass of the next or previous frame.
func (m *Model) stepFrame(dir int) {
	p, ok := m.Selected()
	if !ok {
		return
	}
	if dir > 0 {
		for i := m.cursor + 1; i < len(m.visible); i++ {
			if m.visible[i].Frame != p.Frame {
				m.setCursor(i)
				return
			}
		}
		return
	}
	// Walk back to the start of the previous frame.
	i := m.cursor - 1
	for i >= 0 && m.visible[i].Frame == p.Frame {
		i--
	}
	if i < 0 {
		return
	}
	frame := m.visible[i].Frame
	for i > 0 && m.visible[i-1].Frame == frame {
		i--
	}
	m.setCursor(i)
}

// stepEdge cycles the focused edge, passing through "no edge".
func (m *Model) stepEdge(dir int) {
	n := len(m.selectedEdges())
	if n == 0 {
		m.edgeCursor = -1
		return
	}
	// Positions -1..n-1 form a ring of n+1 slots.
	pos := m.edgeCursor + 1 + dir
	pos = ((pos % (n + 1)) + n + 1) % (n + 1)
	m.edgeCursor = pos - 1
}

// selectCurrent runs the selection logic for the focused edge or pass and
// follows any jump it produces.
func (m *Model) selectCurrent() {
	p, ok := m.Selected()
	if !ok {
		return
	}
	sel := framegraph.Selection{
		Node: framegraph.PassNode{EffectiveEventID: p.EffectiveEventID},
		View: m.view,
	}
	if e, ok := m.SelectedEdge(); ok {
		sel = framegraph.Selection{Edge: &e, View: m.view}
	}
	m.intents = framegraph.Select(sel)

	for _, in := range m.intents {
		if in.Kind != framegraph.JumpToEvent || in.EventID == p.EffectiveEventID {
			continue
		}
		if eid, err := m.graph.EffectiveEventID(in.EventID); err == nil {
			m.reveal(eid)
		}
	}
}
