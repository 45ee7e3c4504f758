package tui

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/framegraph/internal/config"
	"github.com/Iron-Ham/framegraph/internal/event"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/testutil"
	"github.com/Iron-Ham/framegraph/internal/tui/keymap"
	"github.com/Iron-Ham/framegraph/internal/tui/msg"
	"github.com/Iron-Ham/framegraph/internal/workspace"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	cfg := config.Default()
	cfg.Build.Cache = false
	cfg.Thumbnail.Enabled = false

	ws, err := workspace.Open(testutil.WriteSample(t), workspace.Options{Config: cfg})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = ws.Close() })

	m := NewModel(context.Background(), ws, t.TempDir())
	m = update(t, m, tea.WindowSizeMsg{Width: 140, Height: 40})
	return update(t, m, msg.Load(context.Background(), ws)())
}

func update(t *testing.T, m Model, message tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(message)
	return next.(Model)
}

// keyMsg turns a key name into a tea.KeyMsg.
func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		m = update(t, m, keyMsg(k))
	}
	return m
}

func visibleIDs(m Model) []uint32 {
	ids := make([]uint32, 0, len(m.Visible()))
	for _, p := range m.Visible() {
		ids = append(ids, p.EffectiveEventID)
	}
	return ids
}

func selectedID(t *testing.T, m Model) uint32 {
	t.Helper()
	p, ok := m.Selected()
	if !ok {
		t.Fatal("no pass selected")
	}
	return p.EffectiveEventID
}

func equalIDs(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestModel_Load(t *testing.T) {
	m := newTestModel(t)

	if m.Graph() == nil {
		t.Fatal("graph not installed")
	}
	if m.building {
		t.Error("building should be false after load")
	}
	if got := visibleIDs(m); !equalIDs(got, []uint32{2, 4, 6, 8}) {
		t.Errorf("visible = %v", got)
	}
	if got := selectedID(t, m); got != 2 {
		t.Errorf("selected = %d, want 2", got)
	}
}

func TestModel_Navigation(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want uint32
	}{
		{"next", []string{"j"}, 4},
		{"clamped at end", []string{"j", "j", "j", "j", "j"}, 8},
		{"previous", []string{"j", "j", "k"}, 4},
		{"clamped at start", []string{"k"}, 2},
		{"last", []string{"end"}, 8},
		{"first", []string{"end", "home"}, 2},
		{"next frame", []string{"]"}, 8},
		{"previous frame", []string{"end", "["}, 2},
		{"no frame before first", []string{"["}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, newTestModel(t), tt.keys...)
			if got := selectedID(t, m); got != tt.want {
				t.Errorf("selected = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestModel_Filter(t *testing.T) {
	m := newTestModel(t)

	m = press(t, m, "/")
	if m.Mode() != keymap.ModeFilter {
		t.Fatalf("mode = %s, want filter", m.Mode())
	}
	m = press(t, m, "gbuffer")
	if got := visibleIDs(m); !equalIDs(got, []uint32{4, 6}) {
		t.Errorf("live filter visible = %v, want [4 6]", got)
	}

	// Cancelling restores the previous pattern.
	m = press(t, m, "esc")
	if m.Mode() != keymap.ModeNormal {
		t.Errorf("mode = %s after esc", m.Mode())
	}
	if got := visibleIDs(m); len(got) != 4 {
		t.Errorf("visible after cancel = %v", got)
	}

	// Letters that are commands in normal mode are text here.
	m = press(t, m, "/", "post", "enter")
	if got := visibleIDs(m); !equalIDs(got, []uint32{8}) {
		t.Errorf("visible = %v, want [8]", got)
	}
	if got := selectedID(t, m); got != 8 {
		t.Errorf("selected = %d, want 8", got)
	}
	if m.filter.Pattern() != "post" {
		t.Errorf("pattern = %q", m.filter.Pattern())
	}

	// esc in normal mode clears the filter and keeps the selection.
	m = press(t, m, "esc")
	if got := visibleIDs(m); len(got) != 4 {
		t.Errorf("visible after clear = %v", got)
	}
	if got := selectedID(t, m); got != 8 {
		t.Errorf("selected after clear = %d, want 8", got)
	}
}

func TestModel_FilterInvalidPattern(t *testing.T) {
	m := press(t, newTestModel(t), "/", "[unterminated")
	if m.errorMessage == "" {
		t.Error("invalid pattern should report an error")
	}
	if got := visibleIDs(m); len(got) != 4 {
		t.Errorf("invalid pattern should keep the previous filter, visible = %v", got)
	}
}

func TestModel_Categories(t *testing.T) {
	m := press(t, newTestModel(t), "1")
	if got := visibleIDs(m); !equalIDs(got, []uint32{2, 4}) {
		t.Errorf("without end passes = %v, want [2 4]", got)
	}
	m = press(t, m, "3")
	if got := visibleIDs(m); !equalIDs(got, []uint32{4}) {
		t.Errorf("without end and depth = %v, want [4]", got)
	}
	m = press(t, m, "2")
	if len(m.Visible()) != 0 {
		t.Errorf("everything hidden, visible = %v", visibleIDs(m))
	}
	if _, ok := m.Selected(); ok {
		t.Error("nothing should be selected")
	}
	if !strings.Contains(m.View(), "No passes match") {
		t.Error("empty list should say so")
	}
}

func TestModel_Jump(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint32
		wantErr bool
	}{
		{"inside a pass", "5", 6, false},
		{"effective id", "8", 8, false},
		{"first event", "1", 2, false},
		{"unknown event", "99", 2, true},
		{"not a number", "abc", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(t, newTestModel(t), "g")
			if m.Mode() != keymap.ModeJump {
				t.Fatalf("mode = %s, want jump", m.Mode())
			}
			m = press(t, m, tt.input, "enter")
			if m.Mode() != keymap.ModeNormal {
				t.Errorf("mode = %s after confirm", m.Mode())
			}
			if got := selectedID(t, m); got != tt.want {
				t.Errorf("selected = %d, want %d", got, tt.want)
			}
			if (m.errorMessage != "") != tt.wantErr {
				t.Errorf("errorMessage = %q, wantErr %v", m.errorMessage, tt.wantErr)
			}
		})
	}
}

func TestModel_JumpRevealsFilteredPass(t *testing.T) {
	m := press(t, newTestModel(t), "/", "post", "enter", "g", "3", "enter")
	if got := selectedID(t, m); got != 4 {
		t.Errorf("selected = %d, want 4", got)
	}
	if m.filter.HasActiveFilter() {
		t.Error("jumping to a hidden pass should clear the filter")
	}
}

func TestModel_EdgeCycling(t *testing.T) {
	m := press(t, newTestModel(t), "g", "6", "enter")
	n := len(m.selectedEdges())
	if n != 4 {
		t.Fatalf("pass 6 edges = %d, want 4", n)
	}

	if _, ok := m.SelectedEdge(); ok {
		t.Error("no edge should be focused initially")
	}
	m = press(t, m, "tab")
	if m.edgeCursor != 0 {
		t.Errorf("edgeCursor = %d, want 0", m.edgeCursor)
	}
	m = press(t, m, "shift+tab", "shift+tab")
	if m.edgeCursor != n-1 {
		t.Errorf("edgeCursor = %d, want %d (wrapped)", m.edgeCursor, n-1)
	}
	m = press(t, m, "tab")
	if m.edgeCursor != -1 {
		t.Errorf("edgeCursor = %d, want -1", m.edgeCursor)
	}

	// Moving to another pass drops the focused edge.
	m = press(t, m, "tab", "j")
	if m.edgeCursor != -1 {
		t.Errorf("edgeCursor = %d after moving, want -1", m.edgeCursor)
	}
}

func TestModel_SelectEdge(t *testing.T) {
	m := press(t, newTestModel(t), "g", "6", "enter", "tab")
	e, ok := m.SelectedEdge()
	if !ok {
		t.Fatal("no edge focused")
	}
	if e.To != 6 {
		t.Fatalf("first edge should be incoming, got %+v", e)
	}

	m = press(t, m, "enter")
	intents := m.Intents()
	if len(intents) != 3 {
		t.Fatalf("intents = %v, want 3", intents)
	}
	if intents[0].Kind != framegraph.OpenTexture || intents[0].Resource != e.Resource {
		t.Errorf("intents[0] = %+v", intents[0])
	}
	if intents[2].Kind != framegraph.JumpToEvent || intents[2].EventID != e.From {
		t.Errorf("intents[2] = %+v", intents[2])
	}
	if got := selectedID(t, m); got != e.From {
		t.Errorf("selection should follow the jump to %d, got %d", e.From, got)
	}
}

func TestModel_SelectEdgeDetailedView(t *testing.T) {
	m := press(t, newTestModel(t), "v", "g", "6", "enter", "tab", "enter")
	if m.GraphView() != framegraph.DetailedView {
		t.Fatalf("view = %s", m.GraphView())
	}
	intents := m.Intents()
	if len(intents) != 1 || intents[0].Kind != framegraph.InspectResource {
		t.Errorf("intents = %+v, want a single inspect", intents)
	}
	if got := selectedID(t, m); got != 6 {
		t.Errorf("selected = %d, want 6", got)
	}
}

func TestModel_SelectPass(t *testing.T) {
	m := press(t, newTestModel(t), "j", "enter")
	intents := m.Intents()
	if len(intents) != 1 || intents[0].Kind != framegraph.JumpToEvent || intents[0].EventID != 4 {
		t.Errorf("intents = %+v", intents)
	}
	if !strings.Contains(m.View(), "jump → event 4") {
		t.Error("view should list the selection intents")
	}
}

func TestModel_CycleView(t *testing.T) {
	m := newTestModel(t)
	want := []framegraph.View{framegraph.DetailedView, framegraph.NodeView, framegraph.SimpleView}
	for _, v := range want {
		m = press(t, m, "v")
		if m.GraphView() != v {
			t.Errorf("view = %s, want %s", m.GraphView(), v)
		}
	}
}

func TestModel_BusEvents(t *testing.T) {
	m := newTestModel(t)
	g := m.Graph()

	m = update(t, m, msg.BusMsg{Event: event.NewBuildStartedEvent("abc")})
	if !m.building {
		t.Error("BuildStarted should mark a build in progress")
	}
	m = update(t, m, msg.BusMsg{Event: event.NewBuildProgressEvent(framegraph.Progress{Stage: framegraph.StageUsages, Fraction: 0.75})})
	if !strings.Contains(m.View(), "usages 75%") {
		t.Error("header should show build progress")
	}

	m = update(t, m, msg.BusMsg{Event: event.NewBuildFailedEvent(errors.New("decode capture: boom"))})
	if m.building || !strings.Contains(m.errorMessage, "boom") {
		t.Errorf("after failure building=%v error=%q", m.building, m.errorMessage)
	}
	if m.Graph() != g {
		t.Error("failed build should keep the graph")
	}

	m = press(t, m, "end")
	m = update(t, m, msg.BusMsg{Event: event.NewBuildFinishedEvent(g, true, time.Millisecond)})
	if m.errorMessage != "" {
		t.Errorf("finished build should clear the error, got %q", m.errorMessage)
	}
	if m.infoMessage != "loaded from cache" {
		t.Errorf("infoMessage = %q", m.infoMessage)
	}
	if got := selectedID(t, m); got != 8 {
		t.Errorf("selection should survive a reload, got %d", got)
	}

	m = update(t, m, msg.ClearInfoMsg{})
	if m.infoMessage != "" {
		t.Error("ClearInfoMsg should clear the info message")
	}
}

func TestModel_Export(t *testing.T) {
	m := newTestModel(t)

	next, cmd := m.Update(keyMsg("e"))
	if cmd == nil {
		t.Fatal("export should return a command")
	}
	done, ok := cmd().(msg.ExportedMsg)
	if !ok {
		t.Fatal("export command did not return ExportedMsg")
	}
	if done.Err != nil {
		t.Fatalf("export error = %v", done.Err)
	}
	if _, err := os.Stat(done.Path); err != nil {
		t.Errorf("export file missing: %v", err)
	}

	m = update(t, next.(Model), done)
	if !strings.HasPrefix(m.infoMessage, "wrote ") {
		t.Errorf("infoMessage = %q", m.infoMessage)
	}
}

func TestModel_Rebuild(t *testing.T) {
	m := newTestModel(t)
	before := m.Graph().BuildID

	next, cmd := m.Update(keyMsg("r"))
	m = next.(Model)
	if !m.building || cmd == nil {
		t.Fatal("rebuild should start a build")
	}

	// A second rebuild while building is ignored.
	if _, again := m.Update(keyMsg("r")); again != nil {
		t.Error("rebuild while building should be a no-op")
	}

	res := msg.Rebuild(context.Background(), m.ws)()
	m = update(t, m, res)
	if m.building {
		t.Error("building should end with the rebuild result")
	}
	if m.Graph().BuildID == before {
		t.Error("rebuild should install a new graph")
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	out := m.View()

	for _, want := range []string{
		"frame.json",
		"view: simple",
		"Frame 1",
		"Frame 2",
		"vkCmdDraw(shadow 1)",
		"Pass #1",
		"[1 end ✓]",
		"4/4 passes",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("View() missing %q", want)
		}
	}

	m = press(t, m, "g", "6", "enter", "tab")
	out = m.View()
	for _, want := range []string{"Dependencies", "Shadow Map", "From: EID 2:DepthStencilTarget"} {
		if !strings.Contains(out, want) {
			t.Errorf("View() with focused edge missing %q", want)
		}
	}
}

func TestModel_Help(t *testing.T) {
	m := press(t, newTestModel(t), "?")
	if m.Mode() != keymap.ModeHelp {
		t.Fatalf("mode = %s, want help", m.Mode())
	}
	out := m.View()
	for _, want := range []string{"Navigation", "Edges", "Follow selection", "j/down"} {
		if !strings.Contains(out, want) {
			t.Errorf("help missing %q", want)
		}
	}
	m = press(t, m, "q")
	if m.Mode() != keymap.ModeNormal || m.quitting {
		t.Error("q in help should close help, not quit")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	next, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
	if next.View() != "" {
		t.Error("view should be empty after quitting")
	}
}

func TestModel_NotReady(t *testing.T) {
	cfg := config.Default()
	cfg.Build.Cache = false
	ws, err := workspace.Open(testutil.WriteSample(t), workspace.Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	m := NewModel(context.Background(), ws, t.TempDir())
	if m.View() != "Loading..." {
		t.Errorf("View() before size = %q", m.View())
	}
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(m.View(), "No graph yet") {
		t.Error("view before load should say there is no graph")
	}
	if m.Init() == nil {
		t.Error("Init should load the capture")
	}
}
