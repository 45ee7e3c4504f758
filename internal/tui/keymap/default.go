package keymap

import tea "github.com/charmbracelet/bubbletea"

// DefaultKeymap returns the built-in bindings.
func DefaultKeymap() *Keymap {
	return &Keymap{
		Name: "default",
		Modes: map[Mode]*ModeBindings{
			ModeNormal: defaultNormalBindings(),
			ModeFilter: defaultEntryBindings(ModeFilter),
			ModeJump:   defaultEntryBindings(ModeJump),
			ModeHelp:   defaultHelpBindings(),
		},
	}
}

func defaultNormalBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeNormal,
		Bindings: []KeyBinding{
			// Pass navigation
			{KeyType: tea.KeyRunes, Rune: 'j', Command: CmdNextPass, Description: "Next pass", Category: "Navigation"},
			{KeyType: tea.KeyDown, Command: CmdNextPass, Description: "Next pass", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'k', Command: CmdPrevPass, Description: "Previous pass", Category: "Navigation"},
			{KeyType: tea.KeyUp, Command: CmdPrevPass, Description: "Previous pass", Category: "Navigation"},
			{KeyType: tea.KeyHome, Command: CmdFirstPass, Description: "First pass", Category: "Navigation"},
			{KeyType: tea.KeyEnd, Command: CmdLastPass, Description: "Last pass", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: ']', Command: CmdNextFrame, Description: "Next frame", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: '[', Command: CmdPrevFrame, Description: "Previous frame", Category: "Navigation"},
			{KeyType: tea.KeyRunes, Rune: 'g', Command: CmdEnterJump, Description: "Jump to event", Category: "Navigation"},

			// Edges
			{KeyType: tea.KeyTab, Command: CmdNextEdge, Description: "Next edge", Category: "Edges"},
			{KeyType: tea.KeyShiftTab, Command: CmdPrevEdge, Description: "Previous edge", Category: "Edges"},
			{KeyType: tea.KeyEnter, Command: CmdSelect, Description: "Follow selection", Category: "Edges"},

			// View
			{KeyType: tea.KeyRunes, Rune: 'v', Command: CmdCycleView, Description: "Cycle view", Category: "View"},
			{KeyType: tea.KeyRunes, Rune: '/', Command: CmdEnterFilter, Description: "Filter passes", Category: "View"},
			{KeyType: tea.KeyRunes, Rune: '1', Command: CmdToggleEnd, Description: "Toggle end passes", Category: "View"},
			{KeyType: tea.KeyRunes, Rune: '2', Command: CmdToggleColor, Description: "Toggle colour passes", Category: "View"},
			{KeyType: tea.KeyRunes, Rune: '3', Command: CmdToggleDepth, Description: "Toggle depth-only passes", Category: "View"},
			{KeyType: tea.KeyEsc, Command: CmdClearFilter, Description: "Clear filter", Category: "View"},

			// Actions
			{KeyType: tea.KeyRunes, Rune: 'e', Command: CmdExport, Description: "Export DOT", Category: "Actions"},
			{KeyType: tea.KeyRunes, Rune: 'r', Command: CmdRebuild, Description: "Rebuild", Category: "Actions"},
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "Help", Category: "Actions"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdQuit, Description: "Quit", Category: "Actions"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Actions"},
		},
	}
}

// defaultEntryBindings covers text entry; unbound keys go to the input.
func defaultEntryBindings(mode Mode) *ModeBindings {
	return &ModeBindings{
		Mode: mode,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEsc, Command: CmdCancel, Description: "Cancel", Category: "Input"},
			{KeyType: tea.KeyEnter, Command: CmdConfirm, Description: "Apply", Category: "Input"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Input"},
		},
	}
}

func defaultHelpBindings() *ModeBindings {
	return &ModeBindings{
		Mode: ModeHelp,
		Bindings: []KeyBinding{
			{KeyType: tea.KeyEsc, Command: CmdToggleHelp, Description: "Close help", Category: "Help"},
			{KeyType: tea.KeyRunes, Rune: '?', Command: CmdToggleHelp, Description: "Close help", Category: "Help"},
			{KeyType: tea.KeyRunes, Rune: 'q', Command: CmdToggleHelp, Description: "Close help", Category: "Help"},
			{KeyType: tea.KeyCtrlC, Command: CmdQuit, Description: "Quit", Category: "Help"},
		},
	}
}
