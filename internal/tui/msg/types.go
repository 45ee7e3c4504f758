package msg

import (
	"github.com/Iron-Ham/framegraph/internal/event"
	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// GraphMsg carries the result of a load or rebuild.
type GraphMsg struct {
	Graph *framegraph.Graph
	Err   error
}

// BusMsg forwards a workspace event into the event loop.
type BusMsg struct {
	Event event.Event
}

// ExportedMsg reports a finished export.
type ExportedMsg struct {
	Path string
	Err  error
}

// ClearInfoMsg clears a transient status message.
type ClearInfoMsg struct{}
