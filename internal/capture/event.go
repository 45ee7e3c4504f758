package capture

import "slices"

// UnknownFrame is the frame number reported when a capture does not know it.
const UnknownFrame = ^uint32(0)

// Event is one captured action in replay order.
type Event struct {
	EventID  uint32
	Name     string
	Outputs  []ResourceID // colour targets, may contain null entries
	DepthOut ResourceID
	FrameEnd bool // present or other end-of-frame marker
}

// SameTargets reports whether e and other write exactly the same colour
// and depth targets.
func (e Event) SameTargets(other Event) bool {
	return e.DepthOut == other.DepthOut && slices.Equal(e.Outputs, other.Outputs)
}

// ColorTargetCount returns the number of non-null colour outputs.
func (e Event) ColorTargetCount() int {
	n := 0
	for _, id := range e.Outputs {
		if !id.IsNull() {
			n++
		}
	}
	return n
}

// Action is an event as stored in a capture file. Markers and command
// buffers group their actions as children.
type Action struct {
	EventID  uint32       `json:"eventId" yaml:"eventId" validate:"required"`
	Name     string       `json:"name,omitempty" yaml:"name,omitempty"`
	Outputs  []ResourceID `json:"outputs,omitempty" yaml:"outputs,omitempty" validate:"max=8"`
	DepthOut ResourceID   `json:"depthOut,omitempty" yaml:"depthOut,omitempty"`
	Present  bool         `json:"present,omitempty" yaml:"present,omitempty"`
	Children []Action     `json:"children,omitempty" yaml:"children,omitempty" validate:"dive"`
}

func (a Action) event() Event {
	return Event{
		EventID:  a.EventID,
		Name:     a.Name,
		Outputs:  slices.Clone(a.Outputs),
		DepthOut: a.DepthOut,
		FrameEnd: a.Present,
	}
}

// FlattenActions yields root actions without children, and the direct
// children of root actions that have them, in order.
func FlattenActions(roots []Action) []Event {
	events := make([]Event, 0, len(roots))
	for _, root := range roots {
		if len(root.Children) == 0 {
			events = append(events, root.event())
			continue
		}
		for _, child := range root.Children {
			events = append(events, child.event())
		}
	}
	return events
}

// EventUsage records one usage of a resource at an event.
type EventUsage struct {
	EventID  uint32        `json:"event" yaml:"event" validate:"required"`
	Usage    ResourceUsage `json:"usage" yaml:"usage" validate:"required,usage"`
	Resource ResourceID    `json:"resource" yaml:"resource" validate:"required"`
}

// FrameInfo describes the captured frame.
type FrameInfo struct {
	FrameNumber uint32
	API         string
}
