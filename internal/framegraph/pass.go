package framegraph

import (
	"fmt"
	"slices"

	"github.com/Iron-Ham/framegraph/internal/capture"
)

// ResourceSet is a sorted set of resource ids.
type ResourceSet []capture.ResourceID

// Contains reports whether id is in the set.
func (s ResourceSet) Contains(id capture.ResourceID) bool {
	_, ok := slices.BinarySearch(s, id)
	return ok
}

// With returns the set with id added. s is not modified.
func (s ResourceSet) With(id capture.ResourceID) ResourceSet {
	i, ok := slices.BinarySearch(s, id)
	if ok {
		return s
	}
	return slices.Insert(slices.Clip(s), i, id)
}

// First returns the lowest id in the set.
func (s ResourceSet) First() (capture.ResourceID, bool) {
	if len(s) == 0 {
		return capture.NullResource, false
	}
	return s[0], true
}

// Pass is a maximal run of consecutive events writing the same targets.
type Pass struct {
	// ID numbers passes within their frame, starting at 1.
	ID    uint32 `json:"id"`
	Frame uint32 `json:"frame"`
	Start uint32 `json:"start"`
	End   uint32 `json:"end"`
	// EffectiveEventID identifies the pass; it is the id of its last event.
	EffectiveEventID uint32 `json:"effectiveEventId"`
	// Name is the name of the pass's last event.
	Name     string               `json:"name,omitempty"`
	Outputs  []capture.ResourceID `json:"outputs,omitempty"`
	DepthOut capture.ResourceID   `json:"depthOut,omitempty"`
	FrameEnd bool                 `json:"frameEnd,omitempty"`

	Reads       ResourceSet `json:"reads,omitempty"`
	Draws       ResourceSet `json:"draws,omitempty"`
	DependReads ResourceSet `json:"dependReads,omitempty"`
	DependDraws ResourceSet `json:"dependDraws,omitempty"`
}

// Contains reports whether eid lies inside the pass's event range.
func (p Pass) Contains(eid uint32) bool {
	return eid >= p.Start && eid <= p.End
}

// Title is the per-frame display name, "Pass #<id>".
func (p Pass) Title() string {
	return fmt.Sprintf("Pass #%d", p.ID)
}

// NodeID is the identifier used for the pass in graph exports.
func (p Pass) NodeID() string {
	return fmt.Sprintf("pass_%d", p.EffectiveEventID)
}

// ColorTargetCount returns the number of non-null colour outputs.
func (p Pass) ColorTargetCount() int {
	n := 0
	for _, id := range p.Outputs {
		if !id.IsNull() {
			n++
		}
	}
	return n
}

// HasDepth reports whether the pass writes a depth target.
func (p Pass) HasDepth() bool {
	return !p.DepthOut.IsNull()
}

// BuildPasses splits events into passes. A pass ends where the targets
// change or at a frame end; a frame end (the marker or the last event)
// always closes the current run including itself. A pass takes its targets
// from the first event of its run, so a frame end whose targets differ does
// not change them. firstFrame numbers the first frame; capture.UnknownFrame
// means 1.
func BuildPasses(events []capture.Event, firstFrame uint32) []Pass {
	return buildPasses(events, firstFrame, nil)
}

func buildPasses(events []capture.Event, firstFrame uint32, progress func(done, total int)) []Pass {
	if len(events) == 0 {
		return nil
	}

	frame := firstFrame
	if frame == capture.UnknownFrame {
		frame = 1
	}

	var passes []Pass
	passNum := uint32(1)
	start := 0
	last := len(events) - 1

	for i := range events {
		if progress != nil {
			progress(i, len(events))
		}

		frameEnd := i == last || events[i].FrameEnd
		if events[start].SameTargets(events[i]) && !frameEnd {
			continue
		}

		end := i - 1
		if frameEnd {
			end = i
		}

		first, tail := events[start], events[end]
		passes = append(passes, Pass{
			ID:               passNum,
			Frame:            frame,
			Start:            first.EventID,
			End:              tail.EventID,
			EffectiveEventID: tail.EventID,
			Name:             tail.Name,
			Outputs:          slices.Clone(first.Outputs),
			DepthOut:         first.DepthOut,
			FrameEnd:         tail.FrameEnd || i == last,
		})

		if frameEnd {
			passNum = 1
			start = i + 1
			frame++
		} else {
			passNum++
			start = i
		}
	}

	slices.SortStableFunc(passes, func(a, b Pass) int {
		return int(int64(a.Start) - int64(b.Start))
	})
	return passes
}
