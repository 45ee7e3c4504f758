package capture

import (
	"cmp"
	"slices"
)

// CombineUsage collapses runs of the same usage on consecutive events into
// ranges, then expands each range into its start and end usage (or a single
// usage when the range covers one event). Consecutive means adjacent in the
// flattened events list; usages at events missing from it always start a
// new range.
func CombineUsage(events []Event, usages []EventUsage) []EventUsage {
	if len(usages) == 0 {
		return nil
	}

	position := make(map[uint32]int, len(events))
	for i, e := range events {
		position[e.EventID] = i
	}

	sorted := slices.Clone(usages)
	slices.SortStableFunc(sorted, func(a, b EventUsage) int {
		return cmp.Compare(a.EventID, b.EventID)
	})

	var out []EventUsage
	emit := func(start, end EventUsage) {
		if start.EventID == end.EventID {
			out = append(out, end)
			return
		}
		out = append(out, start, end)
	}

	start, end := sorted[0], sorted[0]
	for _, u := range sorted[1:] {
		if u.Usage == end.Usage && follows(position, end.EventID, u.EventID) {
			end = u
			continue
		}
		emit(start, end)
		start, end = u, u
	}
	emit(start, end)
	return out
}

func follows(position map[uint32]int, prev, next uint32) bool {
	p, ok := position[prev]
	if !ok {
		return false
	}
	n, ok := position[next]
	return ok && n == p+1
}
