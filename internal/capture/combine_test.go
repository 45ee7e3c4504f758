package capture

import (
	"reflect"
	"testing"
)

func eventsWithIDs(ids ...uint32) []Event {
	events := make([]Event, len(ids))
	for i, id := range ids {
		events[i] = Event{EventID: id}
	}
	return events
}

func TestCombineUsage(t *testing.T) {
	events := eventsWithIDs(1, 2, 3, 5, 8, 9)

	tests := []struct {
		name   string
		usages []EventUsage
		want   []EventUsage
	}{
		{
			name: "empty",
			want: nil,
		},
		{
			name:   "single usage",
			usages: []EventUsage{{EventID: 2, Usage: ColorTarget, Resource: 1}},
			want:   []EventUsage{{EventID: 2, Usage: ColorTarget, Resource: 1}},
		},
		{
			name: "consecutive run collapses to start and end",
			usages: []EventUsage{
				{EventID: 1, Usage: ColorTarget, Resource: 1},
				{EventID: 2, Usage: ColorTarget, Resource: 1},
				{EventID: 3, Usage: ColorTarget, Resource: 1},
				{EventID: 5, Usage: ColorTarget, Resource: 1},
			},
			want: []EventUsage{
				{EventID: 1, Usage: ColorTarget, Resource: 1},
				{EventID: 5, Usage: ColorTarget, Resource: 1},
			},
		},
		{
			name: "usage change splits",
			usages: []EventUsage{
				{EventID: 1, Usage: ColorTarget, Resource: 1},
				{EventID: 2, Usage: PSResource, Resource: 1},
				{EventID: 3, Usage: PSResource, Resource: 1},
			},
			want: []EventUsage{
				{EventID: 1, Usage: ColorTarget, Resource: 1},
				{EventID: 2, Usage: PSResource, Resource: 1},
				{EventID: 3, Usage: PSResource, Resource: 1},
			},
		},
		{
			name: "gap in events splits",
			usages: []EventUsage{
				{EventID: 2, Usage: PSResource, Resource: 1},
				{EventID: 8, Usage: PSResource, Resource: 1},
				{EventID: 9, Usage: PSResource, Resource: 1},
			},
			want: []EventUsage{
				{EventID: 2, Usage: PSResource, Resource: 1},
				{EventID: 8, Usage: PSResource, Resource: 1},
				{EventID: 9, Usage: PSResource, Resource: 1},
			},
		},
		{
			name: "unsorted input",
			usages: []EventUsage{
				{EventID: 3, Usage: CopyDst, Resource: 1},
				{EventID: 1, Usage: CopyDst, Resource: 1},
				{EventID: 2, Usage: CopyDst, Resource: 1},
			},
			want: []EventUsage{
				{EventID: 1, Usage: CopyDst, Resource: 1},
				{EventID: 3, Usage: CopyDst, Resource: 1},
			},
		},
		{
			name: "unknown event never joins",
			usages: []EventUsage{
				{EventID: 4, Usage: CopyDst, Resource: 1},
				{EventID: 5, Usage: CopyDst, Resource: 1},
			},
			want: []EventUsage{
				{EventID: 4, Usage: CopyDst, Resource: 1},
				{EventID: 5, Usage: CopyDst, Resource: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CombineUsage(events, tt.usages)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CombineUsage() =\n  %v\nwant\n  %v", got, tt.want)
			}
		})
	}
}

func TestCombineUsage_DoesNotMutateInput(t *testing.T) {
	in := []EventUsage{
		{EventID: 3, Usage: CopyDst, Resource: 1},
		{EventID: 1, Usage: CopyDst, Resource: 1},
	}
	CombineUsage(eventsWithIDs(1, 2, 3), in)
	if in[0].EventID != 3 {
		t.Error("input slice was reordered")
	}
}
