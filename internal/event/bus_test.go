package event

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/framegraph/internal/framegraph"
	"github.com/Iron-Ham/framegraph/internal/logging"
)

// collector records the event types it receives.
type collector struct {
	mu    sync.Mutex
	types []string
}

func (c *collector) handle(e Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.types = append(c.types, e.EventType())
}

func (c *collector) got() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.types)
}

func TestBus_SubscribeFiltersByType(t *testing.T) {
	bus := NewBus(nil)
	var builds, all collector
	bus.Subscribe(builds.handle, TypeBuildFinished, TypeBuildFailed)
	bus.Subscribe(all.handle)

	bus.Publish(NewBuildStartedEvent("d1"))
	bus.Publish(NewBuildFinishedEvent(&framegraph.Graph{}, false, time.Millisecond))
	bus.Publish(NewBuildFailedEvent(errors.New("bad capture")))

	if want := []string{TypeBuildFinished, TypeBuildFailed}; !slices.Equal(builds.got(), want) {
		t.Errorf("typed subscriber got %v, want %v", builds.got(), want)
	}
	if want := []string{TypeBuildStarted, TypeBuildFinished, TypeBuildFailed}; !slices.Equal(all.got(), want) {
		t.Errorf("catch-all subscriber got %v, want %v", all.got(), want)
	}
}

func TestBus_PublishPayload(t *testing.T) {
	bus := NewBus(nil)
	var loaded CaptureLoadedEvent
	bus.Subscribe(func(e Event) {
		loaded = e.(CaptureLoadedEvent)
	}, TypeCaptureLoaded)

	bus.Publish(NewCaptureLoadedEvent("/tmp/frame.json", "abc123", 9))

	if loaded.Path != "/tmp/frame.json" || loaded.Digest != "abc123" || loaded.Events != 9 {
		t.Errorf("payload = %+v", loaded)
	}
}

func TestBus_RegistrationOrder(t *testing.T) {
	bus := NewBus(nil)
	var order []int
	for i := range 4 {
		var types []string
		if i%2 == 0 {
			types = []string{TypeCacheHit}
		}
		bus.Subscribe(func(Event) { order = append(order, i) }, types...)
	}

	bus.Publish(NewCacheHitEvent("d"))

	if want := []int{0, 1, 2, 3}; !slices.Equal(order, want) {
		t.Errorf("delivery order = %v, want %v", order, want)
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil)
	var first, second collector
	id := bus.Subscribe(first.handle, TypeCacheHit)
	bus.Subscribe(second.handle, TypeCacheHit)

	if !bus.Unsubscribe(id) {
		t.Fatal("Unsubscribe() = false for a registered subscription")
	}
	if bus.Unsubscribe(id) {
		t.Error("second Unsubscribe() = true, want false")
	}
	if bus.Unsubscribe(0) {
		t.Error("Unsubscribe(0) = true, want false")
	}

	bus.Publish(NewCacheHitEvent("d"))
	if len(first.got()) != 0 {
		t.Errorf("removed handler received %v", first.got())
	}
	if len(second.got()) != 1 {
		t.Errorf("remaining handler received %v", second.got())
	}
}

func TestBus_Subscribers(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe(func(Event) {}, TypeBuildFinished)
	bus.Subscribe(func(Event) {}, TypeBuildFinished, TypeBuildFailed)
	bus.Subscribe(func(Event) {})

	tests := []struct {
		eventType string
		want      int
	}{
		{"", 3},
		{TypeBuildFinished, 3},
		{TypeBuildFailed, 2},
		{TypeCaptureChanged, 1},
	}
	for _, tt := range tests {
		if got := bus.Subscribers(tt.eventType); got != tt.want {
			t.Errorf("Subscribers(%q) = %d, want %d", tt.eventType, got, tt.want)
		}
	}
}

func TestBus_UniqueIDs(t *testing.T) {
	bus := NewBus(nil)
	seen := make(map[SubscriptionID]bool)
	for range 50 {
		id := bus.Subscribe(func(Event) {})
		if id == 0 || seen[id] {
			t.Fatalf("Subscribe() returned reused or zero id %d", id)
		}
		seen[id] = true
	}
}

func TestBus_HandlerPanic(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(logging.NewWriterLogger(&buf, logging.LevelError))

	var after collector
	bus.Subscribe(func(Event) { panic("boom") }, TypeBuildFailed)
	bus.Subscribe(after.handle, TypeBuildFailed)

	bus.Publish(NewBuildFailedEvent(errors.New("decode failed")))

	if len(after.got()) != 1 {
		t.Error("handler after the panicking one was skipped")
	}
	out := buf.String()
	if !strings.Contains(out, "event handler panicked") || !strings.Contains(out, TypeBuildFailed) {
		t.Errorf("panic log entry = %q", out)
	}
}

func TestBus_Concurrent(t *testing.T) {
	bus := NewBus(nil)
	var all collector
	bus.Subscribe(all.handle)

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 25 {
				id := bus.Subscribe(func(Event) {}, TypeBuildProgress)
				bus.Publish(NewBuildProgressEvent(framegraph.Progress{Stage: framegraph.StageUsages}))
				bus.Unsubscribe(id)
			}
		})
	}
	wg.Wait()

	if n := len(all.got()); n != 200 {
		t.Errorf("catch-all handler saw %d events, want 200", n)
	}
	if n := bus.Subscribers(""); n != 1 {
		t.Errorf("Subscribers() = %d after cleanup, want 1", n)
	}
}

func TestEventConstructors(t *testing.T) {
	g := &framegraph.Graph{BuildID: "b1"}
	tests := []struct {
		name  string
		event Event
		want  string
	}{
		{"capture loaded", NewCaptureLoadedEvent("a.json", "d", 1), TypeCaptureLoaded},
		{"capture changed", NewCaptureChangedEvent([]string{"a.json"}), TypeCaptureChanged},
		{"build started", NewBuildStartedEvent("d"), TypeBuildStarted},
		{"build progress", NewBuildProgressEvent(framegraph.Progress{Stage: framegraph.StageLink, Fraction: 0.9}), TypeBuildProgress},
		{"build finished", NewBuildFinishedEvent(g, true, time.Second), TypeBuildFinished},
		{"build failed", NewBuildFailedEvent(errors.New("x")), TypeBuildFailed},
		{"cache hit", NewCacheHitEvent("d"), TypeCacheHit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.EventType(); got != tt.want {
				t.Errorf("EventType() = %q, want %q", got, tt.want)
			}
			if tt.event.Timestamp().IsZero() {
				t.Error("Timestamp() should be set")
			}
		})
	}

	progress := NewBuildProgressEvent(framegraph.Progress{Stage: framegraph.StageLink, Fraction: 0.9})
	if progress.Stage != framegraph.StageLink || progress.Fraction != 0.9 {
		t.Errorf("progress payload = %+v", progress)
	}
}
