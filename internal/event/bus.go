package event

import (
	"runtime/debug"
	"slices"
	"sync"

	"github.com/Iron-Ham/framegraph/internal/logging"
)

// Handler receives published events on the publishing goroutine.
type Handler func(Event)

// SubscriptionID identifies a registered handler. The zero value is never issued.
type SubscriptionID uint64

type subscription struct {
	id      SubscriptionID
	types   []string // nil matches every event
	handler Handler
}

func (s subscription) matches(eventType string) bool {
	return s.types == nil || slices.Contains(s.types, eventType)
}

// Bus is a synchronous pub-sub dispatcher. It lets the workspace, the viewer
// and the HTTP server react to builds without depending on each other.
type Bus struct {
	mu     sync.RWMutex
	subs   []subscription
	lastID SubscriptionID
	logger *logging.Logger
}

// NewBus creates an event bus. Handler panics are reported on logger; a nil
// logger discards them.
func NewBus(logger *logging.Logger) *Bus {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &Bus{logger: logger}
}

// Subscribe registers handler for the given event types, or for every event
// when no type is given.
func (b *Bus) Subscribe(handler Handler, types ...string) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastID++
	sub := subscription{id: b.lastID, handler: handler}
	if len(types) > 0 {
		sub.types = slices.Clone(types)
	}
	b.subs = append(b.subs, sub)
	return sub.id
}

// Unsubscribe removes a subscription and reports whether it was registered.
func (b *Bus) Unsubscribe(id SubscriptionID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := slices.IndexFunc(b.subs, func(s subscription) bool { return s.id == id })
	if i < 0 {
		return false
	}
	b.subs = slices.Delete(b.subs, i, i+1)
	return true
}

// Publish delivers e to every matching handler in registration order.
// A panicking handler is logged and skipped.
func (b *Bus) Publish(e Event) {
	eventType := e.EventType()

	b.mu.RLock()
	targets := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.matches(eventType) {
			targets = append(targets, s.handler)
		}
	}
	b.mu.RUnlock()

	for _, h := range targets {
		b.deliver(h, e)
	}
}

func (b *Bus) deliver(h Handler, e Event) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", e.EventType(),
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	h(e)
}

// Subscribers returns how many handlers would receive an event of the given
// type. An empty type counts every subscription.
func (b *Bus) Subscribers(eventType string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if eventType == "" {
		return len(b.subs)
	}
	n := 0
	for _, s := range b.subs {
		if s.matches(eventType) {
			n++
		}
	}
	return n
}
