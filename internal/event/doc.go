// Package event provides a pub-sub event bus that decouples the workspace
// from its observers.
//
// The workspace publishes capture and build lifecycle events; the terminal
// viewer and the HTTP server subscribe to them to refresh state and
// metrics without calling into each other.
//
// # Main Types
//
//   - [Event]: Interface that all events implement, providing EventType() and Timestamp()
//   - [Bus]: synchronous dispatcher; handlers subscribe to a list of types or to everything
//   - [Handler]: func(Event)
//
// # Event Categories
//
// Capture:
//   - [CaptureLoadedEvent]: a capture document was decoded
//   - [CaptureChangedEvent]: the watched capture changed on disk
//
// Build:
//   - [BuildStartedEvent], [BuildProgressEvent]
//   - [BuildFinishedEvent]: a graph is available, freshly built or cached
//   - [BuildFailedEvent]
//   - [CacheHitEvent]
//
// # Thread Safety
//
// The [Bus] is safe for concurrent use. Handlers run synchronously on the
// publishing goroutine; a panicking handler is logged and skipped so that
// the remaining handlers still receive the event.
//
// # Basic Usage
//
//	bus := event.NewBus(logger)
//	id := bus.Subscribe(func(e event.Event) {
//	    done := e.(event.BuildFinishedEvent)
//	    fmt.Println(len(done.Graph.Passes))
//	}, event.TypeBuildFinished)
//	defer bus.Unsubscribe(id)
package event
