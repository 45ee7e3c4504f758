package event

import (
	"time"

	"github.com/Iron-Ham/framegraph/internal/framegraph"
)

// Event types published on the Bus.
const (
	TypeCaptureLoaded  = "capture.loaded"
	TypeCaptureChanged = "capture.changed"
	TypeBuildStarted   = "build.started"
	TypeBuildProgress  = "build.progress"
	TypeBuildFinished  = "build.finished"
	TypeBuildFailed    = "build.failed"
	TypeCacheHit       = "cache.hit"
)

// Event is the interface all events must implement.
type Event interface {
	// EventType returns the type identifier for this event.
	EventType() string
	// Timestamp returns when the event was created.
	Timestamp() time.Time
}

type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// CaptureLoadedEvent is emitted after a capture document has been decoded.
type CaptureLoadedEvent struct {
	baseEvent
	Path   string
	Digest string
	Events int
}

// NewCaptureLoadedEvent creates a CaptureLoadedEvent.
func NewCaptureLoadedEvent(path, digest string, events int) CaptureLoadedEvent {
	return CaptureLoadedEvent{
		baseEvent: newBaseEvent(TypeCaptureLoaded),
		Path:      path,
		Digest:    digest,
		Events:    events,
	}
}

// CaptureChangedEvent is emitted when the watched capture file changes on disk.
type CaptureChangedEvent struct {
	baseEvent
	Paths []string
}

// NewCaptureChangedEvent creates a CaptureChangedEvent.
func NewCaptureChangedEvent(paths []string) CaptureChangedEvent {
	return CaptureChangedEvent{
		baseEvent: newBaseEvent(TypeCaptureChanged),
		Paths:     paths,
	}
}

// BuildStartedEvent is emitted when a graph build begins.
type BuildStartedEvent struct {
	baseEvent
	Digest string
}

// NewBuildStartedEvent creates a BuildStartedEvent.
func NewBuildStartedEvent(digest string) BuildStartedEvent {
	return BuildStartedEvent{
		baseEvent: newBaseEvent(TypeBuildStarted),
		Digest:    digest,
	}
}

// BuildProgressEvent carries a build progress report.
type BuildProgressEvent struct {
	baseEvent
	Stage    string
	Fraction float64
}

// NewBuildProgressEvent creates a BuildProgressEvent from a builder report.
func NewBuildProgressEvent(p framegraph.Progress) BuildProgressEvent {
	return BuildProgressEvent{
		baseEvent: newBaseEvent(TypeBuildProgress),
		Stage:     p.Stage,
		Fraction:  p.Fraction,
	}
}

// BuildFinishedEvent is emitted when a graph is available, built or cached.
type BuildFinishedEvent struct {
	baseEvent
	Graph    *framegraph.Graph
	Cached   bool
	Duration time.Duration
}

// NewBuildFinishedEvent creates a BuildFinishedEvent.
func NewBuildFinishedEvent(g *framegraph.Graph, cached bool, d time.Duration) BuildFinishedEvent {
	return BuildFinishedEvent{
		baseEvent: newBaseEvent(TypeBuildFinished),
		Graph:     g,
		Cached:    cached,
		Duration:  d,
	}
}

// BuildFailedEvent is emitted when loading or building fails.
type BuildFailedEvent struct {
	baseEvent
	Err error
}

// NewBuildFailedEvent creates a BuildFailedEvent.
func NewBuildFailedEvent(err error) BuildFailedEvent {
	return BuildFailedEvent{
		baseEvent: newBaseEvent(TypeBuildFailed),
		Err:       err,
	}
}

// CacheHitEvent is emitted when a build is served from the cache.
type CacheHitEvent struct {
	baseEvent
	Digest string
}

// NewCacheHitEvent creates a CacheHitEvent.
func NewCacheHitEvent(digest string) CacheHitEvent {
	return CacheHitEvent{
		baseEvent: newBaseEvent(TypeCacheHit),
		Digest:    digest,
	}
}
