package capture

import "context"

// Source is the read-only view of a loaded capture that a frame graph
// build needs. Implementations must be safe for concurrent Usage calls.
type Source interface {
	// Events returns the flattened event list in replay order.
	Events(ctx context.Context) ([]Event, error)
	// Textures returns every texture in the capture.
	Textures(ctx context.Context) ([]Texture, error)
	// Usage returns every recorded usage of a resource.
	Usage(ctx context.Context, id ResourceID) ([]EventUsage, error)
}

// FrameInfoProvider is implemented by sources that know the frame number
// and graphics API.
type FrameInfoProvider interface {
	FrameInfo() FrameInfo
}

// ResourceNamer is implemented by sources that can name any resource.
type ResourceNamer interface {
	ResourceName(id ResourceID) (string, bool)
}

// FrameInfoOf returns the source's frame info, or an unknown frame.
func FrameInfoOf(src Source) FrameInfo {
	if p, ok := src.(FrameInfoProvider); ok {
		return p.FrameInfo()
	}
	return FrameInfo{FrameNumber: UnknownFrame}
}
