package capture

import "fmt"

// ResourceUsage is how an event touched a resource.
type ResourceUsage uint8

// Usage kinds. The zero value is not a valid usage.
const (
	UsageUnknown ResourceUsage = iota
	VertexBuffer
	IndexBuffer
	VSConstants
	HSConstants
	DSConstants
	GSConstants
	PSConstants
	CSConstants
	AllConstants
	StreamOut
	VSResource
	HSResource
	DSResource
	GSResource
	PSResource
	CSResource
	AllResource
	VSRWResource
	HSRWResource
	DSRWResource
	GSRWResource
	PSRWResource
	CSRWResource
	AllRWResource
	InputTarget
	ColorTarget
	DepthStencilTarget
	Indirect
	Clear
	Discard
	GenMips
	Resolve
	ResolveSrc
	ResolveDst
	Copy
	CopySrc
	CopyDst
	Barrier
	CPUWrite
	usageCount
)

var usageNames = [usageCount]string{
	UsageUnknown:       "Unknown",
	VertexBuffer:       "VertexBuffer",
	IndexBuffer:        "IndexBuffer",
	VSConstants:        "VS_Constants",
	HSConstants:        "HS_Constants",
	DSConstants:        "DS_Constants",
	GSConstants:        "GS_Constants",
	PSConstants:        "PS_Constants",
	CSConstants:        "CS_Constants",
	AllConstants:       "All_Constants",
	StreamOut:          "StreamOut",
	VSResource:         "VS_Resource",
	HSResource:         "HS_Resource",
	DSResource:         "DS_Resource",
	GSResource:         "GS_Resource",
	PSResource:         "PS_Resource",
	CSResource:         "CS_Resource",
	AllResource:        "All_Resource",
	VSRWResource:       "VS_RWResource",
	HSRWResource:       "HS_RWResource",
	DSRWResource:       "DS_RWResource",
	GSRWResource:       "GS_RWResource",
	PSRWResource:       "PS_RWResource",
	CSRWResource:       "CS_RWResource",
	AllRWResource:      "All_RWResource",
	InputTarget:        "InputTarget",
	ColorTarget:        "ColorTarget",
	DepthStencilTarget: "DepthStencilTarget",
	Indirect:           "Indirect",
	Clear:              "Clear",
	Discard:            "Discard",
	GenMips:            "GenMips",
	Resolve:            "Resolve",
	ResolveSrc:         "ResolveSrc",
	ResolveDst:         "ResolveDst",
	Copy:               "Copy",
	CopySrc:            "CopySrc",
	CopyDst:            "CopyDst",
	Barrier:            "Barrier",
	CPUWrite:           "CPUWrite",
}

var usageByName = func() map[string]ResourceUsage {
	m := make(map[string]ResourceUsage, usageCount)
	for u := VertexBuffer; u < usageCount; u++ {
		m[usageNames[u]] = u
	}
	return m
}()

// String returns the usage name, e.g. "PS_Resource".
func (u ResourceUsage) String() string {
	if u < usageCount {
		return usageNames[u]
	}
	return fmt.Sprintf("ResourceUsage(%d)", uint8(u))
}

// Valid reports whether u is one of the named usage kinds.
func (u ResourceUsage) Valid() bool {
	return u > UsageUnknown && u < usageCount
}

// ParseUsage looks a usage up by name.
func ParseUsage(name string) (ResourceUsage, error) {
	if u, ok := usageByName[name]; ok {
		return u, nil
	}
	return UsageUnknown, fmt.Errorf("unknown resource usage %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (u ResourceUsage) MarshalText() ([]byte, error) {
	if !u.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", u)
	}
	return []byte(u.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (u *ResourceUsage) UnmarshalText(text []byte) error {
	parsed, err := ParseUsage(string(text))
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}

// IsInput reports read-only usages: buffers, constants, read-only shader
// resources, input attachments and copy/resolve sources.
func (u ResourceUsage) IsInput() bool {
	switch u {
	case VertexBuffer, IndexBuffer,
		VSConstants, HSConstants, DSConstants, GSConstants, PSConstants, CSConstants, AllConstants,
		VSResource, HSResource, DSResource, GSResource, PSResource, CSResource, AllResource,
		InputTarget, CopySrc, ResolveSrc:
		return true
	default:
		return false
	}
}

// IsColorProducer reports whether a producer's last usage makes the
// dependency a colour edge rather than a depth edge.
func (u ResourceUsage) IsColorProducer() bool {
	return u == ColorTarget || u == CopySrc || u == Copy
}
