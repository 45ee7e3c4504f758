package capture

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// ResourceID identifies a GPU resource in a capture. Zero is the null resource.
type ResourceID uint64

// NullResource is the empty resource handle.
const NullResource ResourceID = 0

const resourcePrefix = "ResourceId::"

// IsNull reports whether id is the null resource.
func (id ResourceID) IsNull() bool { return id == NullResource }

// String returns the "ResourceId::<n>" form.
func (id ResourceID) String() string {
	return resourcePrefix + strconv.FormatUint(uint64(id), 10)
}

// Number returns the bare numeric part, used to build node identifiers.
func (id ResourceID) Number() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseResourceID accepts "ResourceId::<n>" or a bare integer.
func ParseResourceID(s string) (ResourceID, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, resourcePrefix)
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return NullResource, fmt.Errorf("invalid resource id %q", s)
	}
	return ResourceID(n), nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ResourceID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ResourceID) UnmarshalText(text []byte) error {
	parsed, err := ParseResourceID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// UnmarshalJSON accepts both a quoted id and a bare JSON number.
func (id *ResourceID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid resource id %s", data)
		}
		return id.UnmarshalText([]byte(unquoted))
	}
	return id.UnmarshalText(data)
}
