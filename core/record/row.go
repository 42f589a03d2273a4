package record

import (
	"fmt"
	"strings"
)

const (
	// FieldSeparator separates the fields of a row.
	FieldSeparator = ","
	// KeySeparator separates a field's key from its value. Only the first
	// occurrence counts; values may contain it.
	KeySeparator = ":"
)

// ParseRow splits a raw row into a key to raw value mapping. When a key
// repeats, the last occurrence wins.
func ParseRow(row string) (map[string]string, error) {
	segments := strings.Split(row, FieldSeparator)
	fields := make(map[string]string, len(segments))
	for i, segment := range segments {
		key, value, ok := strings.Cut(segment, KeySeparator)
		if !ok {
			return nil, fmt.Errorf("%w: segment %d %q has no %q", ErrMalformedRow, i, segment, KeySeparator)
		}
		fields[key] = value
	}
	return fields, nil
}
