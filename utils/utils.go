// Package utils holds the scalar conversions shared by the record coercers.
package utils

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"
)

// ErrNotConvertible is returned when a value has no conversion to the requested type.
var ErrNotConvertible = errors.New("value is not convertible")

// ToInt64 converts v to an int64.
//
// Integers convert directly, floats truncate toward zero, booleans become 1 or
// 0 and strings are parsed as base-10 integers after trimming surrounding
// whitespace. A json.Number parses as an integer, falling back to a float
// literal. NaN, infinities and out-of-range floats are rejected.
func ToInt64(v any) (int64, error) {
	switch val := v.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, fmt.Errorf("%w: %d overflows int64", ErrNotConvertible, val)
		}
		return int64(val), nil
	case float32:
		return floatToInt64(float64(val))
	case float64:
		return floatToInt64(val)
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
		f, err := val.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: invalid number literal %q", ErrNotConvertible, string(val))
		}
		return floatToInt64(f)
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: invalid integer literal %q", ErrNotConvertible, val)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %T to int64", ErrNotConvertible, v)
	}
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %v to int64", ErrNotConvertible, f)
	}
	t := math.Trunc(f)
	if t < math.MinInt64 || t >= math.MaxInt64 {
		return 0, fmt.Errorf("%w: %v overflows int64", ErrNotConvertible, f)
	}
	return int64(t), nil
}

// ToString renders v as text. Strings pass through, json.Number keeps its
// literal, other numbers use their shortest form and nil renders as "null".
func ToString(v any) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(v)
	}
}
