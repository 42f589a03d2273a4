package record

import (
	"fmt"
	"net/url"
	"time"

	"github.com/asaidimu/go-fieldguard/utils"
)

// Kind names the scalar type a field coerces its resolved value into.
type Kind string

const (
	// KindInteger coerces to int64.
	KindInteger Kind = "integer"
	// KindString coerces to string.
	KindString Kind = "string"
	// KindDate coerces to time.Time using DateLayout.
	KindDate Kind = "date"
	// KindURL coerces to *url.URL.
	KindURL Kind = "url"
)

// DateLayout is the layout date fields parse with: a four-digit year, then a
// two-digit minute, then a two-digit day. The month is always January.
const DateLayout = "2006-04-02"

// Coercer converts a resolved metadata value into T.
type Coercer[T any] func(resolved any) (T, error)

// Field declares which row key to read and how to coerce what it resolves to.
type Field[T any] struct {
	Key    string
	Kind   Kind
	coerce Coercer[T]
}

// NewField declares a field with a custom coercer.
func NewField[T any](key string, kind Kind, coerce Coercer[T]) Field[T] {
	return Field[T]{Key: key, Kind: kind, coerce: coerce}
}

// Int declares an integer field.
func Int(key string) Field[int64] {
	return NewField[int64](key, KindInteger, coerceInt)
}

// String declares a string field.
func String(key string) Field[string] {
	return NewField[string](key, KindString, coerceString)
}

// Date declares a date field parsed with DateLayout.
func Date(key string) Field[time.Time] {
	return NewField[time.Time](key, KindDate, coerceDate)
}

// URL declares a URL field.
func URL(key string) Field[*url.URL] {
	return NewField[*url.URL](key, KindURL, coerceURL)
}

// Get resolves the field on r and coerces the result. The row is parsed on
// every call.
func (f Field[T]) Get(r *Record) (T, error) {
	var zero T

	resolved, err := r.Resolve(f.Key)
	if err == nil {
		var v T
		if v, err = f.coerce(resolved); err == nil {
			r.report(Access{Field: f.Key, Kind: f.Kind, Value: v})
			return v, nil
		}
	}

	ferr := &FieldError{Field: f.Key, Kind: f.Kind, Err: err}
	r.report(Access{Field: f.Key, Kind: f.Kind, Err: ferr})
	return zero, ferr
}

func coerceInt(v any) (int64, error) {
	i, err := utils.ToInt64(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrCoercion, err)
	}
	return i, nil
}

func coerceString(v any) (string, error) {
	return utils.ToString(v), nil
}

func coerceDate(v any) (time.Time, error) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("%w: date value must be a string, got %T", ErrCoercion, v)
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrCoercion, err)
	}
	return t, nil
}

func coerceURL(v any) (*url.URL, error) {
	s, ok := v.(string)
	if !ok {
		return nil, fmt.Errorf("%w: url value must be a string, got %T", ErrCoercion, v)
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCoercion, err)
	}
	return u, nil
}
