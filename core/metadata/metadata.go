// Package metadata provides the indirection table records resolve their raw
// field values through, and the sources it can be loaded from.
package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
)

// ErrKeyNotFound is returned when a key has no entry in the table.
var ErrKeyNotFound = errors.New("metadata key not found")

// Table maps a record's raw field text to its resolved value. Values keep the
// shape they were decoded with: strings, json.Number, booleans, nil, slices or
// nested maps. Numbers keep their literal text so large integers stay exact.
type Table map[string]any

// Lookup returns the value stored under key.
func (t Table) Lookup(key string) (any, error) {
	v, ok := t[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	return v, nil
}

// Source loads a metadata table.
type Source interface {
	Load(ctx context.Context) (Table, error)
}

// Decode reads a JSON object from r into a Table.
func Decode(r io.Reader) (Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to decode metadata: %w", err)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("metadata must be a JSON object, got %T", raw)
	}
	return Table(obj), nil
}

// LoadFile decodes the JSON metadata file at path.
func LoadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metadata file %s: %w", path, err)
	}
	defer f.Close()

	t, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// FileSource is a Source backed by a JSON file.
type FileSource struct {
	Path string
}

// Load implements Source.
func (s FileSource) Load(ctx context.Context) (Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return LoadFile(s.Path)
}
