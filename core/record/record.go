// Package record exposes typed, lazily resolved fields over raw delimited rows.
//
// A field is resolved on every access, never cached: the row is parsed, the
// field's key is looked up in the parsed row, the raw value is looked up in the
// metadata table and the result is coerced to the field's kind. Any failure
// along that chain is returned to the caller.
package record

import (
	"fmt"
	"sync/atomic"

	"github.com/asaidimu/go-fieldguard/core/metadata"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Access describes one field resolution, successful or not.
type Access struct {
	Record uuid.UUID
	Field  string
	Kind   Kind
	Value  any
	Err    error
}

// Options configures records. A nil *Options uses DefaultOptions.
type Options struct {
	Logger *zap.Logger
	// Observer, when set, is called synchronously after every field access.
	Observer func(Access)
}

// DefaultOptions returns options with a no-op logger and no observer.
func DefaultOptions() *Options {
	return &Options{Logger: zap.NewNop()}
}

// Record is one raw row bound to the metadata table its values resolve through.
type Record struct {
	ref      uuid.UUID
	row      string
	table    metadata.Table
	parses   atomic.Int64
	logger   *zap.Logger
	observer func(Access)
}

// New creates a Record with default options.
func New(row string, table metadata.Table) *Record {
	return NewWithOptions(row, table, nil)
}

// NewWithOptions creates a Record with the given options.
func NewWithOptions(row string, table metadata.Table, options *Options) *Record {
	if options == nil {
		options = DefaultOptions()
	}
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Record{
		ref:      uuid.New(),
		row:      row,
		table:    table,
		logger:   logger,
		observer: options.Observer,
	}
}

// Ref returns the identifier assigned to the record when it was created.
func (r *Record) Ref() uuid.UUID { return r.ref }

// Row returns the raw row.
func (r *Record) Row() string { return r.row }

// Parse splits the raw row into its key to raw value mapping. Every call
// parses the row again.
func (r *Record) Parse() (map[string]string, error) {
	r.parses.Add(1)
	return ParseRow(r.row)
}

// Parses returns how many times the row has been parsed.
func (r *Record) Parses() int64 { return r.parses.Load() }

// Resolve returns the metadata value for the row value stored under key.
func (r *Record) Resolve(key string) (any, error) {
	fields, err := r.Parse()
	if err != nil {
		return nil, err
	}
	raw, ok := fields[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, key)
	}
	return r.table.Lookup(raw)
}

// report logs and forwards a field access to the observer.
func (r *Record) report(a Access) {
	if a.Err != nil {
		r.logger.Debug("Field resolution failed",
			zap.String("record", r.ref.String()),
			zap.String("field", a.Field),
			zap.String("kind", string(a.Kind)),
			zap.Error(a.Err),
		)
	}
	if r.observer != nil {
		a.Record = r.ref
		r.observer(a)
	}
}
