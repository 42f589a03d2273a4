// Package sqlite persists metadata tables in a SQLite database. Each entry is
// a row holding the key and its value encoded as JSON text.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/asaidimu/go-fieldguard/core/metadata"
	"go.uber.org/zap"
)

// dbRunner abstracts the methods shared by *sql.DB and *sql.Tx so the same
// code runs inside and outside a transaction.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// MetadataStore reads and writes a metadata table in SQLite.
type MetadataStore struct {
	db      *sql.DB
	tx      *sql.Tx
	logger  *zap.Logger
	options *StoreOptions
}

// Ensure MetadataStore can feed records.
var _ metadata.Source = (*MetadataStore)(nil)

// NewMetadataStore creates a store over db. A nil logger or options falls back
// to a no-op logger and DefaultStoreOptions.
func NewMetadataStore(db *sql.DB, logger *zap.Logger, options *StoreOptions) *MetadataStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultStoreOptions()
	}
	return &MetadataStore{db: db, logger: logger, options: options}
}

// runner returns the active transaction, or the connection pool outside one.
func (s *MetadataStore) runner() dbRunner {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// CreateTable creates the metadata table.
func (s *MetadataStore) CreateTable(ctx context.Context) error {
	stmt := s.CreateTableSQL()
	s.logger.Debug("Creating metadata table", zap.String("sql", stmt))
	if _, err := s.runner().ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.tableName(), err)
	}
	return nil
}

// Put stores value under key, replacing any previous value.
func (s *MetadataStore) Put(ctx context.Context, key string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode value for key %q: %w", key, err)
	}

	query := fmt.Sprintf("INSERT OR REPLACE INTO %s (%s, %s) VALUES (?, ?)",
		s.tableName(), quoteIdentifier("key"), quoteIdentifier("value"))
	s.logger.Debug("Executing SQL INSERT", zap.String("sql", query), zap.String("key", key))
	if _, err := s.runner().ExecContext(ctx, query, key, string(encoded)); err != nil {
		s.logger.Error("Failed to store metadata entry", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to store key %q: %w", key, err)
	}
	return nil
}

// PutAll stores every entry of table in a single transaction.
func (s *MetadataStore) PutAll(ctx context.Context, table metadata.Table) (err error) {
	if s.tx != nil {
		return s.putAll(ctx, table)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error("Failed to roll back transaction", zap.Error(rbErr))
			}
		}
	}()

	txStore := &MetadataStore{db: s.db, tx: tx, logger: s.logger, options: s.options}
	if err = txStore.putAll(ctx, table); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *MetadataStore) putAll(ctx context.Context, table metadata.Table) error {
	for key, value := range table {
		if err := s.Put(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the value stored under key.
func (s *MetadataStore) Get(ctx context.Context, key string) (any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		quoteIdentifier("value"), s.tableName(), quoteIdentifier("key"))

	var encoded string
	err := s.runner().QueryRowContext(ctx, query, key).Scan(&encoded)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", metadata.ErrKeyNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key %q: %w", key, err)
	}
	return decodeValue(key, encoded)
}

// Load reads the whole table.
func (s *MetadataStore) Load(ctx context.Context) (metadata.Table, error) {
	query := fmt.Sprintf("SELECT %s, %s FROM %s",
		quoteIdentifier("key"), quoteIdentifier("value"), s.tableName())
	s.logger.Debug("Executing SQL SELECT", zap.String("sql", query))

	rows, err := s.runner().QueryContext(ctx, query)
	if err != nil {
		s.logger.Error("Failed to execute SELECT query", zap.Error(err), zap.String("sql", query))
		return nil, fmt.Errorf("failed to load metadata: %w", err)
	}
	defer rows.Close()

	table := make(metadata.Table)
	for rows.Next() {
		var key, encoded string
		if err := rows.Scan(&key, &encoded); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		value, err := decodeValue(key, encoded)
		if err != nil {
			return nil, err
		}
		table[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return table, nil
}

// decodeValue decodes a stored value, keeping numbers as json.Number as
// metadata.Decode does.
func decodeValue(key, encoded string) (any, error) {
	dec := json.NewDecoder(strings.NewReader(encoded))
	dec.UseNumber()

	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, fmt.Errorf("failed to decode value for key %q: %w", key, err)
	}
	return value, nil
}
