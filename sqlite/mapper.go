package sqlite

import (
	"fmt"
	"strings"
)

// StoreOptions configures a MetadataStore.
type StoreOptions struct {
	TableName   string // Base name of the key/value table.
	TablePrefix string // Prepended to TableName.
	IfNotExists bool   // Tolerate an existing table on CreateTable.
}

// DefaultStoreOptions returns the options used when none are given.
func DefaultStoreOptions() *StoreOptions {
	return &StoreOptions{
		TableName:   "metadata",
		IfNotExists: true,
	}
}

// quoteIdentifier safely quotes a table or column name.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// tableName returns the quoted table name with the configured prefix applied.
func (s *MetadataStore) tableName() string {
	return quoteIdentifier(s.options.TablePrefix + s.options.TableName)
}

// CreateTableSQL returns the DDL for the metadata table.
func (s *MetadataStore) CreateTableSQL() string {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if s.options.IfNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(s.tableName())
	sb.WriteString(" (\n")
	sb.WriteString(fmt.Sprintf("    %s TEXT NOT NULL PRIMARY KEY,\n", quoteIdentifier("key")))
	sb.WriteString(fmt.Sprintf("    %s TEXT NOT NULL\n", quoteIdentifier("value")))
	sb.WriteString(");")
	return sb.String()
}
