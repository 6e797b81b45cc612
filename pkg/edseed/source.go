package edseed

import (
	"context"
	"strings"
)

// Row is one data row of a tabular source keyed by column name.
type Row map[string]string

// Get returns the raw value of column and whether the column was present.
func (r Row) Get(column string) (string, bool) {
	v, ok := r[column]
	return v, ok
}

// Text returns the trimmed value of column, or "" when absent.
func (r Row) Text(column string) string {
	return strings.TrimSpace(r[column])
}

// Table is the full content of a tabular source.
type Table struct {
	Name   string
	Header []string
	Rows   []Row

	// Checksum is the hex SHA-256 of the raw input, when the source can
	// provide one.
	Checksum string
}

// HasColumn reports whether the header contains column.
func (t *Table) HasColumn(column string) bool {
	for _, h := range t.Header {
		if h == column {
			return true
		}
	}
	return false
}

// TableSource yields the rows of one tabular input.
//
// Read distinguishes a missing input (ErrSourceNotFound), an input without
// header or data rows (ErrSourceEmpty) and an unparseable one
// (ErrSourceMalformed).
type TableSource interface {
	Read(ctx context.Context) (*Table, error)

	// Name identifies the source in logs.
	Name() string
}
