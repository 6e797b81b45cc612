// Package record defines the typed records of each data domain and the
// row validators that produce them.
//
// A validator evaluates every required rule independently, so a rejected
// row carries all of its problems, not just the first one found.
package record

import (
	"fmt"
	"strings"

	"github.com/vvka-141/edseed/internal/coerce"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// Record is a validated row ready for the sink.
type Record interface {
	// NaturalKey renders the record's identity tuple for logs and merging.
	NaturalKey() string

	// Values returns the column values in the order of the domain's Columns.
	Values() []any
}

// ValidationResult accumulates the reasons a row was rejected.
type ValidationResult struct {
	Errors []string
}

// Add records one failed rule.
func (v *ValidationResult) Add(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Valid reports whether no rule failed.
func (v ValidationResult) Valid() bool {
	return len(v.Errors) == 0
}

// Field is one raw column value quoted in a rejection.
type Field struct {
	Column string
	Value  string
}

// Rejection pairs a row's raw identifying fields with every reason it
// was refused. Rejections are logged and counted, never loaded.
type Rejection struct {
	Source  string
	Fields  []Field
	Reasons []string
}

// NewRejection quotes the given diagnostic columns of row.
func NewRejection(source string, row edseed.Row, columns []string, result ValidationResult) Rejection {
	fields := make([]Field, 0, len(columns))
	for _, c := range columns {
		fields = append(fields, Field{Column: c, Value: row[c]})
	}
	return Rejection{Source: source, Fields: fields, Reasons: result.Errors}
}

func (r Rejection) String() string {
	parts := make([]string, 0, len(r.Fields))
	for _, f := range r.Fields {
		parts = append(parts, f.Column+"="+f.Value)
	}
	prefix := "Invalid record"
	if r.Source != "" {
		prefix += " in " + r.Source
	}
	return fmt.Sprintf("%s: %s | %s", prefix, strings.Join(r.Reasons, ", "), strings.Join(parts, ", "))
}

// requireText returns the trimmed value of column, recording message when
// it is blank. The literal "nan" counts as blank.
func requireText(row edseed.Row, column, message string, res *ValidationResult) string {
	v := row.Text(column)
	if v == "" || v == "nan" {
		res.Add("%s", message)
		return ""
	}
	return v
}

// requireSchoolYear parses SY and checks it lies within the accepted range.
func requireSchoolYear(row edseed.Row, res *ValidationResult) int {
	year := coerce.ParseInteger(row["SY"])
	if year == nil {
		res.Add("Missing SY (school_year)")
		return 0
	}
	if *year < edseed.MinSchoolYear || *year > edseed.MaxSchoolYear {
		res.Add("Invalid school_year %d (must be %d-%d)", *year, edseed.MinSchoolYear, edseed.MaxSchoolYear)
	}
	return int(*year)
}

func integer(row edseed.Row, column string) *int64 {
	v, ok := row[column]
	if !ok {
		return nil
	}
	return coerce.ParseInteger(v)
}

func decimal(row edseed.Row, column string) *float64 {
	v, ok := row[column]
	if !ok {
		return nil
	}
	return coerce.ParseDecimal(v)
}

func joinKey(parts ...string) string {
	return strings.Join(parts, "/")
}
