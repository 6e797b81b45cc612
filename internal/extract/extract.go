// Package extract turns a tabular source into validated domain records.
package extract

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/edseed/internal/record"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// Result is the outcome of extracting one source.
type Result[R record.Record] struct {
	// Source names the input.
	Source string

	// Rows is the number of rows validated (after distinct reduction).
	Rows int

	// Records are the valid records in source order.
	Records []R

	// Invalid counts rejected rows.
	Invalid int
}

// Extractor validates every row of a source against one domain.
type Extractor[R record.Record] struct {
	domain record.Domain[R]
	logger edseed.Logger
}

// New creates an Extractor for domain.
func New[R record.Record](domain record.Domain[R], logger edseed.Logger) *Extractor[R] {
	return &Extractor[R]{domain: domain, logger: logger}
}

// Extract reads src and validates each row independently. A rejected row
// is logged with its diagnostic fields and counted; it never stops the
// extraction. Source-level problems (missing, empty, malformed) are
// returned as errors.
func (e *Extractor[R]) Extract(ctx context.Context, src edseed.TableSource) (*Result[R], error) {
	e.logger.Info("Reading %s", src.Name())

	table, err := src.Read(ctx)
	if err != nil {
		return nil, err
	}
	if table.Checksum != "" {
		e.logger.Verbose("Read %d rows from %s (sha256 %s)", len(table.Rows), table.Name, table.Checksum)
	} else {
		e.logger.Verbose("Read %d rows from %s", len(table.Rows), table.Name)
	}

	rows := table.Rows
	if len(e.domain.Distinct) > 0 {
		if missing := missingColumns(table, e.domain.Distinct); len(missing) > 0 {
			return nil, fmt.Errorf("%s lacks required columns %s: %w",
				table.Name, strings.Join(missing, ", "), edseed.ErrSourceMalformed)
		}
		rows = Distinct(rows, e.domain.Distinct)
		e.logger.Info("Found %d unique %s records in %s", len(rows), e.domain.Name, table.Name)
	}

	result := &Result[R]{Source: table.Name, Rows: len(rows)}
	for i, row := range rows {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		rec, res := e.domain.Validate(row, table.Name)
		if !res.Valid() {
			result.Invalid++
			e.logger.Warn("%s", record.NewRejection(rejectionSource(e.domain, table.Name), row, e.domain.Diagnostics, res))
			continue
		}
		result.Records = append(result.Records, rec)
	}

	e.logger.Info("Validated %d records, skipped %d invalid records", len(result.Records), result.Invalid)
	return result, nil
}

// Distinct keeps the first occurrence of every distinct tuple over
// columns, projecting each row onto those columns.
func Distinct(rows []edseed.Row, columns []string) []edseed.Row {
	seen := make(map[string]struct{}, len(rows))
	out := make([]edseed.Row, 0, len(rows))

	var key strings.Builder
	for _, row := range rows {
		key.Reset()
		projected := make(edseed.Row, len(columns))
		for i, c := range columns {
			if i > 0 {
				key.WriteByte(0x1f)
			}
			v, ok := row[c]
			if ok {
				projected[c] = v
				key.WriteString(v)
			} else {
				key.WriteByte(0x1e)
			}
		}
		if _, dup := seen[key.String()]; dup {
			continue
		}
		seen[key.String()] = struct{}{}
		out = append(out, projected)
	}
	return out
}

func missingColumns(table *edseed.Table, columns []string) []string {
	var missing []string
	for _, c := range columns {
		if !table.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	return missing
}

// Multi-source domains name the file in rejections; single-source
// domains already logged it when reading.
func rejectionSource[R record.Record](domain record.Domain[R], name string) string {
	if len(domain.Distinct) > 0 {
		return name
	}
	return ""
}
