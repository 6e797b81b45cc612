// Package loader writes validated records to a sink in fixed-size batches,
// falling back to one write per record when a batch is refused.
package loader

import (
	"context"
	"fmt"
	"strings"

	"github.com/vvka-141/edseed/internal/record"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// Options configures a Loader.
type Options struct {
	Table       string
	Columns     []string
	ConflictKey []string
	BatchSize   int
	DryRun      bool
}

// Summary tallies one load. Every record ends up in exactly one of
// Succeeded or Failed; a refused batch counts nothing by itself.
type Summary struct {
	Total           int
	Batches         int
	FallbackBatches int
	Succeeded       int
	Failed          int
	DryRun          bool
}

// OK reports whether every record was written.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Loader writes records of one domain.
type Loader[R record.Record] struct {
	sink   edseed.Sink
	opts   Options
	logger edseed.Logger
}

// New creates a Loader. sink may be nil for dry runs.
func New[R record.Record](sink edseed.Sink, opts Options, logger edseed.Logger) *Loader[R] {
	if opts.BatchSize <= 0 {
		opts.BatchSize = edseed.DefaultBatchSize
	}
	return &Loader[R]{sink: sink, opts: opts, logger: logger}
}

// Load writes records in order. It never stops at a failed record; only
// cancellation of ctx ends it early, in which case the partial summary is
// returned with the context error.
func (l *Loader[R]) Load(ctx context.Context, records []R) (Summary, error) {
	sum := Summary{Total: len(records), DryRun: l.opts.DryRun}

	if l.opts.DryRun {
		l.preview(records)
		return sum, nil
	}
	if l.sink == nil {
		return sum, fmt.Errorf("no sink configured for %s: %w", l.opts.Table, edseed.ErrInvalidConfig)
	}

	batches := Chunk(records, l.opts.BatchSize)
	l.logger.Info("Inserting %d records into %s in %d batches of up to %d",
		len(records), l.opts.Table, len(batches), l.opts.BatchSize)

	for i, batch := range batches {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Batches++

		err := l.sink.Upsert(ctx, l.request(batch...))
		if err == nil {
			sum.Succeeded += len(batch)
			l.logger.Info("Batch %d/%d: inserted %d records", i+1, len(batches), len(batch))
			continue
		}

		sum.FallbackBatches++
		l.logger.Error("Batch %d/%d failed: %v", i+1, len(batches), err)
		l.logger.Info("Retrying batch %d record by record", i+1)

		for _, rec := range batch {
			if err := l.sink.Upsert(ctx, l.request(rec)); err != nil {
				sum.Failed++
				l.logger.Error("Failed to insert %s record %s: %v", l.opts.Table, rec.NaturalKey(), err)
				continue
			}
			sum.Succeeded++
		}
	}

	l.logger.Info("Load complete: %d succeeded, %d failed", sum.Succeeded, sum.Failed)
	return sum, nil
}

func (l *Loader[R]) request(recs ...R) edseed.UpsertRequest {
	rows := make([][]any, len(recs))
	for i, r := range recs {
		rows[i] = r.Values()
	}
	return edseed.UpsertRequest{
		Table:       l.opts.Table,
		Columns:     l.opts.Columns,
		Rows:        rows,
		ConflictKey: l.opts.ConflictKey,
	}
}

func (l *Loader[R]) preview(records []R) {
	l.logger.Info("DRY RUN: would insert %d records into %s", len(records), l.opts.Table)
	n := min(edseed.PreviewCount, len(records))
	if n == 0 {
		return
	}
	l.logger.Info("Sample records (first %d):", n)
	for i := 0; i < n; i++ {
		l.logger.Info("  %d. %s", i+1, Describe(l.opts.Columns, records[i].Values()))
	}
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) [][]T {
	if len(items) == 0 || size <= 0 {
		return nil
	}
	out := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		out = append(out, items[start:end])
	}
	return out
}

// Describe renders a row as column=value pairs; unknown values print as null.
func Describe(columns []string, values []any) string {
	parts := make([]string, 0, len(columns))
	for i, c := range columns {
		if i >= len(values) {
			break
		}
		parts = append(parts, c+"="+formatValue(values[i]))
	}
	return strings.Join(parts, ", ")
}

func formatValue(v any) string {
	switch p := v.(type) {
	case nil:
		return "null"
	case *int64:
		if p == nil {
			return "null"
		}
		return fmt.Sprint(*p)
	case *float64:
		if p == nil {
			return "null"
		}
		return fmt.Sprint(*p)
	}
	return fmt.Sprint(v)
}
