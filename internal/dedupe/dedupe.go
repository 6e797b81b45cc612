// Package dedupe merges records drawn from several sources into one set
// keyed by natural key. Later sources win; a key keeps the position at
// which it was first seen so batches stay stable between runs.
package dedupe

import (
	"context"
	"errors"

	"github.com/vvka-141/edseed/internal/extract"
	"github.com/vvka-141/edseed/internal/record"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// Deduplicator is an ordered last-write-wins map of records.
// Not safe for concurrent use.
type Deduplicator[R record.Record] struct {
	index       map[string]int
	records     []R
	overwritten int
}

func New[R record.Record]() *Deduplicator[R] {
	return &Deduplicator[R]{index: make(map[string]int)}
}

// Add folds records in, replacing whole records on key collision.
// It returns how many of them replaced an existing record.
func (d *Deduplicator[R]) Add(records []R) int {
	replaced := 0
	for _, r := range records {
		key := r.NaturalKey()
		if i, ok := d.index[key]; ok {
			d.records[i] = r
			replaced++
			continue
		}
		d.index[key] = len(d.records)
		d.records = append(d.records, r)
	}
	d.overwritten += replaced
	return replaced
}

// Records returns the merged records in first-seen key order.
func (d *Deduplicator[R]) Records() []R {
	out := make([]R, len(d.records))
	copy(out, d.records)
	return out
}

// Len returns the number of distinct keys.
func (d *Deduplicator[R]) Len() int {
	return len(d.records)
}

// Overwritten returns the total number of replacements so far.
func (d *Deduplicator[R]) Overwritten() int {
	return d.overwritten
}

// Summary describes a multi-source merge.
type Summary[R record.Record] struct {
	Records     []R
	Rows        int // rows validated across all sources
	Invalid     int // rows rejected across all sources
	Overwritten int
	Read        []string // sources that contributed
	Skipped     []string // sources that could not be read
}

// Collect extracts each source in order and merges the results.
// A source that is missing, empty or malformed is skipped with a warning;
// only cancellation aborts the merge.
func Collect[R record.Record](ctx context.Context, ex *extract.Extractor[R], sources []edseed.TableSource, logger edseed.Logger) (*Summary[R], error) {
	d := New[R]()
	sum := &Summary[R]{}

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := ex.Extract(ctx, src)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			if errors.Is(err, edseed.ErrSourceNotFound) {
				logger.Warn("Source not found, skipping: %s", src.Name())
			} else {
				logger.Warn("Skipping %s: %v", src.Name(), err)
			}
			sum.Skipped = append(sum.Skipped, src.Name())
			continue
		}

		replaced := d.Add(result.Records)
		sum.Rows += result.Rows
		sum.Invalid += result.Invalid
		sum.Read = append(sum.Read, src.Name())
		logger.Verbose("%s: %d records, %d replaced earlier entries, %d distinct so far",
			src.Name(), len(result.Records), replaced, d.Len())
	}

	sum.Records = d.Records()
	sum.Overwritten = d.Overwritten()
	logger.Info("Merged %d unique records from %d sources (%d duplicates overwritten, %d sources skipped)",
		len(sum.Records), len(sum.Read), sum.Overwritten, len(sum.Skipped))
	return sum, nil
}
