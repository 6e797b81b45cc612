package edseed

import "context"

// UpsertRequest is one write against a sink table. Rows are positional
// and line up with Columns; ConflictKey names the natural key columns
// that decide between insert and update.
type UpsertRequest struct {
	Table       string
	Columns     []string
	Rows        [][]any
	ConflictKey []string
}

// Sink accepts upsert-by-key writes.
//
// A failed Upsert must leave no partial effect the caller has to undo;
// the loader retries the same rows individually after a batch failure.
type Sink interface {
	Upsert(ctx context.Context, req UpsertRequest) error
}
