// Package sink writes upsert requests to PostgreSQL.
package sink

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/edseed/internal/retry"
	"github.com/vvka-141/edseed/pkg/edseed"
)

// maxParams is the PostgreSQL wire protocol limit on bind parameters.
const maxParams = 65535

// Execer is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PostgresSink issues one INSERT ... ON CONFLICT statement per request,
// so a failed request leaves the table untouched. Transient failures are
// retried.
type PostgresSink struct {
	db            Execer
	retryExecutor *retry.Executor
	logger        edseed.Logger
}

func NewPostgresSink(db Execer, logger edseed.Logger) *PostgresSink {
	return &PostgresSink{
		db: db,
		retryExecutor: retry.NewDefaultExecutor().WithOnRetry(func(attempt int, err error, delay time.Duration) {
			logger.Warn("upsert attempt %d failed, retrying in %v: %v", attempt+1, delay.Round(time.Millisecond), err)
		}),
		logger: logger,
	}
}

func (s *PostgresSink) Upsert(ctx context.Context, req edseed.UpsertRequest) error {
	if len(req.Rows) == 0 {
		return nil
	}
	sql, args, err := BuildUpsert(req)
	if err != nil {
		return err
	}

	var tag pgconn.CommandTag
	err = s.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		var execErr error
		tag, execErr = s.db.Exec(ctx, sql, args...)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("upsert into %s: %w", req.Table, err)
	}
	s.logger.Verbose("upserted %d rows into %s", tag.RowsAffected(), req.Table)
	return nil
}

// BuildUpsert renders req as a single parameterized statement. Every
// non-key column is overwritten from EXCLUDED; a table whose columns are
// all key columns gets DO NOTHING.
func BuildUpsert(req edseed.UpsertRequest) (string, []any, error) {
	switch {
	case req.Table == "":
		return "", nil, fmt.Errorf("upsert: table is required: %w", edseed.ErrInvalidConfig)
	case len(req.Columns) == 0:
		return "", nil, fmt.Errorf("upsert into %s: no columns: %w", req.Table, edseed.ErrInvalidConfig)
	case len(req.ConflictKey) == 0:
		return "", nil, fmt.Errorf("upsert into %s: conflict key is required: %w", req.Table, edseed.ErrInvalidConfig)
	case len(req.Rows)*len(req.Columns) > maxParams:
		return "", nil, fmt.Errorf("upsert into %s: %d rows x %d columns exceeds %d parameters: %w",
			req.Table, len(req.Rows), len(req.Columns), maxParams, edseed.ErrInvalidConfig)
	}

	isKey := make(map[string]bool, len(req.ConflictKey))
	for _, k := range req.ConflictKey {
		isKey[k] = true
	}
	for _, k := range req.ConflictKey {
		if !contains(req.Columns, k) {
			return "", nil, fmt.Errorf("upsert into %s: conflict column %q not in column list: %w", req.Table, k, edseed.ErrInvalidConfig)
		}
	}

	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(quoteTable(req.Table))
	b.WriteString(" (")
	writeIdents(&b, req.Columns)
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(req.Rows)*len(req.Columns))
	for i, row := range req.Rows {
		if len(row) != len(req.Columns) {
			return "", nil, fmt.Errorf("upsert into %s: row %d has %d values, want %d: %w",
				req.Table, i, len(row), len(req.Columns), edseed.ErrInvalidConfig)
		}
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			args = append(args, v)
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(len(args)))
		}
		b.WriteByte(')')
	}

	b.WriteString(" ON CONFLICT (")
	writeIdents(&b, req.ConflictKey)
	b.WriteString(") ")

	var updates []string
	for _, c := range req.Columns {
		if isKey[c] {
			continue
		}
		ident := pgx.Identifier{c}.Sanitize()
		updates = append(updates, ident+" = EXCLUDED."+ident)
	}
	if len(updates) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		b.WriteString("DO UPDATE SET ")
		b.WriteString(strings.Join(updates, ", "))
	}

	return b.String(), args, nil
}

// quoteTable accepts "table" or "schema.table".
func quoteTable(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}

func writeIdents(b *strings.Builder, names []string) {
	for i, n := range names {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(pgx.Identifier{n}.Sanitize())
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
