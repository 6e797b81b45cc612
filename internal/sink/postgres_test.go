package sink

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testhelpers "github.com/vvka-141/edseed/internal/testing"
	"github.com/vvka-141/edseed/pkg/edseed"
)

func TestBuildUpsert(t *testing.T) {
	sql, args, err := BuildUpsert(edseed.UpsertRequest{
		Table:       "enrollment",
		Columns:     []string{"school_year", "school_id", "total_enrollment"},
		ConflictKey: []string{"school_id", "school_year"},
		Rows: [][]any{
			{2024, "0001", int64(300)},
			{2024, "0002", nil},
		},
	})
	require.NoError(t, err)

	assert.Equal(t,
		`INSERT INTO "enrollment" ("school_year", "school_id", "total_enrollment") VALUES ($1, $2, $3), ($4, $5, $6)`+
			` ON CONFLICT ("school_id", "school_year") DO UPDATE SET "total_enrollment" = EXCLUDED."total_enrollment"`,
		sql)
	assert.Equal(t, []any{2024, "0001", int64(300), 2024, "0002", nil}, args)
}

func TestBuildUpsert_AllKeyColumns(t *testing.T) {
	sql, _, err := BuildUpsert(edseed.UpsertRequest{
		Table:       "public.school_ids",
		Columns:     []string{"school_id"},
		ConflictKey: []string{"school_id"},
		Rows:        [][]any{{"0001"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "public"."school_ids" ("school_id") VALUES ($1) ON CONFLICT ("school_id") DO NOTHING`, sql)
}

func TestBuildUpsert_QuotesIdentifiers(t *testing.T) {
	sql, _, err := BuildUpsert(edseed.UpsertRequest{
		Table:       `odd"name`,
		Columns:     []string{"id", `x"y`},
		ConflictKey: []string{"id"},
		Rows:        [][]any{{1, 2}},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, `"odd""name"`)
	assert.Contains(t, sql, `"x""y" = EXCLUDED."x""y"`)
}

func TestBuildUpsert_Invalid(t *testing.T) {
	base := edseed.UpsertRequest{
		Table:       "t",
		Columns:     []string{"a", "b"},
		ConflictKey: []string{"a"},
		Rows:        [][]any{{1, 2}},
	}

	tests := []struct {
		name   string
		mutate func(r *edseed.UpsertRequest)
	}{
		{"no table", func(r *edseed.UpsertRequest) { r.Table = "" }},
		{"no columns", func(r *edseed.UpsertRequest) { r.Columns = nil }},
		{"no conflict key", func(r *edseed.UpsertRequest) { r.ConflictKey = nil }},
		{"key not a column", func(r *edseed.UpsertRequest) { r.ConflictKey = []string{"z"} }},
		{"short row", func(r *edseed.UpsertRequest) { r.Rows = [][]any{{1}} }},
		{"too many params", func(r *edseed.UpsertRequest) { r.Rows = make([][]any, maxParams/2+1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, _, err := BuildUpsert(req)
			assert.ErrorIs(t, err, edseed.ErrInvalidConfig)
		})
	}
}

type fakeExecer struct {
	errs  []error
	calls int
	sql   string
}

func (f *fakeExecer) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.sql = sql
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return pgconn.CommandTag{}, err
		}
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func req() edseed.UpsertRequest {
	return edseed.UpsertRequest{
		Table:       "schools",
		Columns:     []string{"school_id", "school_name"},
		ConflictKey: []string{"school_id"},
		Rows:        [][]any{{"0001", "Alpha"}},
	}
}

func TestPostgresSink_Upsert(t *testing.T) {
	db := &fakeExecer{}
	s := NewPostgresSink(db, testhelpers.NewRecordingLogger())

	require.NoError(t, s.Upsert(context.Background(), req()))
	assert.Equal(t, 1, db.calls)
	assert.Contains(t, db.sql, `INSERT INTO "schools"`)
}

func TestPostgresSink_EmptyRequestSkipsDatabase(t *testing.T) {
	db := &fakeExecer{}
	s := NewPostgresSink(db, testhelpers.NewRecordingLogger())

	r := req()
	r.Rows = nil
	require.NoError(t, s.Upsert(context.Background(), r))
	assert.Zero(t, db.calls)
}

func TestPostgresSink_RetriesTransient(t *testing.T) {
	db := &fakeExecer{errs: []error{&pgconn.PgError{Code: "40P01", Message: "deadlock detected"}}}
	logger := testhelpers.NewRecordingLogger()
	s := NewPostgresSink(db, logger)

	require.NoError(t, s.Upsert(context.Background(), req()))
	assert.Equal(t, 2, db.calls)
	assert.True(t, logger.Contains("retrying"))
}

func TestPostgresSink_PermanentErrorNotRetried(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23502", Message: "null value in column violates not-null constraint"}
	db := &fakeExecer{errs: []error{pgErr}}
	s := NewPostgresSink(db, testhelpers.NewRecordingLogger())

	err := s.Upsert(context.Background(), req())
	require.Error(t, err)
	assert.Equal(t, 1, db.calls)

	var got *pgconn.PgError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, "23502", got.Code)
	assert.Contains(t, err.Error(), "upsert into schools")
}
