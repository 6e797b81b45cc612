package loader

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/edseed/internal/record"
	testhelpers "github.com/vvka-141/edseed/internal/testing"
	"github.com/vvka-141/edseed/pkg/edseed"
)

func schools(n int) []record.School {
	out := make([]record.School, n)
	for i := range out {
		out[i] = record.School{
			SchoolID:     fmt.Sprintf("%08d", i),
			SchoolName:   fmt.Sprintf("School %d", i),
			DistrictCode: "00350000",
			DistrictName: "Boston",
			OrgType:      record.OrgTypeSchool,
		}
	}
	return out
}

func schoolOptions() Options {
	return Options{
		Table:       record.SchoolDomain.Table,
		Columns:     record.SchoolDomain.Columns,
		ConflictKey: record.SchoolDomain.ConflictKey,
		BatchSize:   100,
	}
}

func TestLoad_BatchesInOrder(t *testing.T) {
	sink := testhelpers.NewMemorySink()
	l := New[record.School](sink, schoolOptions(), testhelpers.NewRecordingLogger())

	sum, err := l.Load(context.Background(), schools(250))
	require.NoError(t, err)

	assert.Equal(t, Summary{Total: 250, Batches: 3, Succeeded: 250}, sum)
	assert.True(t, sum.OK())
	require.Equal(t, 3, sink.CallCount())
	assert.Len(t, sink.Calls[0].Rows, 100)
	assert.Len(t, sink.Calls[1].Rows, 100)
	assert.Len(t, sink.Calls[2].Rows, 50)
	assert.Equal(t, "00000000", sink.Calls[0].Rows[0][0])
	assert.Equal(t, "00000200", sink.Calls[2].Rows[0][0])
	assert.Equal(t, []string{"school_id"}, sink.Calls[0].ConflictKey)
	assert.Len(t, sink.Rows("schools"), 250)
}

func TestLoad_FallsBackToIndividualRecords(t *testing.T) {
	sink := testhelpers.NewMemorySink()
	poison := "00000042"
	sink.Fail = func(req edseed.UpsertRequest) error {
		for _, row := range req.Rows {
			if row[0] == poison {
				return errors.New("violates check constraint")
			}
		}
		return nil
	}
	logger := testhelpers.NewRecordingLogger()
	l := New[record.School](sink, schoolOptions(), logger)

	sum, err := l.Load(context.Background(), schools(150))
	require.NoError(t, err)

	assert.Equal(t, 150, sum.Total)
	assert.Equal(t, 2, sum.Batches)
	assert.Equal(t, 1, sum.FallbackBatches)
	assert.Equal(t, 149, sum.Succeeded)
	assert.Equal(t, 1, sum.Failed)
	assert.False(t, sum.OK())

	// 1 failed batch + 100 single-record retries + 1 good batch
	assert.Equal(t, 102, sink.CallCount())
	for _, call := range sink.Calls[1:101] {
		require.Len(t, call.Rows, 1)
		assert.Equal(t, []string{"school_id"}, call.ConflictKey, "retries upsert on the same key")
	}
	assert.Len(t, sink.Rows("schools"), 149)
	assert.True(t, logger.Contains("Failed to insert schools record 00000042"))
}

func TestLoad_EveryRecordFailsIndividually(t *testing.T) {
	sink := testhelpers.NewMemorySink()
	sink.Fail = func(edseed.UpsertRequest) error { return errors.New("permission denied for table schools") }
	l := New[record.School](sink, schoolOptions(), testhelpers.NewRecordingLogger())

	sum, err := l.Load(context.Background(), schools(3))
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 3, Batches: 1, FallbackBatches: 1, Failed: 3}, sum)
}

func TestLoad_DryRunNeverTouchesSink(t *testing.T) {
	sink := testhelpers.NewMemorySink()
	logger := testhelpers.NewRecordingLogger()
	opts := schoolOptions()
	opts.DryRun = true

	sum, err := New[record.School](sink, opts, logger).Load(context.Background(), schools(12))
	require.NoError(t, err)

	assert.Zero(t, sink.CallCount())
	assert.True(t, sum.OK())
	assert.True(t, sum.DryRun)
	assert.Equal(t, 12, sum.Total)
	assert.True(t, logger.Contains("DRY RUN: would insert 12 records into schools"))

	samples := 0
	for _, m := range logger.Messages("info") {
		if len(m) > 4 && m[:2] == "  " {
			samples++
		}
	}
	assert.Equal(t, edseed.PreviewCount, samples)
	assert.True(t, logger.Contains("  1. school_id=00000000, school_name=School 0"))
}

func TestLoad_DryRunWithoutSink(t *testing.T) {
	opts := schoolOptions()
	opts.DryRun = true
	_, err := New[record.School](nil, opts, testhelpers.NewRecordingLogger()).Load(context.Background(), schools(2))
	assert.NoError(t, err)
}

func TestLoad_LiveWithoutSink(t *testing.T) {
	_, err := New[record.School](nil, schoolOptions(), testhelpers.NewRecordingLogger()).Load(context.Background(), schools(2))
	assert.ErrorIs(t, err, edseed.ErrInvalidConfig)
}

func TestLoad_Empty(t *testing.T) {
	sink := testhelpers.NewMemorySink()
	sum, err := New[record.School](sink, schoolOptions(), testhelpers.NewRecordingLogger()).Load(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, sink.CallCount())
	assert.True(t, sum.OK())
}

func TestLoad_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sink := testhelpers.NewMemorySink()
	sink.Fail = func(edseed.UpsertRequest) error {
		cancel()
		return nil
	}

	sum, err := New[record.School](sink, schoolOptions(), testhelpers.NewRecordingLogger()).Load(ctx, schools(300))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, sink.CallCount())
	assert.Equal(t, 100, sum.Succeeded)
}

func TestLoad_DefaultBatchSize(t *testing.T) {
	sink := testhelpers.NewMemorySink()
	opts := schoolOptions()
	opts.BatchSize = 0

	sum, err := New[record.School](sink, opts, testhelpers.NewRecordingLogger()).Load(context.Background(), schools(edseed.DefaultBatchSize+1))
	require.NoError(t, err)
	assert.Equal(t, 2, sum.Batches)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, Chunk([]int{}, 3))
	assert.Nil(t, Chunk([]int{1}, 0))
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, Chunk([]int{1, 2, 3, 4, 5}, 2))
	assert.Equal(t, [][]int{{1, 2, 3}}, Chunk([]int{1, 2, 3}, 10))
}

func TestDescribe(t *testing.T) {
	n := int64(7)
	var missing *float64
	got := Describe([]string{"a", "b", "c", "d"}, []any{"x", &n, missing, 2024})
	assert.Equal(t, "a=x, b=7, c=null, d=2024", got)
}
