package dedupe

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vvka-141/edseed/internal/extract"
	"github.com/vvka-141/edseed/internal/record"
	testhelpers "github.com/vvka-141/edseed/internal/testing"
	"github.com/vvka-141/edseed/pkg/edseed"
)

func school(id, name, source string) record.School {
	return record.School{
		SchoolID:     id,
		SchoolName:   name,
		DistrictCode: "00350000",
		DistrictName: "Boston",
		OrgType:      record.OrgTypeSchool,
		SourceFile:   source,
	}
}

func TestDeduplicator_LastWriteWins(t *testing.T) {
	d := New[record.School]()

	assert.Equal(t, 0, d.Add([]record.School{school("A", "First A", "s1"), school("B", "First B", "s1")}))
	assert.Equal(t, 1, d.Add([]record.School{school("A", "Second A", "s2"), school("C", "First C", "s2")}))

	got := d.Records()
	require.Len(t, got, 3)
	assert.Equal(t, "A", got[0].SchoolID, "key keeps its first-seen position")
	assert.Equal(t, "Second A", got[0].SchoolName)
	assert.Equal(t, "s2", got[0].SourceFile)
	assert.Equal(t, "B", got[1].SchoolID)
	assert.Equal(t, "C", got[2].SchoolID)
	assert.Equal(t, 1, d.Overwritten())
	assert.Equal(t, 3, d.Len())
}

func TestDeduplicator_DuplicateWithinOneSource(t *testing.T) {
	d := New[record.School]()
	replaced := d.Add([]record.School{school("A", "x", "s"), school("A", "y", "s"), school("A", "z", "s")})

	assert.Equal(t, 2, replaced)
	require.Len(t, d.Records(), 1)
	assert.Equal(t, "z", d.Records()[0].SchoolName)
}

func TestDeduplicator_WholeRecordReplaced(t *testing.T) {
	d := New[record.School]()
	d.Add([]record.School{school("A", "Alpha", "s1")})

	replacement := school("A", "Alpha", "s2")
	replacement.OrgType = record.OrgTypeDistrict
	replacement.DistrictName = ""
	d.Add([]record.School{replacement})

	assert.Equal(t, replacement, d.Records()[0])
}

var identity = []string{"ORG_CODE", "ORG_NAME", "DIST_CODE", "DIST_NAME", "ORG_TYPE"}

func TestCollect_MergesInSourceOrderAndSkipsMissing(t *testing.T) {
	sources := []edseed.TableSource{
		testhelpers.NewMemorySource("enrollment.csv", identity,
			[]string{"01", "Alpha Old", "10", "Dist", "School"},
			[]string{"02", "Beta", "10", "Dist", "School"},
		),
		&testhelpers.MemorySource{SourceName: "class_size.csv", Err: fmt.Errorf("class_size.csv: %w", edseed.ErrSourceNotFound)},
		&testhelpers.MemorySource{SourceName: "discipline.csv", Err: fmt.Errorf("discipline.csv: %w", edseed.ErrSourceEmpty)},
		testhelpers.NewMemorySource("mcas.csv", identity,
			[]string{"01", "Alpha New", "10", "Dist", "School"},
			[]string{"03", "", "10", "Dist", "School"},
		),
	}
	logger := testhelpers.NewRecordingLogger()
	ex := extract.New(record.SchoolDomain, logger)

	sum, err := Collect(context.Background(), ex, sources, logger)
	require.NoError(t, err)

	require.Len(t, sum.Records, 2)
	assert.Equal(t, "Alpha New", sum.Records[0].SchoolName)
	assert.Equal(t, "mcas.csv", sum.Records[0].SourceFile)
	assert.Equal(t, "Beta", sum.Records[1].SchoolName)
	assert.Equal(t, 1, sum.Overwritten)
	assert.Equal(t, 1, sum.Invalid)
	assert.Equal(t, 4, sum.Rows)
	assert.Equal(t, []string{"enrollment.csv", "mcas.csv"}, sum.Read)
	assert.Equal(t, []string{"class_size.csv", "discipline.csv"}, sum.Skipped)
	assert.True(t, logger.Contains("Source not found, skipping: class_size.csv"))
}

func TestCollect_NoReadableSources(t *testing.T) {
	sources := []edseed.TableSource{
		&testhelpers.MemorySource{SourceName: "a.csv", Err: fmt.Errorf("a.csv: %w", edseed.ErrSourceNotFound)},
	}
	logger := testhelpers.NewRecordingLogger()

	sum, err := Collect(context.Background(), extract.New(record.SchoolDomain, logger), sources, logger)
	require.NoError(t, err)
	assert.Empty(t, sum.Records)
	assert.Equal(t, []string{"a.csv"}, sum.Skipped)
}

func TestCollect_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	logger := testhelpers.NewRecordingLogger()

	_, err := Collect(ctx, extract.New(record.SchoolDomain, logger), []edseed.TableSource{
		testhelpers.NewMemorySource("a.csv", identity, []string{"01", "A", "1", "D", "School"}),
	}, logger)
	assert.ErrorIs(t, err, context.Canceled)
}
