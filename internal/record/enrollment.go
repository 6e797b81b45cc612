package record

import (
	"strconv"

	"github.com/vvka-141/edseed/pkg/edseed"
)

// Enrollment is one school's headcount for a school year, broken down by
// grade, race/ethnicity, gender and selected populations.
type Enrollment struct {
	SchoolYear int
	SchoolID   string

	TotalEnrollment *int64
	PKCount         *int64
	KCount          *int64
	GradeCounts     [12]*int64 // grades 1 through 12
	SPCount         *int64

	AmericanIndianPct        *float64
	AsianPct                 *float64
	BlackAfricanAmericanPct  *float64
	HispanicLatinoPct        *float64
	MultiRaceNonHispPct      *float64
	NativeHawaiianPacificPct *float64
	WhitePct                 *float64
	FemalePct                *float64
	MalePct                  *float64
	NonBinaryPct             *float64

	EnglishLearnerCount            *int64
	EnglishLearnerPct              *float64
	FormerEnglishLearnerCount      *int64
	FormerEnglishLearnerPct        *float64
	HighNeedsCount                 *int64
	HighNeedsPct                   *float64
	LowIncomeCount                 *int64
	LowIncomePct                   *float64
	EconomicallyDisadvantagedCount *int64
	EconomicallyDisadvantagedPct   *float64
	StudentsWithDisabilitiesCount  *int64
	StudentsWithDisabilitiesPct    *float64
}

// EnrollmentColumns lists the sink columns in Values order.
var EnrollmentColumns = func() []string {
	cols := []string{"school_year", "school_id", "total_enrollment", "pk_count", "k_count"}
	for g := 1; g <= 12; g++ {
		cols = append(cols, "grade_"+strconv.Itoa(g)+"_count")
	}
	return append(cols,
		"sp_count",
		"american_indian_pct",
		"asian_pct",
		"black_african_american_pct",
		"hispanic_latino_pct",
		"multi_race_non_hisp_pct",
		"native_hawaiian_pacific_pct",
		"white_pct",
		"female_pct",
		"male_pct",
		"non_binary_pct",
		"english_learner_count",
		"english_learner_pct",
		"former_english_learner_count",
		"former_english_learner_pct",
		"high_needs_count",
		"high_needs_pct",
		"low_income_count",
		"low_income_pct",
		"economically_disadvantaged_count",
		"economically_disadvantaged_pct",
		"students_with_disabilities_count",
		"students_with_disabilities_pct",
	)
}()

func (e Enrollment) NaturalKey() string {
	return joinKey(e.SchoolID, strconv.Itoa(e.SchoolYear))
}

func (e Enrollment) Values() []any {
	vals := []any{e.SchoolYear, e.SchoolID, e.TotalEnrollment, e.PKCount, e.KCount}
	for _, c := range e.GradeCounts {
		vals = append(vals, c)
	}
	return append(vals,
		e.SPCount,
		e.AmericanIndianPct,
		e.AsianPct,
		e.BlackAfricanAmericanPct,
		e.HispanicLatinoPct,
		e.MultiRaceNonHispPct,
		e.NativeHawaiianPacificPct,
		e.WhitePct,
		e.FemalePct,
		e.MalePct,
		e.NonBinaryPct,
		e.EnglishLearnerCount,
		e.EnglishLearnerPct,
		e.FormerEnglishLearnerCount,
		e.FormerEnglishLearnerPct,
		e.HighNeedsCount,
		e.HighNeedsPct,
		e.LowIncomeCount,
		e.LowIncomePct,
		e.EconomicallyDisadvantagedCount,
		e.EconomicallyDisadvantagedPct,
		e.StudentsWithDisabilitiesCount,
		e.StudentsWithDisabilitiesPct,
	)
}

// ValidateEnrollment builds an Enrollment from a row of the enrollment file.
func ValidateEnrollment(row edseed.Row, _ string) (Enrollment, ValidationResult) {
	var res ValidationResult

	rec := Enrollment{
		SchoolYear: requireSchoolYear(row, &res),
		SchoolID:   requireText(row, "ORG_CODE", "Missing ORG_CODE (school_id)", &res),
	}
	if !res.Valid() {
		return Enrollment{}, res
	}

	rec.TotalEnrollment = integer(row, "TOTAL_CNT")
	rec.PKCount = integer(row, "PK_CNT")
	rec.KCount = integer(row, "K_CNT")
	for g := range rec.GradeCounts {
		rec.GradeCounts[g] = integer(row, "G"+strconv.Itoa(g+1)+"_CNT")
	}
	rec.SPCount = integer(row, "SP_CNT")

	rec.AmericanIndianPct = decimal(row, "AIAN_PCT")
	rec.AsianPct = decimal(row, "AS_PCT")
	rec.BlackAfricanAmericanPct = decimal(row, "BAA_PCT")
	rec.HispanicLatinoPct = decimal(row, "HL_PCT")
	rec.MultiRaceNonHispPct = decimal(row, "MNHL_PCT")
	rec.NativeHawaiianPacificPct = decimal(row, "NHPI_PCT")
	rec.WhitePct = decimal(row, "WH_PCT")
	rec.FemalePct = decimal(row, "FE_PCT")
	rec.MalePct = decimal(row, "MA_PCT")
	rec.NonBinaryPct = decimal(row, "NB_PCT")

	rec.EnglishLearnerCount = integer(row, "EL_CNT")
	rec.EnglishLearnerPct = decimal(row, "EL_PCT")
	rec.FormerEnglishLearnerCount = integer(row, "FLNE_CNT")
	rec.FormerEnglishLearnerPct = decimal(row, "FLNE_PCT")
	rec.HighNeedsCount = integer(row, "HN_CNT")
	rec.HighNeedsPct = decimal(row, "HN_PCT")
	rec.LowIncomeCount = integer(row, "LI_CNT")
	rec.LowIncomePct = decimal(row, "LI_PCT")
	rec.EconomicallyDisadvantagedCount = integer(row, "ECD_CNT")
	rec.EconomicallyDisadvantagedPct = decimal(row, "ECD_PCT")
	rec.StudentsWithDisabilitiesCount = integer(row, "SWD_CNT")
	rec.StudentsWithDisabilitiesPct = decimal(row, "SWD_PCT")
	return rec, res
}
