package record

import (
	"strconv"

	"github.com/vvka-141/edseed/pkg/edseed"
)

// Assessment is one row of statewide achievement results: a school's
// performance on a subject test for a grade and student group.
type Assessment struct {
	SchoolYear   int
	SchoolID     string
	TestGrade    string
	SubjectCode  string
	StudentGroup string

	MeetingExceedingCount   *int64
	MeetingExceedingPct     *float64
	ExceedingCount          *int64
	ExceedingPct            *float64
	MeetingCount            *int64
	MeetingPct              *float64
	PartiallyMeetingCount   *int64
	PartiallyMeetingPct     *float64
	NotMeetingCount         *int64
	NotMeetingPct           *float64
	StudentCount            *int64
	StudentParticipationPct *float64
	AvgScaledScore          *float64
	AvgGrowthPercentile     *float64
	AvgGrowthIncluded       *float64
	AchievementPercentile   *int64
}

// AssessmentColumns lists the sink columns in Values order.
var AssessmentColumns = []string{
	"school_year",
	"school_id",
	"test_grade",
	"subject_code",
	"student_group",
	"meeting_exceeding_count",
	"meeting_exceeding_pct",
	"exceeding_count",
	"exceeding_pct",
	"meeting_count",
	"meeting_pct",
	"partially_meeting_count",
	"partially_meeting_pct",
	"not_meeting_count",
	"not_meeting_pct",
	"student_count",
	"student_participation_pct",
	"avg_scaled_score",
	"avg_student_growth_percentile",
	"avg_sgp_included",
	"achievement_percentile",
}

func (a Assessment) NaturalKey() string {
	return joinKey(a.SchoolID, strconv.Itoa(a.SchoolYear), a.TestGrade, a.SubjectCode, a.StudentGroup)
}

func (a Assessment) Values() []any {
	return []any{
		a.SchoolYear,
		a.SchoolID,
		a.TestGrade,
		a.SubjectCode,
		a.StudentGroup,
		a.MeetingExceedingCount,
		a.MeetingExceedingPct,
		a.ExceedingCount,
		a.ExceedingPct,
		a.MeetingCount,
		a.MeetingPct,
		a.PartiallyMeetingCount,
		a.PartiallyMeetingPct,
		a.NotMeetingCount,
		a.NotMeetingPct,
		a.StudentCount,
		a.StudentParticipationPct,
		a.AvgScaledScore,
		a.AvgGrowthPercentile,
		a.AvgGrowthIncluded,
		a.AchievementPercentile,
	}
}

// ValidateAssessment builds an Assessment from a row of the achievement
// results file.
func ValidateAssessment(row edseed.Row, _ string) (Assessment, ValidationResult) {
	var res ValidationResult

	rec := Assessment{
		SchoolYear:   requireSchoolYear(row, &res),
		SchoolID:     requireText(row, "ORG_CODE", "Missing ORG_CODE (school_id)", &res),
		TestGrade:    requireText(row, "TEST_GRADE", "Missing TEST_GRADE", &res),
		SubjectCode:  requireText(row, "SUBJECT_CODE", "Missing SUBJECT_CODE", &res),
		StudentGroup: requireText(row, "STU_GRP", "Missing STU_GRP (student_group)", &res),
	}
	if !res.Valid() {
		return Assessment{}, res
	}

	rec.MeetingExceedingCount = integer(row, "M_PLUS_E_CNT")
	rec.MeetingExceedingPct = decimal(row, "M_PLUS_E_PCT")
	rec.ExceedingCount = integer(row, "E_CNT")
	rec.ExceedingPct = decimal(row, "E_PCT")
	rec.MeetingCount = integer(row, "M_CNT")
	rec.MeetingPct = decimal(row, "M_PCT")
	rec.PartiallyMeetingCount = integer(row, "PM_CNT")
	rec.PartiallyMeetingPct = decimal(row, "PM_PCT")
	rec.NotMeetingCount = integer(row, "NM_CNT")
	rec.NotMeetingPct = decimal(row, "NM_PCT")
	rec.StudentCount = integer(row, "STU_CNT")
	rec.StudentParticipationPct = decimal(row, "STU_PART_PCT")
	rec.AvgScaledScore = decimal(row, "AVG_SCALED_SCORE")
	rec.AvgGrowthPercentile = decimal(row, "AVG_SGP")
	rec.AvgGrowthIncluded = decimal(row, "AVG_SGP_INCL")
	rec.AchievementPercentile = integer(row, "ACH_PERCENTILE")
	return rec, res
}
