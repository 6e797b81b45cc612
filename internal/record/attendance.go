package record

import (
	"strconv"

	"github.com/vvka-141/edseed/pkg/edseed"
)

// Attendance is one school's attendance metrics for a reporting period
// and student group.
type Attendance struct {
	SchoolYear       int
	SchoolID         string
	AttendancePeriod string
	StudentGroup     string

	AttendanceRate       *float64
	AvgDaysAbsent        *float64
	Absent10PlusDaysPct  *float64
	ChronicAbsent10Pct   *float64
	ChronicAbsent20Pct   *float64
	UnexcusedAbsent10Pct *float64
}

// AttendanceColumns lists the sink columns in Values order.
var AttendanceColumns = []string{
	"school_year",
	"school_id",
	"attendance_period",
	"student_group",
	"attendance_rate",
	"avg_days_absent",
	"absent_10plus_days_pct",
	"chronic_absent_10_pct",
	"chronic_absent_20_pct",
	"unexcused_absent_10_pct",
}

func (a Attendance) NaturalKey() string {
	return joinKey(a.SchoolID, strconv.Itoa(a.SchoolYear), a.AttendancePeriod, a.StudentGroup)
}

func (a Attendance) Values() []any {
	return []any{
		a.SchoolYear,
		a.SchoolID,
		a.AttendancePeriod,
		a.StudentGroup,
		a.AttendanceRate,
		a.AvgDaysAbsent,
		a.Absent10PlusDaysPct,
		a.ChronicAbsent10Pct,
		a.ChronicAbsent20Pct,
		a.UnexcusedAbsent10Pct,
	}
}

// ValidateAttendance builds an Attendance from a row of the student
// attendance file.
func ValidateAttendance(row edseed.Row, _ string) (Attendance, ValidationResult) {
	var res ValidationResult

	rec := Attendance{
		SchoolYear:       requireSchoolYear(row, &res),
		AttendancePeriod: requireText(row, "ATTEND_PERIOD", "Missing ATTEND_PERIOD", &res),
		SchoolID:         requireText(row, "ORG_CODE", "Missing ORG_CODE (school_id)", &res),
		StudentGroup:     requireText(row, "STU_GRP", "Missing STU_GRP (student_group)", &res),
	}
	if !res.Valid() {
		return Attendance{}, res
	}

	rec.AttendanceRate = decimal(row, "ATTEND_RATE")
	rec.AvgDaysAbsent = decimal(row, "CNT_AVG_ABS")
	rec.Absent10PlusDaysPct = decimal(row, "PCT_ABS_10_DAYS")
	rec.ChronicAbsent10Pct = decimal(row, "PCT_CHRON_ABS_10")
	rec.ChronicAbsent20Pct = decimal(row, "PCT_CHRON_ABS_20")
	rec.UnexcusedAbsent10Pct = decimal(row, "PCT_UNEXC_10_DAYS")
	return rec, res
}
