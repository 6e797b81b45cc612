package record

import "github.com/vvka-141/edseed/pkg/edseed"

// Domain describes how one kind of source file becomes sink rows.
type Domain[R Record] struct {
	// Name identifies the domain on the command line and in log file names.
	Name string

	// Table is the sink table written to.
	Table string

	// Columns are the sink columns, in the order of R.Values.
	Columns []string

	// ConflictKey is the natural key the sink upserts on.
	ConflictKey []string

	// Diagnostics are the raw source columns quoted when a row is rejected.
	Diagnostics []string

	// Distinct, when set, reduces the source to the distinct tuples of
	// these columns before validation. Every listed column must be present.
	Distinct []string

	// Validate turns a raw row into a record. source names the input file.
	Validate func(row edseed.Row, source string) (R, ValidationResult)
}

// Domain names.
const (
	DomainAttendance  = "attendance"
	DomainEnrollment  = "enrollment"
	DomainAssessments = "assessments"
	DomainSchools     = "schools"
)

var AttendanceDomain = Domain[Attendance]{
	Name:        DomainAttendance,
	Table:       "attendance",
	Columns:     AttendanceColumns,
	ConflictKey: []string{"school_id", "school_year", "attendance_period", "student_group"},
	Diagnostics: []string{"SY", "ORG_CODE", "ATTEND_PERIOD", "STU_GRP"},
	Validate:    ValidateAttendance,
}

var EnrollmentDomain = Domain[Enrollment]{
	Name:        DomainEnrollment,
	Table:       "enrollment",
	Columns:     EnrollmentColumns,
	ConflictKey: []string{"school_id", "school_year"},
	Diagnostics: []string{"SY", "ORG_CODE", "ORG_NAME"},
	Validate:    ValidateEnrollment,
}

var AssessmentDomain = Domain[Assessment]{
	Name:        DomainAssessments,
	Table:       "mcas_results",
	Columns:     AssessmentColumns,
	ConflictKey: []string{"school_id", "school_year", "test_grade", "subject_code", "student_group"},
	Diagnostics: []string{"SY", "ORG_CODE", "TEST_GRADE", "SUBJECT_CODE"},
	Validate:    ValidateAssessment,
}

var SchoolDomain = Domain[School]{
	Name:        DomainSchools,
	Table:       "schools",
	Columns:     SchoolColumns,
	ConflictKey: []string{"school_id"},
	Diagnostics: []string{"ORG_CODE", "ORG_NAME"},
	Distinct:    SchoolIdentityColumns,
	Validate:    ValidateSchool,
}
