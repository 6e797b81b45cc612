package record

import (
	"github.com/vvka-141/edseed/pkg/edseed"
)

// School is one organization of the directory: a school, a district or
// the state itself.
type School struct {
	SchoolID     string
	SchoolName   string
	DistrictCode string
	DistrictName string
	OrgType      string

	// SourceFile names the file the record was last taken from.
	// Diagnostics only; not written to the store.
	SourceFile string
}

// SchoolIdentityColumns are the source columns a directory entry is read
// from. Every contributing file must carry all of them.
var SchoolIdentityColumns = []string{"ORG_CODE", "ORG_NAME", "DIST_CODE", "DIST_NAME", "ORG_TYPE"}

// SchoolColumns lists the sink columns in Values order.
var SchoolColumns = []string{
	"school_id",
	"school_name",
	"district_code",
	"district_name",
	"org_type",
}

func (s School) NaturalKey() string {
	return s.SchoolID
}

func (s School) Values() []any {
	return []any{s.SchoolID, s.SchoolName, s.DistrictCode, s.DistrictName, s.OrgType}
}

// ValidateSchool builds a School from a row carrying the identity columns.
// The organization type is normalized before it is checked.
func ValidateSchool(row edseed.Row, source string) (School, ValidationResult) {
	var res ValidationResult

	rec := School{
		SchoolID:     requireText(row, "ORG_CODE", "Missing ORG_CODE (school_id)", &res),
		SchoolName:   requireText(row, "ORG_NAME", "Missing ORG_NAME (school_name)", &res),
		DistrictCode: requireText(row, "DIST_CODE", "Missing DIST_CODE (district_code)", &res),
		DistrictName: requireText(row, "DIST_NAME", "Missing DIST_NAME (district_name)", &res),
		SourceFile:   source,
	}

	raw := row.Text("ORG_TYPE")
	switch {
	case raw == "" || raw == "nan":
		res.Add("Missing ORG_TYPE (org_type)")
	default:
		rec.OrgType = NormalizeOrgType(raw)
		if !IsValidOrgType(rec.OrgType) {
			res.Add("Invalid ORG_TYPE '%s'. Must be one of: %s", rec.OrgType, orgTypeList())
		}
	}

	if !res.Valid() {
		return School{}, res
	}
	return rec, res
}
