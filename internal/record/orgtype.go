package record

import (
	"sort"
	"strings"
)

// Organization types accepted by the school directory.
const (
	OrgTypeSchool   = "School"
	OrgTypeDistrict = "District"
	OrgTypeState    = "State"
)

var validOrgTypes = map[string]bool{
	OrgTypeSchool:   true,
	OrgTypeDistrict: true,
	OrgTypeState:    true,
}

// NormalizeOrgType maps the free-form type labels used across sources
// ("Public School", "Charter District", "state") onto the canonical set.
// Labels that match no rule are returned unchanged (trimmed).
func NormalizeOrgType(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)

	switch {
	case lower == "state":
		return OrgTypeState
	case strings.Contains(lower, "district"):
		return OrgTypeDistrict
	case strings.Contains(lower, "school"):
		return OrgTypeSchool
	}
	return s
}

// IsValidOrgType reports whether t is one of the canonical types.
func IsValidOrgType(t string) bool {
	return validOrgTypes[t]
}

func orgTypeList() string {
	types := make([]string, 0, len(validOrgTypes))
	for t := range validOrgTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return strings.Join(types, ", ")
}
