// Package coerce turns raw spreadsheet cells into optional numbers.
//
// Both parsers are total: anything that is missing or fails to parse
// becomes nil, never an error. Publishers use "N" and blank cells for
// suppressed values, and pad numbers with thousands separators and
// percent signs.
package coerce

import (
	"math"
	"strconv"
	"strings"
)

// IsMissing reports whether raw is a value the sources use for "unknown":
// nil, NaN, the empty string or the literal "N".
func IsMissing(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(v)
	case float32:
		return math.IsNaN(float64(v))
	case string:
		s := strings.TrimSpace(v)
		return s == "" || s == "N"
	case *string:
		return v == nil || IsMissing(*v)
	}
	return false
}

// ParseInteger returns the integer in raw, or nil.
// Thousands separators are stripped. Integral floats pass through;
// fractional ones do not.
func ParseInteger(raw any) *int64 {
	if IsMissing(raw) {
		return nil
	}

	switch v := raw.(type) {
	case int:
		return ptr(int64(v))
	case int32:
		return ptr(int64(v))
	case int64:
		return ptr(v)
	case float64:
		return integral(v)
	case float32:
		return integral(float64(v))
	case *string:
		return ParseInteger(*v)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return &n
		}
		// "1.0" is how an integer column reads after a float round trip
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return integral(f)
		}
	}
	return nil
}

// ParseDecimal returns the number in raw, or nil.
// Percent signs and thousands separators are stripped.
func ParseDecimal(raw any) *float64 {
	if IsMissing(raw) {
		return nil
	}

	switch v := raw.(type) {
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return ptr(float64(v))
	case int32:
		return ptr(float64(v))
	case int64:
		return ptr(float64(v))
	case *string:
		return ParseDecimal(*v)
	case string:
		s := strings.TrimSpace(v)
		s = strings.ReplaceAll(s, "%", "")
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil
		}
		return finite(f)
	}
	return nil
}

func integral(f float64) *int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return nil
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return nil
	}
	return ptr(int64(f))
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func ptr[T any](v T) *T {
	return &v
}
