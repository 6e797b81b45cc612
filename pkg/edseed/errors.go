package edseed

import (
	"errors"
	"strings"
)

// Sentinel errors for the fatal conditions of a load run.
// Callers distinguish them with errors.Is().
//
// Example usage:
//
//	err := driver.Run(ctx, cfg)
//	if errors.Is(err, edseed.ErrNoRecords) {
//	    // nothing valid to load
//	}
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrConnectionFailed indicates the sink could not be reached.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrSourceNotFound indicates the input file does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrSourceEmpty indicates the input file has no header or no data rows.
	ErrSourceEmpty = errors.New("source is empty")

	// ErrSourceMalformed indicates the input file could not be parsed
	// or lacks a required column.
	ErrSourceMalformed = errors.New("source is malformed")

	// ErrNoRecords indicates extraction produced zero valid records.
	ErrNoRecords = errors.New("no valid records")

	// ErrLoadIncomplete indicates at least one record failed to load.
	ErrLoadIncomplete = errors.New("load incomplete")

	// ErrUsage indicates the command line was used incorrectly.
	ErrUsage = errors.New("usage error")
)

// ExitCodeForError returns the process exit code for an error.
// nil maps to ExitSuccess, command-line misuse to ExitUsageError,
// everything else to ExitFailure.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, ErrUsage) {
		return ExitUsageError
	}

	// cobra reports flag and argument problems as plain errors
	errStr := err.Error()
	usagePatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"unknown command",
		"accepts ",
		"required flag",
		"invalid argument",
		"flag needs an argument",
	}
	for _, p := range usagePatterns {
		if strings.Contains(errStr, p) {
			return ExitUsageError
		}
	}

	return ExitFailure
}
