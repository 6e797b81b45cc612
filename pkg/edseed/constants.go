package edseed

import "time"

// Exit codes. Every fatal condition of a load run, including a run that
// finished with per-record failures, exits with ExitFailure.
const (
	ExitSuccess    = 0 // All records loaded (or dry run completed)
	ExitFailure    = 1 // Fatal condition or nonzero load errors
	ExitUsageError = 2 // CLI usage error (unknown domain, invalid flags)
	ExitPanic      = 3 // Internal panic (unexpected crash)
)

const (
	// DefaultBatchSize is the number of records sent to the sink per upsert.
	DefaultBatchSize = 100

	// PreviewCount is the number of records logged by a dry run.
	PreviewCount = 5

	// MinSchoolYear and MaxSchoolYear bound an acceptable school year (inclusive).
	MinSchoolYear = 2000
	MaxSchoolYear = 2100

	// DefaultTimeout bounds a whole run.
	DefaultTimeout = 30 * time.Minute

	// DefaultDataDir is where source files are resolved from when the
	// configuration does not say otherwise.
	DefaultDataDir = "data/data/raw"

	// DefaultLogDir receives the per-domain log files.
	DefaultLogDir = "scripts"

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 30 * time.Second

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3
)
