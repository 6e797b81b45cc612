// Package logging provides the edseed.Logger implementations.
//
//   - ZerologLogger: console output plus an optional per-domain log file,
//     every line tagged with the run ID
//   - NullLogger: discards everything
//
// Both are safe for concurrent use.
package logging
