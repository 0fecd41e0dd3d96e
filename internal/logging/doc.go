// Package logging assembles structured slog loggers and formatting helpers used
// across qslgen.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so batch code can tag log lines with the
// run ID and the call sign being rendered. The package also provides a no-op
// logger for tests and wiring code that cannot fail.
package logging
