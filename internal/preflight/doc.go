// Package preflight provides readiness checks for the files, directories,
// and external tools a render run depends on.
//
// The CLI "qslgen check" command runs RunAll and prints the results as a
// table. "qslgen render" runs CheckSystemDeps before touching the output
// directory so a missing converter fails fast instead of once per card.
//
// Each optional check is gated by its config toggle; disabled features are skipped.
package preflight
