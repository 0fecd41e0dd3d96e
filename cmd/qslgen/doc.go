// Package main hosts the qslgen CLI entrypoint and command graph.
//
// The Cobra-based command tree renders QSL cards from an ADIF log, checks
// that inputs and the converter are ready, browses the run ledger, emails
// finished cards, and scaffolds configuration. It centralizes configuration
// resolution and logging setup so subcommands can focus on user experience
// instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
