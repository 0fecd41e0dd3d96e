// Package services defines shared utilities consumed by the batch pipeline
// and its external integrations (rasterizer, mailer, object store).
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, call signs, and record positions for
//     logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent ledger outcomes.
//
// Use these helpers when wiring new integrations so error handling and
// observability stay uniform across commands.
package services
