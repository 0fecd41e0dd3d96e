// Package batch turns parsed ADIF records into QSL cards.
//
// The Orchestrator walks records in order: it resolves the call sign and
// email, optionally decomposes the ADDRESS field, substitutes the record into
// the SVG template, writes <call>.svg, asks the Rasterizer for an image, and
// routes a manifest row by email presence. Rasterizer failures are logged and
// counted; the batch carries on. Execute wires the orchestrator to the
// configured files, the manifests, the run ledger, and the output-directory
// lock.
//
// Processing is strictly sequential. Duplicate call signs overwrite each
// other's files; the last record wins.
package batch
