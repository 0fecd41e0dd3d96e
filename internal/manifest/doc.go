// Package manifest writes the CSV manifests produced by a render run and the
// optional XLSX workbook that bundles them.
//
// Every processed record lands in exactly one of the no-email and with-email
// manifests, and exactly once in the all-outcomes manifest. The send command
// reads the with-email manifest back to find cards to deliver.
package manifest
