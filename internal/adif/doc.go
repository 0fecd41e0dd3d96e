// Package adif reads and writes Amateur Data Interchange Format logs.
//
// Parse is a pure function: it turns ADIF text into an ordered list of records
// and reports fragments it had to skip instead of logging them, so callers decide
// how loudly to complain about a malformed log. Field names are folded to upper
// case and later occurrences of a field overwrite earlier ones within a record.
package adif
