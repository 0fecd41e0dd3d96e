// Package history persists a ledger of batch runs in SQLite.
//
// Each render run records its inputs, its final counts, and one outcome row
// per ADIF record (call sign, email, card paths, raster status). The send
// command marks outcomes as delivered so repeated sends skip cards that
// already went out.
//
// The database lives under the configured state directory. Schema changes
// bump schemaVersion; users delete history.db to adopt the new schema.
package history
