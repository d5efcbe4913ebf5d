// Package sqlite implements the ingest ledger on modernc.org/sqlite,
// a pure Go driver that keeps the binary CGO-free.
//
// The ledger remembers what the search index currently holds: one row
// per note with its content hash and chunk count, plus a history of
// upload and index runs. Commands consult it to skip unchanged notes
// and to report what a re-index would touch.
//
// The schema lives in migrations/ as numbered .up.sql/.down.sql pairs
// and is applied on open. The database file defaults to
// ~/.recall/data/ledger.db and is safe for concurrent use; connections
// run in WAL mode.
package sqlite
