// Package migrations carries the ledger schema as embedded SQL files.
package migrations

import "embed"

// FS holds the versioned .up.sql/.down.sql pairs applied at startup.
//
//go:embed *.sql
var FS embed.FS
