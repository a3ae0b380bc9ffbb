// Package migrations embeds SQL migration files for the SQLite store.
//
// Files are named NNN_name.up.sql and applied in order. Down files are kept
// for manual rollback and are never run by the store.
package migrations

import "embed"

// FS contains all SQL migration files embedded at compile time.
//
//go:embed *.sql
var FS embed.FS
