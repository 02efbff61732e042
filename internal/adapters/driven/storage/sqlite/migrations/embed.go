// Package migrations holds the SQLite schema as numbered up scripts.
package migrations

import "embed"

// FS holds NNN_name.up.sql files, applied in order.
//
//go:embed *.up.sql
var FS embed.FS
