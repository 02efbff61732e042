// Package sqlite stores documents, chunks and chunk vectors in one SQLite
// file using modernc.org/sqlite, which needs no cgo.
//
// The schema lives in migrations/ as numbered up scripts. The number of the
// last one applied is kept in PRAGMA user_version, so opening an older
// database upgrades it in place.
//
// The default location is ~/.docpilot/data/docpilot.db. The database runs
// in WAL mode with a busy timeout so several processes, such as a watcher
// and an interactive chat, can use it at once.
package sqlite
