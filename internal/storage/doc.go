// Package storage persists the transitions observed by the watch daemon.
//
// Drivers:
//   - "sqlite": SQLite database file (modernc.org/sqlite, no cgo)
//   - "file":   append-only JSON Lines file
package storage
