// Package sqlite implements eventcore.MessageStore on top of a SQLite
// database reached through database/sql.
//
// Messages live in a single table (default "eventstore") with one row per
// message. A unique index on (stream_id, version) is the optimistic
// concurrency check: a second insert at the same position fails inside the
// engine and is reported as *eventcore.VersionConflictError. Appends run in
// one transaction, so a batch is stored completely or not at all.
//
// The pure-Go modernc.org/sqlite driver is registered as "sqlite". When built
// with cgo the mattn/go-sqlite3 driver ("sqlite3") is understood as well.
package sqlite
