package sqlite

import (
	"errors"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// uniqueViolationCheckers recognise unique-constraint failures reported by
// the drivers compiled into the binary.
var uniqueViolationCheckers = []func(error) bool{
	isModerncUniqueViolation,
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	for _, check := range uniqueViolationCheckers {
		if check(err) {
			return true
		}
	}
	return false
}

func isModerncUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
