//go:build cgo

package storage

import (
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
)

func init() {
	registerDriver(DriverCGO, cgoDSN, isCGOUniqueViolation)
}

func cgoDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf(
		"file:%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on&_txlock=immediate",
		path, busyTimeout.Milliseconds(),
	)
}

func isCGOUniqueViolation(err error) bool {
	var se sqlite3.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.ExtendedCode == sqlite3.ErrConstraintUnique ||
		se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}
