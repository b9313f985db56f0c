package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Driver names accepted by Options.Driver
const (
	// DriverPure is the pure-Go modernc.org/sqlite driver
	DriverPure = "sqlite"
	// DriverCGO is the mattn/go-sqlite3 driver, available in cgo builds only
	DriverCGO = "sqlite3"
)

// DefaultBusyTimeout is how long a writer waits for the database lock.
const DefaultBusyTimeout = 5 * time.Second

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Options configures Open.
type Options struct {
	// Driver is DriverPure or DriverCGO. Empty means DriverPure.
	Driver string
	// Path is the database file path. Its directory is created if missing.
	Path string
	// BusyTimeout bounds lock waits. Zero means DefaultBusyTimeout.
	BusyTimeout time.Duration
}

// dsnBuilder renders a DSN for one driver. Write transactions must start
// IMMEDIATE so concurrent materializations serialize on the write lock.
type dsnBuilder func(path string, busyTimeout time.Duration) string

// violationClassifier reports whether err is a UNIQUE/PRIMARY KEY violation.
type violationClassifier func(err error) bool

var (
	registryMu  sync.RWMutex
	dsnBuilders = map[string]dsnBuilder{
		DriverPure: pureDSN,
	}
	classifiers = []violationClassifier{isPureUniqueViolation}
)

// registerDriver makes another database/sql driver selectable.
func registerDriver(name string, dsn dsnBuilder, classify violationClassifier) {
	registryMu.Lock()
	defer registryMu.Unlock()
	dsnBuilders[name] = dsn
	classifiers = append(classifiers, classify)
}

// Drivers lists the selectable driver names.
func Drivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(dsnBuilders))
	for name := range dsnBuilders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func pureDSN(path string, busyTimeout time.Duration) string {
	return fmt.Sprintf(
		"file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)&_txlock=immediate",
		path, busyTimeout.Milliseconds(),
	)
}

// Open opens (creating if necessary) the SQLite database described by opts
// and migrates the catalog table. fs is used to create the data directory.
func Open(ctx context.Context, fs afero.Fs, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("storage: database path cannot be empty")
	}
	driverName := opts.Driver
	if driverName == "" {
		driverName = DriverPure
	}
	busyTimeout := opts.BusyTimeout
	if busyTimeout <= 0 {
		busyTimeout = DefaultBusyTimeout
	}

	registryMu.RLock()
	build, ok := dsnBuilders[driverName]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown driver %q (available: %s)", driverName, strings.Join(Drivers(), ", "))
	}

	if err := fs.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil {
		return nil, fmt.Errorf("storage: failed to create data directory: %w", err)
	}

	db, err := sql.Open(driverName, build(opts.Path, busyTimeout))
	if err != nil {
		return nil, fmt.Errorf("storage: failed to open %s: %w", opts.Path, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close() // Ignore close error since we're already returning an error
		return nil, fmt.Errorf("storage: failed to connect to %s: %w", opts.Path, err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint violation raised by any registered driver.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, classify := range classifiers {
		if classify(err) {
			return true
		}
	}
	return false
}

func isPureUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	case sqlite3.SQLITE_CONSTRAINT:
		return strings.Contains(se.Error(), "UNIQUE")
	default:
		return false
	}
}
