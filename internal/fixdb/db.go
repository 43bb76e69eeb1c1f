// Package fixdb stores fixation datasets and generation runs in SQLite.
package fixdb

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/fixgen/internal/timeutil"
)

// ErrNotFound is returned when a dataset id does not exist.
var ErrNotFound = errors.New("fixdb: not found")

type DB struct {
	*sql.DB
	clock timeutil.Clock
}

// Open opens (creating if needed) the database at path and migrates the
// schema to the latest version.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, err
	}
	db := &DB{DB: sqlDB, clock: timeutil.RealClock{}}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// dsn adds connection pragmas so they apply to every pooled connection.
func dsn(path string) string {
	pragmas := "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	if path == ":memory:" || strings.HasPrefix(path, "file::memory:") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s", path, sep, pragmas)
}

// SetClock replaces the clock used for created_at timestamps.
func (db *DB) SetClock(c timeutil.Clock) {
	db.clock = c
}
