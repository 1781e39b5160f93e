// Package db stores a history of playback runs in SQLite.
package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the history database at path and brings its
// schema up to date.
func NewDB(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// a single writer keeps SQLite from returning SQLITE_BUSY
	sqlDB.SetMaxOpenConns(1)

	db := &DB{sqlDB}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to set busy_timeout: %w", err)
	}
	if err := db.MigrateUp(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return db, nil
}
