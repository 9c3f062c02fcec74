package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrActivityNotFound is returned when an activity doesn't exist
var ErrActivityNotFound = errors.New("activity not found")

// ErrNoRoute is returned when an activity has no recurring route assigned
var ErrNoRoute = errors.New("activity has no route")

// ErrCacheMiss is returned when no live comparison cache entry exists
var ErrCacheMiss = errors.New("comparison cache miss")

// DB wraps the SQLite connection and implements the activity, route,
// feature and comparison cache stores.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database at path, creating it if necessary, and
// applies pending migrations.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := configurePragmas(sqlDB); err != nil {
		sqlDB.Close()
		return nil, err
	}

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &DB{sqlDB}, nil
}
