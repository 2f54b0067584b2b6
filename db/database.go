package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Database owns the settings connection and its schema.
//
// Usage:
//
//	db, err := Open("/home/user/.cache/xsmodels/state.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
type Database struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex
}

// Open creates (if needed), migrates and connects to the database at path.
// Parent directories are created. MemoryPath gives a private database that
// lives as long as the returned value.
func Open(path string) (*Database, error) {
	return OpenWithConfig(DefaultConnectionConfig(path))
}

// OpenWithConfig is Open with a custom connection configuration.
func OpenWithConfig(config ConnectionConfig) (*Database, error) {
	if config.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}

	if IsMemory(config.Path) {
		conn, err := NewSQLiteConnection(config)
		if err != nil {
			return nil, fmt.Errorf("failed to create database connection: %w", err)
		}
		if err := MigrateInPlace(conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("migration failed: %w", err)
		}
		return &Database{db: conn, path: config.Path}, nil
	}

	dir := filepath.Dir(config.Path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// golang-migrate takes ownership of the connection it is given, so the
	// schema is brought up on a separate one first.
	if err := MigrateUpFromPath(config.Path); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	conn, err := NewSQLiteConnection(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection: %w", err)
	}
	return &Database{db: conn, path: config.Path}, nil
}

// DB returns the underlying connection. Do not close it directly.
func (d *Database) DB() *sql.DB {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.db
}

// Path returns the database path.
func (d *Database) Path() string {
	return d.path
}

// Ping verifies the connection is alive.
func (d *Database) Ping() error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.db == nil {
		return fmt.Errorf("database connection is closed")
	}
	return d.db.Ping()
}

// Close closes the connection. It is safe to call more than once.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db == nil {
		return nil
	}
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	d.db = nil
	return nil
}
