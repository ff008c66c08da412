// ABOUTME: SQLite database connection and lifecycle management.
// ABOUTME: Uses modernc.org/sqlite (pure Go, no CGO required).
package storage

import (
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection.
// A DB is owned by one caller and used for one operation at a time.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Open opens or creates a SQLite database at the given path.
// The schema is not created here; see Initialize.
func Open(dbPath string) (*DB, error) {
	// Ensure parent directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, unavailable("open", fmt.Errorf("create data directory: %w", err))
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, unavailable("open", err)
	}

	// One connection keeps pragmas and the file handle in one place.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db, dbPath: dbPath}

	if err := d.configurePragmas(); err != nil {
		_ = db.Close()
		return nil, unavailable("open", err)
	}

	// Set file permissions
	if err := os.Chmod(dbPath, 0600); err != nil && !os.IsNotExist(err) {
		_ = db.Close()
		return nil, unavailable("open", fmt.Errorf("set database permissions: %w", err))
	}

	return d, nil
}

// OpenExisting opens the database at path, failing if the file does not exist.
func OpenExisting(dbPath string) (*DB, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, unavailable("open", err)
	}
	if info.IsDir() {
		return nil, unavailable("open", fmt.Errorf("%s is a directory", dbPath))
	}
	return Open(dbPath)
}

// OpenReadOnly opens an existing database without writing to it: the file
// mode is left alone and no pragmas that change the file are run.
func OpenReadOnly(dbPath string) (*DB, error) {
	info, err := os.Stat(dbPath)
	if err != nil {
		return nil, unavailable("open read-only", err)
	}
	if info.IsDir() {
		return nil, unavailable("open read-only", fmt.Errorf("%s is a directory", dbPath))
	}

	abs, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, unavailable("open read-only", err)
	}
	dsn := (&url.URL{Scheme: "file", Path: abs, RawQuery: "mode=ro"}).String()

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, unavailable("open read-only", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, unavailable("open read-only", err)
	}
	return &DB{db: db, dbPath: dbPath}, nil
}

// DataDir returns the default data directory under the XDG data home.
func DataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "kal")
}

// DefaultDBPath returns the default database path under the XDG data home.
func DefaultDBPath() string {
	return filepath.Join(DataDir(), "kal.db")
}

// Path returns the path of the backing file.
func (d *DB) Path() string {
	return d.dbPath
}

// Close closes the database connection.
func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// configurePragmas sets up SQLite for a single writer.
// The rollback journal keeps every committed write in the main file,
// which is what a snapshot copies.
func (d *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = DELETE",
		"PRAGMA synchronous = FULL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := d.db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}
	return nil
}
