// ABOUTME: SQLite schema definition and one-time initialization.
// ABOUTME: Defines the kal_records table and its (year, ordinal_day) index.
package storage

import "fmt"

const recordsTable = "kal_records"

// The column layout matches databases written by earlier kal releases.
const schema = `
CREATE TABLE kal_records (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	year INTEGER NOT NULL,
	ordinal_day INTEGER NOT NULL,
	category TEXT NOT NULL,
	details TEXT
);

CREATE INDEX idx_kal_records_day ON kal_records(year, ordinal_day);
`

// Initialize creates the schema. It is not idempotent: a store that already
// holds the records table yields ErrSchemaAlreadyExists and is left as is.
func (d *DB) Initialize() error {
	exists, err := d.schemaExists()
	if err != nil {
		return unavailable("initialize", err)
	}
	if exists {
		return &Error{Op: "initialize", Kind: ErrSchemaAlreadyExists}
	}

	tx, err := d.db.Begin()
	if err != nil {
		return unavailable("initialize", err)
	}
	if _, err := tx.Exec(schema); err != nil {
		_ = tx.Rollback()
		return unavailable("initialize", fmt.Errorf("create schema: %w", err))
	}
	if err := tx.Commit(); err != nil {
		return unavailable("initialize", err)
	}
	return nil
}

// schemaExists reports whether the records table is present.
func (d *DB) schemaExists() (bool, error) {
	var count int
	err := d.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?",
		recordsTable).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check schema: %w", err)
	}
	return count > 0, nil
}
