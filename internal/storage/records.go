// ABOUTME: Record insert, query, and delete operations for SQLite storage.
// ABOUTME: Day and year parameters are always bound as integers.
package storage

import (
	"database/sql"
	"fmt"

	"github.com/harperreed/kal/internal/models"
)

const selectRecords = `
	SELECT id, year, ordinal_day, category, details
	FROM kal_records
`

// Insert appends a record. Duplicate (year, ordinal_day, category) rows are allowed.
// Empty details are stored as NULL.
func (d *DB) Insert(r *models.Record) error {
	if r == nil {
		return &Error{Op: "insert", Kind: ErrInvalidRecord, Err: fmt.Errorf("nil record")}
	}
	if r.Category == "" {
		return &Error{Op: "insert", Kind: ErrInvalidRecord, Err: fmt.Errorf("missing category")}
	}
	if !r.Day().Valid() {
		return &Error{Op: "insert", Kind: ErrInvalidRecord,
			Err: fmt.Errorf("ordinal day %d outside 1..%d", r.OrdinalDay, models.MaxOrdinalDay)}
	}

	var details *string
	if r.Details != nil {
		details = models.NormalizeDetails(*r.Details)
	}

	query := `
		INSERT INTO kal_records (year, ordinal_day, category, details)
		VALUES (?, ?, ?, ?)
	`
	if _, err := d.db.Exec(query, int64(r.Year), int64(r.OrdinalDay), r.Category, details); err != nil {
		return unavailable("insert", err)
	}
	return nil
}

// QueryDay returns every record of the given day in insertion order.
func (d *DB) QueryDay(year, ordinalDay uint) ([]*models.Record, error) {
	query := selectRecords + `
		WHERE year = ? AND ordinal_day = ?
		ORDER BY id
	`
	rows, err := d.db.Query(query, int64(year), int64(ordinalDay))
	if err != nil {
		return nil, unavailable("query day", err)
	}
	defer rows.Close()

	return scanRecords("query day", rows)
}

// QueryYear returns every record of the given year in insertion order.
func (d *DB) QueryYear(year uint) ([]*models.Record, error) {
	query := selectRecords + `
		WHERE year = ?
		ORDER BY id
	`
	rows, err := d.db.Query(query, int64(year))
	if err != nil {
		return nil, unavailable("query year", err)
	}
	defer rows.Close()

	return scanRecords("query year", rows)
}

// QueryAll returns every record in insertion order.
func (d *DB) QueryAll() ([]*models.Record, error) {
	rows, err := d.db.Query(selectRecords + " ORDER BY id")
	if err != nil {
		return nil, unavailable("query all", err)
	}
	defer rows.Close()

	return scanRecords("query all", rows)
}

// DeleteDay removes every record of the given day and returns how many were removed.
// Deleting a day with no records is not an error.
func (d *DB) DeleteDay(year, ordinalDay uint) (int64, error) {
	result, err := d.db.Exec(
		"DELETE FROM kal_records WHERE year = ? AND ordinal_day = ?",
		int64(year), int64(ordinalDay))
	if err != nil {
		return 0, unavailable("delete day", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, unavailable("delete day", err)
	}
	return affected, nil
}

// scanRecords decodes rows into records. A row that does not decode
// fails the whole query with ErrMalformedRecord.
func scanRecords(op string, rows *sql.Rows) ([]*models.Record, error) {
	records := []*models.Record{}

	for rows.Next() {
		var id int64
		var year, ordinalDay sql.NullInt64
		var category, details sql.NullString

		if err := rows.Scan(&id, &year, &ordinalDay, &category, &details); err != nil {
			return nil, &Error{Op: op, Kind: ErrMalformedRecord, Err: fmt.Errorf("row %d: %w", id, err)}
		}

		switch {
		case !year.Valid || year.Int64 < 0:
			return nil, &Error{Op: op, Kind: ErrMalformedRecord, Err: fmt.Errorf("row %d: bad year", id)}
		case !ordinalDay.Valid || ordinalDay.Int64 < 1 || ordinalDay.Int64 > models.MaxOrdinalDay:
			return nil, &Error{Op: op, Kind: ErrMalformedRecord, Err: fmt.Errorf("row %d: bad ordinal day", id)}
		case !category.Valid || category.String == "":
			return nil, &Error{Op: op, Kind: ErrMalformedRecord, Err: fmt.Errorf("row %d: missing category", id)}
		}

		r := &models.Record{
			Year:       uint(year.Int64),
			OrdinalDay: uint(ordinalDay.Int64),
			Category:   category.String,
		}
		if details.Valid {
			r.Details = models.NormalizeDetails(details.String)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, unavailable(op, err)
	}
	return records, nil
}
