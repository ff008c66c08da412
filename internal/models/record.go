// ABOUTME: Record model and Day key for the daily log.
// ABOUTME: A record is one categorized entry on a (year, ordinal day).
package models

import (
	"fmt"
	"time"
)

// MaxOrdinalDay is the last ordinal day of a leap year.
const MaxOrdinalDay = 366

// Day identifies a calendar day by year and 1-based day of year.
type Day struct {
	Year    uint `json:"year" yaml:"year"`
	Ordinal uint `json:"ordinal_day" yaml:"ordinal_day"`
}

// DayOf returns the Day that t falls on in t's location.
func DayOf(t time.Time) Day {
	return Day{Year: uint(t.Year()), Ordinal: uint(t.YearDay())}
}

// DateLayout is the calendar date format accepted on input.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD date in the local zone and returns its Day.
func ParseDate(s string) (Day, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q (use YYYY-MM-DD): %w", s, err)
	}
	return DayOf(t), nil
}

// Valid reports whether the ordinal day is within 1..366.
func (d Day) Valid() bool {
	return d.Ordinal >= 1 && d.Ordinal <= MaxOrdinalDay
}

func (d Day) String() string {
	return fmt.Sprintf("%d-%d", d.Year, d.Ordinal)
}

// Record is one logged entry. Details is nil when nothing was written.
type Record struct {
	Year       uint    `json:"year" yaml:"year"`
	OrdinalDay uint    `json:"ordinal_day" yaml:"ordinal_day"`
	Category   string  `json:"category" yaml:"category"`
	Details    *string `json:"details,omitempty" yaml:"details,omitempty"`
}

// NewRecord creates a record for the given day and category.
func NewRecord(day Day, category string) *Record {
	return &Record{
		Year:       day.Year,
		OrdinalDay: day.Ordinal,
		Category:   category,
	}
}

// WithDetails sets details on the record. An empty string leaves details unset.
func (r *Record) WithDetails(details string) *Record {
	r.Details = NormalizeDetails(details)
	return r
}

// Day returns the day the record belongs to.
func (r *Record) Day() Day {
	return Day{Year: r.Year, Ordinal: r.OrdinalDay}
}

// DetailsOr returns the details text, or fallback when there is none.
func (r *Record) DetailsOr(fallback string) string {
	if r.Details == nil {
		return fallback
	}
	return *r.Details
}

// String renders the record as "YEAR-DAY: category: details".
func (r *Record) String() string {
	return fmt.Sprintf("%d-%d: %s: %s", r.Year, r.OrdinalDay, r.Category, r.DetailsOr("<no details>"))
}

// NormalizeDetails maps the empty string to nil.
func NormalizeDetails(details string) *string {
	if details == "" {
		return nil
	}
	return &details
}
