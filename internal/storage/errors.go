// ABOUTME: Error kinds returned by the record store.
// ABOUTME: Every storage failure unwraps to one of the sentinels below.
package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreUnavailable is returned when the backing file cannot be opened,
	// read, or written.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrSchemaAlreadyExists is returned by Initialize on an initialized store.
	ErrSchemaAlreadyExists = errors.New("schema already exists")

	// ErrInvalidRecord is returned when a record is missing a required field.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrMalformedRecord is returned when a stored row cannot be decoded.
	ErrMalformedRecord = errors.New("malformed record")
)

// Error describes a failed store operation.
// errors.Is matches both Kind and the underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func unavailable(op string, err error) error {
	return &Error{Op: op, Kind: ErrStoreUnavailable, Err: err}
}
