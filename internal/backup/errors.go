// ABOUTME: Error kinds returned by the backup guard.
// ABOUTME: Destination errors block a mutation; snapshot errors follow one.
package backup

import (
	"errors"
	"fmt"
)

var (
	// ErrNotADirectory is returned when the backup destination is missing or
	// is not a directory.
	ErrNotADirectory = errors.New("backup destination is not a directory")

	// ErrReadOnlyDestination is returned when the backup destination cannot
	// be written to.
	ErrReadOnlyDestination = errors.New("backup destination is read-only")

	// ErrSnapshotFailed is returned when a snapshot copy cannot complete.
	ErrSnapshotFailed = errors.New("snapshot failed")

	// ErrRestoreFailed is returned when a snapshot cannot be put back in
	// place of the live store.
	ErrRestoreFailed = errors.New("restore failed")
)

// Error records the failed operation, the path involved and the cause.
type Error struct {
	Op   string
	Path string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
