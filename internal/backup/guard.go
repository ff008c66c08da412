// ABOUTME: Pre-flight validation of the backup destination.
// ABOUTME: Must pass before any mutating store operation runs.
package backup

import (
	"fmt"
	"os"
)

// CheckDestination verifies that path is an existing, writable directory.
func CheckDestination(path string) error {
	const op = "check destination"

	info, err := os.Stat(path)
	if err != nil {
		return &Error{Op: op, Path: path, Kind: ErrNotADirectory, Err: err}
	}
	if !info.IsDir() {
		return &Error{Op: op, Path: path, Kind: ErrNotADirectory}
	}

	if info.Mode().Perm()&0o222 == 0 {
		return &Error{Op: op, Path: path, Kind: ErrReadOnlyDestination,
			Err: fmt.Errorf("mode %s", info.Mode().Perm())}
	}

	// Mode bits do not account for ownership or read-only mounts.
	probe, err := os.CreateTemp(path, ".kal-probe-*")
	if err != nil {
		return &Error{Op: op, Path: path, Kind: ErrReadOnlyDestination, Err: err}
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return nil
}
