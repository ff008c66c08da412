// ABOUTME: Timestamped full-copy snapshots of the store file.
// ABOUTME: Also lists existing snapshots and restores one over the live store.
package backup

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TimestampLayout is the second-resolution time format embedded in snapshot names.
const TimestampLayout = "2006-01-02_15-04-05"

// maxCollisions bounds the "_NN" suffixes tried within one second.
const maxCollisions = 99

// Snapshot describes a snapshot file on disk.
type Snapshot struct {
	Path  string
	Name  string
	Taken time.Time
	Size  int64
}

// SnapshotName returns the file name for a snapshot of source taken at t.
// seq > 0 adds a "_NN" suffix used when an earlier snapshot already holds
// the same second; the suffixed name still sorts after the plain one.
//
// Example: kal.db at 2024-02-14 10:30:05 -> kal_backup-[2024-02-14_10-30-05].db
func SnapshotName(source string, t time.Time, seq int) string {
	stem, ext := splitName(source)
	name := fmt.Sprintf("%s_backup-[%s]", stem, t.Format(TimestampLayout))
	if seq > 0 {
		name += fmt.Sprintf("_%02d", seq)
	}
	return name + ext
}

// Take copies source into destDir under a name stamped with the current time.
func Take(source, destDir string) (string, error) {
	return TakeAt(source, destDir, time.Now())
}

// TakeAt copies source into destDir under a name stamped with t.
// Existing files are never overwritten. A partial copy is removed.
func TakeAt(source, destDir string, t time.Time) (string, error) {
	const op = "snapshot"

	src, err := os.Open(source)
	if err != nil {
		return "", &Error{Op: op, Path: source, Kind: ErrSnapshotFailed, Err: err}
	}
	defer src.Close()

	var dst *os.File
	var dstPath string
	for seq := 0; seq <= maxCollisions; seq++ {
		dstPath = filepath.Join(destDir, SnapshotName(source, t, seq))
		dst, err = os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
		if err == nil {
			break
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", &Error{Op: op, Path: dstPath, Kind: ErrSnapshotFailed, Err: err}
		}
	}
	if dst == nil {
		return "", &Error{Op: op, Path: destDir, Kind: ErrSnapshotFailed,
			Err: fmt.Errorf("more than %d snapshots at %s", maxCollisions+1, t.Format(TimestampLayout))}
	}

	if err := copyAndSync(dst, src); err != nil {
		_ = os.Remove(dstPath)
		return "", &Error{Op: op, Path: dstPath, Kind: ErrSnapshotFailed, Err: err}
	}
	return dstPath, nil
}

// List returns the snapshots of source found in destDir, oldest first.
func List(destDir, source string) ([]Snapshot, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return nil, &Error{Op: "list", Path: destDir, Kind: ErrNotADirectory, Err: err}
	}

	stem, ext := splitName(source)
	prefix := stem + "_backup-["

	var snapshots []Snapshot
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		rest := strings.TrimPrefix(name, prefix)
		end := strings.Index(rest, "]")
		if end < 0 {
			continue
		}
		taken, err := time.ParseInLocation(TimestampLayout, rest[:end], time.Local)
		if err != nil {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		snapshots = append(snapshots, Snapshot{
			Path:  filepath.Join(destDir, name),
			Name:  name,
			Taken: taken,
			Size:  info.Size(),
		})
	}

	sort.Slice(snapshots, func(i, j int) bool {
		return snapshots[i].Name < snapshots[j].Name
	})
	return snapshots, nil
}

// Restore replaces the store file at storePath with the contents of snapshot.
// The copy goes to a temporary file next to the store and is renamed into
// place, so the live store is either fully old or fully restored.
func Restore(snapshot, storePath string) error {
	const op = "restore"

	info, err := os.Stat(snapshot)
	if err != nil {
		return &Error{Op: op, Path: snapshot, Kind: ErrRestoreFailed, Err: err}
	}
	if !info.Mode().IsRegular() {
		return &Error{Op: op, Path: snapshot, Kind: ErrRestoreFailed, Err: fmt.Errorf("not a regular file")}
	}

	src, err := os.Open(snapshot)
	if err != nil {
		return &Error{Op: op, Path: snapshot, Kind: ErrRestoreFailed, Err: err}
	}
	defer src.Close()

	tmp, err := os.CreateTemp(filepath.Dir(storePath), ".kal-restore-*")
	if err != nil {
		return &Error{Op: op, Path: storePath, Kind: ErrRestoreFailed, Err: err}
	}
	tmpPath := tmp.Name()

	if err := copyAndSync(tmp, src); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Op: op, Path: storePath, Kind: ErrRestoreFailed, Err: err}
	}
	if err := os.Chmod(tmpPath, 0600); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Op: op, Path: storePath, Kind: ErrRestoreFailed, Err: err}
	}

	// A leftover journal belongs to the old file and must not be replayed
	// against the restored one.
	for _, suffix := range []string{"-journal", "-wal", "-shm"} {
		if err := os.Remove(storePath + suffix); err != nil && !os.IsNotExist(err) {
			_ = os.Remove(tmpPath)
			return &Error{Op: op, Path: storePath + suffix, Kind: ErrRestoreFailed, Err: err}
		}
	}

	if err := os.Rename(tmpPath, storePath); err != nil {
		_ = os.Remove(tmpPath)
		return &Error{Op: op, Path: storePath, Kind: ErrRestoreFailed, Err: err}
	}
	return nil
}

// copyAndSync copies src into dst, flushes dst to disk and closes it.
func copyAndSync(dst *os.File, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		_ = dst.Close()
		return fmt.Errorf("copy: %w", err)
	}
	if err := dst.Sync(); err != nil {
		_ = dst.Close()
		return fmt.Errorf("sync: %w", err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

func splitName(source string) (stem, ext string) {
	base := filepath.Base(source)
	ext = filepath.Ext(base)
	return strings.TrimSuffix(base, ext), ext
}
