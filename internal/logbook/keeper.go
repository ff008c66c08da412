// ABOUTME: Keeper runs daily-log operations against the configured store.
// ABOUTME: Every write is gated by the backup pre-flight and followed by a snapshot.
package logbook

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/harperreed/kal/internal/backup"
	"github.com/harperreed/kal/internal/config"
	"github.com/harperreed/kal/internal/models"
	"github.com/harperreed/kal/internal/storage"
)

// ErrUnknownCategory is returned when a category is not in the allow-list.
var ErrUnknownCategory = errors.New("unknown category")

// Keeper holds the configuration shared by all operations. It keeps no
// open handles: each call opens the store, uses it once and closes it.
type Keeper struct {
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Keeper for cfg.
func New(cfg *config.Config, logger *slog.Logger) *Keeper {
	return &Keeper{cfg: cfg, logger: logger}
}

// Config returns the configuration the keeper was created with.
func (k *Keeper) Config() *config.Config {
	return k.cfg
}

// Init creates the store schema and snapshots the new store.
func (k *Keeper) Init() (string, error) {
	return k.mutate("init", storage.Open, func(db *storage.DB) error {
		return db.Initialize()
	})
}

// Commit appends an entry for day. Empty details are stored as absent.
func (k *Keeper) Commit(day models.Day, category, details string) (*models.Record, string, error) {
	if !k.cfg.HasCategory(category) {
		return nil, "", fmt.Errorf("%w: %q (allowed: %v)", ErrUnknownCategory, category, k.cfg.Categories)
	}

	r := models.NewRecord(day, category).WithDetails(details)
	snap, err := k.mutate("commit", storage.OpenExisting, func(db *storage.DB) error {
		return db.Insert(r)
	})
	if errors.Is(err, backup.ErrSnapshotFailed) {
		// The entry is stored; only the backup is missing.
		return r, "", err
	}
	if err != nil {
		return nil, "", err
	}
	return r, snap, nil
}

// Reset removes every entry of day and returns how many were removed.
// When only the snapshot fails the count is still returned with the error.
func (k *Keeper) Reset(day models.Day) (int64, string, error) {
	var removed int64
	snap, err := k.mutate("reset", storage.OpenExisting, func(db *storage.DB) error {
		var err error
		removed, err = db.DeleteDay(day.Year, day.Ordinal)
		return err
	})
	return removed, snap, err
}

// Import appends the records of a JSON export. When only the snapshot
// fails the imported count is still returned with the error.
func (k *Keeper) Import(raw []byte) (int, string, error) {
	var imported int
	snap, err := k.mutate("import", storage.OpenExisting, func(db *storage.DB) error {
		var err error
		imported, err = db.ImportJSON(raw)
		return err
	})
	return imported, snap, err
}

// Day returns the entries of day in insertion order.
func (k *Keeper) Day(day models.Day) ([]*models.Record, error) {
	var records []*models.Record
	err := k.read(func(db *storage.DB) error {
		var err error
		records, err = db.QueryDay(day.Year, day.Ordinal)
		return err
	})
	return records, err
}

// Year returns the entries of year in insertion order.
func (k *Keeper) Year(year uint) ([]*models.Record, error) {
	var records []*models.Record
	err := k.read(func(db *storage.DB) error {
		var err error
		records, err = db.QueryYear(year)
		return err
	})
	return records, err
}

// Export renders the store as json, yaml or markdown. A nil year exports everything.
func (k *Keeper) Export(format string, year *uint) ([]byte, error) {
	var data []byte
	err := k.read(func(db *storage.DB) error {
		var err error
		switch format {
		case "json":
			data, err = db.ExportJSON(year)
		case "yaml":
			data, err = db.ExportYAML(year)
		case "markdown":
			var md string
			md, err = db.ExportMarkdown(year)
			data = []byte(md)
		default:
			err = fmt.Errorf("unknown format: %s (use json, yaml, or markdown)", format)
		}
		return err
	})
	return data, err
}

// Snapshots lists the snapshots of the store, oldest first.
func (k *Keeper) Snapshots() ([]backup.Snapshot, error) {
	return backup.List(k.cfg.BackupFolder, k.cfg.DBPath)
}

// Restore replaces the live store with a snapshot. A bare file name is
// looked up in the backup folder. The current store is snapshotted first
// and that snapshot's path is returned, so the restore can be undone.
func (k *Keeper) Restore(snapshot string) (string, error) {
	if err := backup.CheckDestination(k.cfg.BackupFolder); err != nil {
		return "", err
	}

	if filepath.Base(snapshot) == snapshot {
		snapshot = filepath.Join(k.cfg.BackupFolder, snapshot)
	}

	// Refuse snapshots that are not readable kal stores.
	db, err := storage.OpenReadOnly(snapshot)
	if err != nil {
		return "", fmt.Errorf("open snapshot: %w", err)
	}
	_, err = db.QueryAll()
	_ = db.Close()
	if err != nil {
		return "", fmt.Errorf("read snapshot: %w", err)
	}

	var pre string
	if _, err := os.Stat(k.cfg.DBPath); err == nil {
		pre, err = backup.Take(k.cfg.DBPath, k.cfg.BackupFolder)
		if err != nil {
			return "", err
		}
		k.logger.Debug("pre-restore snapshot taken", "path", pre)
	}

	if err := backup.Restore(snapshot, k.cfg.DBPath); err != nil {
		return pre, err
	}
	k.logger.Info("store restored", "snapshot", snapshot, "store", k.cfg.DBPath)
	return pre, nil
}

// mutate runs fn against the store between the destination check and the
// snapshot. The store is closed before the snapshot so the file is complete.
// A failed snapshot does not undo fn; the error is returned as is.
func (k *Keeper) mutate(op string, open func(string) (*storage.DB, error), fn func(*storage.DB) error) (string, error) {
	if err := backup.CheckDestination(k.cfg.BackupFolder); err != nil {
		k.logger.Debug("backup destination rejected", "op", op, "error", err)
		return "", err
	}

	db, err := open(k.cfg.DBPath)
	if err != nil {
		return "", err
	}
	store := db.Path()
	err = fn(db)
	closeErr := db.Close()
	if err != nil {
		return "", err
	}
	if closeErr != nil {
		return "", fmt.Errorf("close store: %w", closeErr)
	}
	k.logger.Debug("store updated", "op", op, "store", store)

	snap, err := backup.Take(store, k.cfg.BackupFolder)
	if err != nil {
		k.logger.Error("write committed but snapshot failed", "op", op, "error", err)
		return "", err
	}
	k.logger.Debug("snapshot taken", "op", op, "path", snap)
	return snap, nil
}

func (k *Keeper) read(fn func(*storage.DB) error) error {
	db, err := storage.OpenExisting(k.cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}
