// ABOUTME: Tests for database open and schema initialization.
// ABOUTME: Verifies file creation, unavailable stores, and double initialization.
package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/harperreed/kal/internal/models"
)

func TestOpenCreatesFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "kal.db")

	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("expected database file to exist: %v", err)
	}
	if db.Path() != dbPath {
		t.Errorf("Path() = %s, want %s", db.Path(), dbPath)
	}
}

func TestInitializeCreatesSchema(t *testing.T) {
	db := setupTestDB(t)

	var count int
	err := db.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?",
		recordsTable).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 1 {
		t.Errorf("table %s does not exist", recordsTable)
	}

	var columns int
	if err := db.db.QueryRow("SELECT COUNT(*) FROM pragma_table_info('kal_records')").Scan(&columns); err != nil {
		t.Fatalf("query table info: %v", err)
	}
	if columns != 5 {
		t.Errorf("expected 5 columns, got %d", columns)
	}

	var index int
	err = db.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_kal_records_day'").Scan(&index)
	if err != nil {
		t.Fatalf("query index: %v", err)
	}
	if index != 1 {
		t.Error("expected (year, ordinal_day) index to exist")
	}
}

func TestInitializeTwiceFails(t *testing.T) {
	db := setupTestDB(t)

	r := models.NewRecord(models.Day{Year: 2024, Ordinal: 45}, "exercise")
	if err := db.Insert(r); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	err := db.Initialize()
	if !errors.Is(err, ErrSchemaAlreadyExists) {
		t.Fatalf("expected ErrSchemaAlreadyExists, got %v", err)
	}

	records, err := db.QueryDay(2024, 45)
	if err != nil {
		t.Fatalf("QueryDay failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected existing record to survive, got %d records", len(records))
	}
}

func TestInitializeTwiceAcrossHandles(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kal.db")

	first, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := first.Initialize(); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	first.Close()

	second, err := Open(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	if err := second.Initialize(); !errors.Is(err, ErrSchemaAlreadyExists) {
		t.Errorf("expected ErrSchemaAlreadyExists, got %v", err)
	}
}

func TestOpenExistingMissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := OpenExisting(dbPath)
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected cause to be os.ErrNotExist, got %v", err)
	}
	if _, statErr := os.Stat(dbPath); !os.IsNotExist(statErr) {
		t.Error("OpenExisting must not create the file")
	}
}

func TestOpenCorruptFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kal.db")
	garbage := make([]byte, 4096)
	for i := range garbage {
		garbage[i] = 0xAB
	}
	if err := os.WriteFile(dbPath, garbage, 0600); err != nil {
		t.Fatalf("write garbage: %v", err)
	}

	db, err := Open(dbPath)
	if err == nil {
		// Some drivers defer reading the header; the first query must fail then.
		defer db.Close()
		err = db.Initialize()
	}
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestQueryUninitializedStore(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "kal.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if _, err := db.QueryDay(2024, 1); !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestDefaultDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmpDir)

	want := filepath.Join(tmpDir, "kal", "kal.db")
	if got := DefaultDBPath(); got != want {
		t.Errorf("DefaultDBPath() = %s, want %s", got, want)
	}
}

func TestOpenReadOnlyLeavesFileUntouched(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "kal_backup-[2024-02-14_10-30-05].db")
	db, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := db.Insert(models.NewRecord(models.Day{Year: 2024, Ordinal: 45}, "exercise")); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	db.Close()

	if err := os.Chmod(dbPath, 0444); err != nil {
		t.Fatal(err)
	}

	ro, err := OpenReadOnly(dbPath)
	if err != nil {
		t.Fatalf("OpenReadOnly failed: %v", err)
	}
	defer ro.Close()

	records, err := ro.QueryAll()
	if err != nil {
		t.Fatalf("QueryAll failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("expected 1 record, got %d", len(records))
	}

	err = ro.Insert(models.NewRecord(models.Day{Year: 2024, Ordinal: 46}, "reading"))
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Errorf("expected write to fail with ErrStoreUnavailable, got %v", err)
	}

	info, err := os.Stat(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0444 {
		t.Errorf("mode changed to %s", info.Mode().Perm())
	}
}

func TestOpenReadOnlyMissingFile(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "missing.db")

	_, err := OpenReadOnly(dbPath)
	if !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected ErrStoreUnavailable wrapping ErrNotExist, got %v", err)
	}
	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Error("OpenReadOnly must not create the file")
	}
}
