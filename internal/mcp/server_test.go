// ABOUTME: Tests for MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and the today resource.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/kal/internal/backup"
	"github.com/harperreed/kal/internal/config"
	"github.com/harperreed/kal/internal/logbook"
	"github.com/harperreed/kal/internal/logging"
	"github.com/harperreed/kal/internal/storage"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var fixedNow = time.Date(2024, time.February, 14, 9, 0, 0, 0, time.Local)

// setupTestServer creates an initialized store and backup folder in a temp directory.
func setupTestServer(t *testing.T) *Server {
	t.Helper()

	tmpDir := t.TempDir()
	backups := filepath.Join(tmpDir, "backups")
	if err := os.Mkdir(backups, 0755); err != nil {
		t.Fatalf("Failed to create backup dir: %v", err)
	}

	cfg := &config.Config{
		DBPath:       filepath.Join(tmpDir, "kal.db"),
		BackupFolder: backups,
		Categories:   []string{"exercise", "reading"},
	}
	keeper := logbook.New(cfg, logging.Discard())
	if _, err := keeper.Init(); err != nil {
		t.Fatalf("Failed to init store: %v", err)
	}

	server, err := NewServer(keeper, "test")
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	server.now = func() time.Time { return fixedNow }
	return server
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)

	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.keeper == nil {
		t.Error("Expected non-nil keeper")
	}
}

func TestHandleLogEntry(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		input     logEntryInput
		wantDay   uint
		errSubstr string
	}{
		{
			name:    "defaults to today",
			input:   logEntryInput{Category: "exercise"},
			wantDay: 45,
		},
		{
			name:    "explicit date with details",
			input:   logEntryInput{Category: "reading", Details: "30 pages", Date: "2024-03-01"},
			wantDay: 61,
		},
		{
			name:      "unknown category",
			input:     logEntryInput{Category: "gaming"},
			errSubstr: "unknown category",
		},
		{
			name:      "bad date",
			input:     logEntryInput{Category: "exercise", Date: "yesterday"},
			errSubstr: "invalid date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, output, err := server.handleLogEntry(ctx, &mcp.CallToolRequest{}, tt.input)

			if tt.errSubstr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.errSubstr) {
					t.Fatalf("Expected error containing %q, got %v", tt.errSubstr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if output.OrdinalDay != tt.wantDay || output.Year != 2024 {
				t.Errorf("Logged on %d-%d, want 2024-%d", output.Year, output.OrdinalDay, tt.wantDay)
			}
			if output.Snapshot == "" {
				t.Error("Expected a snapshot path")
			}
		})
	}
}

func TestHandleListDayAndYear(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	for _, in := range []logEntryInput{
		{Category: "exercise"},
		{Category: "reading", Date: "2024-06-01"},
		{Category: "reading", Details: "evening"},
	} {
		if _, _, err := server.handleLogEntry(ctx, &mcp.CallToolRequest{}, in); err != nil {
			t.Fatalf("log entry: %v", err)
		}
	}

	_, day, err := server.handleListDay(ctx, &mcp.CallToolRequest{}, dayInput{})
	if err != nil {
		t.Fatalf("handleListDay failed: %v", err)
	}
	if day.Count != 2 {
		t.Fatalf("Expected 2 entries today, got %d", day.Count)
	}
	if day.Records[1].DetailsOr("") != "evening" {
		t.Errorf("Expected insertion order, got %v", day.Records)
	}

	_, year, err := server.handleListYear(ctx, &mcp.CallToolRequest{}, yearInput{})
	if err != nil {
		t.Fatalf("handleListYear failed: %v", err)
	}
	if year.Count != 3 {
		t.Errorf("Expected 3 entries in 2024, got %d", year.Count)
	}

	_, empty, err := server.handleListYear(ctx, &mcp.CallToolRequest{}, yearInput{Year: 1999})
	if err != nil {
		t.Fatalf("handleListYear failed: %v", err)
	}
	if empty.Count != 0 || empty.Records == nil {
		t.Errorf("Expected empty non-nil list, got %+v", empty)
	}
}

func TestHandleResetDay(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogEntry(ctx, &mcp.CallToolRequest{}, logEntryInput{Category: "exercise"}); err != nil {
		t.Fatalf("log entry: %v", err)
	}

	if _, _, err := server.handleResetDay(ctx, &mcp.CallToolRequest{}, dayInput{}); err == nil {
		t.Error("Expected reset without date to fail")
	}

	_, out, err := server.handleResetDay(ctx, &mcp.CallToolRequest{}, dayInput{Date: "2024-02-14"})
	if err != nil {
		t.Fatalf("handleResetDay failed: %v", err)
	}
	if out.Removed != 1 {
		t.Errorf("Expected 1 removed, got %d", out.Removed)
	}

	_, day, _ := server.handleListDay(ctx, &mcp.CallToolRequest{}, dayInput{})
	if day.Count != 0 {
		t.Errorf("Expected empty day after reset, got %d", day.Count)
	}
}

func TestLogEntryBlockedByMissingBackupFolder(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	cfg := server.keeper.Config()
	if err := os.RemoveAll(cfg.BackupFolder); err != nil {
		t.Fatal(err)
	}

	_, _, err := server.handleLogEntry(ctx, &mcp.CallToolRequest{}, logEntryInput{Category: "exercise"})
	if err == nil {
		t.Fatal("Expected error when backup folder is missing")
	}

	_, day, err := server.handleListDay(ctx, &mcp.CallToolRequest{}, dayInput{})
	if err != nil {
		t.Fatalf("handleListDay failed: %v", err)
	}
	if day.Count != 0 {
		t.Errorf("Blocked write must not reach the store, got %d entries", day.Count)
	}
}

func TestHandleTodayResource(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogEntry(ctx, &mcp.CallToolRequest{}, logEntryInput{Category: "reading", Details: "novel"}); err != nil {
		t.Fatalf("log entry: %v", err)
	}

	result, err := server.handleTodayResource(ctx, &mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("handleTodayResource failed: %v", err)
	}
	if len(result.Contents) != 1 || result.Contents[0].URI != todayURI {
		t.Fatalf("Unexpected contents: %+v", result.Contents)
	}

	var body struct {
		Date       string `json:"date"`
		OrdinalDay uint   `json:"ordinal_day"`
		Count      int    `json:"count"`
	}
	if err := json.Unmarshal([]byte(result.Contents[0].Text), &body); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	if body.Date != "2024-02-14" || body.OrdinalDay != 45 || body.Count != 1 {
		t.Errorf("Unexpected body: %+v", body)
	}
}

func TestListDayUninitializedStore(t *testing.T) {
	server := setupTestServer(t)
	cfg := server.keeper.Config()
	cfg.DBPath = filepath.Join(t.TempDir(), "absent.db")

	_, _, err := server.handleListDay(context.Background(), &mcp.CallToolRequest{}, dayInput{})
	if err == nil {
		t.Fatal("Expected error for missing store")
	}
	if !errors.Is(err, storage.ErrStoreUnavailable) {
		t.Errorf("Expected ErrStoreUnavailable, got %v", err)
	}
}

func TestLogEntryReportsSavedEntryWhenSnapshotFails(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()
	cfg := server.keeper.Config()

	// Take every snapshot name the store could get in the next few seconds.
	now := time.Now()
	for s := -1; s <= 10; s++ {
		for seq := 0; seq <= 99; seq++ {
			name := backup.SnapshotName(cfg.DBPath, now.Add(time.Duration(s)*time.Second), seq)
			f, err := os.OpenFile(filepath.Join(cfg.BackupFolder, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			if err != nil {
				t.Fatal(err)
			}
			f.Close()
		}
	}

	_, _, err := server.handleLogEntry(ctx, &mcp.CallToolRequest{}, logEntryInput{Category: "exercise"})
	if !errors.Is(err, backup.ErrSnapshotFailed) {
		t.Fatalf("Expected ErrSnapshotFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), "was saved but the backup failed") {
		t.Errorf("Expected saved-entry message, got %v", err)
	}

	_, day, err := server.handleListDay(ctx, &mcp.CallToolRequest{}, dayInput{})
	if err != nil {
		t.Fatalf("handleListDay failed: %v", err)
	}
	if day.Count != 1 {
		t.Errorf("Expected the entry to be kept, got %d", day.Count)
	}
}
