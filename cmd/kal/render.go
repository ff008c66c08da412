// ABOUTME: Output helpers shared by kal commands.
// ABOUTME: Renders records and snapshots, plus coloured status lines.
package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/harperreed/kal/internal/backup"
	"github.com/harperreed/kal/internal/models"
)

var (
	faint = color.New(color.Faint)
	green = color.New(color.FgGreen)
	amber = color.New(color.FgYellow)
)

// renderRecords prints one "YEAR-DAY: category: details" line per record.
func renderRecords(w io.Writer, records []*models.Record, empty string) {
	if len(records) == 0 {
		faint.Fprintln(w, empty)
		return
	}
	for _, r := range records {
		fmt.Fprintln(w, r)
	}
}

func renderSnapshots(w io.Writer, snapshots []backup.Snapshot) {
	if len(snapshots) == 0 {
		faint.Fprintln(w, "No snapshots found.")
		return
	}
	for _, s := range snapshots {
		fmt.Fprintf(w, "%s %s %s\n",
			faint.Sprint(s.Taken.Format("2006-01-02 15:04:05")),
			padRight(s.Name, 44),
			faint.Sprint(formatSize(s.Size)))
	}
}

func success(w io.Writer, format string, args ...any) {
	green.Fprintf(w, "✓ "+format+"\n", args...)
}

func removal(w io.Writer, format string, args ...any) {
	amber.Fprintf(w, "✗ "+format+"\n", args...)
}

func snapshotLine(w io.Writer, path string) {
	fmt.Fprintf(w, "  %s %s\n", faint.Sprint("backup"), path)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func padRight(s string, length int) string {
	if len(s) >= length {
		return s
	}
	return s + strings.Repeat(" ", length-len(s))
}
