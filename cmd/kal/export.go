// ABOUTME: CLI commands for exporting and importing log entries.
// ABOUTME: Supports JSON, YAML, and Markdown export formats.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/harperreed/kal/internal/backup"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportYear   uint
)

var exportCmd = &cobra.Command{
	Use:   "export <format>",
	Short: "Export log entries",
	Long: `Export log entries in various formats.

FORMATS:

  json       Full JSON export (can be read back with 'kal import')
  yaml       YAML grouped by day (human-readable)
  markdown   One table per day (for sharing)

OPTIONS:

  --output, -o   Write to file instead of stdout
  --year, -y     Only export entries of this year

EXAMPLES:

  kal export json                   # Everything as JSON
  kal export json -o kal.json       # Save to file
  kal export yaml --year 2024       # One year as YAML
  kal export markdown`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"json", "yaml", "markdown"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var year *uint
		if cmd.Flags().Changed("year") {
			y := exportYear
			year = &y
		}

		data, err := keeper.Export(args[0], year)
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if exportOutput != "" {
			if err := os.WriteFile(exportOutput, data, 0600); err != nil {
				return fmt.Errorf("failed to write file: %w", err)
			}
			success(out, "Exported to %s", exportOutput)
			return nil
		}
		fmt.Fprintln(out, string(data))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import log entries from JSON",
	Long: `Import log entries from a file written by 'kal export json'.

Entries are appended; nothing already in the log is replaced. The whole
file is checked before anything is written, so a bad entry imports nothing.

EXAMPLES:

  kal import kal.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		filename := args[0]

		data, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("failed to read file: %w", err)
		}

		n, snap, err := keeper.Import(data)
		if errors.Is(err, backup.ErrSnapshotFailed) {
			return fmt.Errorf("import of %d entries was saved but the backup failed: %w", n, err)
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		out := cmd.OutOrStdout()
		success(out, "Imported %d entries from %s", n, filename)
		snapshotLine(out, snap)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().UintVarP(&exportYear, "year", "y", 0, "only export this year")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
