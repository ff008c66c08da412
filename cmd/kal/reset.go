// ABOUTME: CLI command for clearing a day.
// ABOUTME: Removes every entry of the selected day and takes a snapshot.
package main

import (
	"errors"
	"fmt"

	"github.com/harperreed/kal/internal/backup"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Remove every entry of today",
	Long: `Remove every entry logged for today, or for the day given with --date.

Resetting a day with no entries is not an error. The database is
snapshotted afterwards, so the previous state stays in the backup folder
and can be brought back with 'kal restore'.

EXAMPLES:

  kal reset
  kal --date 2024-02-14 reset`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		day, err := selectedDay()
		if err != nil {
			return err
		}

		removed, snap, err := keeper.Reset(day)
		if errors.Is(err, backup.ErrSnapshotFailed) {
			return fmt.Errorf("reset of %s (%d removed) was saved but the backup failed: %w", day, removed, err)
		}
		if err != nil {
			return fmt.Errorf("failed to reset %s: %w", day, err)
		}

		removal(out, "Reset %s (%d removed)", day, removed)
		snapshotLine(out, snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
