// ABOUTME: CLI commands for listing and restoring snapshots.
// ABOUTME: Restore snapshots the current database before replacing it.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backupsCmd = &cobra.Command{
	Use:   "backups",
	Short: "List database snapshots",
	Long: `List the snapshots of the database in the backup folder, oldest first.

Each write (init, commit, reset, import, restore) leaves one snapshot named
<name>_backup-[YYYY-MM-DD_HH-MM-SS].<ext>.

EXAMPLES:

  kal backups`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		snapshots, err := keeper.Snapshots()
		if err != nil {
			return fmt.Errorf("failed to list snapshots: %w", err)
		}
		renderSnapshots(cmd.OutOrStdout(), snapshots)
		return nil
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <snapshot>",
	Short: "Replace the database with a snapshot",
	Long: `Replace the database with one of its snapshots.

The snapshot may be given as a file name from 'kal backups' or as a path.
It must be a readable kal database. The current database is snapshotted
first, so a restore can itself be undone.

EXAMPLES:

  kal restore 'kal_backup-[2024-02-14_10-30-05].db'
  kal restore /mnt/usb/kal_backup-[2024-02-14_10-30-05].db`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		pre, err := keeper.Restore(args[0])
		if err != nil {
			return fmt.Errorf("restore failed: %w", err)
		}

		success(out, "Restored %s", args[0])
		if pre != "" {
			fmt.Fprintf(out, "  %s %s\n", faint.Sprint("previous database saved as"), pre)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(restoreCmd)
}
