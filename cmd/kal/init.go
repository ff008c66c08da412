// ABOUTME: CLI command for creating the kal database.
// ABOUTME: Creates the schema once and takes the first snapshot.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the log database",
	Long: `Create the log database at db_path and take its first snapshot.

The backup folder must already exist and be writable. Running init against
a database that already has the log table fails and changes nothing.

EXAMPLES:

  kal init
  KAL_DB_PATH=/tmp/scratch.db kal init`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		snap, err := keeper.Init()
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}

		success(out, "Initialized %s", keeper.Config().DBPath)
		snapshotLine(out, snap)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
