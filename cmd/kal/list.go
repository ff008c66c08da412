// ABOUTME: CLI command for listing log entries.
// ABOUTME: Shows one day, or a whole year with --all.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lsAll uint

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list", "l"},
	Short:   "List entries",
	Long: `List the entries of today (or --date), in the order they were logged.

OUTPUT FORMAT:

  YEAR-DAY: category: details

  DAY is the day of the year (1-366). Entries without details show
  <no details>.

EXAMPLES:

  kal ls                      # Today
  kal --date 2024-02-14 ls    # A past day
  kal ls --all 2024           # Every entry of 2024`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		if cmd.Flags().Changed("all") {
			records, err := keeper.Year(lsAll)
			if err != nil {
				return fmt.Errorf("failed to list %d: %w", lsAll, err)
			}
			renderRecords(out, records, fmt.Sprintf("No entries in %d.", lsAll))
			return nil
		}

		day, err := selectedDay()
		if err != nil {
			return err
		}
		records, err := keeper.Day(day)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", day, err)
		}
		renderRecords(out, records, fmt.Sprintf("No entries for %s.", day))
		return nil
	},
}

func init() {
	listCmd.Flags().UintVarP(&lsAll, "all", "a", 0, "list every entry of the given `YEAR`")
	rootCmd.AddCommand(listCmd)
}
