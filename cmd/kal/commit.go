// ABOUTME: CLI command for logging an entry.
// ABOUTME: Takes the category as an argument or from a numbered menu.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/harperreed/kal/internal/backup"
	"github.com/spf13/cobra"
)

var commitDetails string

var commitCmd = &cobra.Command{
	Use:     "commit [category]",
	Aliases: []string{"c", "add"},
	Short:   "Log an entry for today",
	Long: `Log a categorized entry for today, or for the day given with --date.

Without a category argument kal shows a numbered menu of the configured
categories and then asks for details. Leave details empty to log the
category alone.

EXAMPLES:

  kal commit                              # Interactive
  kal commit exercise                     # No details
  kal commit reading -d "30 pages"
  kal --date 2024-02-14 commit work -d "release"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		day, err := selectedDay()
		if err != nil {
			return err
		}

		details := commitDetails
		var category string
		if len(args) == 1 {
			category = args[0]
		} else {
			in := bufio.NewReader(cmd.InOrStdin())
			category, err = promptCategory(in, out, keeper.Config().Categories)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("details") {
				details, err = promptLine(in, out, "Details: ")
				if err != nil {
					return err
				}
			}
		}

		r, snap, err := keeper.Commit(day, category, details)
		if errors.Is(err, backup.ErrSnapshotFailed) {
			return fmt.Errorf("entry %s was saved but the backup failed: %w", r, err)
		}
		if err != nil {
			return fmt.Errorf("failed to log entry: %w", err)
		}

		success(out, "Logged %s", r.Category)
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint(r.Day()), truncate(r.DetailsOr("<no details>"), 60))
		snapshotLine(out, snap)
		return nil
	},
}

// promptCategory shows a numbered menu and reads a choice. The answer may be
// the menu number or the category name itself.
func promptCategory(in *bufio.Reader, out io.Writer, categories []string) (string, error) {
	fmt.Fprintln(out, "Select the category:")
	for i, c := range categories {
		fmt.Fprintf(out, "  %s %s\n", faint.Sprintf("%2d)", i+1), c)
	}

	answer, err := promptLine(in, out, "> ")
	if err != nil {
		return "", err
	}
	if answer == "" {
		return "", errors.New("no category selected")
	}

	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(categories) {
			return "", fmt.Errorf("choice %d is out of range (1-%d)", n, len(categories))
		}
		return categories[n-1], nil
	}
	return answer, nil
}

// promptLine writes label and reads one line. EOF ends the answer.
func promptLine(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func init() {
	commitCmd.Flags().StringVarP(&commitDetails, "details", "d", "", "free-text details for the entry")
	rootCmd.AddCommand(commitCmd)
}
