// ABOUTME: Root Cobra command for kal CLI.
// ABOUTME: Loads config and builds the Keeper in PersistentPreRunE.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/harperreed/kal/internal/config"
	"github.com/harperreed/kal/internal/logbook"
	"github.com/harperreed/kal/internal/logging"
	"github.com/harperreed/kal/internal/models"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	keeper     *logbook.Keeper
	logger     *slog.Logger
	configPath string
	dateFlag   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:     "kal",
	Short:   "Daily log keeper",
	Version: version,
	Long: `kal keeps a daily log of categorized entries in a local SQLite file.

Every change to the log is followed by a timestamped copy of the database
in your backup folder. If the backup folder is missing or not writable the
change is refused before anything is written.

QUICK START:

  $ kal config init                 # Write a default config file
  $ kal init                        # Create the database
  $ kal commit exercise -d "5k run" # Log an entry for today
  $ kal commit                      # Pick a category from a menu
  $ kal ls                          # Show today's entries
  $ kal ls --all 2024               # Show every entry of 2024
  $ kal reset                       # Clear today's entries

PAST DAYS:

  $ kal --date 2024-02-14 commit reading -d "30 pages"
  $ kal --date 2024-02-14 ls

BACKUPS:

  $ kal backups                     # List snapshots, oldest first
  $ kal restore 'kal_backup-[2024-02-14_10-30-05].db'

CONFIGURATION:

  kal reads kal.config.toml from $KAL_CONFIG_PATH, or ~/.config/kal.
  Keys: db_path, backup_folder, categories.
  KAL_DB_PATH and KAL_BACKUP_FOLDER override the file.

MCP INTEGRATION:

  Run 'kal mcp' to start the Model Context Protocol server:

  {
    "mcpServers": {
      "kal": { "command": "kal", "args": ["mcp"] }
    }
  }`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config for commands that don't need it
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd == configInitCmd {
			return nil
		}

		logger = logging.New(os.Stderr, verbose)

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Debug("configuration loaded", "db_path", cfg.DBPath, "backup_folder", cfg.BackupFolder)

		keeper = logbook.New(cfg, logger)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.Load()
}

// selectedDay returns the day named by --date, or today.
func selectedDay() (models.Day, error) {
	if dateFlag == "" {
		return models.DayOf(time.Now()), nil
	}
	day, err := models.ParseDate(dateFlag)
	if err != nil {
		return models.Day{}, fmt.Errorf("--date: %w", err)
	}
	return day, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $KAL_CONFIG_PATH/kal.config.toml)")
	rootCmd.PersistentFlags().StringVar(&dateFlag, "date", "", "day to act on (YYYY-MM-DD, default: today)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging on stderr")
}
