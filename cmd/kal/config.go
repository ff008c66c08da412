// ABOUTME: CLI commands for inspecting and creating the config file.
// ABOUTME: config init writes defaults and creates the backup folder.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/harperreed/kal/internal/config"
	"github.com/spf13/cobra"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or create the configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		cfg := keeper.Config()

		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if _, err := os.Stat(path); err != nil {
			path += faint.Sprint(" (not found, using defaults)")
		}

		fmt.Fprintf(out, "%s %s\n", padRight("config", 14), path)
		fmt.Fprintf(out, "%s %s\n", padRight("db_path", 14), cfg.DBPath)
		fmt.Fprintf(out, "%s %s\n", padRight("backup_folder", 14), cfg.BackupFolder)
		fmt.Fprintf(out, "%s %s\n", padRight("categories", 14), strings.Join(cfg.Categories, ", "))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write kal.config.toml with default values and create the backup folder.

An existing file is left alone unless --force is given.

EXAMPLES:

  kal config init
  KAL_CONFIG_PATH=~/sync/kal kal config init`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		path := configPath
		if path == "" {
			path = config.GetConfigPath()
		}
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("check config file: %w", err)
		}

		cfg, err := config.Default()
		if err != nil {
			return err
		}
		save := cfg.Save
		if configPath != "" {
			save = func() error { return cfg.SaveTo(configPath) }
		}
		if err := save(); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
		if err := os.MkdirAll(cfg.BackupFolder, 0750); err != nil {
			return fmt.Errorf("failed to create backup folder: %w", err)
		}

		success(out, "Wrote %s", path)
		fmt.Fprintf(out, "  %s %s\n", faint.Sprint("backups in"), cfg.BackupFolder)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing config file")
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
