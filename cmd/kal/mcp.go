// ABOUTME: CLI command for starting MCP server.
// ABOUTME: Runs stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/kal/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server for AI assistant integration.

The server communicates via stdin/stdout and uses the same config, database
and backup folder as the CLI. Every write is snapshotted as usual.

CLAUDE DESKTOP CONFIGURATION:

  {
    "mcpServers": {
      "kal": {
        "command": "kal",
        "args": ["mcp"]
      }
    }
  }

AVAILABLE TOOLS:

  log_entry    Log a categorized entry (defaults to today)
  list_day     List the entries of a day
  list_year    List every entry of a year
  reset_day    Delete every entry of a day

AVAILABLE RESOURCES:

  kal://today  Today's entries`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(keeper, version)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		logger.Info("mcp server starting", "db_path", keeper.Config().DBPath)
		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
