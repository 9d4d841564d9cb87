package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/joescharf/boardcfg/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server",
	Long: `Start an MCP (Model Context Protocol) server on stdio, so assistants
can read, validate and auto-detect the board configuration. Configure with:

  {
    "mcpServers": {
      "boardcfg": { "command": "boardcfg", "args": ["mcp"] }
    }
  }

Available tools: boardcfg_get_configuration, boardcfg_validate,
boardcfg_suggest, boardcfg_auto_detect`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol; logs go to stderr.
		svc, err := getService(newLogger(os.Stderr, true))
		if err != nil {
			return err
		}
		return mcp.NewServer(svc, buildVersion).ServeStdio(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
