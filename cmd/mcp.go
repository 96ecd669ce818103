package cmd

import (
	"github.com/huangsam/revstamp/internal/mcp"
	"github.com/huangsam/revstamp/internal/vcs"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [directory]",
	Short: "Start the revstamp MCP server",
	Long: `Launch an MCP server over stdio that lets agents describe working copies
and read recorded runs via standard tools.

Flags given here become the defaults for every tool call.`,
	Args: cobra.MaximumNArgs(1),
	// Diagnostics go to stderr so that stdout stays reserved for the protocol
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, historyManager, vcs.NewClient, logger)
	},
}
