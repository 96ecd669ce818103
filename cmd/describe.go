package cmd

import (
	"github.com/huangsam/revstamp/core"
	"github.com/huangsam/revstamp/internal/outwriter"
	"github.com/huangsam/revstamp/internal/vcs"
	"github.com/spf13/cobra"
)

// describeCmd summarizes a working copy into a revision token.
var describeCmd = &cobra.Command{
	Use:   "describe [directory]",
	Short: "Summarize the revision range and local status of a working copy.",
	Long: `Describe reads every status record under a directory and renders one token.

The token carries:
- The highest revision found, or a min:max range for mixed working copies
- One marker per local modification kind (M, A, D, ?, !, R, C, ~, X, I, :)
- An out-of-date marker when --report-out-of-date contacts the repository

A second, file-name-safe rendering is always produced alongside it.
Directories outside version control render as 'unversioned'.

Examples:
  # Describe the current directory
  revstamp describe

  # Emit Java-style properties for a build script
  revstamp describe ./module --output properties --property-prefix build.wc

  # Force the git backend and write JSON to a file
  revstamp describe --backend git --output json --output-file revision.json`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		client, err := vcs.NewClient(cfg.Backend)
		if err != nil {
			return err
		}
		return core.ExecuteDescribe(rootCtx, cfg, client, historyManager, outwriter.NewOutWriter(), logger)
	},
}
