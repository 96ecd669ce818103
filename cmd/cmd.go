// Package cmd defines the command-line interface for revstamp.
package cmd

import (
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(describeCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("backend", string(schema.AutoVCS), "Version-control backend: auto or svn or git")
	rootCmd.PersistentFlags().StringP("output", "o", string(schema.TextOut), "Output format: text or json or yaml or csv or properties")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Colorize the revision token: yes or no")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log every status record and skipped item to stderr")
	rootCmd.PersistentFlags().String("history-backend", string(schema.NoneBackend), "History tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname?parseTime=true)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	rootCmd.PersistentFlags().String("env-file", ".env", "Path to a dotenv file with REVSTAMP_* variables")

	// Reporting flags are shared by describe and the MCP server defaults
	report := schema.DefaultReportConfig()
	rootCmd.PersistentFlags().Bool("report-mixed-revisions", report.ReportMixedRevisions, "Render a revision range when the working copy mixes revisions")
	rootCmd.PersistentFlags().Bool("report-status", report.ReportStatus, "Append local status markers to the revision token")
	rootCmd.PersistentFlags().Bool("report-unversioned", report.ReportUnversioned, "Include unversioned items in the status markers")
	rootCmd.PersistentFlags().Bool("report-ignored", report.ReportIgnored, "Include ignored items in the status markers")
	rootCmd.PersistentFlags().Bool("report-out-of-date", report.ReportOutOfDate, "Contact the repository and mark out-of-date working copies")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of describeCmd to Viper
	describeCmd.Flags().String("property-prefix", schema.DefaultPropertyPrefix, "Key prefix for the properties output")
	if err := viper.BindPFlags(describeCmd.Flags()); err != nil {
		contract.LogFatal("Error binding describe flags", err)
	}

	// Bind all persistent flags of historyCmd to Viper
	historyCmd.PersistentFlags().IntP("limit", "l", contract.DefaultHistoryLimit, "Number of runs to display")
	if err := viper.BindPFlags(historyCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding history flags", err)
	}

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}
