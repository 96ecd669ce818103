package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/core"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/internal/history"
	"github.com/huangsam/revstamp/internal/outwriter"
	"github.com/huangsam/revstamp/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historyConfig loads the minimal history settings from config file, env and flags.
func historyConfig() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backendStr := viper.GetString("history-backend")
	connStr := viper.GetString("history-db-connect")

	// Handle empty backend as NoneBackend
	backend := schema.NoneBackend
	if backendStr != "" {
		backend = schema.DatabaseBackend(backendStr)
	}
	if _, ok := schema.ValidDatabaseBackends[backend]; !ok {
		return contract.ConfigError("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", backendStr)
	}
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.HistoryBackend = backend
	cfg.HistoryDBConnect = connStr
	cfg.OutputFile = viper.GetString("output-file")
	return nil
}

// historySetup loads history settings and opens the store.
// This is used by commands that need history access without full shared setup.
func historySetup() error {
	if err := historyConfig(); err != nil {
		return err
	}
	if err := history.InitHistory(cfg.HistoryBackend, cfg.HistoryDBConnect); err != nil {
		return errors.Wrap(err, "failed to initialize history")
	}
	historyManager = history.Manager
	return nil
}

// historySetupWrapper wraps historySetup to provide PreRunE for history commands.
func historySetupWrapper(_ *cobra.Command, _ []string) error {
	return historySetup()
}

// historyMaintenanceSetupWrapper loads history settings without opening the store,
// so that migrations and clears work on fresh or partially migrated databases.
func historyMaintenanceSetupWrapper(_ *cobra.Command, _ []string) error {
	if err := historyConfig(); err != nil {
		return err
	}
	if cfg.HistoryBackend == schema.SQLiteBackend && cfg.HistoryDBConnect == "" {
		cfg.HistoryDBConnect = contract.GetHistoryDBFilePath()
	}
	return nil
}

// requireHistoryStore returns the open store or a hinted error when tracking is off.
func requireHistoryStore() (contract.HistoryStore, error) {
	if historyManager == nil || historyManager.GetHistoryStore() == nil {
		return nil, errors.WithHint(core.ErrHistoryDisabled, "set --history-backend to sqlite, mysql or postgresql")
	}
	return historyManager.GetHistoryStore(), nil
}

// historyCmd focused on recorded describe runs.
//
// Note: status, clear, export and migrate use minimal initialization instead of
// the full sharedSetup. This avoids directory validation for simple maintenance.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage recorded describe runs and exports",
	Long: `Manage the history of describe runs.

When enabled with --history-backend, revstamp records every describe run:
- Directory, backend and repository root
- Both renderings of the revision token
- Revision range, status kinds and remote changes
- Run configuration and duration

Supported backends: SQLite, MySQL, PostgreSQL, or None (default, disabled)

Subcommands:
  list    - Show the most recent runs
  status  - Show history statistics
  export  - Export runs to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Examples:
  # Show the last 5 runs
  revstamp history list --history-backend sqlite --limit 5

  # Export for analysis in pandas/DuckDB
  revstamp history export --history-backend sqlite --output-file runs.parquet`,
}

// historyListCmd prints the most recent runs.
var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the most recently recorded runs",
	Long: `List recorded describe runs, newest first.

Honors --output for text, json, yaml and csv renderings.

Examples:
  # Show the last 20 runs as a table
  revstamp history list --history-backend sqlite

  # Dump runs as JSON
  revstamp history list --history-backend sqlite --output json --limit 100`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteHistoryList(rootCtx, cfg, historyManager, outwriter.NewOutWriter())
	},
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show information about recorded describe runs.

Displays:
- Backend type and connection status
- Total number of runs stored
- Last and oldest run timestamps
- Number of distinct directories described

Examples:
  # Check history status
  revstamp history status --history-backend sqlite`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := requireHistoryStore()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		status.Backend = string(cfg.HistoryBackend)
		history.PrintHistoryStatus(os.Stdout, status)
	},
}

// historyClearCmd removes all recorded runs.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete every recorded run from the history backend.

For SQLite the database file is removed. For MySQL and PostgreSQL the
runs table and the migrations table are dropped.

Examples:
  # Export before clearing
  revstamp history export --history-backend sqlite --output-file backup.parquet
  revstamp history clear --history-backend sqlite`,
	PreRunE: historyMaintenanceSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := history.ClearHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, cfg.HistoryDBConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyExportCmd exports recorded runs to a Parquet file.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet for BI tools and analytics",
	Long: `Export all recorded runs to a single Parquet file.

Requires: --output-file parameter

Examples:
  # Export all runs
  revstamp history export --history-backend sqlite --output-file runs.parquet

  # Use with DuckDB for analysis
  duckdb -c "SELECT revision, count(*) FROM read_parquet('runs.parquet') GROUP BY 1"`,
	PreRunE: historySetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store, err := requireHistoryStore()
		if err != nil {
			contract.LogFatal("Failed to export history", err)
		}
		if err := history.ExportHistory(store, cfg.OutputFile, os.Stdout); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyMigrateCmd runs database migrations for the history store.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the history store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  revstamp history migrate --history-backend postgresql --history-db-connect "host=localhost dbname=revstamp"

  # Migrate to specific version
  revstamp history migrate --history-backend sqlite --target-version 1

  # Rollback to initial state
  revstamp history migrate --history-backend sqlite --target-version 0`,
	PreRunE: historyMaintenanceSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := history.MigrateHistory(cfg.HistoryBackend, cfg.HistoryDBConnect, targetVersion, os.Stdout); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
