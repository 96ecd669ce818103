package contract

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/schema"
)

// Default values for configuration.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 1000
)

// DateTimeFormat is the default date time representation.
var DateTimeFormat = time.RFC3339

// ProfileConfig holds profiling settings.
type ProfileConfig struct {
	Enabled bool
	Prefix  string
}

// Config holds the validated settings for one run.
type Config struct {
	Directory string // Absolute path of the working-copy directory
	Backend   schema.BackendKind

	Report schema.ReportConfig

	Output         schema.OutputMode
	OutputFile     string
	PropertyPrefix string
	Width          int // Terminal width override (0 = auto-detect)
	UseColors      bool

	HistoryBackend   schema.DatabaseBackend
	HistoryDBConnect string // Please use env var as this is plaintext
	HistoryLimit     int
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	DirectoryStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	Backend          string `mapstructure:"backend"`
	Output           string `mapstructure:"output"`
	OutputFile       string `mapstructure:"output-file"`
	Width            int    `mapstructure:"width"`
	Color            string `mapstructure:"color"`
	Verbose          bool   `mapstructure:"verbose"`
	HistoryBackend   string `mapstructure:"history-backend"`
	HistoryDBConnect string `mapstructure:"history-db-connect"`

	// --- Fields from describeCmd.Flags() ---
	ReportMixedRevisions bool   `mapstructure:"report-mixed-revisions"`
	ReportStatus         bool   `mapstructure:"report-status"`
	ReportUnversioned    bool   `mapstructure:"report-unversioned"`
	ReportIgnored        bool   `mapstructure:"report-ignored"`
	ReportOutOfDate      bool   `mapstructure:"report-out-of-date"`
	PropertyPrefix       string `mapstructure:"property-prefix"`

	// --- Fields from historyCmd.PersistentFlags() ---
	Limit int `mapstructure:"limit"`
}

// DefaultRawInput returns the raw input a run gets when nothing is overridden.
func DefaultRawInput() ConfigRawInput {
	report := schema.DefaultReportConfig()
	return ConfigRawInput{
		DirectoryStr:         ".",
		Backend:              string(schema.AutoVCS),
		Output:               string(schema.TextOut),
		Color:                "yes",
		HistoryBackend:       string(schema.NoneBackend),
		ReportMixedRevisions: report.ReportMixedRevisions,
		ReportStatus:         report.ReportStatus,
		ReportUnversioned:    report.ReportUnversioned,
		ReportIgnored:        report.ReportIgnored,
		ReportOutOfDate:      report.ReportOutOfDate,
		PropertyPrefix:       schema.DefaultPropertyPrefix,
		Limit:                DefaultHistoryLimit,
	}
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// ProcessAndValidate processes the raw configuration input and populates the Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := validateHistoryConfigs(cfg, input); err != nil {
		return err
	}
	dir, err := ResolveDirectory(input.DirectoryStr)
	if err != nil {
		return err
	}
	cfg.Directory = dir
	return nil
}

// ResolveDirectory turns a user-provided path into a clean absolute directory path.
// A file resolves to its parent directory.
func ResolveDirectory(path string) (string, error) {
	if path == "" {
		path = "."
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "cannot resolve directory %q", path)
	}
	abs = filepath.Clean(abs)

	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.Mark(errors.Wrapf(err, "directory %q is not accessible", path), ErrInvalidConfig)
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	return abs, nil
}

// ValidateDatabaseConnectionString checks the connection string shape for a history backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return ConfigError("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return ConfigError("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return ConfigError("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return ConfigError("history-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return ConfigError("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return ConfigError("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateHistoryConfigs validates the history backend and its connection string.
func validateHistoryConfigs(cfg *Config, input *ConfigRawInput) error {
	backend := strings.ToLower(input.HistoryBackend)
	if backend == "" {
		backend = string(schema.NoneBackend)
	}
	cfg.HistoryBackend = schema.DatabaseBackend(backend)
	if _, ok := schema.ValidDatabaseBackends[cfg.HistoryBackend]; !ok {
		return ConfigError("invalid history backend '%s'. must be sqlite, mysql, postgresql, none", input.HistoryBackend)
	}
	cfg.HistoryDBConnect = input.HistoryDBConnect
	return ValidateDatabaseConnectionString(cfg.HistoryBackend, cfg.HistoryDBConnect)
}

// validateSimpleInputs processes and validates all non-path related fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	// --- 0. Transfer simple non-validated fields from input -> cfg ---
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Report = schema.ReportConfig{
		ReportMixedRevisions: input.ReportMixedRevisions,
		ReportStatus:         input.ReportStatus,
		ReportUnversioned:    input.ReportUnversioned,
		ReportIgnored:        input.ReportIgnored,
		ReportOutOfDate:      input.ReportOutOfDate,
		Verbose:              input.Verbose,
	}

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "invalid --color value"), ErrInvalidConfig)
	}
	cfg.UseColors = colors

	// --- 1. Backend Validation ---
	cfg.Backend = schema.BackendKind(strings.ToLower(input.Backend))
	if cfg.Backend == "" {
		cfg.Backend = schema.AutoVCS
	}
	if _, ok := schema.ValidBackendKinds[cfg.Backend]; !ok {
		return ConfigError("invalid backend '%s'. must be auto, svn, git", input.Backend)
	}

	// --- 2. Output Validation ---
	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return ConfigError("invalid output format '%s'. must be text, json, yaml, csv, properties", input.Output)
	}

	// --- 3. Property Prefix ---
	cfg.PropertyPrefix = strings.TrimSuffix(strings.TrimSpace(input.PropertyPrefix), ".")
	if cfg.PropertyPrefix == "" {
		cfg.PropertyPrefix = schema.DefaultPropertyPrefix
	}
	if strings.ContainsAny(cfg.PropertyPrefix, " =:") {
		return ConfigError("property prefix '%s' must not contain spaces, '=' or ':'", cfg.PropertyPrefix)
	}

	// --- 4. Limit Validation ---
	if input.Limit <= 0 || input.Limit > MaxHistoryLimit {
		return ConfigError("limit must be greater than 0 and cannot exceed %d (received %d)", MaxHistoryLimit, input.Limit)
	}
	cfg.HistoryLimit = input.Limit

	if cfg.Width < 0 {
		return ConfigError("width cannot be negative (received %d)", cfg.Width)
	}
	return nil
}

// ProcessProfilingConfig handles the profiling flag and sets up profiling configuration.
func ProcessProfilingConfig(profile *ProfileConfig, profilePrefix string) error {
	if profilePrefix != "" {
		profile.Enabled = true
		profile.Prefix = profilePrefix
	}
	return nil
}
