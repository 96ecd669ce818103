package contract

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessAndValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*ConfigRawInput)
		expectError bool
	}{
		{
			name:   "valid minimal config",
			mutate: func(*ConfigRawInput) {},
		},
		{
			name:        "invalid backend",
			mutate:      func(in *ConfigRawInput) { in.Backend = "cvs" },
			expectError: true,
		},
		{
			name:   "backend is case insensitive",
			mutate: func(in *ConfigRawInput) { in.Backend = "SVN" },
		},
		{
			name:        "invalid output",
			mutate:      func(in *ConfigRawInput) { in.Output = "xml" },
			expectError: true,
		},
		{
			name:        "invalid color",
			mutate:      func(in *ConfigRawInput) { in.Color = "maybe" },
			expectError: true,
		},
		{
			name:        "zero limit",
			mutate:      func(in *ConfigRawInput) { in.Limit = 0 },
			expectError: true,
		},
		{
			name:        "limit too large",
			mutate:      func(in *ConfigRawInput) { in.Limit = MaxHistoryLimit + 1 },
			expectError: true,
		},
		{
			name:        "negative width",
			mutate:      func(in *ConfigRawInput) { in.Width = -1 },
			expectError: true,
		},
		{
			name:        "prefix with equals sign",
			mutate:      func(in *ConfigRawInput) { in.PropertyPrefix = "a=b" },
			expectError: true,
		},
		{
			name:        "postgresql history without connection string",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = string(schema.PostgreSQLBackend) },
			expectError: true,
		},
		{
			name: "mysql history with connection string",
			mutate: func(in *ConfigRawInput) {
				in.HistoryBackend = string(schema.MySQLBackend)
				in.HistoryDBConnect = "user:pass@tcp(localhost:3306)/revstamp"
			},
		},
		{
			name:        "unknown history backend",
			mutate:      func(in *ConfigRawInput) { in.HistoryBackend = "redis" },
			expectError: true,
		},
		{
			name:        "missing directory",
			mutate:      func(in *ConfigRawInput) { in.DirectoryStr = filepath.Join(t.TempDir(), "absent") },
			expectError: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := DefaultRawInput()
			tt.mutate(&input)

			cfg := &Config{}
			err := ProcessAndValidate(cfg, &input)
			if tt.expectError {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidConfig), "error should be marked invalid config: %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, input.Limit, cfg.HistoryLimit)
			assert.True(t, filepath.IsAbs(cfg.Directory))
		})
	}
}

func TestProcessAndValidate_Defaults(t *testing.T) {
	input := DefaultRawInput()
	input.Backend = ""
	input.HistoryBackend = ""
	input.PropertyPrefix = "  "

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, &input))

	assert.Equal(t, schema.AutoVCS, cfg.Backend)
	assert.Equal(t, schema.NoneBackend, cfg.HistoryBackend)
	assert.Equal(t, schema.DefaultPropertyPrefix, cfg.PropertyPrefix)
	assert.Equal(t, schema.DefaultReportConfig(), cfg.Report)
	assert.True(t, cfg.UseColors)
}

func TestProcessAndValidate_ReportFlags(t *testing.T) {
	input := DefaultRawInput()
	input.ReportMixedRevisions = false
	input.ReportIgnored = true
	input.ReportOutOfDate = true
	input.Verbose = true
	input.PropertyPrefix = "build.wc."

	cfg := &Config{}
	require.NoError(t, ProcessAndValidate(cfg, &input))

	assert.False(t, cfg.Report.ReportMixedRevisions)
	assert.True(t, cfg.Report.ReportStatus)
	assert.True(t, cfg.Report.ReportIgnored)
	assert.True(t, cfg.Report.ReportOutOfDate)
	assert.True(t, cfg.Report.Verbose)
	assert.Equal(t, "build.wc", cfg.PropertyPrefix)
}

func TestResolveDirectory(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pom.xml")
	require.NoError(t, os.WriteFile(file, []byte("<project/>"), 0o644))

	got, err := ResolveDirectory(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got)

	got, err = ResolveDirectory(file)
	require.NoError(t, err)
	assert.Equal(t, filepath.Clean(dir), got, "a file resolves to its directory")

	wd, err := os.Getwd()
	require.NoError(t, err)
	got, err = ResolveDirectory("")
	require.NoError(t, err)
	assert.Equal(t, wd, got)
}

func TestValidateDatabaseConnectionString(t *testing.T) {
	tests := []struct {
		backend schema.DatabaseBackend
		conn    string
		ok      bool
	}{
		{schema.SQLiteBackend, "", true},
		{schema.NoneBackend, "", true},
		{schema.MySQLBackend, "", false},
		{schema.MySQLBackend, "user:pass@localhost/db", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)", false},
		{schema.MySQLBackend, "user:pass@tcp(localhost:3306)/db", true},
		{schema.PostgreSQLBackend, "dbname=x", false},
		{schema.PostgreSQLBackend, "host=localhost", false},
		{schema.PostgreSQLBackend, "host=localhost dbname=x", true},
	}
	for _, tt := range tests {
		err := ValidateDatabaseConnectionString(tt.backend, tt.conn)
		if tt.ok {
			assert.NoError(t, err, "%s %q", tt.backend, tt.conn)
		} else {
			assert.Error(t, err, "%s %q", tt.backend, tt.conn)
		}
	}
}

func TestConfigClone(t *testing.T) {
	cfg := &Config{Directory: "/wc", Report: schema.DefaultReportConfig()}
	clone := cfg.Clone()
	clone.Directory = "/other"
	clone.Report.ReportIgnored = true

	assert.Equal(t, "/wc", cfg.Directory)
	assert.False(t, cfg.Report.ReportIgnored)
}

func TestProcessProfilingConfig(t *testing.T) {
	var profile ProfileConfig
	require.NoError(t, ProcessProfilingConfig(&profile, ""))
	assert.False(t, profile.Enabled)

	require.NoError(t, ProcessProfilingConfig(&profile, "revstamp-prof"))
	assert.True(t, profile.Enabled)
	assert.Equal(t, "revstamp-prof", profile.Prefix)
}
