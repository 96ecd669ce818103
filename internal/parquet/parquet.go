// Package parquet exports recorded revstamp runs to Parquet files
// using github.com/parquet-go/parquet-go.
package parquet

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/schema"
	"github.com/parquet-go/parquet-go"
)

// RunRecord is one recorded describe run. It maps to the revstamp_runs table.
type RunRecord struct {
	// RunID is the store-assigned identifier
	RunID int64 `parquet:"run_id,snappy"`

	// RunUUID is the globally unique run identifier
	RunUUID string `parquet:"run_uuid,snappy"`

	// RecordedAt is when the run finished (TIMESTAMP with nanosecond precision)
	RecordedAt time.Time `parquet:"recorded_at,snappy"`

	Directory  string `parquet:"directory,snappy"`
	Backend    string `parquet:"backend,snappy"`
	Repository string `parquet:"repository,snappy"`
	Path       string `parquet:"wc_path,snappy"`

	// Revision is the standard token, FileNameSafeRevision its file-name-safe twin
	Revision             string `parquet:"revision,snappy"`
	FileNameSafeRevision string `parquet:"file_name_safe_revision,snappy"`

	// MaxRevision and MinRevision are null when no record carried a usable revision
	MaxRevision *int64 `parquet:"max_revision,optional,snappy"`
	MinRevision *int64 `parquet:"min_revision,optional,snappy"`

	RemoteChanges bool   `parquet:"remote_changes,snappy"`
	Kinds         string `parquet:"kinds,snappy"`

	// ConfigParams is the JSON-encoded report configuration (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`
}

// ConvertRunRecords converts history rows to RunRecord for Parquet export.
func ConvertRunRecords(records []schema.HistoryRecord) []RunRecord {
	result := make([]RunRecord, len(records))
	for i, record := range records {
		result[i] = RunRecord{
			RunID:                record.RunID,
			RunUUID:              record.RunUUID,
			RecordedAt:           record.RecordedAt,
			Directory:            record.Directory,
			Backend:              string(record.Backend),
			Repository:           record.Repository,
			Path:                 record.Path,
			Revision:             record.Revision,
			FileNameSafeRevision: record.FileNameSafeRevision,
			MaxRevision:          record.MaxRevision,
			MinRevision:          record.MinRevision,
			RemoteChanges:        record.RemoteChanges,
			Kinds:                record.Kinds,
			ConfigParams:         record.ConfigParams,
			RunDurationMs:        record.DurationMs,
		}
	}
	return result
}

// WriteRunsParquet writes the runs to a Parquet file at outputPath.
func WriteRunsParquet(data []RunRecord, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return errors.Wrapf(err, "failed to create output file %s", outputPath)
	}
	defer func() { _ = file.Close() }()

	// The schema is derived from the RunRecord struct tags
	writer := parquet.NewGenericWriter[RunRecord](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return errors.Wrap(err, "failed to write data to parquet file")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to finalize parquet file")
	}
	return nil
}
