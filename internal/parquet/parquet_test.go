package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/revstamp/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []schema.HistoryRecord {
	maxRev, minRev := int64(42), int64(40)
	params := `{"report_mixed_revisions":true}`
	ms := int32(12)
	return []schema.HistoryRecord{
		{
			RunID:                1,
			RunUUID:              "7f1c7a0e-3d4b-4a43-9e0c-2b58f8f0a001",
			RecordedAt:           time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
			Directory:            "/src/app",
			Backend:              schema.SVNVCS,
			Repository:           "svn://host/repo",
			Path:                 "trunk",
			Revision:             "r42-r40 M",
			FileNameSafeRevision: "r42-r40-M",
			MaxRevision:          &maxRev,
			MinRevision:          &minRev,
			Kinds:                "modified,normal",
			ConfigParams:         &params,
			DurationMs:           &ms,
		},
		{
			RunID:                2,
			RunUUID:              "7f1c7a0e-3d4b-4a43-9e0c-2b58f8f0a002",
			RecordedAt:           time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
			Directory:            "/tmp/scratch",
			Backend:              schema.AutoVCS,
			Revision:             schema.UnversionedToken,
			FileNameSafeRevision: schema.UnversionedToken,
		},
	}
}

func TestRunRecordStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(RunRecord))
	require.NotNil(t, s)

	expectedColumns := []string{
		"run_id",
		"run_uuid",
		"recorded_at",
		"directory",
		"backend",
		"repository",
		"wc_path",
		"revision",
		"file_name_safe_revision",
		"max_revision",
		"min_revision",
		"remote_changes",
		"kinds",
		"config_params",
		"run_duration_ms",
	}
	for _, colName := range expectedColumns {
		col, ok := s.Lookup(colName)
		require.True(t, ok, "Column %s should exist in schema", colName)
		require.NotNil(t, col)
	}
}

func TestConvertRunRecords(t *testing.T) {
	history := sampleHistory()
	runs := ConvertRunRecords(history)
	require.Len(t, runs, 2)

	assert.Equal(t, int64(1), runs[0].RunID)
	assert.Equal(t, "svn", runs[0].Backend)
	assert.Equal(t, "trunk", runs[0].Path)
	assert.Equal(t, "r42-r40-M", runs[0].FileNameSafeRevision)
	assert.Equal(t, history[0].MaxRevision, runs[0].MaxRevision)
	assert.Equal(t, history[0].DurationMs, runs[0].RunDurationMs)

	assert.Nil(t, runs[1].MaxRevision)
	assert.Nil(t, runs[1].ConfigParams)
	assert.Equal(t, "unversioned", runs[1].Revision)

	assert.Empty(t, ConvertRunRecords(nil))
}

func TestWriteRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "runs.parquet")
	data := ConvertRunRecords(sampleHistory())

	require.NoError(t, WriteRunsParquet(data, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer file.Close()

	reader := parquet.NewGenericReader[RunRecord](file)
	defer reader.Close()

	readData := make([]RunRecord, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	for i := range data {
		assert.Equal(t, data[i].RunID, readData[i].RunID)
		assert.Equal(t, data[i].RunUUID, readData[i].RunUUID)
		assert.Equal(t, data[i].Revision, readData[i].Revision)
		assert.Equal(t, data[i].RemoteChanges, readData[i].RemoteChanges)
		assert.WithinDuration(t, data[i].RecordedAt, readData[i].RecordedAt, time.Nanosecond)

		if data[i].MaxRevision == nil {
			assert.Nil(t, readData[i].MaxRevision)
		} else {
			require.NotNil(t, readData[i].MaxRevision)
			assert.Equal(t, *data[i].MaxRevision, *readData[i].MaxRevision)
		}
		if data[i].ConfigParams == nil {
			assert.Nil(t, readData[i].ConfigParams)
		} else {
			require.NotNil(t, readData[i].ConfigParams)
			assert.Equal(t, *data[i].ConfigParams, *readData[i].ConfigParams)
		}
	}
}

func TestWriteRunsParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteRunsParquet([]RunRecord{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteRunsParquet_InvalidPath(t *testing.T) {
	err := WriteRunsParquet(ConvertRunRecords(sampleHistory()), "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}
