package core

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func testConfig() *contract.Config {
	return &contract.Config{
		Directory:      "/work/app",
		Backend:        schema.SVNVCS,
		Report:         schema.DefaultReportConfig(),
		Output:         schema.TextOut,
		PropertyPrefix: schema.DefaultPropertyPrefix,
		HistoryLimit:   contract.DefaultHistoryLimit,
	}
}

func observed(level zapcore.Level) (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return zap.New(core), logs
}

func versionedClient(ctx context.Context, opts contract.StatusOptions, records []schema.StatusRecord, failure error) *contract.MockVCSClient {
	client := &contract.MockVCSClient{}
	client.On("Kind").Return(schema.SVNVCS)
	client.On("IsVersionedDirectory", ctx, "/work/app").Return(true, nil)
	client.On("ResolveRootAndPath", ctx, "/work/app").Return("https://svn.example.org/repos/app", "trunk", nil)
	client.On("StreamStatus", ctx, "/work/app", opts).Return(records, failure)
	return client
}

func TestDescribe_Unversioned(t *testing.T) {
	ctx := context.Background()
	client := &contract.MockVCSClient{}
	client.On("Kind").Return(schema.SVNVCS)
	client.On("IsVersionedDirectory", ctx, "/work/app").Return(false, nil)

	info, err := Describe(ctx, testConfig(), client, nil)
	require.NoError(t, err)

	assert.False(t, info.Versioned)
	assert.Equal(t, schema.UnversionedToken, info.Revision)
	assert.Equal(t, schema.UnversionedToken, info.FileNameSafeRevision)
	assert.Empty(t, info.Repository)
	assert.Empty(t, info.Path)
	client.AssertNotCalled(t, "ResolveRootAndPath", mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "StreamStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestDescribe_ModifiedFile(t *testing.T) {
	ctx := context.Background()
	records := []schema.StatusRecord{
		{Path: ".", Revision: 42, ContentStatus: schema.StatusNormal, PropertyStatus: schema.StatusNone},
		{Path: "Main.java", Revision: 42, ContentStatus: schema.StatusModified, PropertyStatus: schema.StatusNormal},
	}
	client := versionedClient(ctx, contract.StatusOptions{}, records, nil)

	info, err := Describe(ctx, testConfig(), client, nil)
	require.NoError(t, err)

	assert.True(t, info.Versioned)
	assert.Equal(t, "https://svn.example.org/repos/app", info.Repository)
	assert.Equal(t, "trunk", info.Path)
	assert.Equal(t, "r42 M", info.Revision)
	assert.Equal(t, "r42-M", info.FileNameSafeRevision)
	require.NotNil(t, info.MaxRevision)
	assert.Equal(t, int64(42), *info.MaxRevision)
	assert.Equal(t, 2, info.Records)
	assert.Equal(t, schema.SVNVCS, info.Backend)
	client.AssertExpectations(t)
}

func TestDescribe_RequestsRemoteAndIgnoredOnlyWhenReported(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Report.ReportOutOfDate = true
	cfg.Report.ReportIgnored = true
	records := []schema.StatusRecord{
		{Path: ".", Revision: 10, ContentStatus: schema.StatusNormal, RemoteContentStatus: schema.StatusModified},
		{Path: "target", Revision: -1, ContentStatus: schema.StatusIgnored},
	}
	client := versionedClient(ctx, contract.StatusOptions{ContactRemote: true, IncludeIgnored: true}, records, nil)

	info, err := Describe(ctx, cfg, client, nil)
	require.NoError(t, err)
	assert.Equal(t, "r10 I*", info.Revision)
	assert.Equal(t, "r10-id", info.FileNameSafeRevision)
	assert.True(t, info.RemoteChanges)
	client.AssertExpectations(t)
}

func TestDescribe_VerboseTrace(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.Report.Verbose = true
	records := []schema.StatusRecord{
		{Path: "src/main.go", Revision: 42, ContentStatus: schema.StatusModified, PropertyStatus: schema.StatusNone},
	}
	client := versionedClient(ctx, contract.StatusOptions{}, records, nil)
	logger, logs := observed(zapcore.InfoLevel)

	_, err := Describe(ctx, cfg, client, logger)
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("configuration").Len())
	assert.Equal(t, 1, logs.FilterMessage("M       42 src/main.go").Len())
	assert.Equal(t, 1, logs.FilterMessage("${workingCopyDirectory.revision} is set to r42 M").Len())
	assert.Equal(t, 1, logs.FilterMessage("${workingCopyDirectory.fileNameSafeRevision} is set to r42-M").Len())
	assert.Equal(t, 1, logs.FilterMessage("${workingCopyDirectory.repository} is set to https://svn.example.org/repos/app").Len())
}

func TestDescribe_QuietLoggerSkipsTrace(t *testing.T) {
	ctx := context.Background()
	records := []schema.StatusRecord{{Path: "a", Revision: 1, ContentStatus: schema.StatusNormal}}
	client := versionedClient(ctx, contract.StatusOptions{}, records, nil)
	logger, logs := observed(zapcore.WarnLevel)

	_, err := Describe(ctx, testConfig(), client, logger)
	require.NoError(t, err)
	assert.Zero(t, logs.Len())
}

func TestDescribe_UnrecognizedKindsWarn(t *testing.T) {
	ctx := context.Background()
	records := []schema.StatusRecord{
		{Path: "a", Revision: 8, ContentStatus: schema.StatusModified, PropertyStatus: "merged"},
	}
	client := versionedClient(ctx, contract.StatusOptions{}, records, nil)
	logger, logs := observed(zapcore.WarnLevel)

	info, err := Describe(ctx, testConfig(), client, logger)
	require.NoError(t, err)
	assert.Equal(t, "r8 M", info.Revision)
	assert.Equal(t, []schema.StatusKind{"merged"}, info.Unrecognized)

	warnings := logs.FilterMessage("unprocessed status kinds").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, zapcore.WarnLevel, warnings[0].Level)
	assert.Equal(t, []any{"merged"}, warnings[0].ContextMap()["kinds"])
}

func TestDescribe_BackendFailure(t *testing.T) {
	ctx := context.Background()
	failure := contract.BackendError(errors.New("svn: E155037: Previous operation has not finished"), "status")
	records := []schema.StatusRecord{{Path: "a", Revision: 3, ContentStatus: schema.StatusNormal}}
	client := versionedClient(ctx, contract.StatusOptions{}, records, failure)

	info, err := Describe(ctx, testConfig(), client, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrBackend))
	assert.Contains(t, err.Error(), "E155037", "backend message is kept")
	assert.Empty(t, info.Revision, "no partial token")
}

func TestDescribe_VersionCheckFailure(t *testing.T) {
	ctx := context.Background()
	client := &contract.MockVCSClient{}
	client.On("Kind").Return(schema.SVNVCS)
	client.On("IsVersionedDirectory", ctx, "/work/app").Return(false, contract.BackendError(errors.New("boom"), "info"))

	_, err := Describe(ctx, testConfig(), client, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, contract.ErrBackend))
}

func TestExecuteDescribe_RecordsAndWrites(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	records := []schema.StatusRecord{{Path: ".", Revision: 5, ContentStatus: schema.StatusNormal}}
	client := versionedClient(ctx, contract.StatusOptions{}, records, nil)

	store := &contract.MockHistoryStore{}
	store.On("Record", mock.MatchedBy(func(r schema.HistoryRecord) bool {
		return r.Revision == "r5" && r.Directory == "/work/app" && r.RunUUID != ""
	})).Return(int64(1), nil)
	mgr := &contract.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)
	writer := &contract.MockOutputWriter{}
	writer.On("WriteRevisionInfo", mock.MatchedBy(func(i schema.RevisionInfo) bool {
		return i.Revision == "r5"
	}), cfg, mock.Anything).Return(nil)

	require.NoError(t, ExecuteDescribe(ctx, cfg, client, mgr, writer, zap.NewNop()))
	store.AssertExpectations(t)
	writer.AssertExpectations(t)
}

func TestExecuteDescribe_TrackingFailureIsNotFatal(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	client := &contract.MockVCSClient{}
	client.On("Kind").Return(schema.SVNVCS)
	client.On("IsVersionedDirectory", ctx, "/work/app").Return(false, nil)

	store := &contract.MockHistoryStore{}
	store.On("Record", mock.Anything).Return(int64(0), errors.New("database is locked"))
	mgr := &contract.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)
	writer := &contract.MockOutputWriter{}
	writer.On("WriteRevisionInfo", mock.Anything, cfg, mock.Anything).Return(nil)
	logger, logs := observed(zapcore.WarnLevel)

	require.NoError(t, ExecuteDescribe(ctx, cfg, client, mgr, writer, logger))
	assert.Equal(t, 1, logs.FilterMessage("history tracking failed").Len())
}

func TestExecuteDescribe_NoHistory(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	client := &contract.MockVCSClient{}
	client.On("Kind").Return(schema.GitVCS)
	client.On("IsVersionedDirectory", ctx, "/work/app").Return(false, nil)
	writer := &contract.MockOutputWriter{}
	writer.On("WriteRevisionInfo", mock.Anything, cfg, mock.Anything).Return(nil)

	require.NoError(t, ExecuteDescribe(ctx, cfg, client, nil, writer, nil))
	writer.AssertExpectations(t)
}

func TestExecuteHistoryList(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.HistoryLimit = 5

	err := ExecuteHistoryList(ctx, cfg, nil, &contract.MockOutputWriter{})
	assert.True(t, errors.Is(err, ErrHistoryDisabled))

	runs := []schema.HistoryRecord{{RunID: 2, Revision: "r9"}, {RunID: 1, Revision: "r8"}}
	store := &contract.MockHistoryStore{}
	store.On("List", 5).Return(runs, nil)
	mgr := &contract.MockHistoryManager{}
	mgr.On("GetHistoryStore").Return(store)
	writer := &contract.MockOutputWriter{}
	writer.On("WriteHistory", runs, cfg, mock.Anything).Return(nil)

	require.NoError(t, ExecuteHistoryList(ctx, cfg, mgr, writer))
	writer.AssertExpectations(t)
}

func TestNewHistoryRecord(t *testing.T) {
	cfg := testConfig()
	maxRev, minRev := int64(9), int64(2)
	info := schema.RevisionInfo{
		Directory:            "/work/app",
		Backend:              schema.SVNVCS,
		Versioned:            true,
		Repository:           "svn://host/repo",
		Path:                 "trunk",
		Revision:             "r9-r2 M",
		FileNameSafeRevision: "r9-r2-M",
		MaxRevision:          &maxRev,
		MinRevision:          &minRev,
		Kinds:                []schema.StatusKind{schema.StatusModified, schema.StatusNormal},
	}

	record := NewHistoryRecord(cfg, info, 1500*time.Millisecond)
	assert.Equal(t, "modified,normal", record.Kinds)
	assert.Equal(t, "r9-r2-M", record.FileNameSafeRevision)
	assert.Len(t, record.RunUUID, 36)
	require.NotNil(t, record.DurationMs)
	assert.Equal(t, int32(1500), *record.DurationMs)
	require.NotNil(t, record.ConfigParams)

	var params schema.ReportConfig
	require.NoError(t, json.Unmarshal([]byte(*record.ConfigParams), &params))
	assert.Equal(t, cfg.Report, params)
}
