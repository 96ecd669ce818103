// Package core has core logic for describing working-copy revisions.
package core

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
	"go.uber.org/zap"
)

// ErrHistoryDisabled is returned by history commands when no history backend is configured.
var ErrHistoryDisabled = errors.New("history is disabled")

// Describe runs the whole pipeline for cfg.Directory: the versioning check, the location,
// the status aggregation and both tokens. No status is read for an unversioned directory.
func Describe(ctx context.Context, cfg *contract.Config, client contract.VCSClient, logger *zap.Logger) (schema.RevisionInfo, error) {
	builder := NewRevisionInfoBuilder(ctx, cfg, client, logger)
	builder.LogConfiguration()

	if _, err := builder.ResolveVersioning(); err != nil {
		return schema.RevisionInfo{}, err
	}
	if builder.IsVersioned() {
		if _, err := builder.ResolveLocation(); err != nil {
			return schema.RevisionInfo{}, err
		}
		if _, err := builder.CollectStatus(); err != nil {
			return schema.RevisionInfo{}, err
		}
		builder.EncodeTokens()
	}
	builder.LogProperties()

	return builder.GetResult(), nil
}

// ExecuteDescribe describes the configured directory, records the run and prints the result.
// It serves as the main entry point for the 'describe' command.
func ExecuteDescribe(ctx context.Context, cfg *contract.Config, client contract.VCSClient, mgr contract.HistoryManager, writer contract.OutputWriter, logger *zap.Logger) error {
	start := time.Now()
	info, err := Describe(ctx, cfg, client, logger)
	if err != nil {
		return err
	}
	duration := time.Since(start)
	RecordRun(cfg, info, duration, mgr, logger)
	return writer.WriteRevisionInfo(info, cfg, duration)
}

// ExecuteHistoryList prints the most recent recorded runs.
func ExecuteHistoryList(_ context.Context, cfg *contract.Config, mgr contract.HistoryManager, writer contract.OutputWriter) error {
	start := time.Now()
	store := historyStore(mgr)
	if store == nil {
		return errors.WithHint(ErrHistoryDisabled, "set --history-backend to sqlite, mysql or postgresql")
	}
	runs, err := store.List(cfg.HistoryLimit)
	if err != nil {
		return errors.Wrap(err, "cannot list history")
	}
	return writer.WriteHistory(runs, cfg, time.Since(start))
}

func historyStore(mgr contract.HistoryManager) contract.HistoryStore {
	if mgr == nil {
		return nil
	}
	return mgr.GetHistoryStore()
}

// RecordRun stores a completed run. Tracking failures are logged without failing the run.
func RecordRun(cfg *contract.Config, info schema.RevisionInfo, duration time.Duration, mgr contract.HistoryManager, logger *zap.Logger) {
	store := historyStore(mgr)
	if store == nil {
		return
	}
	if _, err := store.Record(NewHistoryRecord(cfg, info, duration)); err != nil && logger != nil {
		logger.Warn("history tracking failed", zap.String("directory", info.Directory), zap.Error(err))
	}
}

// NewHistoryRecord converts a described directory into a history row.
func NewHistoryRecord(cfg *contract.Config, info schema.RevisionInfo, duration time.Duration) schema.HistoryRecord {
	kinds := make([]string, len(info.Kinds))
	for i, k := range info.Kinds {
		kinds[i] = string(k)
	}
	ms := int32(duration.Milliseconds())
	record := schema.HistoryRecord{
		RunUUID:              uuid.NewString(),
		RecordedAt:           time.Now().UTC(),
		Directory:            info.Directory,
		Backend:              info.Backend,
		Repository:           info.Repository,
		Path:                 info.Path,
		Revision:             info.Revision,
		FileNameSafeRevision: info.FileNameSafeRevision,
		MaxRevision:          info.MaxRevision,
		MinRevision:          info.MinRevision,
		RemoteChanges:        info.RemoteChanges,
		Kinds:                strings.Join(kinds, ","),
		DurationMs:           &ms,
	}
	if params, err := json.Marshal(cfg.Report); err == nil {
		s := string(params)
		record.ConfigParams = &s
	}
	return record
}
