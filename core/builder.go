package core

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/huangsam/revstamp/core/agg"
	"github.com/huangsam/revstamp/core/token"
	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RevisionInfoBuilder builds the revision info of one directory using a builder pattern.
type RevisionInfoBuilder struct {
	ctx     context.Context
	cfg     *contract.Config
	client  contract.VCSClient
	logger  *zap.Logger
	result  schema.AggregationResult
	records int
	info    schema.RevisionInfo
}

// NewRevisionInfoBuilder creates a new builder for the directory in cfg.
func NewRevisionInfoBuilder(ctx context.Context, cfg *contract.Config, client contract.VCSClient, logger *zap.Logger) *RevisionInfoBuilder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RevisionInfoBuilder{
		ctx:    ctx,
		cfg:    cfg,
		client: client,
		logger: logger,
		info: schema.RevisionInfo{
			Directory: cfg.Directory,
			Backend:   client.Kind(),
			Config:    cfg.Report,
		},
	}
}

// LogConfiguration writes the effective settings at info level.
func (b *RevisionInfoBuilder) LogConfiguration() *RevisionInfoBuilder {
	r := b.cfg.Report
	b.logger.Info("configuration",
		zap.String("directory", b.cfg.Directory),
		zap.String("backend", string(b.cfg.Backend)),
		zap.Bool("reportMixedRevisions", r.ReportMixedRevisions),
		zap.Bool("reportStatus", r.ReportStatus),
		zap.Bool("reportUnversioned", r.ReportUnversioned),
		zap.Bool("reportIgnored", r.ReportIgnored),
		zap.Bool("reportOutOfDate", r.ReportOutOfDate),
		zap.String("propertyPrefix", b.cfg.PropertyPrefix),
	)
	return b
}

// ResolveVersioning checks whether the directory is under version control.
// An unversioned directory gets the unversioned token and needs no further steps.
func (b *RevisionInfoBuilder) ResolveVersioning() (*RevisionInfoBuilder, error) {
	versioned, err := b.client.IsVersionedDirectory(b.ctx, b.cfg.Directory)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot tell whether %s is under version control", b.cfg.Directory)
	}
	b.info.Versioned = versioned
	if !versioned {
		b.info.Revision = schema.UnversionedToken
		b.info.FileNameSafeRevision = schema.UnversionedToken
	}
	return b, nil
}

// IsVersioned reports the outcome of ResolveVersioning.
func (b *RevisionInfoBuilder) IsVersioned() bool {
	return b.info.Versioned
}

// ResolveLocation fills the repository root and the path inside it.
func (b *RevisionInfoBuilder) ResolveLocation() (*RevisionInfoBuilder, error) {
	root, path, err := b.client.ResolveRootAndPath(b.ctx, b.cfg.Directory)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot resolve repository location of %s", b.cfg.Directory)
	}
	b.info.Repository = root
	b.info.Path = path
	return b, nil
}

// CollectStatus streams every status record through the aggregator.
// In verbose mode each record is traced as it arrives.
func (b *RevisionInfoBuilder) CollectStatus() (*RevisionInfoBuilder, error) {
	opts := contract.StatusOptions{
		ContactRemote:  b.cfg.Report.ReportOutOfDate,
		IncludeIgnored: b.cfg.Report.ReportIgnored,
	}
	trace := b.logger.Core().Enabled(zapcore.InfoLevel)
	observe := func(r schema.StatusRecord) {
		if trace {
			b.logger.Info(r.TraceLine())
		}
	}
	result, records, err := agg.AggregateStream(b.client.StreamStatus(b.ctx, b.cfg.Directory, opts), observe)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read status of %s", b.cfg.Directory)
	}
	b.result = result
	b.records = records
	return b, nil
}

// EncodeTokens renders the standard and file-name-safe tokens.
// Kinds the encoder does not know are logged as a warning and otherwise ignored.
func (b *RevisionInfoBuilder) EncodeTokens() *RevisionInfoBuilder {
	standard, unknown := token.Encode(b.result, b.cfg.Report, schema.StandardAlphabet)
	safe, _ := token.Encode(b.result, b.cfg.Report, schema.FileNameSafeAlphabet)
	if len(unknown) > 0 {
		names := make([]string, len(unknown))
		for i, k := range unknown {
			names[i] = string(k)
		}
		b.logger.Warn("unprocessed status kinds", zap.Strings("kinds", names), zap.String("directory", b.cfg.Directory))
	}

	b.info.Revision = standard
	b.info.FileNameSafeRevision = safe
	b.info.MaxRevision = b.result.MaxRevision().Pointer()
	b.info.MinRevision = b.result.MinRevision().Pointer()
	b.info.Kinds = b.result.Kinds()
	b.info.Unrecognized = unknown
	b.info.RemoteChanges = b.result.RemoteChanges()
	b.info.Records = b.records
	return b
}

// LogProperties writes each produced property at info level.
func (b *RevisionInfoBuilder) LogProperties() *RevisionInfoBuilder {
	props := b.info.Properties(b.cfg.PropertyPrefix)
	for _, key := range schema.PropertyKeys {
		name := b.cfg.PropertyPrefix + "." + key
		b.logger.Info(fmt.Sprintf("${%s} is set to %s", name, props[name]))
	}
	return b
}

// GetResult returns the revision info built so far.
func (b *RevisionInfoBuilder) GetResult() schema.RevisionInfo {
	info := b.info
	if resolver, ok := b.client.(interface {
		Resolved(dir string) schema.BackendKind
	}); ok {
		info.Backend = resolver.Resolved(b.cfg.Directory)
	}
	return info
}
