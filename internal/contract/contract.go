// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"iter"
	"time"

	"github.com/huangsam/revstamp/schema"
)

// StatusOptions controls what a status query asks the backend for.
type StatusOptions struct {
	// ContactRemote asks the backend to detect out-of-date paths, which may need the network.
	ContactRemote bool

	// IncludeIgnored asks the backend to report ignored paths too.
	IncludeIgnored bool
}

// VCSClient defines the working-copy operations needed to describe a directory.
// This allows the core pipeline to be tested without a real svn or git checkout.
type VCSClient interface {
	// Kind names the backend.
	Kind() schema.BackendKind

	// IsVersionedDirectory reports whether dir is inside a working copy.
	// A directory outside any working copy is not an error.
	IsVersionedDirectory(ctx context.Context, dir string) (bool, error)

	// ResolveRootAndPath returns the repository root URL and the path of dir relative
	// to that root. Only valid when dir is versioned.
	ResolveRootAndPath(ctx context.Context, dir string) (repositoryRoot string, relativePath string, err error)

	// StreamStatus lazily yields one record per entry under dir, recursively.
	// A backend failure is yielded once as the error value and ends the stream.
	StreamStatus(ctx context.Context, dir string, opts StatusOptions) iter.Seq2[schema.StatusRecord, error]
}

// HistoryManager defines the interface for managing the history store.
// This allows the persistence layer to be mocked for testing.
type HistoryManager interface {
	GetHistoryStore() HistoryStore
}

// HistoryStore defines the interface for recording describe runs.
type HistoryStore interface {
	// Record stores a run and returns its row id.
	Record(run schema.HistoryRecord) (int64, error)

	// List returns the most recent runs, newest first. A limit <= 0 returns every run.
	List(limit int) ([]schema.HistoryRecord, error)

	// GetStatus returns status information about the store.
	GetStatus() (schema.HistoryStatus, error)

	// Close closes the underlying connection.
	Close() error
}

// OutputWriter defines the interface for printing results.
// This allows the core pipeline to be tested without writing to stdout.
type OutputWriter interface {
	// WriteRevisionInfo prints one described directory using the configured output format.
	WriteRevisionInfo(info schema.RevisionInfo, cfg *Config, duration time.Duration) error

	// WriteHistory prints recorded runs using the configured output format.
	WriteHistory(runs []schema.HistoryRecord, cfg *Config, duration time.Duration) error
}
