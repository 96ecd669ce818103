// Package outwriter has output and writer logic.
package outwriter

import (
	"time"

	"github.com/huangsam/revstamp/internal/contract"
	"github.com/huangsam/revstamp/schema"
)

// OutWriter provides a unified interface for all output operations.
// It encapsulates the various output formats and provides a clean API for the core logic.
type OutWriter struct{}

var _ contract.OutputWriter = &OutWriter{} // Compile-time check

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteRevisionInfo prints a described directory using the configured output format.
func (ow *OutWriter) WriteRevisionInfo(info schema.RevisionInfo, cfg *contract.Config, duration time.Duration) error {
	return WriteRevisionInfo(info, cfg, duration)
}

// WriteHistory prints recorded runs using the configured output format.
func (ow *OutWriter) WriteHistory(runs []schema.HistoryRecord, cfg *contract.Config, duration time.Duration) error {
	return WriteHistory(runs, cfg, duration)
}
