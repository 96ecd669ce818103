package schema

import (
	"maps"
	"slices"
	"time"
)

// AggregationResult is the summary of a whole status stream. It is immutable: all
// accessors return copies.
type AggregationResult struct {
	maxRevision   Revision
	minRevision   Revision
	kinds         map[StatusKind]struct{}
	remoteChanges bool
}

// NewAggregationResult builds a result. Kinds are stored as a set; the zero-value kind is
// recorded as StatusNone.
func NewAggregationResult(maxRevision, minRevision Revision, kinds []StatusKind, remoteChanges bool) AggregationResult {
	set := make(map[StatusKind]struct{}, len(kinds))
	for _, k := range kinds {
		set[k.normalize()] = struct{}{}
	}
	return AggregationResult{
		maxRevision:   maxRevision,
		minRevision:   minRevision,
		kinds:         set,
		remoteChanges: remoteChanges,
	}
}

// MaxRevision is the highest revision among records with revision >= 0.
func (r AggregationResult) MaxRevision() Revision { return r.maxRevision }

// MinRevision is the lowest revision among records with revision > 0.
func (r AggregationResult) MinRevision() Revision { return r.minRevision }

// RemoteChanges reports whether any record differed from the remote.
func (r AggregationResult) RemoteChanges() bool { return r.remoteChanges }

// HasKind reports whether the kind was seen.
func (r AggregationResult) HasKind(k StatusKind) bool {
	_, ok := r.kinds[k.normalize()]
	return ok
}

// Kinds returns every kind seen, quiet ones included, sorted by name.
func (r AggregationResult) Kinds() []StatusKind {
	return slices.Sorted(maps.Keys(r.kinds))
}

// ReportableKinds returns the kinds seen minus none and normal, sorted by name.
func (r AggregationResult) ReportableKinds() []StatusKind {
	var out []StatusKind
	for _, k := range r.Kinds() {
		if !k.IsQuiet() {
			out = append(out, k)
		}
	}
	return out
}

// KindSet returns a private mutable copy of the kind set.
func (r AggregationResult) KindSet() map[StatusKind]struct{} {
	return maps.Clone(r.kinds)
}

// RevisionInfo is the outcome of describing a directory.
type RevisionInfo struct {
	Directory            string       `json:"directory" yaml:"directory"`
	Backend              BackendKind  `json:"backend" yaml:"backend"`
	Versioned            bool         `json:"versioned" yaml:"versioned"`
	Repository           string       `json:"repository" yaml:"repository"`
	Path                 string       `json:"path" yaml:"path"`
	Revision             string       `json:"revision" yaml:"revision"`
	FileNameSafeRevision string       `json:"file_name_safe_revision" yaml:"file_name_safe_revision"`
	MaxRevision          *int64       `json:"max_revision,omitempty" yaml:"max_revision,omitempty"`
	MinRevision          *int64       `json:"min_revision,omitempty" yaml:"min_revision,omitempty"`
	Kinds                []StatusKind `json:"kinds,omitempty" yaml:"kinds,omitempty"`
	Unrecognized         []StatusKind `json:"unrecognized,omitempty" yaml:"unrecognized,omitempty"`
	RemoteChanges        bool         `json:"remote_changes" yaml:"remote_changes"`
	Records              int          `json:"records" yaml:"records"`
	Config               ReportConfig `json:"config" yaml:"config"`
}

// Property key suffixes, in output order.
const (
	RepositoryProperty           = "repository"
	PathProperty                 = "path"
	RevisionProperty             = "revision"
	FileNameSafeRevisionProperty = "fileNameSafeRevision"
)

// PropertyKeys lists the property key suffixes in output order.
var PropertyKeys = []string{RepositoryProperty, PathProperty, RevisionProperty, FileNameSafeRevisionProperty}

// Properties returns the build properties for the given key prefix.
func (i RevisionInfo) Properties(prefix string) map[string]string {
	if prefix == "" {
		prefix = DefaultPropertyPrefix
	}
	return map[string]string{
		prefix + "." + RepositoryProperty:           i.Repository,
		prefix + "." + PathProperty:                 i.Path,
		prefix + "." + RevisionProperty:             i.Revision,
		prefix + "." + FileNameSafeRevisionProperty: i.FileNameSafeRevision,
	}
}

// HistoryRecord represents a row from the revstamp_runs table.
type HistoryRecord struct {
	RunID                int64       `json:"run_id" yaml:"run_id"`
	RunUUID              string      `json:"run_uuid" yaml:"run_uuid"`
	RecordedAt           time.Time   `json:"recorded_at" yaml:"recorded_at"`
	Directory            string      `json:"directory" yaml:"directory"`
	Backend              BackendKind `json:"backend" yaml:"backend"`
	Repository           string      `json:"repository" yaml:"repository"`
	Path                 string      `json:"path" yaml:"path"`
	Revision             string      `json:"revision" yaml:"revision"`
	FileNameSafeRevision string      `json:"file_name_safe_revision" yaml:"file_name_safe_revision"`
	MaxRevision          *int64      `json:"max_revision,omitempty" yaml:"max_revision,omitempty"`
	MinRevision          *int64      `json:"min_revision,omitempty" yaml:"min_revision,omitempty"`
	RemoteChanges        bool        `json:"remote_changes" yaml:"remote_changes"`
	Kinds                string      `json:"kinds" yaml:"kinds"`
	ConfigParams         *string     `json:"config_params,omitempty" yaml:"config_params,omitempty"`
	DurationMs           *int32      `json:"duration_ms,omitempty" yaml:"duration_ms,omitempty"`
}

// HistoryStatus holds status information about the history store.
type HistoryStatus struct {
	Backend             string
	Connected           bool
	TotalRuns           int
	LastRunID           int64
	LastRunTime         time.Time
	OldestRunTime       time.Time
	DistinctDirectories int
}
