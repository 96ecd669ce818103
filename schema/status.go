package schema

import (
	"fmt"
	"slices"
	"strconv"
)

// IsNone reports whether the kind carries nothing to report. The zero value counts as none.
func (k StatusKind) IsNone() bool {
	return k == "" || k == StatusNone
}

// IsQuiet reports whether the kind never renders in a token (none or normal).
func (k StatusKind) IsQuiet() bool {
	return k.IsNone() || k == StatusNormal
}

// IsKnown reports whether the kind is part of the closed enumeration.
func (k StatusKind) IsKnown() bool {
	return slices.Contains(KnownStatusKinds, k)
}

// Code returns the single-character code of the kind as shown in status listings.
// Quiet and unknown kinds map to a space.
func (k StatusKind) Code() byte {
	if c, ok := StandardAlphabet.Char(k); ok {
		return c
	}
	return ' '
}

// normalize maps the zero value onto StatusNone.
func (k StatusKind) normalize() StatusKind {
	if k == "" {
		return StatusNone
	}
	return k
}

// StatusRecord is the status of a single path as reported by a version-control backend.
// Revision uses the backend convention: -1 means no revision, 0 means added but not yet
// committed, positive values are repository revisions.
type StatusRecord struct {
	Path                 string     `json:"path"`
	Revision             int64      `json:"revision"`
	ContentStatus        StatusKind `json:"content_status"`
	PropertyStatus       StatusKind `json:"property_status"`
	RemoteContentStatus  StatusKind `json:"remote_content_status"`
	RemotePropertyStatus StatusKind `json:"remote_property_status"`
}

// HasRemoteChanges reports whether the remote side differs for this path.
func (r StatusRecord) HasRemoteChanges() bool {
	return !r.RemoteContentStatus.IsNone() || !r.RemotePropertyStatus.IsNone()
}

// TraceLine formats the record the way status listings do:
// content code, property code, remote marker, right-aligned revision, path.
func (r StatusRecord) TraceLine() string {
	remote := byte(' ')
	if r.HasRemoteChanges() {
		remote = '*'
	}
	return fmt.Sprintf("%c%c%c %6d %s", r.ContentStatus.Code(), r.PropertyStatus.Code(), remote, r.Revision, r.Path)
}

// Revision is an optional revision number.
type Revision struct {
	number int64
	set    bool
}

// NoRevision is the absent revision.
var NoRevision = Revision{}

// RevisionOf returns a present revision.
func RevisionOf(n int64) Revision {
	return Revision{number: n, set: true}
}

// Get returns the number and whether it is present.
func (r Revision) Get() (int64, bool) {
	return r.number, r.set
}

// IsSet reports whether the revision is present.
func (r Revision) IsSet() bool {
	return r.set
}

// Max returns the larger of the two revisions, treating absent as smaller than any number.
func (r Revision) Max(n int64) Revision {
	if !r.set || n > r.number {
		return RevisionOf(n)
	}
	return r
}

// Min returns the smaller of the two revisions, treating absent as larger than any number.
func (r Revision) Min(n int64) Revision {
	if !r.set || n < r.number {
		return RevisionOf(n)
	}
	return r
}

// String renders the number, or an empty string when absent.
func (r Revision) String() string {
	if !r.set {
		return ""
	}
	return strconv.FormatInt(r.number, 10)
}

// Pointer returns the number as a pointer, nil when absent. Useful for nullable columns.
func (r Revision) Pointer() *int64 {
	if !r.set {
		return nil
	}
	n := r.number
	return &n
}

// ReportConfig controls how an aggregation result is rendered.
type ReportConfig struct {
	ReportMixedRevisions bool `json:"report_mixed_revisions" yaml:"report_mixed_revisions"`
	ReportStatus         bool `json:"report_status" yaml:"report_status"`
	ReportUnversioned    bool `json:"report_unversioned" yaml:"report_unversioned"`
	ReportIgnored        bool `json:"report_ignored" yaml:"report_ignored"`
	ReportOutOfDate      bool `json:"report_out_of_date" yaml:"report_out_of_date"`
	Verbose              bool `json:"verbose" yaml:"verbose"`
}

// DefaultReportConfig returns the default reporting policy.
func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		ReportMixedRevisions: true,
		ReportStatus:         true,
		ReportUnversioned:    true,
	}
}
