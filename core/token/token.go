// Package token renders aggregation results into revision tokens.
package token

import (
	"slices"
	"strings"

	"github.com/huangsam/revstamp/schema"
)

// step is one entry of the fixed rendering order. A nil gate always reports.
type step struct {
	kind schema.StatusKind
	gate func(schema.ReportConfig) bool
}

// order groups content changes first, then policy-filtered kinds, then structural anomalies.
// Changing it changes every token produced, so it is part of the output format.
var order = []step{
	{kind: schema.StatusModified},
	{kind: schema.StatusAdded},
	{kind: schema.StatusDeleted},
	{kind: schema.StatusUnversioned, gate: func(c schema.ReportConfig) bool { return c.ReportUnversioned }},
	{kind: schema.StatusMissing},
	{kind: schema.StatusReplaced},
	{kind: schema.StatusConflicted},
	{kind: schema.StatusObstructed},
	{kind: schema.StatusIgnored, gate: func(c schema.ReportConfig) bool { return c.ReportIgnored }},
	{kind: schema.StatusIncomplete},
	{kind: schema.StatusExternal},
}

// Order returns the kinds in rendering order.
func Order() []schema.StatusKind {
	kinds := make([]schema.StatusKind, len(order))
	for i, s := range order {
		kinds[i] = s.kind
	}
	return kinds
}

// Encode renders the result under the reporting policy using the given alphabet.
// Kinds the encoder does not know are left out of the token and returned, sorted,
// so the caller can warn about them.
func Encode(result schema.AggregationResult, cfg schema.ReportConfig, alphabet schema.Alphabet) (string, []schema.StatusKind) {
	var sb strings.Builder

	if maxRev, ok := result.MaxRevision().Get(); ok {
		sb.WriteByte('r')
		sb.WriteString(result.MaxRevision().String())
		if minRev, ok := result.MinRevision().Get(); ok && minRev != maxRev && cfg.ReportMixedRevisions {
			sb.WriteString("-r")
			sb.WriteString(result.MinRevision().String())
		}
	}

	if !cfg.ReportStatus {
		return sb.String(), nil
	}

	remaining := result.KindSet()
	for k := range remaining {
		if k.IsQuiet() {
			delete(remaining, k)
		}
	}

	if len(remaining) > 0 {
		sb.WriteByte(alphabet.Separator)
	}

	for _, s := range order {
		if _, ok := remaining[s.kind]; !ok {
			continue
		}
		delete(remaining, s.kind)
		if s.gate != nil && !s.gate(cfg) {
			continue
		}
		if c, ok := alphabet.Char(s.kind); ok {
			sb.WriteByte(c)
		}
	}

	var unrecognized []schema.StatusKind
	for k := range remaining {
		unrecognized = append(unrecognized, k)
	}
	slices.Sort(unrecognized)

	if result.RemoteChanges() && cfg.ReportOutOfDate {
		sb.WriteByte(alphabet.OutOfDate)
	}

	return sb.String(), unrecognized
}
