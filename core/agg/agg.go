// Package agg has aggregation logic for working-copy status streams.
package agg

import (
	"iter"

	"github.com/huangsam/revstamp/schema"
)

// accumulator is the running state of a single aggregation pass.
type accumulator struct {
	maxRevision   schema.Revision
	minRevision   schema.Revision
	kinds         []schema.StatusKind
	seen          map[schema.StatusKind]struct{}
	remoteChanges bool
	records       int
}

func newAccumulator() *accumulator {
	return &accumulator{seen: make(map[schema.StatusKind]struct{})}
}

// add folds one record into the running state.
func (a *accumulator) add(r schema.StatusRecord) {
	a.records++
	a.addKind(r.ContentStatus)
	a.addKind(r.PropertyStatus)

	// Revision 0 marks an added path: it may raise the maximum but must not pose as the minimum.
	if r.Revision >= 0 {
		a.maxRevision = a.maxRevision.Max(r.Revision)
	}
	if r.Revision > 0 {
		a.minRevision = a.minRevision.Min(r.Revision)
	}

	if r.HasRemoteChanges() {
		a.remoteChanges = true
	}
}

func (a *accumulator) addKind(k schema.StatusKind) {
	if _, ok := a.seen[k]; ok {
		return
	}
	a.seen[k] = struct{}{}
	a.kinds = append(a.kinds, k)
}

func (a *accumulator) result() schema.AggregationResult {
	return schema.NewAggregationResult(a.maxRevision, a.minRevision, a.kinds, a.remoteChanges)
}

// Aggregate consumes the whole record sequence and summarizes it.
// The result does not depend on record order.
func Aggregate(records iter.Seq[schema.StatusRecord]) schema.AggregationResult {
	acc := newAccumulator()
	for r := range records {
		acc.add(r)
	}
	return acc.result()
}

// AggregateStream consumes a fallible record stream, calling observe for every record
// before it is folded in. It stops at the first stream error and returns it unchanged,
// along with the number of records consumed.
func AggregateStream(records iter.Seq2[schema.StatusRecord, error], observe func(schema.StatusRecord)) (schema.AggregationResult, int, error) {
	acc := newAccumulator()
	for r, err := range records {
		if err != nil {
			return schema.AggregationResult{}, acc.records, err
		}
		if observe != nil {
			observe(r)
		}
		acc.add(r)
	}
	return acc.result(), acc.records, nil
}
