// Package verification replays an adapter over its source and checks that the
// stored signals still match what the adapter produces today.
package verification

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"sort"

	"github.com/rotisserie/eris"
)

// VolatileFields are document paths that legitimately differ between runs.
// ingested_at follows the wall clock for sources without their own event time.
var VolatileFields = map[string]bool{
	"trace.ingested_at": true,
}

// FieldDivergence represents a mismatch between stored and replayed values.
type FieldDivergence struct {
	Field    string // dotted document path
	Expected any    // stored value
	Actual   any    // replayed value
}

// VerificationResult contains the result of verifying a single signal.
type VerificationResult struct {
	SignalID    string
	Match       bool
	Missing     bool // replayed signal not found in the store
	Divergences []FieldDivergence
}

// VerificationReport contains results for a replayed source.
type VerificationReport struct {
	TotalSignals     int
	MatchedSignals   int
	DivergentSignals int
	MissingSignals   int
	Results          []VerificationResult // divergent and missing only
}

// OK reports whether every replayed signal matched its stored copy.
func (r *VerificationReport) OK() bool {
	return r.DivergentSignals == 0 && r.MissingSignals == 0
}

// Verifier checks stored signals against a replay.
type Verifier interface {
	// VerifyAll replays the source and compares every produced signal.
	VerifyAll(ctx context.Context) (*VerificationReport, error)
}

// CompareDocuments compares two canonical envelope documents field by field,
// skipping VolatileFields. Divergences are sorted by field path.
func CompareDocuments(stored, replayed []byte) ([]FieldDivergence, error) {
	if bytes.Equal(stored, replayed) {
		return nil, nil
	}

	expected, err := flatten(stored)
	if err != nil {
		return nil, eris.Wrap(err, "decode stored document")
	}
	actual, err := flatten(replayed)
	if err != nil {
		return nil, eris.Wrap(err, "decode replayed document")
	}

	var divergences []FieldDivergence
	for field, want := range expected {
		if VolatileFields[field] {
			continue
		}
		got, ok := actual[field]
		if !ok || !reflect.DeepEqual(want, got) {
			divergences = append(divergences, FieldDivergence{Field: field, Expected: want, Actual: got})
		}
	}
	for field, got := range actual {
		if _, ok := expected[field]; !ok && !VolatileFields[field] {
			divergences = append(divergences, FieldDivergence{Field: field, Actual: got})
		}
	}

	sort.Slice(divergences, func(i, j int) bool {
		return divergences[i].Field < divergences[j].Field
	})
	return divergences, nil
}

// flatten decodes a JSON object into dotted leaf paths.
// Arrays are compared whole.
func flatten(doc []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(doc))
	dec.UseNumber()

	var root map[string]any
	if err := dec.Decode(&root); err != nil {
		return nil, err
	}

	out := make(map[string]any)
	var walk func(prefix string, v map[string]any)
	walk = func(prefix string, v map[string]any) {
		for k, child := range v {
			path := k
			if prefix != "" {
				path = prefix + "." + k
			}
			if obj, ok := child.(map[string]any); ok {
				walk(path, obj)
				continue
			}
			out[path] = child
		}
	}
	walk("", root)
	return out, nil
}
