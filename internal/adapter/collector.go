package adapter

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"signal-io/internal/domain"
	"signal-io/internal/idhash"
	"signal-io/internal/jsonl"
	"signal-io/internal/normalization"
)

// epoch is the default timestamp for families that do not default to now.
var epoch = time.Unix(0, 0).UTC()

// built is one mapped record awaiting the emit phase.
type built struct {
	envelope domain.SignalEnvelope
	ts       time.Time
	key      string
}

// runContext is the per-call state shared by the mapping of every record.
type runContext struct {
	opts   Options
	now    time.Time
	logger *zap.Logger
}

func newRunContext(opts Options) *runContext {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &runContext{
		opts:   opts,
		now:    now().UTC(),
		logger: logger,
	}
}

func (rc *runContext) numbers(rec record) *numbers {
	return &numbers{rec: rec, lenient: rc.opts.Lenient}
}

// timestamp reads the "timestamp" field, using fallback when it is absent
// or, in lenient mode, unparseable.
func (rc *runContext) timestamp(rec record, fallback time.Time) (normalization.Timestamp, error) {
	raw, ok := rec.value("timestamp")
	if !ok {
		return normalization.FromTime(fallback), nil
	}
	ts, err := normalization.Normalize(raw)
	if err != nil {
		if !rc.opts.Lenient {
			return normalization.Timestamp{}, fmt.Errorf("invalid timestamp: %s", stringify(raw))
		}
		return normalization.FromTime(fallback), nil
	}
	return ts, nil
}

// envelopeSpec is what a family mapper decides about one record.
type envelopeSpec struct {
	source     string
	ts         normalization.Timestamp
	ingestedAt time.Time
	key        string
	payload    domain.Payload
	identifier string
}

func (m meta) build(raw *jsonl.RawRecord, spec envelopeSpec) *built {
	return &built{
		envelope: domain.SignalEnvelope{
			SchemaVersion: domain.SchemaVersion,
			SignalID:      idhash.ComputeSignalID(spec.source, spec.ts.UTC, spec.key),
			Timestamp:     normalization.UTCSeconds(spec.ts.UTC),
			Source:        spec.source,
			PayloadType:   spec.payload.PayloadType(),
			Payload:       spec.payload,
			EntityRefs:    []domain.EntityRef{domain.NewEntityRef(spec.source, spec.identifier)},
			Trace: domain.TraceContext{
				IngestedAt:       normalization.UTCSeconds(spec.ingestedAt),
				InputFile:        raw.InputFile,
				InputLineNumber:  raw.LineNumber,
				AdapterName:      m.name,
				AdapterVersion:   m.version,
				RawID:            record(raw.Fields).optStr("raw_id"),
				OriginalTimezone: spec.ts.OriginalTimezone,
			},
		},
		ts:  spec.ts.UTC,
		key: spec.key,
	}
}

// mapFunc maps one raw record. A returned error becomes a validation issue.
type mapFunc func(raw *jsonl.RawRecord, rc *runContext) (*built, error)

// collect runs the two-phase algorithm: map and filter every record, then
// emit in deterministic order.
func collect(path string, opts Options, mapRecord mapFunc) (*Result, error) {
	rc := newRunContext(opts)
	result := &Result{}
	var rows []built

	err := jsonl.Read(path, func(item jsonl.Item) error {
		if item.Issue != nil {
			result.Issues = append(result.Issues, *item.Issue)
			return nil
		}

		raw := item.Record
		result.Stats.RecordsRead++

		b, err := mapRecord(raw, rc)
		if err != nil {
			result.Issues = append(result.Issues, domain.ParseIssue{
				Message:         err.Error(),
				InputFile:       raw.InputFile,
				InputLineNumber: raw.LineNumber,
				RawLine:         raw.RawLine,
				Kind:            domain.IssueKindValidation,
			})
			return nil
		}

		if !normalization.InRange(b.ts, opts.Since, opts.Until) {
			result.Stats.OutOfWindow++
			return nil
		}
		rows = append(rows, *b)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortBuilt(rows)

	result.Signals = make([]domain.SignalEnvelope, len(rows))
	for i := range rows {
		result.Signals[i] = rows[i].envelope
	}
	return result, nil
}
