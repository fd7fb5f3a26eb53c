package storage

import (
	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
	"signal-io/internal/jsonl"
)

// NewSignalRecord converts an envelope into its stored form.
// Document holds the same canonical bytes written to JSONL output.
func NewSignalRecord(env domain.SignalEnvelope) (*domain.SignalRecord, error) {
	ts, err := env.Time()
	if err != nil {
		return nil, eris.Wrapf(err, "signal %s: parse timestamp", env.SignalID)
	}
	doc, err := jsonl.Encode(env)
	if err != nil {
		return nil, eris.Wrapf(err, "signal %s: encode", env.SignalID)
	}
	return &domain.SignalRecord{
		SignalID:        env.SignalID,
		Timestamp:       ts.UTC(),
		Source:          env.Source,
		PayloadType:     env.PayloadType,
		AdapterName:     env.Trace.AdapterName,
		InputFile:       env.Trace.InputFile,
		InputLineNumber: env.Trace.InputLineNumber,
		Document:        doc,
	}, nil
}

// NewSignalRecords converts envelopes in order.
func NewSignalRecords(envs []domain.SignalEnvelope) ([]*domain.SignalRecord, error) {
	records := make([]*domain.SignalRecord, 0, len(envs))
	for _, env := range envs {
		r, err := NewSignalRecord(env)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
