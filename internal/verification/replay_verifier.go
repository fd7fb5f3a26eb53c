package verification

import (
	"context"
	"errors"

	"github.com/rotisserie/eris"

	"signal-io/internal/adapter"
	"signal-io/internal/storage"
)

// ReplayVerifier implements Verifier by re-running one adapter over one source.
type ReplayVerifier struct {
	store   storage.SignalStore
	adapter adapter.Adapter
	source  string
	opts    adapter.Options
}

// ReplayVerifierOptions contains configuration for creating a ReplayVerifier.
type ReplayVerifierOptions struct {
	Store   storage.SignalStore
	Adapter adapter.Adapter
	Source  string
	// AdapterOptions must match the options of the original run
	// (window, lenient, address validation) for a meaningful comparison.
	AdapterOptions adapter.Options
}

// NewReplayVerifier creates a new ReplayVerifier.
func NewReplayVerifier(opts ReplayVerifierOptions) *ReplayVerifier {
	return &ReplayVerifier{
		store:   opts.Store,
		adapter: opts.Adapter,
		source:  opts.Source,
		opts:    opts.AdapterOptions,
	}
}

// Compile-time interface check.
var _ Verifier = (*ReplayVerifier)(nil)

// VerifyAll replays the source and compares each signal with its stored document.
func (v *ReplayVerifier) VerifyAll(ctx context.Context) (*VerificationReport, error) {
	res, err := v.adapter.Signals(v.source, v.opts)
	if err != nil {
		return nil, eris.Wrapf(err, "replay %s", v.source)
	}

	replayed, err := storage.NewSignalRecords(res.Signals)
	if err != nil {
		return nil, err
	}

	report := &VerificationReport{TotalSignals: len(replayed)}

	for _, r := range replayed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		stored, err := v.store.GetByID(ctx, r.SignalID)
		if errors.Is(err, storage.ErrNotFound) {
			report.MissingSignals++
			report.Results = append(report.Results, VerificationResult{
				SignalID: r.SignalID,
				Missing:  true,
			})
			continue
		}
		if err != nil {
			return nil, eris.Wrapf(err, "load signal %s", r.SignalID)
		}

		divergences, err := CompareDocuments(stored.Document, r.Document)
		if err != nil {
			return nil, eris.Wrapf(err, "compare signal %s", r.SignalID)
		}
		if len(divergences) == 0 {
			report.MatchedSignals++
			continue
		}

		report.DivergentSignals++
		report.Results = append(report.Results, VerificationResult{
			SignalID:    r.SignalID,
			Divergences: divergences,
		})
	}

	return report, nil
}
