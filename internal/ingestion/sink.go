package ingestion

import (
	"context"

	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// Batch is everything one run hands to its sinks.
type Batch struct {
	RunID   string
	Records []*domain.SignalRecord // emit order
	Issues  []domain.ParseIssue
}

// SignalSink receives the signals and issues of a run.
type SignalSink interface {
	Name() string
	// Write stores the batch and returns how many signals were newly stored.
	Write(ctx context.Context, b *Batch) (int, error)
}

// StoreSink writes to a storage.SignalStore and, when set, a storage.IssueStore.
// Signals already stored are skipped, so re-running a source is a no-op.
type StoreSink struct {
	name    string
	signals storage.SignalStore
	issues  storage.IssueStore
}

// NewStoreSink creates a sink over the given stores. issues may be nil.
func NewStoreSink(name string, signals storage.SignalStore, issues storage.IssueStore) *StoreSink {
	return &StoreSink{name: name, signals: signals, issues: issues}
}

// Compile-time interface check.
var _ SignalSink = (*StoreSink)(nil)

// Name returns the sink label used in logs and metrics.
func (s *StoreSink) Name() string { return s.name }

// Write inserts new signals, then the run's issues.
func (s *StoreSink) Write(ctx context.Context, b *Batch) (int, error) {
	inserted, err := s.signals.InsertNew(ctx, b.Records)
	if err != nil {
		return 0, eris.Wrapf(err, "sink %s: insert signals", s.name)
	}
	if s.issues != nil && len(b.Issues) > 0 {
		if err := s.issues.InsertBulk(ctx, b.RunID, b.Issues); err != nil {
			return inserted, eris.Wrapf(err, "sink %s: insert issues", s.name)
		}
	}
	return inserted, nil
}
