package storage

import (
	"context"
	"time"

	"signal-io/internal/domain"
)

// SignalStore provides access to signals storage.
type SignalStore interface {
	// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
	Insert(ctx context.Context, r *domain.SignalRecord) error

	// InsertNew adds the records whose signal_id is not stored yet and skips
	// the rest, so replaying a run is a no-op. Returns the number inserted.
	InsertNew(ctx context.Context, records []*domain.SignalRecord) (int, error)

	// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, signalID string) (*domain.SignalRecord, error)

	// GetByTimeRange retrieves signals with timestamp within [start, end] (inclusive),
	// ordered by (timestamp ASC, signal_id ASC).
	GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.SignalRecord, error)

	// GetBySource retrieves all signals of one source, ordered like GetByTimeRange.
	GetBySource(ctx context.Context, source string) ([]*domain.SignalRecord, error)
}

// IssueStore provides access to ingest_issues storage.
type IssueStore interface {
	// InsertBulk appends the issues of one run in order.
	// Returns ErrDuplicateKey if the run already has issues stored.
	InsertBulk(ctx context.Context, runID string, issues []domain.ParseIssue) error

	// GetByRunID retrieves the issues of one run in insertion order.
	GetByRunID(ctx context.Context, runID string) ([]domain.ParseIssue, error)
}

// ValidateSignalRecord checks the fields every store requires.
func ValidateSignalRecord(r *domain.SignalRecord) error {
	if r == nil || r.SignalID == "" || r.Timestamp.IsZero() || len(r.Document) == 0 {
		return ErrInvalidInput
	}
	return nil
}
