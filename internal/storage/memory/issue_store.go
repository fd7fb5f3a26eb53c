package memory

import (
	"context"
	"sync"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// IssueStore is an in-memory implementation of storage.IssueStore.
type IssueStore struct {
	mu   sync.RWMutex
	data map[string][]domain.ParseIssue // keyed by run_id
}

// NewIssueStore creates a new in-memory issue store.
func NewIssueStore() *IssueStore {
	return &IssueStore{
		data: make(map[string][]domain.ParseIssue),
	}
}

// Compile-time interface check.
var _ storage.IssueStore = (*IssueStore)(nil)

// InsertBulk appends the issues of one run. Returns ErrDuplicateKey if the run exists.
func (s *IssueStore) InsertBulk(_ context.Context, runID string, issues []domain.ParseIssue) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(issues) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[runID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[runID] = append([]domain.ParseIssue(nil), issues...)
	return nil
}

// GetByRunID retrieves the issues of one run in insertion order.
func (s *IssueStore) GetByRunID(_ context.Context, runID string) ([]domain.ParseIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]domain.ParseIssue(nil), s.data[runID]...), nil
}
