package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// SignalStore is an in-memory implementation of storage.SignalStore.
type SignalStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SignalRecord // keyed by signal_id
}

// NewSignalStore creates a new in-memory signal store.
func NewSignalStore() *SignalStore {
	return &SignalStore{
		data: make(map[string]*domain.SignalRecord),
	}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(_ context.Context, r *domain.SignalRecord) error {
	if err := storage.ValidateSignalRecord(r); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.SignalID]; exists {
		return storage.ErrDuplicateKey
	}
	s.data[r.SignalID] = copyRecord(r)
	return nil
}

// InsertNew adds records whose signal_id is not stored yet. Returns the number inserted.
func (s *SignalStore) InsertNew(_ context.Context, records []*domain.SignalRecord) (int, error) {
	for _, r := range records {
		if err := storage.ValidateSignalRecord(r); err != nil {
			return 0, err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inserted := 0
	for _, r := range records {
		if _, exists := s.data[r.SignalID]; exists {
			continue
		}
		s.data[r.SignalID] = copyRecord(r)
		inserted++
	}
	return inserted, nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(_ context.Context, signalID string) (*domain.SignalRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.data[signalID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	return copyRecord(r), nil
}

// GetByTimeRange retrieves signals within [start, end] (inclusive).
func (s *SignalStore) GetByTimeRange(_ context.Context, start, end time.Time) ([]*domain.SignalRecord, error) {
	return s.filter(func(r *domain.SignalRecord) bool {
		return !r.Timestamp.Before(start) && !r.Timestamp.After(end)
	}), nil
}

// GetBySource retrieves all signals of one source.
func (s *SignalStore) GetBySource(_ context.Context, source string) ([]*domain.SignalRecord, error) {
	return s.filter(func(r *domain.SignalRecord) bool {
		return r.Source == source
	}), nil
}

// Len returns the number of stored signals.
func (s *SignalStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *SignalStore) filter(keep func(*domain.SignalRecord) bool) []*domain.SignalRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SignalRecord
	for _, r := range s.data {
		if keep(r) {
			result = append(result, copyRecord(r))
		}
	}

	// Sort by (timestamp ASC, signal_id ASC)
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.Before(result[j].Timestamp)
		}
		return result[i].SignalID < result[j].SignalID
	})
	return result
}

// copyRecord returns a deep copy to prevent external mutation.
func copyRecord(r *domain.SignalRecord) *domain.SignalRecord {
	c := *r
	c.Document = append([]byte(nil), r.Document...)
	return &c
}
