package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// SignalStore is a PostgreSQL implementation of storage.SignalStore.
type SignalStore struct {
	pool *Pool
}

// NewSignalStore creates a new PostgreSQL signal store.
func NewSignalStore(pool *Pool) *SignalStore {
	return &SignalStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

const (
	signalColumns = `signal_id, signal_ts, source, payload_type, adapter_name, input_file, input_line_number, document`
	insertSignal  = `INSERT INTO signals (` + signalColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
)

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(ctx context.Context, r *domain.SignalRecord) error {
	if err := storage.ValidateSignalRecord(r); err != nil {
		return err
	}

	_, err := s.pool.Exec(ctx, insertSignal, signalArgs(r)...)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return eris.Wrapf(err, "insert signal %s", r.SignalID)
	}
	return nil
}

// InsertNew adds records whose signal_id is not stored yet in a single transaction.
func (s *SignalStore) InsertNew(ctx context.Context, records []*domain.SignalRecord) (int, error) {
	for _, r := range records {
		if err := storage.ValidateSignalRecord(r); err != nil {
			return 0, err
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, eris.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(insertSignal+` ON CONFLICT (signal_id) DO NOTHING`, signalArgs(r)...)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for _, r := range records {
		tag, err := results.Exec()
		if err != nil {
			results.Close()
			return 0, eris.Wrapf(err, "insert signal %s", r.SignalID)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, eris.Wrap(err, "close batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, eris.Wrap(err, "commit transaction")
	}
	return inserted, nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(ctx context.Context, signalID string) (*domain.SignalRecord, error) {
	var (
		r   domain.SignalRecord
		doc string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE signal_id = $1`, signalID,
	).Scan(&r.SignalID, &r.Timestamp, &r.Source, &r.PayloadType,
		&r.AdapterName, &r.InputFile, &r.InputLineNumber, &doc)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, eris.Wrapf(err, "get signal %s", signalID)
	}
	r.Timestamp = r.Timestamp.UTC()
	r.Document = []byte(doc)
	return &r, nil
}

// GetByTimeRange retrieves signals within [start, end] (inclusive).
func (s *SignalStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.SignalRecord, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE signal_ts >= $1 AND signal_ts <= $2
		ORDER BY signal_ts ASC, signal_id ASC
	`
	rows, err := s.pool.Query(ctx, query, start.UTC(), end.UTC())
	if err != nil {
		return nil, eris.Wrap(err, "query signals by time range")
	}
	return scanSignals(rows)
}

// GetBySource retrieves all signals of one source.
func (s *SignalStore) GetBySource(ctx context.Context, source string) ([]*domain.SignalRecord, error) {
	query := `
		SELECT ` + signalColumns + `
		FROM signals
		WHERE source = $1
		ORDER BY signal_ts ASC, signal_id ASC
	`
	rows, err := s.pool.Query(ctx, query, source)
	if err != nil {
		return nil, eris.Wrap(err, "query signals by source")
	}
	return scanSignals(rows)
}

func signalArgs(r *domain.SignalRecord) []any {
	return []any{
		r.SignalID, r.Timestamp.UTC(), r.Source, r.PayloadType,
		r.AdapterName, r.InputFile, r.InputLineNumber, string(r.Document),
	}
}

// scanSignals scans all rows into signal records.
func scanSignals(rows pgx.Rows) ([]*domain.SignalRecord, error) {
	defer rows.Close()

	var result []*domain.SignalRecord
	for rows.Next() {
		var (
			r   domain.SignalRecord
			doc string
		)
		if err := rows.Scan(&r.SignalID, &r.Timestamp, &r.Source, &r.PayloadType,
			&r.AdapterName, &r.InputFile, &r.InputLineNumber, &doc); err != nil {
			return nil, eris.Wrap(err, "scan signal")
		}
		r.Timestamp = r.Timestamp.UTC()
		r.Document = []byte(doc)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate signals")
	}
	return result, nil
}
