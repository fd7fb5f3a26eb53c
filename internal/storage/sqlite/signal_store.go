package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// SignalStore is a SQLite implementation of storage.SignalStore.
type SignalStore struct {
	db *DB
}

// NewSignalStore creates a new SQLite signal store.
func NewSignalStore(db *DB) *SignalStore {
	return &SignalStore{db: db}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

const signalColumns = `signal_id, signal_ts, source, payload_type, adapter_name, input_file, input_line_number, document`

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(ctx context.Context, r *domain.SignalRecord) error {
	if err := storage.ValidateSignalRecord(r); err != nil {
		return err
	}
	_, err := s.db.db.ExecContext(ctx,
		`INSERT INTO signals (`+signalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		signalArgs(r)...,
	)
	if isUniqueViolation(err) {
		return storage.ErrDuplicateKey
	}
	return eris.Wrapf(err, "sqlite: insert signal %s", r.SignalID)
}

// InsertNew adds records whose signal_id is not stored yet in one transaction.
func (s *SignalStore) InsertNew(ctx context.Context, records []*domain.SignalRecord) (int, error) {
	for _, r := range records {
		if err := storage.ValidateSignalRecord(r); err != nil {
			return 0, err
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO signals (`+signalColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	inserted := 0
	for _, r := range records {
		res, err := stmt.ExecContext(ctx, signalArgs(r)...)
		if err != nil {
			return 0, eris.Wrapf(err, "sqlite: insert signal %s", r.SignalID)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, eris.Wrap(err, "sqlite: rows affected")
		}
		inserted += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit")
	}
	return inserted, nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(ctx context.Context, signalID string) (*domain.SignalRecord, error) {
	row := s.db.db.QueryRowContext(ctx,
		`SELECT `+signalColumns+` FROM signals WHERE signal_id = ?`, signalID)
	r, err := scanSignal(row)
	if eris.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return r, err
}

// GetByTimeRange retrieves signals within [start, end] (inclusive).
func (s *SignalStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.SignalRecord, error) {
	return s.query(ctx,
		`SELECT `+signalColumns+` FROM signals
		WHERE signal_ts >= ? AND signal_ts <= ?
		ORDER BY signal_ts ASC, signal_id ASC`,
		formatTS(start), formatTS(end))
}

// GetBySource retrieves all signals of one source.
func (s *SignalStore) GetBySource(ctx context.Context, source string) ([]*domain.SignalRecord, error) {
	return s.query(ctx,
		`SELECT `+signalColumns+` FROM signals
		WHERE source = ?
		ORDER BY signal_ts ASC, signal_id ASC`,
		source)
}

func (s *SignalStore) query(ctx context.Context, q string, args ...any) ([]*domain.SignalRecord, error) {
	rows, err := s.db.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query signals")
	}
	defer rows.Close()

	var result []*domain.SignalRecord
	for rows.Next() {
		r, err := scanSignal(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, eris.Wrap(rows.Err(), "sqlite: iterate signals")
}

func signalArgs(r *domain.SignalRecord) []any {
	return []any{
		r.SignalID, formatTS(r.Timestamp), r.Source, r.PayloadType,
		r.AdapterName, r.InputFile, r.InputLineNumber, string(r.Document),
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSignal(row scanner) (*domain.SignalRecord, error) {
	var (
		r   domain.SignalRecord
		ts  string
		doc string
	)
	err := row.Scan(&r.SignalID, &ts, &r.Source, &r.PayloadType,
		&r.AdapterName, &r.InputFile, &r.InputLineNumber, &doc)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan signal")
	}
	if r.Timestamp, err = parseTS(ts); err != nil {
		return nil, err
	}
	r.Document = []byte(doc)
	return &r, nil
}
