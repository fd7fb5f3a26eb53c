package clickhouse

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// SignalStore implements storage.SignalStore using ClickHouse.
//
// MergeTree does not enforce uniqueness, so inserts check for existing
// signal_ids first and the ReplacingMergeTree engine collapses any rows that
// slip through concurrent writers. Reads use FINAL.
type SignalStore struct {
	conn *Conn
}

// NewSignalStore creates a new ClickHouse signal store.
func NewSignalStore(conn *Conn) *SignalStore {
	return &SignalStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SignalStore = (*SignalStore)(nil)

const signalColumns = `signal_id, signal_ts, source, payload_type, adapter_name, input_file, input_line_number, document`

// Insert adds a new signal. Returns ErrDuplicateKey if signal_id exists.
func (s *SignalStore) Insert(ctx context.Context, r *domain.SignalRecord) error {
	if err := storage.ValidateSignalRecord(r); err != nil {
		return err
	}

	existing, err := s.existing(ctx, []string{r.SignalID})
	if err != nil {
		return err
	}
	if _, ok := existing[r.SignalID]; ok {
		return storage.ErrDuplicateKey
	}
	return s.send(ctx, []*domain.SignalRecord{r})
}

// InsertNew adds records whose signal_id is not stored yet. Returns the number inserted.
func (s *SignalStore) InsertNew(ctx context.Context, records []*domain.SignalRecord) (int, error) {
	ids := make([]string, 0, len(records))
	for _, r := range records {
		if err := storage.ValidateSignalRecord(r); err != nil {
			return 0, err
		}
		ids = append(ids, r.SignalID)
	}
	if len(records) == 0 {
		return 0, nil
	}

	existing, err := s.existing(ctx, ids)
	if err != nil {
		return 0, err
	}

	var fresh []*domain.SignalRecord
	for _, r := range records {
		if _, ok := existing[r.SignalID]; ok {
			continue
		}
		existing[r.SignalID] = struct{}{}
		fresh = append(fresh, r)
	}
	if len(fresh) == 0 {
		return 0, nil
	}
	if err := s.send(ctx, fresh); err != nil {
		return 0, err
	}
	return len(fresh), nil
}

// GetByID retrieves a signal by its ID. Returns ErrNotFound if not exists.
func (s *SignalStore) GetByID(ctx context.Context, signalID string) (*domain.SignalRecord, error) {
	records, err := s.query(ctx, `
		SELECT `+signalColumns+`
		FROM signals FINAL
		WHERE signal_id = ?
	`, signalID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	return records[0], nil
}

// GetByTimeRange retrieves signals within [start, end] (inclusive).
func (s *SignalStore) GetByTimeRange(ctx context.Context, start, end time.Time) ([]*domain.SignalRecord, error) {
	return s.query(ctx, `
		SELECT `+signalColumns+`
		FROM signals FINAL
		WHERE signal_ts >= ? AND signal_ts <= ?
		ORDER BY signal_ts ASC, signal_id ASC
	`, start.UTC(), end.UTC())
}

// GetBySource retrieves all signals of one source.
func (s *SignalStore) GetBySource(ctx context.Context, source string) ([]*domain.SignalRecord, error) {
	return s.query(ctx, `
		SELECT `+signalColumns+`
		FROM signals FINAL
		WHERE source = ?
		ORDER BY signal_ts ASC, signal_id ASC
	`, source)
}

// existing returns the subset of ids already stored.
func (s *SignalStore) existing(ctx context.Context, ids []string) (map[string]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT signal_id FROM signals WHERE signal_id IN (?)`, ids)
	if err != nil {
		return nil, eris.Wrap(err, "check existing signals")
	}
	defer rows.Close()

	found := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, eris.Wrap(err, "scan signal id")
		}
		found[id] = struct{}{}
	}
	return found, eris.Wrap(rows.Err(), "iterate signal ids")
}

func (s *SignalStore) send(ctx context.Context, records []*domain.SignalRecord) error {
	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO signals (`+signalColumns+`)`)
	if err != nil {
		return eris.Wrap(err, "prepare batch")
	}

	for _, r := range records {
		err = batch.Append(
			r.SignalID, r.Timestamp.UTC(), r.Source, r.PayloadType,
			r.AdapterName, r.InputFile, uint32(r.InputLineNumber), string(r.Document),
		)
		if err != nil {
			return eris.Wrap(err, "append to batch")
		}
	}

	if err := batch.Send(); err != nil {
		return eris.Wrap(err, "send batch")
	}
	return nil
}

type chRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close() error
}

func (s *SignalStore) query(ctx context.Context, query string, args ...any) ([]*domain.SignalRecord, error) {
	rows, err := s.conn.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "query signals")
	}
	return scanSignals(rows)
}

// scanSignals scans all rows into signal records.
func scanSignals(rows chRows) ([]*domain.SignalRecord, error) {
	defer rows.Close()

	var result []*domain.SignalRecord
	for rows.Next() {
		var (
			r    domain.SignalRecord
			line uint32
			doc  string
		)
		if err := rows.Scan(&r.SignalID, &r.Timestamp, &r.Source, &r.PayloadType,
			&r.AdapterName, &r.InputFile, &line, &doc); err != nil {
			return nil, eris.Wrap(err, "scan signal")
		}
		r.Timestamp = r.Timestamp.UTC()
		r.InputLineNumber = int(line)
		r.Document = []byte(doc)
		result = append(result, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate signals")
	}
	return result, nil
}
