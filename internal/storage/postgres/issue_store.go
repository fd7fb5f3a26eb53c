package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// IssueStore is a PostgreSQL implementation of storage.IssueStore.
type IssueStore struct {
	pool *Pool
}

// NewIssueStore creates a new PostgreSQL issue store.
func NewIssueStore(pool *Pool) *IssueStore {
	return &IssueStore{pool: pool}
}

// Compile-time interface check.
var _ storage.IssueStore = (*IssueStore)(nil)

// InsertBulk copies the issues of one run in a transaction. Returns ErrDuplicateKey if the run exists.
func (s *IssueStore) InsertBulk(ctx context.Context, runID string, issues []domain.ParseIssue) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(issues) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	rows := make([][]any, len(issues))
	for i, issue := range issues {
		rows[i] = []any{runID, i, string(issue.Kind), issue.Message, issue.InputFile, issue.InputLineNumber, issue.RawLine}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"ingest_issues"},
		[]string{"run_id", "seq", "kind", "message", "input_file", "input_line_number", "raw_line"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return eris.Wrap(err, "copy issues")
	}

	if err := tx.Commit(ctx); err != nil {
		return eris.Wrap(err, "commit transaction")
	}
	return nil
}

// GetByRunID retrieves the issues of one run in insertion order.
func (s *IssueStore) GetByRunID(ctx context.Context, runID string) ([]domain.ParseIssue, error) {
	query := `
		SELECT kind, message, input_file, input_line_number, raw_line
		FROM ingest_issues
		WHERE run_id = $1
		ORDER BY seq ASC
	`
	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, eris.Wrap(err, "query issues")
	}
	defer rows.Close()

	var result []domain.ParseIssue
	for rows.Next() {
		var (
			issue domain.ParseIssue
			kind  string
		)
		if err := rows.Scan(&kind, &issue.Message, &issue.InputFile, &issue.InputLineNumber, &issue.RawLine); err != nil {
			return nil, eris.Wrap(err, "scan issue")
		}
		issue.Kind = domain.IssueKind(kind)
		result = append(result, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "iterate issues")
	}
	return result, nil
}
