package sqlite

import (
	"context"

	"github.com/rotisserie/eris"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

// IssueStore is a SQLite implementation of storage.IssueStore.
type IssueStore struct {
	db *DB
}

// NewIssueStore creates a new SQLite issue store.
func NewIssueStore(db *DB) *IssueStore {
	return &IssueStore{db: db}
}

// Compile-time interface check.
var _ storage.IssueStore = (*IssueStore)(nil)

// InsertBulk appends the issues of one run. Returns ErrDuplicateKey if the run exists.
func (s *IssueStore) InsertBulk(ctx context.Context, runID string, issues []domain.ParseIssue) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(issues) == 0 {
		return nil
	}

	tx, err := s.db.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	for i, issue := range issues {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO ingest_issues (run_id, seq, kind, message, input_file, input_line_number, raw_line)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, i, string(issue.Kind), issue.Message, issue.InputFile, issue.InputLineNumber, issue.RawLine,
		)
		if isUniqueViolation(err) {
			return storage.ErrDuplicateKey
		}
		if err != nil {
			return eris.Wrapf(err, "sqlite: insert issue %s/%d", runID, i)
		}
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}

// GetByRunID retrieves the issues of one run in insertion order.
func (s *IssueStore) GetByRunID(ctx context.Context, runID string) ([]domain.ParseIssue, error) {
	rows, err := s.db.db.QueryContext(ctx,
		`SELECT kind, message, input_file, input_line_number, raw_line
		FROM ingest_issues WHERE run_id = ? ORDER BY seq ASC`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query issues")
	}
	defer rows.Close()

	var result []domain.ParseIssue
	for rows.Next() {
		var (
			issue domain.ParseIssue
			kind  string
		)
		if err := rows.Scan(&kind, &issue.Message, &issue.InputFile, &issue.InputLineNumber, &issue.RawLine); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan issue")
		}
		issue.Kind = domain.IssueKind(kind)
		result = append(result, issue)
	}
	return result, eris.Wrap(rows.Err(), "sqlite: iterate issues")
}
