package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-io/internal/domain"
	"signal-io/internal/storage"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "signals.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() }) //nolint:errcheck
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

func record(id string, ts time.Time, source string) *domain.SignalRecord {
	return &domain.SignalRecord{
		SignalID:        id,
		Timestamp:       ts,
		Source:          source,
		PayloadType:     "PostSeen",
		AdapterName:     "social_manual_v1",
		InputFile:       "social.jsonl",
		InputLineNumber: 3,
		Document:        []byte(`{"a":1,"b":"ü"}`),
	}
}

func TestSQLite_Migrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Migrate(context.Background()))
}

func TestSQLite_Signal_InsertAndGet(t *testing.T) {
	st := NewSignalStore(newTestDB(t))
	ctx := context.Background()
	ts := time.Date(2026, 2, 5, 12, 0, 0, 500000, time.UTC)

	require.NoError(t, st.Insert(ctx, record("s_1", ts, "x")))

	got, err := st.GetByID(ctx, "s_1")
	require.NoError(t, err)
	assert.True(t, got.Timestamp.Equal(ts))
	assert.Equal(t, "x", got.Source)
	assert.Equal(t, "PostSeen", got.PayloadType)
	assert.Equal(t, 3, got.InputLineNumber)
	assert.Equal(t, `{"a":1,"b":"ü"}`, string(got.Document))
}

func TestSQLite_Signal_Errors(t *testing.T) {
	st := NewSignalStore(newTestDB(t))
	ctx := context.Background()
	r := record("s_1", time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC), "x")

	require.NoError(t, st.Insert(ctx, r))
	assert.ErrorIs(t, st.Insert(ctx, r), storage.ErrDuplicateKey)

	_, err := st.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, st.Insert(ctx, &domain.SignalRecord{SignalID: "s_2"}), storage.ErrInvalidInput)
}

func TestSQLite_Signal_InsertNew(t *testing.T) {
	st := NewSignalStore(newTestDB(t))
	ctx := context.Background()
	ts := time.Date(2026, 2, 5, 12, 0, 0, 0, time.UTC)

	batch := []*domain.SignalRecord{record("s_1", ts, "x"), record("s_2", ts, "x")}
	n, err := st.InsertNew(ctx, batch)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = st.InsertNew(ctx, append(batch, record("s_3", ts, "x")))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = st.InsertNew(ctx, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLite_Signal_Ordering(t *testing.T) {
	st := NewSignalStore(newTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)

	_, err := st.InsertNew(ctx, []*domain.SignalRecord{
		record("s_c", base.Add(2*time.Hour), "solana"),
		record("s_b", base.Add(time.Hour), "solana"),
		record("s_a", base.Add(time.Hour), "x"),
		record("s_d", base.Add(48*time.Hour), "x"),
	})
	require.NoError(t, err)

	got, err := st.GetByTimeRange(ctx, base.Add(time.Hour), base.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"s_a", "s_b", "s_c"}, ids(got))

	got, err = st.GetBySource(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"s_a", "s_d"}, ids(got))
}

func TestSQLite_Issues(t *testing.T) {
	st := NewIssueStore(newTestDB(t))
	ctx := context.Background()

	issues := []domain.ParseIssue{
		{Message: "invalid json: eof", InputFile: "a.jsonl", InputLineNumber: 1, RawLine: "{", Kind: domain.IssueKindStructural},
		{Message: "missing field: url", InputFile: "a.jsonl", InputLineNumber: 4, RawLine: `{"type":"post"}`, Kind: domain.IssueKindValidation},
	}
	require.NoError(t, st.InsertBulk(ctx, "run-1", issues))
	assert.ErrorIs(t, st.InsertBulk(ctx, "run-1", issues), storage.ErrDuplicateKey)

	got, err := st.GetByRunID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, issues, got)

	got, err = st.GetByRunID(ctx, "run-2")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func ids(records []*domain.SignalRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.SignalID
	}
	return out
}
