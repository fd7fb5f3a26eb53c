package adapter

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signal-io/internal/domain"
)

func TestCollect_OrderingTieBreaksOnKey(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "rpc.jsonl",
		`{"type":"trade","token_mint":"mint-b","timestamp":"2026-02-05T12:00:00Z"}`,
		`{"type":"trade","token_mint":"mint-a","timestamp":"2026-02-05T12:00:00Z"}`,
		`{"type":"trade","token_mint":"mint-c","timestamp":"2026-02-05T11:59:59Z"}`,
	)

	res, err := NewSolanaRPCAdapter().Signals(path, Options{Now: fixedClock})
	require.NoError(t, err)
	require.Len(t, res.Signals, 3)

	mints := []string{}
	for _, s := range res.Signals {
		mints = append(mints, s.EntityRefs[0].Identifier)
	}
	assert.Equal(t, []string{"mint-c", "mint-a", "mint-b"}, mints)
}

func TestCollect_InputOrderDoesNotMatter(t *testing.T) {
	dir := t.TempDir()
	forward := writeFixture(t, dir, "forward.jsonl", seasonFixture...)

	reversed := make([]string, len(seasonFixture))
	for i, line := range seasonFixture {
		reversed[len(seasonFixture)-1-i] = line
	}
	backward := writeFixture(t, dir, "backward.jsonl", reversed...)

	a, err := NewSeasonAdapter().Signals(forward, Options{})
	require.NoError(t, err)
	b, err := NewSeasonAdapter().Signals(backward, Options{})
	require.NoError(t, err)

	assert.Equal(t, signalIDs(a.Signals), signalIDs(b.Signals))
}

func TestCollect_WindowIsInclusive(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "onchain.jsonl", seasonFixture...)
	since := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 4, 0, 0, 0, 0, time.UTC)

	res, err := NewSeasonAdapter().Signals(path, Options{Since: &since, Until: &until})
	require.NoError(t, err)
	assert.Equal(t, []string{"SeasonGameCreated", "SeasonRewardDistributed", "SeasonStakeRecorded"}, payloadTypes(res.Signals))
	assert.Equal(t, 3, res.Stats.OutOfWindow)
	assert.Len(t, res.Issues, 1)
}

func TestCollect_MalformedLinesAreIsolated(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "onchain.jsonl",
		`{"type":"season_init","season_id":"s1","timestamp":"2026-02-01T00:00:00Z"}`,
		`{"type":`,
		`"just a string"`,
		`{"type":"end","season_id":"s1","game_id":"g1","timestamp":"2026-02-06T00:00:00Z"}`,
	)

	res, err := NewSeasonAdapter().Signals(path, Options{})
	require.NoError(t, err)
	assert.Len(t, res.Signals, 2)
	require.Len(t, res.Issues, 2)
	assert.Equal(t, domain.IssueKindStructural, res.Issues[0].Kind)
	assert.Equal(t, 2, res.Issues[0].InputLineNumber)
	assert.Equal(t, "json line must be an object", res.Issues[1].Message)
	assert.Equal(t, `"just a string"`, res.Issues[1].RawLine)
}

func TestCollect_IdempotentIDsAcrossRuns(t *testing.T) {
	path := writeFixture(t, t.TempDir(), "onchain.jsonl", seasonFixture...)

	first, err := NewSeasonAdapter().Signals(path, Options{})
	require.NoError(t, err)

	later := func() time.Time { return fixedNow.Add(48 * time.Hour) }
	second, err := NewSeasonAdapter().Signals(path, Options{Now: later})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCollect_MissingPath(t *testing.T) {
	_, err := NewSocialAdapter().Signals(filepath.Join(t.TempDir(), "nope"), Options{})
	assert.Error(t, err)
}

func TestValidateOrdering(t *testing.T) {
	ok := []domain.SignalEnvelope{{Timestamp: "2026-02-05T12:00:00Z"}, {Timestamp: "2026-02-05T12:00:00Z"}, {Timestamp: "2026-02-06T00:00:00Z"}}
	assert.NoError(t, ValidateOrdering(ok))

	bad := []domain.SignalEnvelope{{Timestamp: "2026-02-06T00:00:00Z"}, {Timestamp: "2026-02-05T12:00:00Z"}}
	assert.ErrorIs(t, ValidateOrdering(bad), ErrInvalidOrdering)
}
