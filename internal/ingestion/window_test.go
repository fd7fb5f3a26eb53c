package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWindow(t *testing.T) {
	dayStart := time.Date(2026, 2, 5, 0, 0, 0, 0, time.UTC)
	dayEnd := time.Date(2026, 2, 5, 23, 59, 59, 999999000, time.UTC)
	since := time.Date(2026, 2, 5, 11, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name                 string
		day, since, until    string
		wantSince, wantUntil *time.Time
	}{
		{name: "open", wantSince: nil, wantUntil: nil},
		{name: "day", day: "2026-02-05", wantSince: &dayStart, wantUntil: &dayEnd},
		{name: "since overrides day start", day: "2026-02-05", since: "2026-02-05T12:00:00+01:00", wantSince: &since, wantUntil: &dayEnd},
		{name: "until overrides day end", day: "2026-02-05", until: "2026-02-07", wantSince: &dayStart, wantUntil: &until},
		{name: "since only", since: "2026-02-05 11:00", wantSince: &since},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := ResolveWindow(tt.day, tt.since, tt.until)
			require.NoError(t, err)
			assertTimePtr(t, tt.wantSince, w.Since)
			assertTimePtr(t, tt.wantUntil, w.Until)
		})
	}
}

func TestResolveWindow_Invalid(t *testing.T) {
	for _, in := range [][3]string{
		{"2026-13-01", "", ""},
		{"2026-02-05T00:00:00Z", "", ""},
		{"", "yesterday", ""},
		{"", "", "soon"},
	} {
		_, err := ResolveWindow(in[0], in[1], in[2])
		assert.ErrorIs(t, err, ErrInvalidWindow, "input %v", in)
	}
}

func assertTimePtr(t *testing.T, want, got *time.Time) {
	t.Helper()
	if want == nil {
		assert.Nil(t, got)
		return
	}
	require.NotNil(t, got)
	assert.True(t, want.Equal(*got), "want %s, got %s", want, got)
}

func TestResolveOutputPath(t *testing.T) {
	tests := []struct {
		out, day, want string
	}{
		{"", "2026-02-05", ""},
		{"signals.jsonl", "", "signals.jsonl"},
		{"signals.jsonl", "2026-02-05", "signals.jsonl"},
		{"out", "2026-02-05", "out/2026-02-05.jsonl"},
		{"out", "", "out"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveOutputPath(tt.out, tt.day), "out=%q day=%q", tt.out, tt.day)
	}
	assert.Equal(t, "store/signals/2026-02-05.jsonl", PartitionPath("store", "2026-02-05"))
}
