package adapter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"signal-io/internal/domain"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// writeFixture writes a JSONL fixture into dir and returns its path.
func writeFixture(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return path
}

func payloadTypes(signals []domain.SignalEnvelope) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.PayloadType
	}
	return out
}

func signalIDs(signals []domain.SignalEnvelope) []string {
	out := make([]string, len(signals))
	for i, s := range signals {
		out[i] = s.SignalID
	}
	return out
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }
