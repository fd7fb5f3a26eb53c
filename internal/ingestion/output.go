package ingestion

import (
	"path/filepath"
	"strings"

	"signal-io/internal/domain"
)

// DefaultIssueLog receives issues when a run has some and no log path was given.
const DefaultIssueLog = "workspace/logs/ingest_errors.jsonl"

// ResolveOutputPath returns the full-output file for a run.
// With a day window, an out path not ending in .jsonl is a directory holding <day>.jsonl.
func ResolveOutputPath(out, day string) string {
	if out == "" || day == "" || strings.HasSuffix(out, ".jsonl") {
		return out
	}
	return filepath.Join(out, day+".jsonl")
}

// PartitionPath returns the append target for one day under a store root.
func PartitionPath(store, day string) string {
	return filepath.Join(store, "signals", day+".jsonl")
}

// partition groups encoded lines by envelope day, keeping emit order inside
// each day and first-seen order across days.
func partition(signals []domain.SignalEnvelope, lines [][]byte) ([]string, map[string][][]byte) {
	var days []string
	byDay := make(map[string][][]byte)
	for i, s := range signals {
		day := s.Day()
		if _, ok := byDay[day]; !ok {
			days = append(days, day)
		}
		byDay[day] = append(byDay[day], lines[i])
	}
	return days, byDay
}
