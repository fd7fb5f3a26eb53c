package adapter

import (
	"sort"
	"strings"

	"signal-io/internal/domain"
)

// sortBuilt orders rows by (timestamp ASC, dedup key ASC).
// Rows equal on both keep input order.
func sortBuilt(rows []built) {
	sort.SliceStable(rows, func(i, j int) bool {
		return compareBuilt(rows[i], rows[j]) < 0
	})
}

// compareBuilt returns -1 if a < b, 0 if a == b, 1 if a > b.
func compareBuilt(a, b built) int {
	if a.ts.Before(b.ts) {
		return -1
	}
	if a.ts.After(b.ts) {
		return 1
	}
	return strings.Compare(a.key, b.key)
}

// ValidateOrdering checks that signals are in non-decreasing timestamp order.
// Returns ErrInvalidOrdering naming the first offending position.
func ValidateOrdering(signals []domain.SignalEnvelope) error {
	for i := 1; i < len(signals); i++ {
		if signals[i].Timestamp < signals[i-1].Timestamp {
			return orderingError(i)
		}
	}
	return nil
}
