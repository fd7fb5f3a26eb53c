// Package adapter maps raw JSONL records from one source family into
// canonical signal envelopes.
package adapter

import (
	"time"

	"go.uber.org/zap"

	"signal-io/internal/domain"
)

// Options controls one Signals call.
type Options struct {
	// Since and Until bound the emitted window (inclusive). Nil is open.
	Since *time.Time
	Until *time.Time

	// Lenient keeps records that fail validation by mapping them to the
	// family's fallback payload instead of reporting an issue.
	Lenient bool

	// ValidateAddresses checks token mints and wallets on solana-family chains.
	ValidateAddresses bool

	// Now supplies "now" for default timestamps and ingested_at.
	// Defaults to time.Now. Read once per call.
	Now func() time.Time

	// Logger receives debug output. Defaults to a no-op logger.
	Logger *zap.Logger
}

// Stats counts what happened to the records of one call.
type Stats struct {
	RecordsRead int // valid JSON objects read
	OutOfWindow int // records dropped by Since/Until
}

// Result is the outcome of one Signals call.
type Result struct {
	Signals []domain.SignalEnvelope // ordered by (timestamp, dedup key)
	Issues  []domain.ParseIssue     // in input order
	Stats   Stats
}

// Adapter converts a JSONL file or directory into signals.
// Implementations hold no per-call state and are safe for concurrent use.
type Adapter interface {
	// Name returns the registry key, e.g. "social_jsonl_v1".
	Name() string

	// Version returns the adapter version written to each trace.
	Version() string

	// Signals reads path and returns envelopes and issues.
	// Only unreadable paths are returned as errors.
	Signals(path string, opts Options) (*Result, error)
}

// meta carries the identity shared by every adapter.
type meta struct {
	name    string
	version string
}

func (m meta) Name() string    { return m.name }
func (m meta) Version() string { return m.version }
