package domain

import "time"

// SchemaVersion is the version tag carried by every envelope.
const SchemaVersion = "0.1"

// EntityKindPlatformIdentifier is the only entity reference kind emitted.
const EntityKindPlatformIdentifier = "platform_identifier"

// EntityRef points at the platform-local identity a signal is about.
type EntityRef struct {
	Kind       string `json:"kind"`
	Platform   string `json:"platform"`
	Identifier string `json:"identifier"`
}

// NewEntityRef returns a platform_identifier reference.
func NewEntityRef(platform, identifier string) EntityRef {
	return EntityRef{
		Kind:       EntityKindPlatformIdentifier,
		Platform:   platform,
		Identifier: identifier,
	}
}

// TraceContext records where and how an envelope was produced.
type TraceContext struct {
	IngestedAt       string  `json:"ingested_at"`
	InputFile        string  `json:"input_file"`
	InputLineNumber  int     `json:"input_line_number"` // 1-based
	AdapterName      string  `json:"adapter_name"`
	AdapterVersion   string  `json:"adapter_version"`
	RawID            *string `json:"raw_id"`            // nullable
	OriginalTimezone *string `json:"original_timezone"` // nil when the source had no offset
}

// SignalEnvelope is the canonical normalized record.
// SignalID is a pure function of (Source, UTC timestamp, natural key).
type SignalEnvelope struct {
	SchemaVersion string       `json:"schema_version"`
	SignalID      string       `json:"signal_id"`
	Timestamp     string       `json:"timestamp"` // YYYY-MM-DDTHH:MM:SSZ
	Source        string       `json:"source"`
	PayloadType   string       `json:"payload_type"`
	Payload       Payload      `json:"payload"`
	EntityRefs    []EntityRef  `json:"entity_refs"`
	Trace         TraceContext `json:"trace"`
}

// Day returns the UTC calendar day label used for partitioning.
func (e SignalEnvelope) Day() string {
	if len(e.Timestamp) < 10 {
		return e.Timestamp
	}
	return e.Timestamp[:10]
}

// Time parses the envelope timestamp.
func (e SignalEnvelope) Time() (time.Time, error) {
	return time.Parse(time.RFC3339, e.Timestamp)
}

// SignalRecord is the stored form of an envelope.
// Corresponds to the signals table in PostgreSQL, SQLite and ClickHouse.
type SignalRecord struct {
	SignalID        string    // PRIMARY KEY
	Timestamp       time.Time // UTC, second precision
	Source          string    // lower-cased platform or chain
	PayloadType     string    // payload variant name
	AdapterName     string    // adapter that produced the envelope
	InputFile       string    // source file path
	InputLineNumber int       // 1-based line in InputFile
	Document        []byte    // canonical JSON of the full envelope
}
