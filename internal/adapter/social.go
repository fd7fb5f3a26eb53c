package adapter

import (
	"fmt"
	"strings"

	"signal-io/internal/domain"
	"signal-io/internal/jsonl"
)

// Registry name and version of the social adapter.
const (
	SocialAdapterName    = "social_jsonl_v1"
	SocialAdapterVersion = "0.1"
)

// SocialType is the "type" field of a social capture.
type SocialType string

const (
	SocialPostSeen    SocialType = "post_seen"
	SocialProfileSeen SocialType = "profile_seen"
)

// SocialAdapter maps social-media post and profile captures.
// The timestamp and ingested_at default to now.
type SocialAdapter struct {
	meta
}

// NewSocialAdapter creates a SocialAdapter.
func NewSocialAdapter() *SocialAdapter {
	return &SocialAdapter{meta: meta{name: SocialAdapterName, version: SocialAdapterVersion}}
}

// Signals implements Adapter.
func (a *SocialAdapter) Signals(path string, opts Options) (*Result, error) {
	return collect(path, opts, a.mapRecord)
}

func (a *SocialAdapter) mapRecord(raw *jsonl.RawRecord, rc *runContext) (*built, error) {
	rec := record(raw.Fields)
	platform := rec.lower("platform", "")
	typ := SocialType(rec.lower("type", ""))
	author := rec.trimmed("author_handle", "")
	url := rec.trimmed("url", "")

	if !rc.opts.Lenient {
		var missing []string
		for _, f := range []struct {
			name  string
			value string
		}{
			{"platform", platform},
			{"type", string(typ)},
			{"author_handle", author},
			{"url", url},
			{"timestamp", rec.str("timestamp", "")},
		} {
			if f.value == "" {
				missing = append(missing, f.name)
			}
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
		}
	}

	if platform == "" {
		platform = unknown
	}

	ts, err := rc.timestamp(rec, rc.now)
	if err != nil {
		return nil, err
	}

	var (
		payload domain.Payload
		key     string
	)
	switch typ {
	case SocialPostSeen:
		payload = domain.SocialPostSeen{
			Platform:     platform,
			AuthorHandle: orUnknown(author),
			PostURL:      url,
			Text:         rec.str("text", ""),
			Action:       "seen",
		}
		key = joinKey(platform, "post", url, "seen")
	case SocialProfileSeen:
		payload = domain.ProfileSnapshotSeen{
			Platform:     platform,
			AuthorHandle: orUnknown(author),
			ProfileURL:   url,
			Text:         rec.optStr("text"),
		}
		key = joinKey(platform, "profile", url)
	default:
		if !rc.opts.Lenient {
			return nil, fmt.Errorf("unsupported type: %s", typ)
		}
		payload = domain.ProfileSnapshotSeen{
			Platform:     platform,
			AuthorHandle: orUnknown(author),
			ProfileURL:   url,
			Text:         rec.optStr("text"),
		}
		key = joinKey(platform, "fallback", url, orUnknown(author))
	}

	return a.build(raw, envelopeSpec{
		source:     platform,
		ts:         ts,
		ingestedAt: rc.now,
		key:        key,
		payload:    payload,
		identifier: orUnknown(author),
	}), nil
}
