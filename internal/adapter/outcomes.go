package adapter

import (
	"fmt"
	"strconv"

	"signal-io/internal/domain"
	"signal-io/internal/jsonl"
)

// Registry name and version of the outreach adapter.
const (
	OutcomesAdapterName    = "outcomes_jsonl_v1"
	OutcomesAdapterVersion = "0.1"
)

// OutcomeType is the "type" field of an outreach record.
type OutcomeType string

const (
	OutcomeMessageSent   OutcomeType = "message_sent"
	OutcomeReplyReceived OutcomeType = "reply_received"
	OutcomeMeetingBooked OutcomeType = "meeting_booked"
	OutcomeRevenueEvent  OutcomeType = "revenue_event"
)

// OutcomesAdapter maps outreach/CRM outcome records.
// Types are matched after trimming only; the timestamp defaults to the
// epoch and ingested_at equals the event timestamp.
type OutcomesAdapter struct {
	meta
}

// NewOutcomesAdapter creates an OutcomesAdapter.
func NewOutcomesAdapter() *OutcomesAdapter {
	return &OutcomesAdapter{meta: meta{name: OutcomesAdapterName, version: OutcomesAdapterVersion}}
}

// Signals implements Adapter.
func (a *OutcomesAdapter) Signals(path string, opts Options) (*Result, error) {
	return collect(path, opts, a.mapRecord)
}

func (a *OutcomesAdapter) mapRecord(raw *jsonl.RawRecord, rc *runContext) (*built, error) {
	rec := record(raw.Fields)
	typ := OutcomeType(rec.trimmed("type", ""))
	source := rec.lower("source", "manual")
	if source == "" {
		source = "manual"
	}
	actor := rec.trimmed("actor", "")

	ts, err := rc.timestamp(rec, epoch)
	if err != nil {
		return nil, err
	}

	nums := rc.numbers(rec)
	var (
		payload    domain.Payload
		key        string
		identifier string
	)

	switch typ {
	case OutcomeMessageSent:
		p := domain.MessageSent{
			Channel:   rec.str("channel", "manual"),
			Recipient: orUnknown(actor),
			Subject:   rec.optStr("subject"),
		}
		payload, identifier = p, p.Recipient
		key = joinKey(string(typ), p.Channel, p.Recipient, deref(p.Subject))
	case OutcomeReplyReceived:
		p := domain.ReplyReceived{
			Channel: rec.str("channel", "manual"),
			Sender:  orUnknown(actor),
			Subject: rec.optStr("subject"),
		}
		payload, identifier = p, p.Sender
		key = joinKey(string(typ), p.Channel, p.Sender, deref(p.Subject))
	case OutcomeMeetingBooked:
		p := domain.MeetingBooked{
			Participant: orUnknown(actor),
			MeetingID:   rec.optStr("meeting_id"),
		}
		payload, identifier = p, p.Participant
		key = joinKey(string(typ), p.Participant, deref(p.MeetingID))
	case OutcomeRevenueEvent:
		p := domain.RevenueEvent{
			Account:  orUnknown(actor),
			Amount:   nums.float("amount"),
			Currency: rec.str("currency", "USD"),
		}
		payload, identifier = p, p.Account
		key = joinKey(string(typ), p.Account, strconv.FormatFloat(p.Amount, 'f', 2, 64), p.Currency)
	default:
		if !rc.opts.Lenient {
			return nil, fmt.Errorf("unsupported type: %s", typ)
		}
		p := domain.MessageSent{
			Channel:   "manual",
			Recipient: orUnknown(actor),
			Subject:   rec.optStr("subject"),
		}
		payload, identifier = p, p.Recipient
		key = joinKey("fallback", actor, rec.str("subject", ""))
	}
	if nums.err != nil {
		return nil, nums.err
	}

	return a.build(raw, envelopeSpec{
		source:     source,
		ts:         ts,
		ingestedAt: ts.UTC,
		key:        key,
		payload:    payload,
		identifier: identifier,
	}), nil
}
