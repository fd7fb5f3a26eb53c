package adapter

import (
	"fmt"
	"strings"

	"signal-io/internal/domain"
	"signal-io/internal/jsonl"
)

// Registry name and version of the season adapter.
const (
	SeasonAdapterName    = "season1_onchain_jsonl_v1"
	SeasonAdapterVersion = "0.1"
)

// SeasonEventType is the "type" field of a season/game on-chain record.
type SeasonEventType string

const (
	SeasonInit       SeasonEventType = "season_init"
	SeasonGameCreate SeasonEventType = "game_create"
	SeasonDistribute SeasonEventType = "distribute"
	SeasonStake      SeasonEventType = "stake"
	SeasonEnd        SeasonEventType = "end"
	SeasonClaim      SeasonEventType = "claim"
)

// SeasonAdapter maps game-season on-chain activity.
// The timestamp defaults to the epoch and ingested_at equals the event timestamp.
type SeasonAdapter struct {
	meta
}

// NewSeasonAdapter creates a SeasonAdapter.
func NewSeasonAdapter() *SeasonAdapter {
	return &SeasonAdapter{meta: meta{name: SeasonAdapterName, version: SeasonAdapterVersion}}
}

// Signals implements Adapter.
func (a *SeasonAdapter) Signals(path string, opts Options) (*Result, error) {
	return collect(path, opts, a.mapRecord)
}

func (a *SeasonAdapter) mapRecord(raw *jsonl.RawRecord, rc *runContext) (*built, error) {
	rec := record(raw.Fields)
	eventType := SeasonEventType(rec.lower("type", ""))
	chain := rec.lower("chain", ChainSolana)
	if chain == "" {
		chain = ChainSolana
	}
	seasonID := rec.trimmed("season_id", "")
	gameID := rec.trimmed("game_id", "")
	wallet := rec.trimmed("wallet", "")

	if !rc.opts.Lenient {
		var missing []string
		if eventType == "" {
			missing = append(missing, "type")
		}
		if seasonID == "" {
			missing = append(missing, "season_id")
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
		}
	}

	ts, err := rc.timestamp(rec, epoch)
	if err != nil {
		return nil, err
	}

	if err := checkAddresses(rc, chain, raw, addressField{"wallet", wallet}); err != nil {
		return nil, err
	}

	nums := rc.numbers(rec)
	season, game := orUnknown(seasonID), orUnknown(gameID)

	var (
		payload    domain.Payload
		key        string
		identifier string
	)
	switch eventType {
	case SeasonInit:
		var gamePtr *string
		if gameID != "" {
			gamePtr = &gameID
		}
		payload = domain.SeasonInitialized{Chain: chain, SeasonID: season, GameID: gamePtr}
		key = joinKey(string(eventType), season, gameID)
		identifier = season
	case SeasonGameCreate:
		p := domain.SeasonGameCreated{Chain: chain, SeasonID: season, GameID: game, Creator: orUnknown(wallet)}
		payload = p
		key = joinKey(string(eventType), p.SeasonID, p.GameID, p.Creator)
		identifier = p.GameID
	case SeasonDistribute:
		p := domain.SeasonRewardDistributed{
			Chain:    chain,
			SeasonID: season,
			GameID:   game,
			Pool:     rec.str("pool", unknown),
			Amount:   nums.float("amount"),
		}
		payload = p
		key = joinKey(string(eventType), p.SeasonID, p.GameID, p.Pool, keyFloat(p.Amount))
		identifier = p.GameID
	case SeasonStake:
		p := domain.SeasonStakeRecorded{
			Chain:    chain,
			SeasonID: season,
			GameID:   game,
			Wallet:   orUnknown(wallet),
			Amount:   nums.float("amount"),
		}
		payload = p
		key = joinKey(string(eventType), p.SeasonID, p.GameID, p.Wallet, keyFloat(p.Amount))
		identifier = p.Wallet
	case SeasonEnd:
		p := domain.SeasonEnded{Chain: chain, SeasonID: season, GameID: game, Status: rec.str("status", "ended")}
		payload = p
		key = joinKey(string(eventType), p.SeasonID, p.GameID, p.Status)
		identifier = p.GameID
	case SeasonClaim:
		p := domain.SeasonRewardClaimed{
			Chain:    chain,
			SeasonID: season,
			GameID:   game,
			Wallet:   orUnknown(wallet),
			Amount:   nums.float("amount"),
		}
		payload = p
		key = joinKey(string(eventType), p.SeasonID, p.GameID, p.Wallet, keyFloat(p.Amount))
		identifier = p.Wallet
	default:
		if !rc.opts.Lenient {
			return nil, fmt.Errorf("unsupported type: %s", eventType)
		}
		payload = domain.SeasonEnded{Chain: chain, SeasonID: season, GameID: game, Status: unknown}
		key = joinKey("fallback", seasonID, gameID, string(eventType), wallet)
		identifier = season
	}
	if nums.err != nil {
		return nil, nums.err
	}

	return a.build(raw, envelopeSpec{
		source:     chain,
		ts:         ts,
		ingestedAt: ts.UTC,
		key:        key,
		payload:    payload,
		identifier: identifier,
	}), nil
}
