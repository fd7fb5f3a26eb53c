package adapter

import (
	"fmt"

	"go.uber.org/zap"

	"signal-io/internal/domain"
	"signal-io/internal/jsonl"
	"signal-io/internal/solana"
)

// Registry names and versions of the chain adapters.
const (
	SolanaRPCAdapterName    = "solana_rpc_v1"
	SolanaRPCAdapterVersion = "0.1"
	PumpfunAdapterName      = "pumpfun_v1"
	PumpfunAdapterVersion   = "0.1-exp"
)

// Chain names.
const (
	ChainSolana  = "solana"
	ChainPumpfun = "pumpfun"
)

// ChainEventType is the "type" field of a token activity record.
type ChainEventType string

const (
	ChainTrade          ChainEventType = "trade"
	ChainHolderChange   ChainEventType = "holder_change"
	ChainSupplyChange   ChainEventType = "supply_change"
	ChainLiquidityEvent ChainEventType = "liquidity_event"
	ChainMetadataUpdate ChainEventType = "metadata_update"
	ChainRewardUpdate   ChainEventType = "reward_update"
)

// recordTransform rewrites a raw object before mapping. It must not
// modify its input.
type recordTransform func(map[string]any) map[string]any

// ChainAdapter maps token activity records captured from a chain RPC.
// The timestamp and ingested_at default to now.
type ChainAdapter struct {
	meta
	mapper    chainMapper
	transform recordTransform
}

// NewSolanaRPCAdapter creates the generic chain adapter.
func NewSolanaRPCAdapter() *ChainAdapter {
	return &ChainAdapter{meta: meta{name: SolanaRPCAdapterName, version: SolanaRPCAdapterVersion}}
}

// NewPumpfunAdapter creates the pumpfun variant, which defaults the chain
// to "pumpfun" and otherwise maps exactly like the generic adapter.
func NewPumpfunAdapter() *ChainAdapter {
	return &ChainAdapter{
		meta:      meta{name: PumpfunAdapterName, version: PumpfunAdapterVersion},
		transform: withDefault("chain", ChainPumpfun),
	}
}

// withDefault sets key to value when the key is absent or null.
func withDefault(key string, value any) recordTransform {
	return func(fields map[string]any) map[string]any {
		if v, ok := fields[key]; ok && v != nil {
			return fields
		}
		out := make(map[string]any, len(fields)+1)
		for k, v := range fields {
			out[k] = v
		}
		out[key] = value
		return out
	}
}

// Signals implements Adapter.
func (a *ChainAdapter) Signals(path string, opts Options) (*Result, error) {
	return collect(path, opts, a.mapRecord)
}

func (a *ChainAdapter) mapRecord(raw *jsonl.RawRecord, rc *runContext) (*built, error) {
	fields := raw.Fields
	if a.transform != nil {
		fields = a.transform(fields)
	}
	rec := record(fields)

	chain := rec.lower("chain", ChainSolana)
	if chain == "" {
		chain = ChainSolana
	}
	eventType := ChainEventType(rec.lower("type", ""))
	mint := rec.trimmed("token_mint", "")
	wallet := rec.trimmed("wallet", "")

	if mint == "" && !rc.opts.Lenient {
		return nil, fmt.Errorf("missing required field: token_mint")
	}

	ts, err := rc.timestamp(rec, rc.now)
	if err != nil {
		return nil, err
	}

	if err := checkAddresses(rc, chain, raw, addressField{"token_mint", mint}, addressField{"wallet", wallet}); err != nil {
		return nil, err
	}

	payload, key, err := a.mapper.mapPayload(rc, rec, chain, eventType, mint, wallet)
	if err != nil {
		return nil, err
	}

	return a.build(raw, envelopeSpec{
		source:     chain,
		ts:         ts,
		ingestedAt: rc.now,
		key:        key,
		payload:    payload,
		identifier: orUnknown(mint),
	}), nil
}

// chainMapper holds the token event mapping shared by chain adapters.
type chainMapper struct{}

func (chainMapper) mapPayload(
	rc *runContext,
	rec record,
	chain string,
	eventType ChainEventType,
	mint string,
	wallet string,
) (domain.Payload, string, error) {
	nums := rc.numbers(rec)
	tokenMint := orUnknown(mint)

	var (
		payload domain.Payload
		key     string
	)
	switch eventType {
	case ChainTrade:
		p := domain.TokenTradeSeen{
			Chain:     chain,
			TokenMint: tokenMint,
			Wallet:    orUnknown(wallet),
			Side:      rec.str("side", unknown),
			Amount:    nums.float("amount"),
			PriceUSD:  nums.optFloat("price_usd"),
		}
		payload = p
		key = joinKey(string(eventType), p.TokenMint, p.Wallet, p.Side, keyFloat(p.Amount), keyOptFloat(p.PriceUSD))
	case ChainHolderChange:
		p := domain.HolderChangeSeen{
			Chain:     chain,
			TokenMint: tokenMint,
			Wallet:    orUnknown(wallet),
			Delta:     nums.float("delta"),
		}
		payload = p
		key = joinKey(string(eventType), p.TokenMint, p.Wallet, keyFloat(p.Delta))
	case ChainSupplyChange:
		p := domain.SupplyChangeSeen{
			Chain:     chain,
			TokenMint: tokenMint,
			NewSupply: nums.float("new_supply"),
			Delta:     nums.optFloat("delta"),
		}
		payload = p
		key = joinKey(string(eventType), p.TokenMint, keyFloat(p.NewSupply), keyOptFloat(p.Delta))
	case ChainLiquidityEvent:
		p := domain.LiquidityEventSeen{
			Chain:     chain,
			TokenMint: tokenMint,
			Pool:      rec.str("pool", unknown),
			Action:    rec.str("action", unknown),
			Amount:    nums.float("amount"),
		}
		payload = p
		key = joinKey(string(eventType), p.TokenMint, p.Pool, p.Action, keyFloat(p.Amount))
	case ChainMetadataUpdate:
		p := domain.TokenMetadataUpdated{
			Chain:     chain,
			TokenMint: tokenMint,
			Field:     rec.str("field", unknown),
			Value:     rec.str("value", ""),
		}
		payload = p
		key = joinKey(string(eventType), p.TokenMint, p.Field, p.Value)
	case ChainRewardUpdate:
		p := domain.RewardUpdated{
			Chain:     chain,
			TokenMint: tokenMint,
			Wallet:    orUnknown(wallet),
			Program:   rec.str("program", unknown),
			Amount:    nums.float("amount"),
		}
		payload = p
		key = joinKey(string(eventType), p.TokenMint, p.Wallet, p.Program, keyFloat(p.Amount))
	default:
		if !rc.opts.Lenient {
			return nil, "", fmt.Errorf("unsupported type: %s", eventType)
		}
		payload = domain.TokenMetadataUpdated{
			Chain:     chain,
			TokenMint: tokenMint,
			Field:     unknown,
			Value:     jsonl.Compact(map[string]any(rec)),
		}
		key = joinKey("fallback", mint, string(eventType), wallet)
	}
	if nums.err != nil {
		return nil, "", nums.err
	}
	return payload, key, nil
}

type addressField struct {
	name  string
	value string
}

// checkAddresses validates base58 public keys on solana-family chains when
// address validation is enabled. Empty values are skipped.
func checkAddresses(rc *runContext, chain string, raw *jsonl.RawRecord, fields ...addressField) error {
	if !rc.opts.ValidateAddresses || (chain != ChainSolana && chain != ChainPumpfun) {
		return nil
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := solana.ValidateAddress(f.value); err != nil {
			if !rc.opts.Lenient {
				return fmt.Errorf("invalid solana address for %s: %s", f.name, f.value)
			}
			rc.logger.Debug("keeping record with invalid address",
				zap.String("field", f.name),
				zap.String("value", f.value),
				zap.String("input_file", raw.InputFile),
				zap.Int("line", raw.LineNumber),
			)
			continue
		}
		if f.name == "wallet" && !solana.IsOnCurve(f.value) {
			rc.logger.Debug("wallet is a program-derived address",
				zap.String("wallet", f.value),
				zap.String("input_file", raw.InputFile),
				zap.Int("line", raw.LineNumber),
			)
		}
	}
	return nil
}
