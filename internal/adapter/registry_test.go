package adapter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()

	assert.Equal(t, []string{
		"outcomes_jsonl_v1",
		"pumpfun_v1",
		"season1_onchain_jsonl_v1",
		"social_jsonl_v1",
		"solana_rpc_v1",
	}, r.Names())

	for _, name := range r.Names() {
		a, err := r.Get(name)
		require.NoError(t, err)
		assert.Equal(t, name, a.Name())
		assert.NotEmpty(t, a.Version())
	}
}

func TestRegistry_UnknownAdapter(t *testing.T) {
	r := DefaultRegistry()

	_, err := r.Get("twitter_v9")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAdapter))
	assert.Contains(t, err.Error(), "twitter_v9")
	assert.Contains(t, err.Error(), "outcomes_jsonl_v1, pumpfun_v1, season1_onchain_jsonl_v1, social_jsonl_v1, solana_rpc_v1")
}

func TestRegistry_RegisterOverwrites(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Names())

	r.Register(NewSolanaRPCAdapter())
	replacement := &ChainAdapter{meta: meta{name: SolanaRPCAdapterName, version: "0.2"}}
	r.Register(replacement)

	got, err := r.Get(SolanaRPCAdapterName)
	require.NoError(t, err)
	assert.Equal(t, "0.2", got.Version())
	assert.Len(t, r.Names(), 1)
}
