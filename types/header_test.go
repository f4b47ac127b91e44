package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/ibclight/internal/test/factory"
	"github.com/tendermint/ibclight/types"
)

func TestHeaderNilSafe(t *testing.T) {
	var h *types.Header
	assert.Equal(t, types.ZeroHeight, h.Height())
	assert.True(t, h.Time().IsZero())
	assert.Error(t, h.ValidateBasic())

	h = &types.Header{}
	assert.Equal(t, types.ZeroHeight, h.Height())
	assert.Error(t, h.ValidateBasic())
}

func TestHeaderValidateBasic(t *testing.T) {
	keys := factory.GenPrivKeys(2)
	vals := keys.ToValidators(10, 0)

	testCases := []struct {
		name   string
		mutate func(*types.Header)
		expErr bool
	}{
		{"valid", func(*types.Header) {}, false},
		{"trusted height equal", func(h *types.Header) { h.TrustedHeight = types.NewHeight(1, 5) }, true},
		{"trusted height above", func(h *types.Header) { h.TrustedHeight = types.NewHeight(1, 6) }, true},
		{"trusted revision differs", func(h *types.Header) { h.TrustedHeight = types.NewHeight(0, 1) }, true},
		{"zero time", func(h *types.Header) { h.SignedHeader.Time = time.Time{} }, true},
		{"missing commit", func(h *types.Header) { h.SignedHeader.Commit = nil }, true},
		{"short validators hash", func(h *types.Header) { h.SignedHeader.ValidatorsHash = []byte{1} }, true},
		{"app hash changed after signing", func(h *types.Header) { h.SignedHeader.AppHash = []byte("other") }, true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sh := keys.GenSignedHeader(t, chainID, 5, bTime, vals, vals, []byte("app_hash"), 0, 2)
			h := factory.MakeHeader(sh, vals, types.NewHeight(1, 2), vals)
			tc.mutate(h)
			if tc.expErr {
				assert.Error(t, h.ValidateBasic())
			} else {
				assert.NoError(t, h.ValidateBasic())
			}
		})
	}
}

func TestHeaderConsensusState(t *testing.T) {
	keys := factory.GenPrivKeys(1)
	vals := keys.ToValidators(10, 0)
	sh := keys.GenSignedHeader(t, chainID, 5, bTime, vals, vals, []byte("app_hash"), 0, 1)
	h := factory.MakeHeader(sh, vals, types.NewHeight(1, 2), vals)

	cs := h.ConsensusState()
	require.NoError(t, cs.ValidateBasic())
	assert.Equal(t, uint64(bTime.UnixNano()), cs.Timestamp)
	assert.Equal(t, h.Timestamp(), cs.Timestamp)
	assert.Equal(t, []byte("app_hash"), []byte(cs.Root))
	assert.Equal(t, vals.Hash(), []byte(cs.NextValidatorsHash))
	assert.Equal(t, types.NewHeight(1, 5), h.Height())
}

func TestMisbehaviourValidateBasic(t *testing.T) {
	keys := factory.GenPrivKeys(2)
	vals := keys.ToValidators(10, 0)
	header := func(height int64, appHash string) *types.Header {
		sh := keys.GenSignedHeader(t, chainID, height, bTime, vals, vals, []byte(appHash), 0, 2)
		return factory.MakeHeader(sh, vals, types.NewHeight(1, 1), vals)
	}

	m := &types.Misbehaviour{ClientID: "07-tendermint-0", Header1: header(5, "a"), Header2: header(5, "b")}
	assert.NoError(t, m.ValidateBasic())

	m.Header1 = header(6, "a")
	assert.NoError(t, m.ValidateBasic())

	m.Header1, m.Header2 = m.Header2, m.Header1
	assert.Error(t, m.ValidateBasic())

	m.Header1 = nil
	assert.Error(t, m.ValidateBasic())

	var nilMisbehaviour *types.Misbehaviour
	assert.Error(t, nilMisbehaviour.ValidateBasic())
}
