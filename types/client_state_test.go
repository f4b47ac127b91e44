package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/ibclight/ics23"
	tmmath "github.com/tendermint/ibclight/libs/math"
	"github.com/tendermint/ibclight/types"
)

func validClientState() *types.ClientState {
	return &types.ClientState{
		ChainID:         chainID,
		Type:            types.ClientTypeTendermint,
		TrustLevel:      types.DefaultTrustLevel,
		TrustingPeriod:  2 * time.Hour,
		UnbondingPeriod: 3 * time.Hour,
		MaxClockDrift:   10 * time.Second,
		LatestHeight:    types.NewHeight(1, 100),
		ProofSpecs:      ics23.SDKSpecs(),
	}
}

func TestClientStateValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*types.ClientState)
		expErr bool
	}{
		{"valid", func(*types.ClientState) {}, false},
		{"cometbls", func(cs *types.ClientState) { cs.Type = types.ClientTypeCometBLS }, false},
		{"unknown type", func(cs *types.ClientState) { cs.Type = "solomachine" }, true},
		{"empty chain id", func(cs *types.ClientState) { cs.ChainID = " " }, true},
		{"trust level below 1/3", func(cs *types.ClientState) { cs.TrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 4} }, true},
		{"trust level above 1", func(cs *types.ClientState) { cs.TrustLevel = tmmath.Fraction{Numerator: 4, Denominator: 3} }, true},
		{"trust level of 1", func(cs *types.ClientState) { cs.TrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 1} }, false},
		{"zero trusting period", func(cs *types.ClientState) { cs.TrustingPeriod = 0 }, true},
		{"trusting period not below unbonding", func(cs *types.ClientState) { cs.TrustingPeriod = cs.UnbondingPeriod }, true},
		{"zero clock drift", func(cs *types.ClientState) { cs.MaxClockDrift = 0 }, true},
		{"zero latest height", func(cs *types.ClientState) { cs.LatestHeight = types.NewHeight(1, 0) }, true},
		{"revision mismatch", func(cs *types.ClientState) { cs.LatestHeight = types.NewHeight(2, 10) }, true},
		{"no proof specs", func(cs *types.ClientState) { cs.ProofSpecs = nil }, true},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			cs := validClientState()
			tc.mutate(cs)
			if tc.expErr {
				assert.Error(t, cs.Validate())
			} else {
				assert.NoError(t, cs.Validate())
			}
		})
	}
}

func TestClientStateCopy(t *testing.T) {
	cs := validClientState()
	cp := cs.Copy()
	cp.FrozenHeight = types.NewHeight(1, 1)
	cp.ProofSpecs = cp.ProofSpecs[:1]

	assert.False(t, cs.IsFrozen())
	assert.True(t, cp.IsFrozen())
	assert.Len(t, cs.ProofSpecs, 2)
}

func TestParseClientType(t *testing.T) {
	ct, err := types.ParseClientType("tendermint")
	require.NoError(t, err)
	assert.Equal(t, types.ClientTypeTendermint, ct)

	ct, err = types.ParseClientType("cometbls")
	require.NoError(t, err)
	assert.Equal(t, types.ClientTypeCometBLS, ct)

	_, err = types.ParseClientType("09-localhost")
	assert.Error(t, err)
}
