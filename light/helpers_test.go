package light_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ibclight/ics23"
	"github.com/tendermint/ibclight/internal/test/factory"
	"github.com/tendermint/ibclight/libs/log"
	"github.com/tendermint/ibclight/light"
	dbs "github.com/tendermint/ibclight/light/store/db"
	"github.com/tendermint/ibclight/types"
)

const (
	chainID  = "testchain"
	clientID = "07-tendermint-0"
)

var (
	keys = factory.GenPrivKeys(4)
	vals = keys.ToValidators(10, 0)
)

func unix(sec int64) time.Time {
	return time.Unix(sec, 0).UTC()
}

func clientState(trustingPeriod time.Duration) *types.ClientState {
	return &types.ClientState{
		ChainID:         chainID,
		Type:            types.ClientTypeTendermint,
		TrustLevel:      types.DefaultTrustLevel,
		TrustingPeriod:  trustingPeriod,
		UnbondingPeriod: 2 * trustingPeriod,
		MaxClockDrift:   10 * time.Second,
		LatestHeight:    types.NewHeight(0, 1),
		ProofSpecs:      []*ics23.ProofSpec{ics23.TendermintSpec, ics23.TendermintSpec},
	}
}

// header returns a header at height signed by all of vals, verified against
// the consensus state at trustedHeight.
func header(t testing.TB, height int64, bTime time.Time, appHash []byte, trustedHeight int64) *types.Header {
	t.Helper()
	sh := keys.GenSignedHeader(t, chainID, height, bTime, vals, vals, appHash, 0, len(keys))
	return factory.MakeHeader(sh, vals, types.NewHeight(0, uint64(trustedHeight)), vals)
}

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

// newClient creates a client at height (0,1) with a consensus state at
// genesisTime.
func newClient(t *testing.T, cs *types.ClientState, genesisTime time.Time, appHash []byte,
	opts ...light.Option) (*light.Client, *testClock) {
	t.Helper()

	clock := &testClock{now: genesisTime}
	opts = append([]light.Option{light.Clock(clock.Now), light.Logger(log.TestingLogger())}, opts...)
	c, err := light.NewClient(clientID, dbs.New(dbm.NewMemDB()), opts...)
	require.NoError(t, err)

	require.NoError(t, c.CreateClient(cs, types.NewConsensusState(genesisTime, appHash, vals.Hash())))
	return c, clock
}
