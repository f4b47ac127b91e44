package db

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ibclight/ics23"
	"github.com/tendermint/ibclight/light/store"
	"github.com/tendermint/ibclight/types"
)

const clientID = "07-tendermint-0"

func consensusState(ts uint64) *types.ConsensusState {
	return &types.ConsensusState{
		Timestamp:          ts,
		Root:               []byte("root"),
		NextValidatorsHash: make([]byte, types.HashSize),
	}
}

func TestClientState(t *testing.T) {
	dbStore := New(dbm.NewMemDB())

	_, err := dbStore.ClientState(clientID)
	assert.ErrorIs(t, err, store.ErrClientStateNotFound)

	cs := &types.ClientState{
		ChainID:         "testchain",
		Type:            types.ClientTypeTendermint,
		TrustLevel:      types.DefaultTrustLevel,
		TrustingPeriod:  time.Hour,
		UnbondingPeriod: 2 * time.Hour,
		MaxClockDrift:   time.Second,
		LatestHeight:    types.NewHeight(0, 10),
		ProofSpecs:      ics23.SDKSpecs(),
	}
	require.NoError(t, dbStore.SaveClientState(clientID, cs))

	loaded, err := dbStore.ClientState(clientID)
	require.NoError(t, err)
	assert.Equal(t, cs.Marshal(), loaded.Marshal())

	// other clients are isolated
	_, err = dbStore.ClientState("07-tendermint-1")
	assert.ErrorIs(t, err, store.ErrClientStateNotFound)

	assert.Error(t, dbStore.SaveClientState("a/b", cs))
	assert.Error(t, dbStore.SaveClientState(clientID, nil))
}

func TestConsensusState(t *testing.T) {
	dbStore := New(dbm.NewMemDB())
	h := types.NewHeight(1, 7)

	_, err := dbStore.ConsensusState(clientID, h)
	assert.ErrorIs(t, err, store.ErrConsensusStateNotFound)

	require.NoError(t, dbStore.SaveConsensusState(clientID, h, consensusState(42)))

	cs, err := dbStore.ConsensusState(clientID, h)
	require.NoError(t, err)
	assert.True(t, consensusState(42).Equal(cs))

	entry, err := dbStore.NearestAtOrBefore(clientID, h)
	require.NoError(t, err)
	assert.Equal(t, &store.IndexEntry{Height: h, Timestamp: 42}, entry)

	assert.Error(t, dbStore.SaveConsensusState(clientID, types.ZeroHeight, consensusState(1)))
}

func TestNearestLookups(t *testing.T) {
	dbStore := New(dbm.NewMemDB())
	heights := []types.Height{
		types.NewHeight(0, 132),
		types.NewHeight(0, 23451),
		types.NewHeight(1, 1000),
		types.NewHeight(1, 2123),
		types.NewHeight(1, 5115),
		types.NewHeight(2, 22),
		types.NewHeight(3, 1234),
	}
	// insertion order must not matter
	for i := len(heights) - 1; i >= 0; i-- {
		require.NoError(t, dbStore.SaveConsensusState(clientID, heights[i], consensusState(uint64(i+1))))
	}
	// a neighbouring client must not leak into the results
	require.NoError(t, dbStore.SaveConsensusState("07-tendermint-00", types.NewHeight(1, 3000), consensusState(99)))

	testCases := []struct {
		name   string
		query  types.Height
		before *types.Height
		after  *types.Height
	}{
		{"between in same revision", types.NewHeight(1, 2124), &heights[3], &heights[4]},
		{"just below", types.NewHeight(1, 5114), &heights[3], &heights[4]},
		{"exact match", types.NewHeight(1, 2123), &heights[3], &heights[3]},
		{"across revisions", types.NewHeight(1, 6000), &heights[4], &heights[5]},
		{"below min", types.NewHeight(0, 1), nil, &heights[0]},
		{"above max", types.NewHeight(3, 1235), &heights[6], nil},
		{"max", types.NewHeight(1<<64-1, 1<<64-1), &heights[6], nil},
		{"zero", types.ZeroHeight, nil, &heights[0]},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			before, err := dbStore.NearestAtOrBefore(clientID, tc.query)
			require.NoError(t, err)
			if tc.before == nil {
				assert.Nil(t, before)
			} else {
				require.NotNil(t, before)
				assert.Equal(t, *tc.before, before.Height)
			}

			after, err := dbStore.NearestAtOrAfter(clientID, tc.query)
			require.NoError(t, err)
			if tc.after == nil {
				assert.Nil(t, after)
			} else {
				require.NotNil(t, after)
				assert.Equal(t, *tc.after, after.Height)
			}
		})
	}

	entry, err := dbStore.NearestAtOrAfter(clientID, types.NewHeight(1, 2124))
	require.NoError(t, err)
	assert.EqualValues(t, 5, entry.Timestamp)
}

func TestNearestLookupsEmpty(t *testing.T) {
	dbStore := New(dbm.NewMemDB())

	entry, err := dbStore.NearestAtOrBefore(clientID, types.NewHeight(1, 1))
	require.NoError(t, err)
	assert.Nil(t, entry)

	entry, err = dbStore.NearestAtOrAfter(clientID, types.NewHeight(1, 1))
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestMalformedIndexEntry(t *testing.T) {
	db := dbm.NewMemDB()
	dbStore := New(db)
	h := types.NewHeight(1, 10)
	require.NoError(t, dbStore.SaveConsensusState(clientID, h, consensusState(5)))

	// corrupt the index value behind the store's back
	key := append([]byte("clients/"+clientID+"/"), store.IndexKey(h)...)
	require.NoError(t, db.Set(key, []byte{1, 2, 3}))

	_, err := dbStore.NearestAtOrBefore(clientID, h)
	assert.ErrorIs(t, err, store.ErrInvalidConsensusStateMetadata)
	_, err = dbStore.NearestAtOrAfter(clientID, types.NewHeight(1, 1))
	assert.ErrorIs(t, err, store.ErrInvalidConsensusStateMetadata)

	// found-but-corrupt is not the same as missing
	entry, err := dbStore.NearestAtOrAfter(clientID, types.NewHeight(1, 11))
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestConcurrentAccess(t *testing.T) {
	dbStore := New(dbm.NewMemDB())

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			h := types.NewHeight(0, uint64(i))
			assert.NoError(t, dbStore.SaveConsensusState(clientID, h, consensusState(uint64(i))))
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := dbStore.NearestAtOrBefore(clientID, types.NewHeight(0, uint64(i)))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entry, err := dbStore.NearestAtOrBefore(clientID, types.NewHeight(0, 100))
	require.NoError(t, err)
	assert.Equal(t, types.NewHeight(0, 20), entry.Height)
}
