package light_test

import (
	"errors"
	"testing"
	"time"

	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	dbm "github.com/tendermint/tm-db"

	"github.com/tendermint/ibclight/commitment"
	"github.com/tendermint/ibclight/crypto/merkle"
	"github.com/tendermint/ibclight/ics23"
	"github.com/tendermint/ibclight/light"
	"github.com/tendermint/ibclight/light/store"
	dbs "github.com/tendermint/ibclight/light/store/db"
	"github.com/tendermint/ibclight/light/store/mocks"
	"github.com/tendermint/ibclight/types"
)

var otherHash = []byte("other_app_hash")

func TestClientExpiresWithoutUpdates(t *testing.T) {
	c, clock := newClient(t, clientState(100*time.Second), unix(1_000), appHash)

	clock.now = unix(1_055)
	heights, err := c.Update(header(t, 2, unix(1_050), appHash, 1))
	require.NoError(t, err)
	assert.Equal(t, []types.Height{types.NewHeight(0, 2)}, heights)

	latest, err := c.LatestHeight()
	require.NoError(t, err)
	assert.Equal(t, types.NewHeight(0, 2), latest)

	// the state at (0,2) was trusted until 1150
	clock.now = unix(1_210)
	err = c.VerifyClientMessage(header(t, 3, unix(1_200), appHash, 2))
	var expired light.ErrOldHeaderExpired
	require.True(t, errors.As(err, &expired), "got %v", err)
	assert.True(t, unix(1_150).Equal(expired.At))
	var failed light.ErrVerificationFailed
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, types.NewHeight(0, 2), failed.From)
	assert.Equal(t, types.NewHeight(0, 3), failed.To)

	status, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, light.Expired, status)

	_, err = c.Update(header(t, 3, unix(1_200), appHash, 2))
	assert.ErrorIs(t, err, light.ErrClientNotActive)
}

func TestClientUpdateState(t *testing.T) {
	c, clock := newClient(t, clientState(100*time.Second), unix(1_000), appHash)
	clock.now = unix(1_060)

	status, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, light.Active, status)

	h := header(t, 3, unix(1_050), appHash, 1)
	require.NoError(t, c.VerifyClientMessage(h))
	found, err := c.CheckForMisbehaviour(h)
	require.NoError(t, err)
	require.False(t, found)

	for i := 0; i < 2; i++ {
		heights, err := c.UpdateState(h)
		require.NoError(t, err)
		assert.Equal(t, []types.Height{types.NewHeight(0, 3)}, heights)
	}

	// applying the same header again is not misbehaviour
	found, err = c.CheckForMisbehaviour(h)
	require.NoError(t, err)
	assert.False(t, found)

	ts, err := c.TimestampAtHeight(types.NewHeight(0, 3))
	require.NoError(t, err)
	assert.EqualValues(t, unix(1_050).UnixNano(), ts)

	ts, err = c.TimestampAtHeight(types.NewHeight(0, 1))
	require.NoError(t, err)
	assert.EqualValues(t, unix(1_000).UnixNano(), ts)

	_, err = c.TimestampAtHeight(types.NewHeight(0, 2))
	assert.ErrorIs(t, err, store.ErrConsensusStateNotFound)

	// a lower header does not move the latest height
	heights, err := c.Update(header(t, 2, unix(1_020), appHash, 1))
	require.NoError(t, err)
	assert.Equal(t, []types.Height{types.NewHeight(0, 2)}, heights)
	latest, err := c.LatestHeight()
	require.NoError(t, err)
	assert.Equal(t, types.NewHeight(0, 3), latest)
}

func TestClientFreezesOnConflictingHeader(t *testing.T) {
	c, clock := newClient(t, clientState(100*time.Second), unix(1_000), appHash)
	clock.now = unix(1_055)

	_, err := c.Update(header(t, 2, unix(1_050), appHash, 1))
	require.NoError(t, err)

	conflicting := header(t, 2, unix(1_050), otherHash, 1)
	heights, err := c.Update(conflicting)
	require.NoError(t, err)
	assert.Empty(t, heights)

	status, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, light.Frozen, status)

	cs, err := c.ClientState()
	require.NoError(t, err)
	assert.True(t, cs.IsFrozen())
	assert.Equal(t, cs.LatestHeight, cs.FrozenHeight)

	// the stored state is untouched
	ts, err := c.TimestampAtHeight(types.NewHeight(0, 2))
	require.NoError(t, err)
	assert.EqualValues(t, unix(1_050).UnixNano(), ts)

	_, err = c.Update(header(t, 3, unix(1_052), appHash, 2))
	assert.ErrorIs(t, err, light.ErrClientFrozen)
	assert.ErrorIs(t, c.VerifyClientMessage(header(t, 3, unix(1_052), appHash, 2)), light.ErrClientFrozen)
	err = c.VerifyMembership(types.NewHeight(0, 2), commitment.MerkleProof{},
		commitment.NewMerklePath("k"), []byte("v"))
	assert.ErrorIs(t, err, light.ErrClientFrozen)

	// freezing is idempotent
	require.NoError(t, c.UpdateStateOnMisbehaviour(conflicting))
	cs2, err := c.ClientState()
	require.NoError(t, err)
	assert.Equal(t, cs.FrozenHeight, cs2.FrozenHeight)
}

func TestClientFreezesOnOutOfOrderTime(t *testing.T) {
	c, clock := newClient(t, clientState(1_000*time.Second), unix(1_000), appHash)
	clock.now = unix(1_200)

	_, err := c.Update(header(t, 5, unix(1_100), appHash, 1))
	require.NoError(t, err)

	// fits between (0,1)@1000 and (0,5)@1100
	heights, err := c.Update(header(t, 3, unix(1_050), appHash, 1))
	require.NoError(t, err)
	assert.Equal(t, []types.Height{types.NewHeight(0, 3)}, heights)

	// later than the header at (0,5)
	h := header(t, 4, unix(1_150), appHash, 1)
	found, err := c.CheckForMisbehaviour(h)
	require.NoError(t, err)
	require.True(t, found)

	// not later than the header at (0,3)
	found, err = c.CheckForMisbehaviour(header(t, 4, unix(1_050), appHash, 1))
	require.NoError(t, err)
	require.True(t, found)

	heights, err = c.Update(h)
	require.NoError(t, err)
	assert.Empty(t, heights)

	cs, err := c.ClientState()
	require.NoError(t, err)
	assert.Equal(t, types.NewHeight(0, 5), cs.FrozenHeight)
}

func TestClientMisbehaviour(t *testing.T) {
	testCases := []struct {
		name     string
		h1, h2   func(t *testing.T) *types.Header
		frozen   bool
		errorMsg bool
	}{
		{
			"fork at the same height",
			func(t *testing.T) *types.Header { return header(t, 2, unix(1_050), appHash, 1) },
			func(t *testing.T) *types.Header { return header(t, 2, unix(1_050), otherHash, 1) },
			true, false,
		},
		{
			"higher header is earlier",
			func(t *testing.T) *types.Header { return header(t, 3, unix(1_040), appHash, 1) },
			func(t *testing.T) *types.Header { return header(t, 2, unix(1_050), appHash, 1) },
			true, false,
		},
		{
			"higher header at the same time",
			func(t *testing.T) *types.Header { return header(t, 3, unix(1_050), appHash, 1) },
			func(t *testing.T) *types.Header { return header(t, 2, unix(1_050), appHash, 1) },
			true, false,
		},
		{
			"identical headers",
			func(t *testing.T) *types.Header { return header(t, 2, unix(1_050), appHash, 1) },
			func(t *testing.T) *types.Header { return header(t, 2, unix(1_050), appHash, 1) },
			false, true,
		},
		{
			"ordered headers",
			func(t *testing.T) *types.Header { return header(t, 3, unix(1_050), appHash, 1) },
			func(t *testing.T) *types.Header { return header(t, 2, unix(1_040), appHash, 1) },
			false, true,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c, clock := newClient(t, clientState(100*time.Second), unix(1_000), appHash)
			clock.now = unix(1_055)

			m := &types.Misbehaviour{ClientID: clientID, Header1: tc.h1(t), Header2: tc.h2(t)}
			_, err := c.Update(m)
			if tc.errorMsg {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			status, err := c.Status()
			require.NoError(t, err)
			if tc.frozen {
				assert.Equal(t, light.Frozen, status)
			} else {
				assert.Equal(t, light.Active, status)
			}
		})
	}
}

func TestClientRejectsUnverifiableMisbehaviour(t *testing.T) {
	c, clock := newClient(t, clientState(100*time.Second), unix(1_000), appHash)
	clock.now = unix(1_055)

	h2 := header(t, 2, unix(1_050), otherHash, 1)
	h2.SignedHeader.Commit.Signatures[0].Signature[0] ^= 0xff
	m := &types.Misbehaviour{
		ClientID: clientID,
		Header1:  header(t, 2, unix(1_050), appHash, 1),
		Header2:  h2,
	}
	_, err := c.Update(m)
	assert.True(t, errors.As(err, &light.ErrVerificationFailed{}), "got %v", err)

	status, err := c.Status()
	require.NoError(t, err)
	assert.Equal(t, light.Active, status)
}

func TestClientVerifyMembership(t *testing.T) {
	ibc, err := merkle.NewKVTreeFromMap(map[string][]byte{
		"clients/a": []byte("state-a"),
		"clients/c": []byte("state-c"),
	})
	require.NoError(t, err)
	app, err := merkle.NewKVTreeFromMap(map[string][]byte{
		"bank": []byte("bank-root"),
		"ibc":  ibc.Root(),
	})
	require.NoError(t, err)

	proof := func(key string) commitment.MerkleProof {
		inner, err := ibc.CommitmentProof([]byte(key))
		require.NoError(t, err)
		outer, err := app.CommitmentProof([]byte("ibc"))
		require.NoError(t, err)
		return commitment.MerkleProof{Proofs: []*ics23.CommitmentProof{inner, outer}}
	}
	path := func(key string) commitment.MerklePath {
		p, err := commitment.ApplyPrefix(commitment.NewMerklePrefix([]byte("ibc")), commitment.NewMerklePath(key))
		require.NoError(t, err)
		return p
	}

	c, clock := newClient(t, clientState(100*time.Second), unix(1_000), appHash)
	clock.now = unix(1_055)
	_, err = c.Update(header(t, 2, unix(1_050), app.Root(), 1))
	require.NoError(t, err)

	height := types.NewHeight(0, 2)
	require.NoError(t, c.VerifyMembership(height, proof("clients/c"), path("clients/c"), []byte("state-c")))
	require.NoError(t, c.VerifyNonMembership(height, proof("clients/b"), path("clients/b")))

	err = c.VerifyMembership(height, proof("clients/c"), path("clients/c"), []byte("state-x"))
	assert.ErrorIs(t, err, commitment.ErrInvalidProof)
	err = c.VerifyNonMembership(height, proof("clients/c"), path("clients/c"))
	assert.Error(t, err)

	// the genesis state commits to another app hash
	err = c.VerifyMembership(types.NewHeight(0, 1), proof("clients/c"), path("clients/c"), []byte("state-c"))
	assert.Error(t, err)

	err = c.VerifyMembership(types.NewHeight(0, 3), proof("clients/c"), path("clients/c"), []byte("state-c"))
	assert.Error(t, err)
}

func TestCreateClient(t *testing.T) {
	c, _ := newClient(t, clientState(100*time.Second), unix(1_000), appHash)

	err := c.CreateClient(clientState(100*time.Second), types.NewConsensusState(unix(1_000), appHash, vals.Hash()))
	assert.ErrorIs(t, err, light.ErrClientExists)

	_, err = c.Update("not a client message")
	assert.ErrorIs(t, err, light.ErrUnknownClientMessage)
	_, err = c.CheckForMisbehaviour(42)
	assert.ErrorIs(t, err, light.ErrUnknownClientMessage)

	_, err = light.NewClient("clients/a", nil)
	assert.Error(t, err)
}

func TestCreateClientInvalid(t *testing.T) {
	cons := types.NewConsensusState(unix(1_000), appHash, vals.Hash())
	testCases := []struct {
		name   string
		modify func(*types.ClientState)
	}{
		{"zero trust level", func(cs *types.ClientState) { cs.TrustLevel.Numerator = 0 }},
		{"frozen", func(cs *types.ClientState) { cs.FrozenHeight = types.NewHeight(0, 1) }},
		{"cometbls without a proof verifier", func(cs *types.ClientState) { cs.Type = types.ClientTypeCometBLS }},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			c, err := light.NewClient(clientID, dbs.New(dbm.NewMemDB()))
			require.NoError(t, err)
			cs := clientState(100 * time.Second)
			tc.modify(cs)
			assert.Error(t, c.CreateClient(cs, cons))

			_, err = c.ClientState()
			assert.ErrorIs(t, err, store.ErrClientStateNotFound)
		})
	}
}

func TestClientMetrics(t *testing.T) {
	metrics := light.PrometheusMetrics("ibclight_test")
	c, clock := newClient(t, clientState(100*time.Second), unix(1_000), appHash, light.WithMetrics(metrics))
	clock.now = unix(1_055)

	_, err := c.Update(header(t, 2, unix(1_050), appHash, 1))
	require.NoError(t, err)
	_, err = c.Update(header(t, 3, unix(1_051), otherHash, 5))
	require.Error(t, err)

	mfs, err := stdprometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	counts := make(map[string]float64)
	latest := make(map[string]float64)
	for _, mf := range mfs {
		switch mf.GetName() {
		case "ibclight_test_light_verifications":
			for _, m := range mf.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "result" {
						counts[l.GetValue()] += m.GetCounter().GetValue()
					}
				}
			}
		case "ibclight_test_light_latest_height":
			for _, m := range mf.GetMetric() {
				for _, l := range m.GetLabel() {
					if l.GetName() == "revision" {
						latest[l.GetValue()] = m.GetGauge().GetValue()
					}
				}
			}
		}
	}
	assert.Equal(t, map[string]float64{"ok": 1, "error": 1}, counts)
	// testchain has revision number 0
	assert.Equal(t, map[string]float64{"0": 2}, latest)
}

func TestClientUpdateStateResumesPartialWrite(t *testing.T) {
	cs := clientState(100 * time.Second)
	h := header(t, 2, unix(1_050), appHash, 1)
	height := types.NewHeight(0, 2)
	// each read returns a fresh copy, the way a real store decodes one
	stored := func(string) *types.ClientState {
		c := *cs
		return &c
	}
	diskFull := errors.New("disk full")

	st := mocks.NewStore(t)
	c, err := light.NewClient(clientID, st)
	require.NoError(t, err)

	st.On("ClientState", clientID).Return(stored, nil)
	st.On("ConsensusState", clientID, height).Return(nil, store.ErrConsensusStateNotFound).Once()
	st.On("SaveConsensusState", clientID, height, h.ConsensusState()).Return(nil).Once()
	st.On("SaveClientState", clientID, mock.Anything).Return(diskFull).Once()

	_, err = c.UpdateState(h)
	require.ErrorIs(t, err, diskFull)

	// the consensus state made it to disk, the latest height did not
	st.On("ConsensusState", clientID, height).Return(h.ConsensusState(), nil).Once()
	st.On("SaveClientState", clientID, mock.MatchedBy(func(saved *types.ClientState) bool {
		return saved.LatestHeight == height
	})).Return(nil).Once()

	heights, err := c.UpdateState(h)
	require.NoError(t, err)
	assert.Equal(t, []types.Height{height}, heights)

	// a different stored state at the same height is left alone
	other := header(t, 2, unix(1_050), otherHash, 1)
	st.On("ConsensusState", clientID, height).Return(h.ConsensusState(), nil).Once()
	heights, err = c.UpdateState(other)
	require.NoError(t, err)
	assert.Equal(t, []types.Height{height}, heights)
	st.AssertNumberOfCalls(t, "SaveClientState", 2)
}

func TestClientUpdateStateRetry(t *testing.T) {
	c, _ := newClient(t, clientState(100*time.Second), unix(1_000), appHash)
	h := header(t, 2, unix(1_050), appHash, 1)

	_, err := c.UpdateState(h)
	require.NoError(t, err)
	heights, err := c.UpdateState(h)
	require.NoError(t, err)
	assert.Equal(t, []types.Height{types.NewHeight(0, 2)}, heights)

	latest, err := c.LatestHeight()
	require.NoError(t, err)
	assert.Equal(t, types.NewHeight(0, 2), latest)
}

func TestClientStoreErrors(t *testing.T) {
	boom := errors.New("boom")
	st := &mocks.Store{}
	st.On("ClientState", clientID).Return(nil, boom)

	c, err := light.NewClient(clientID, st)
	require.NoError(t, err)

	_, err = c.LatestHeight()
	assert.ErrorIs(t, err, boom)
	_, err = c.Status()
	assert.ErrorIs(t, err, boom)
	_, err = c.UpdateState(header(t, 2, unix(1_050), appHash, 1))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.CreateClient(clientState(100*time.Second),
		types.NewConsensusState(unix(1_000), appHash, vals.Hash())), boom)
	st.AssertExpectations(t)
}
