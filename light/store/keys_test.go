package store

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/tendermint/ibclight/types"
)

func TestIndexKeyLayout(t *testing.T) {
	key := IndexKey(types.NewHeight(1, 2))
	assert.Len(t, key, 26)
	assert.Equal(t, []byte("iter_cons/"), key[:10])
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 2}, key[10:])

	h, err := ParseIndexKey(key)
	require.NoError(t, err)
	assert.Equal(t, types.NewHeight(1, 2), h)

	assert.True(t, bytes.Compare(IndexStart, key) <= 0)
	assert.True(t, bytes.Compare(key, IndexEnd) < 0)
	last := IndexKey(types.NewHeight(math.MaxUint64, math.MaxUint64))
	assert.True(t, bytes.Compare(last, IndexEnd) < 0)
}

func TestIndexKeyOrdering(t *testing.T) {
	ordered := []types.Height{
		types.NewHeight(0, 0),
		types.NewHeight(0, 1),
		types.NewHeight(0, math.MaxUint64),
		types.NewHeight(1, 5),
		types.NewHeight(1, 6),
		types.NewHeight(2, 0),
		types.NewHeight(math.MaxUint64, 0),
		types.NewHeight(math.MaxUint64, math.MaxUint64),
	}
	for i := 1; i < len(ordered); i++ {
		assert.Equal(t, -1, bytes.Compare(IndexKey(ordered[i-1]), IndexKey(ordered[i])), ordered[i])
	}

	rapid.Check(t, func(t *rapid.T) {
		a := types.NewHeight(rapid.Uint64().Draw(t, "ra").(uint64), rapid.Uint64().Draw(t, "ha").(uint64))
		b := types.NewHeight(rapid.Uint64().Draw(t, "rb").(uint64), rapid.Uint64().Draw(t, "hb").(uint64))
		require.Equal(t, a.Compare(b), bytes.Compare(IndexKey(a), IndexKey(b)))
	})
}

func TestIndexValue(t *testing.T) {
	bz := EncodeIndexValue(0x0102030405060708)
	assert.Equal(t, []byte{8, 7, 6, 5, 4, 3, 2, 1}, bz)

	ts, err := DecodeIndexValue(bz)
	require.NoError(t, err)
	assert.EqualValues(t, 0x0102030405060708, ts)

	for _, bad := range [][]byte{nil, {1}, make([]byte, 7), make([]byte, 9)} {
		_, err := DecodeIndexValue(bad)
		assert.ErrorIs(t, err, ErrInvalidConsensusStateMetadata)
	}

	_, err = ParseIndexKey([]byte("iter_cons/short"))
	assert.ErrorIs(t, err, ErrInvalidConsensusStateMetadata)
}

func TestValidateClientID(t *testing.T) {
	assert.NoError(t, ValidateClientID("07-tendermint-0"))
	assert.Error(t, ValidateClientID(""))
	assert.Error(t, ValidateClientID("a/b"))
}
