package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestHeightCompare(t *testing.T) {
	testCases := []struct {
		name string
		a, b Height
		want int
	}{
		{"revision number wins", NewHeight(1, 0), NewHeight(0, math.MaxUint64), 1},
		{"same revision lower height", NewHeight(3, 4), NewHeight(3, 5), -1},
		{"equal", NewHeight(2, 7), NewHeight(2, 7), 0},
		{"max values", NewHeight(math.MaxUint64, math.MaxUint64), NewHeight(math.MaxUint64, math.MaxUint64-1), 1},
	}
	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.a.Compare(tc.b))
			assert.Equal(t, -tc.want, tc.b.Compare(tc.a))
		})
	}
}

func TestHeightOrderingProperty(t *testing.T) {
	gen := rapid.Custom(func(t *rapid.T) Height {
		return NewHeight(
			rapid.Uint64Range(0, 3).Draw(t, "rev").(uint64),
			rapid.OneOf(rapid.Uint64Range(0, 5), rapid.Just(uint64(math.MaxUint64))).Draw(t, "height").(uint64),
		)
	})
	rapid.Check(t, func(t *rapid.T) {
		a := gen.Draw(t, "a").(Height)
		b := gen.Draw(t, "b").(Height)

		lexical := a.RevisionNumber < b.RevisionNumber ||
			(a.RevisionNumber == b.RevisionNumber && a.RevisionHeight < b.RevisionHeight)
		require.Equal(t, lexical, a.LT(b))
		require.Equal(t, a.LT(b), b.GT(a))
		require.Equal(t, a.EQ(b), a.LTE(b) && a.GTE(b))
		require.Equal(t, a.Compare(b) == 0, a == b)
		require.True(t, MaxHeight(a, b).GTE(a) && MaxHeight(a, b).GTE(b))
	})
}

func TestHeightIncrementDecrement(t *testing.T) {
	h := NewHeight(1, 10)
	assert.Equal(t, NewHeight(1, 11), h.Increment())

	prev, ok := h.Decrement()
	assert.True(t, ok)
	assert.Equal(t, NewHeight(1, 9), prev)

	_, ok = NewHeight(1, 0).Decrement()
	assert.False(t, ok)
	assert.True(t, ZeroHeight.IsZero())
	assert.False(t, h.IsZero())
}

func TestParseHeight(t *testing.T) {
	h, err := ParseHeight("4-2000")
	require.NoError(t, err)
	assert.Equal(t, NewHeight(4, 2000), h)
	assert.Equal(t, "4-2000", h.String())

	for _, s := range []string{"", "4", "4-", "-4", "a-1", "1-b", "1-2-3"} {
		_, err := ParseHeight(s)
		assert.Error(t, err, s)
	}
}

func TestParseChainID(t *testing.T) {
	testCases := []struct {
		chainID  string
		revision uint64
		format   bool
	}{
		{"gaiamainnet-3", 3, true},
		{"a-1", 1, true},
		{"gaia-mainnet-40", 40, true},
		{"gaiamainnet-3-39", 39, true},
		{"gaiamainnet--", 0, false},
		{"gaiamainnet-03", 0, false},
		{"gaiamainnet--4", 0, false},
		{"gaiamainnet-3.4", 0, false},
		{"gaiamainnet", 0, false},
		{"a--1", 0, false},
		{"-1", 0, false},
		{"--1", 0, false},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.format, IsRevisionFormat(tc.chainID), tc.chainID)
		assert.Equal(t, tc.revision, ParseChainID(tc.chainID), tc.chainID)
	}

	chainID, err := SetRevisionNumber("gaia-mainnet-3", 4)
	require.NoError(t, err)
	assert.Equal(t, "gaia-mainnet-4", chainID)

	_, err = SetRevisionNumber("gaiamainnet", 1)
	assert.Error(t, err)
}
