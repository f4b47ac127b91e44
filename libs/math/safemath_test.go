package math

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeMulInt64(t *testing.T) {
	testCases := []struct {
		a        int64
		b        int64
		c        int64
		overflow bool
	}{
		0: {0, 0, 0, false},
		1: {1, 0, 0, false},
		2: {2, 3, 6, false},
		3: {2, -3, -6, false},
		4: {-2, -3, 6, false},
		5: {-2, 3, -6, false},
		6: {math.MaxInt64, 1, math.MaxInt64, false},
		7: {math.MaxInt64 / 2, 2, math.MaxInt64 - 1, false},
		8: {math.MaxInt64 / 2, 3, 0, true},
		9: {math.MaxInt64, 2, 0, true},
	}

	for i, tc := range testCases {
		c, overflow := SafeMulInt64(tc.a, tc.b)
		assert.Equal(t, tc.c, c, "#%d", i)
		assert.Equal(t, tc.overflow, overflow, "#%d", i)
	}
}

func TestSafeAdd(t *testing.T) {
	_, overflow := SafeAddInt64(math.MaxInt64, 1)
	assert.True(t, overflow)
	c, overflow := SafeAddInt64(math.MaxInt64-1, 1)
	require.False(t, overflow)
	assert.EqualValues(t, int64(math.MaxInt64), c)
}

func TestParseFraction(t *testing.T) {
	testCases := []struct {
		f   string
		exp Fraction
		err bool
	}{
		{"2/3", Fraction{2, 3}, false},
		{"15/5", Fraction{15, 5}, false},
		{"1/0", Fraction{}, true},
		{"-1/2", Fraction{}, true},
		{"1/-2", Fraction{}, true},
		{"2/3/4", Fraction{}, true},
		{"123", Fraction{}, true},
		{"1/3a", Fraction{}, true},
	}

	for idx, tc := range testCases {
		output, err := ParseFraction(tc.f)
		if tc.err {
			assert.Error(t, err, idx)
		} else {
			assert.NoError(t, err, idx)
		}
		assert.Equal(t, tc.exp, output, idx)
	}
}
