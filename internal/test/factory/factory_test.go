package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/ibclight/types"
)

func TestGenSignedHeader(t *testing.T) {
	keys := GenPrivKeys(4)
	vals := keys.ToValidators(10, 0)

	sh := keys.GenSignedHeader(t, "test-chain-1", 5, time.Unix(1000, 0), vals, vals, []byte("app"), 0, 3)
	require.NoError(t, sh.ValidateBasic("test-chain-1"))
	assert.True(t, sh.Commit.Signatures[3].Absent())
	assert.NoError(t, types.VerifyCommitLight(sh.ChainID, vals, sh.Hash(), sh.Height, sh.Commit))
}
