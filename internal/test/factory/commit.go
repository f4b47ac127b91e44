package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tendermint/ibclight/types"
)

// SignHeader signs sh with the keys from first to last exclusive. Keys that
// are not part of valSet are skipped, validators without a key are absent.
func (pkz PrivKeys) SignHeader(t testing.TB, sh *types.SignedHeader, valSet *types.ValidatorSet, first, last int) *types.Commit {
	t.Helper()

	commit := &types.Commit{
		Height:     sh.Height,
		Round:      1,
		BlockHash:  sh.Hash(),
		Signatures: make([]types.CommitSig, valSet.Size()),
	}
	for i := range commit.Signatures {
		commit.Signatures[i] = types.NewCommitSigAbsent()
	}

	signers := make(map[int32]int)
	for i := first; i < last && i < len(pkz); i++ {
		idx, _ := valSet.GetByAddress(pkz[i].PubKey().Address())
		if idx < 0 {
			continue
		}
		signers[idx] = i
		commit.Signatures[idx] = types.CommitSig{
			BlockIDFlag:      types.BlockIDFlagCommit,
			ValidatorAddress: pkz[i].PubKey().Address(),
			Timestamp:        sh.Time,
		}
	}
	for idx, i := range signers {
		sig, err := pkz[i].Sign(commit.VoteSignBytes(sh.ChainID, idx))
		require.NoError(t, err)
		commit.Signatures[idx].Signature = sig
	}
	return commit
}

// GenSignedHeader builds a header for valSet and nextValSet and signs it
// with the keys from first to last exclusive.
func (pkz PrivKeys) GenSignedHeader(t testing.TB, chainID string, height int64, bTime time.Time,
	valSet, nextValSet *types.ValidatorSet, appHash []byte, first, last int) *types.SignedHeader {
	t.Helper()

	sh := &types.SignedHeader{
		ChainID:            chainID,
		Height:             height,
		Time:               bTime.UTC(),
		AppHash:            appHash,
		ValidatorsHash:     valSet.Hash(),
		NextValidatorsHash: nextValSet.Hash(),
	}
	sh.Commit = pkz.SignHeader(t, sh, valSet, first, last)
	return sh
}

// MakeHeader wraps a signed header into a client message verified against
// the consensus state at trustedHeight.
func MakeHeader(sh *types.SignedHeader, valSet *types.ValidatorSet, trustedHeight types.Height,
	trustedVals *types.ValidatorSet) *types.Header {
	return &types.Header{
		SignedHeader:      sh,
		ValidatorSet:      valSet,
		TrustedHeight:     trustedHeight,
		TrustedValidators: trustedVals,
	}
}
