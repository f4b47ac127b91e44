package types

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/tendermint/ibclight/crypto/batch"
	tmmath "github.com/tendermint/ibclight/libs/math"
)

// VerifyCommitLight verifies +2/3 of the set had signed the given commit.
//
// The validator set must be the set that produced the commit: signatures
// are matched to validators by index. Verification stops once +2/3 of the
// voting power is accounted for, so not every signature is checked.
func VerifyCommitLight(chainID string, vals *ValidatorSet, blockHash []byte,
	height int64, commit *Commit) error {
	if vals.IsNilOrEmpty() {
		return errors.New("nil or empty validator set")
	}
	if commit == nil {
		return errors.New("nil commit")
	}

	if vals.Size() != len(commit.Signatures) {
		return NewErrInvalidCommitSignatures(vals.Size(), len(commit.Signatures))
	}

	// Validate Height and BlockHash.
	if height != commit.Height {
		return NewErrInvalidCommitHeight(height, commit.Height)
	}
	if !bytes.Equal(blockHash, commit.BlockHash) {
		return fmt.Errorf("invalid commit -- wrong block hash: want %X, got %X",
			blockHash, []byte(commit.BlockHash))
	}

	talliedVotingPower := int64(0)
	votingPowerNeeded := vals.TotalVotingPower() * 2 / 3
	cacheSignBytes := make(map[string][]byte, len(commit.Signatures))

	// if batch is supported and there is more than one signature run batch,
	// otherwise run single. A failed batch falls back to single verification
	// from scratch.
	bv, ok := batch.CreateBatchVerifier(vals.Validators[0].PubKey)
	if ok && len(commit.Signatures) > 1 {
		for idx, commitSig := range commit.Signatures {
			// No need to verify absent or nil votes.
			if !commitSig.ForBlock() {
				continue
			}

			// The vals and commit have a 1-to-1 correspondance.
			val := vals.Validators[idx]
			voteSignBytes := commit.VoteSignBytes(chainID, int32(idx))
			cacheSignBytes[string(val.PubKey.Bytes())] = voteSignBytes
			if err := bv.Add(val.PubKey, voteSignBytes, commitSig.Signature); err != nil {
				return err
			}

			talliedVotingPower += val.VotingPower
			if talliedVotingPower > votingPowerNeeded {
				break
			}
		}
		if got, needed := talliedVotingPower, votingPowerNeeded; got <= needed {
			return ErrNotEnoughVotingPowerSigned{Got: got, Needed: needed}
		}

		if ok, _ := bv.Verify(); ok {
			return nil
		}
	}

	return verifyCommitLightSingle(chainID, vals, commit, votingPowerNeeded, cacheSignBytes)
}

// VerifyCommitLightTrusting verifies that more than trustLevel of the
// validator set signed this commit.
//
// NOTE the given validators do not necessarily correspond to the validator
// set for this commit, but there may be some intersection. Signatures are
// matched to validators by address.
func VerifyCommitLightTrusting(chainID string, vals *ValidatorSet, commit *Commit, trustLevel tmmath.Fraction) error {
	if vals.IsNilOrEmpty() {
		return errors.New("nil or empty validator set")
	}
	if trustLevel.Denominator == 0 {
		return errors.New("trustLevel has zero Denominator")
	}
	if commit == nil {
		return errors.New("nil commit")
	}

	var (
		talliedVotingPower int64
		seenVals           = make(map[int32]int, len(commit.Signatures)) // validator index -> commit index
		cacheSignBytes     = make(map[string][]byte, len(commit.Signatures))
	)

	totalVotingPowerMulByNumerator, overflow := tmmath.SafeMulInt64(vals.TotalVotingPower(), int64(trustLevel.Numerator))
	if overflow {
		return errors.New("int64 overflow while calculating voting power needed. please provide smaller trustLevel numerator")
	}
	votingPowerNeeded := totalVotingPowerMulByNumerator / int64(trustLevel.Denominator)

	bv, ok := batch.CreateBatchVerifier(vals.Validators[0].PubKey)
	if ok && len(commit.Signatures) > 1 {
		for idx, commitSig := range commit.Signatures {
			if !commitSig.ForBlock() {
				continue
			}

			valIdx, val := vals.GetByAddress(commitSig.ValidatorAddress)
			if val == nil {
				continue
			}
			if firstIndex, ok := seenVals[valIdx]; ok {
				return fmt.Errorf("double vote from %v (%d and %d)", val, firstIndex, idx)
			}
			seenVals[valIdx] = idx

			voteSignBytes := commit.VoteSignBytes(chainID, int32(idx))
			cacheSignBytes[string(val.PubKey.Bytes())] = voteSignBytes
			if err := bv.Add(val.PubKey, voteSignBytes, commitSig.Signature); err != nil {
				return err
			}

			talliedVotingPower += val.VotingPower
			if talliedVotingPower > votingPowerNeeded {
				break
			}
		}
		if got, needed := talliedVotingPower, votingPowerNeeded; got <= needed {
			return ErrNotEnoughVotingPowerSigned{Got: got, Needed: needed}
		}

		if ok, _ := bv.Verify(); ok {
			return nil
		}
	}

	return verifyCommitLightTrustingSingle(chainID, vals, commit, votingPowerNeeded, cacheSignBytes)
}

// verifyCommitLightSingle verifies signatures one by one until +2/3 is
// reached. Used when the key type has no batch verifier or the batch failed.
func verifyCommitLightSingle(
	chainID string, vals *ValidatorSet, commit *Commit, votingPowerNeeded int64,
	cachedVals map[string][]byte) error {
	var talliedVotingPower int64
	for idx, commitSig := range commit.Signatures {
		if !commitSig.ForBlock() {
			continue
		}

		val := vals.Validators[idx]
		voteSignBytes, ok := cachedVals[string(val.PubKey.Bytes())]
		if !ok {
			voteSignBytes = commit.VoteSignBytes(chainID, int32(idx))
		}
		if !val.PubKey.VerifySignature(voteSignBytes, commitSig.Signature) {
			return fmt.Errorf("wrong signature (#%d): %X", idx, commitSig.Signature)
		}

		talliedVotingPower += val.VotingPower
		if talliedVotingPower > votingPowerNeeded {
			return nil
		}
	}
	return ErrNotEnoughVotingPowerSigned{Got: talliedVotingPower, Needed: votingPowerNeeded}
}

func verifyCommitLightTrustingSingle(
	chainID string, vals *ValidatorSet, commit *Commit, votingPowerNeeded int64,
	cachedVals map[string][]byte) error {
	var (
		seenVals           = make(map[int32]int, len(commit.Signatures))
		talliedVotingPower int64
	)
	for idx, commitSig := range commit.Signatures {
		if !commitSig.ForBlock() {
			continue
		}

		valIdx, val := vals.GetByAddress(commitSig.ValidatorAddress)
		if val == nil {
			continue
		}
		if firstIndex, ok := seenVals[valIdx]; ok {
			return fmt.Errorf("double vote from %v (%d and %d)", val, firstIndex, idx)
		}
		seenVals[valIdx] = idx

		voteSignBytes, ok := cachedVals[string(val.PubKey.Bytes())]
		if !ok {
			voteSignBytes = commit.VoteSignBytes(chainID, int32(idx))
		}
		if !val.PubKey.VerifySignature(voteSignBytes, commitSig.Signature) {
			return fmt.Errorf("wrong signature (#%d): %X", idx, commitSig.Signature)
		}

		talliedVotingPower += val.VotingPower
		if talliedVotingPower > votingPowerNeeded {
			return nil
		}
	}

	return ErrNotEnoughVotingPowerSigned{Got: talliedVotingPower, Needed: votingPowerNeeded}
}
