package light

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/tendermint/ibclight/types"
)

//go:generate ../scripts/mockery_generate.sh CommitVerifier ZKProofVerifier

// CommitVerifier checks that a header was signed by the counterparty chain,
// given the trusted consensus state it is verified against. It runs after
// the temporal and continuity checks of VerifyHeader.
type CommitVerifier interface {
	VerifyCommit(cs *types.ClientState, trusted *types.ConsensusState, header *types.Header) error
}

// ZKProofVerifier checks a zero-knowledge proof that the validator set
// committed to by trustedValidatorsHash signed signedHeader.
type ZKProofVerifier interface {
	VerifyZKP(chainID string, trustedValidatorsHash []byte, signedHeader *types.SignedHeader, proof []byte) error
}

// ZKProofVerifierFunc is an adapter to allow the use of ordinary functions
// as ZKProofVerifiers.
type ZKProofVerifierFunc func(chainID string, trustedValidatorsHash []byte, signedHeader *types.SignedHeader, proof []byte) error

// VerifyZKP calls f(chainID, trustedValidatorsHash, signedHeader, proof).
func (f ZKProofVerifierFunc) VerifyZKP(chainID string, trustedValidatorsHash []byte,
	signedHeader *types.SignedHeader, proof []byte) error {
	return f(chainID, trustedValidatorsHash, signedHeader, proof)
}

// VerifyHeader verifies an untrusted header against the trusted consensus
// state at header.TrustedHeight. It ensures that:
//
//	a) the header height is above the trusted height (ErrHeightNotIncreasing)
//	b) the header time is after the trusted time (ErrTimeNotIncreasing)
//	c) the trusted state is within the trusting period (ErrOldHeaderExpired)
//	d) the header time is before now + MaxClockDrift (ErrHeaderFromFuture)
//	e) adjacent headers are signed by the trusted next validator set
//	   (ErrValidatorsHashMismatch)
//	f) the commit is valid according to verifier (ErrInvalidHeader)
//
// Checks run in that order and the first failure is returned.
//
// For Tendermint clients the trusting period is measured up to now. For
// CometBLS clients it is measured up to the header time, which is what the
// zero-knowledge proof attests to.
func VerifyHeader(
	cs *types.ClientState,
	trusted *types.ConsensusState,
	header *types.Header,
	now time.Time,
	verifier CommitVerifier) error {

	if header == nil {
		return ErrInvalidHeader{errors.New("nil header")}
	}

	untrustedHeight := header.Height()
	if !untrustedHeight.GT(header.TrustedHeight) {
		return ErrHeightNotIncreasing{Trusted: header.TrustedHeight, Untrusted: untrustedHeight}
	}
	if cs == nil {
		return ErrInvalidHeader{errors.New("nil client state")}
	}
	if trusted == nil {
		return ErrInvalidHeader{errors.New("nil trusted consensus state")}
	}

	var (
		headerTime  = header.Time()
		trustedTime = trusted.Time()
	)
	if !headerTime.After(trustedTime) {
		return ErrTimeNotIncreasing{Trusted: trustedTime, Untrusted: headerTime}
	}

	reference := now
	if cs.Type == types.ClientTypeCometBLS {
		reference = headerTime
	}
	if HeaderExpired(trusted, cs.TrustingPeriod, reference) {
		return ErrOldHeaderExpired{At: trustedTime.Add(cs.TrustingPeriod), Now: reference}
	}

	if !headerTime.Before(now.Add(cs.MaxClockDrift)) {
		return ErrHeaderFromFuture{HeaderTime: headerTime, Now: now, MaxClockDrift: cs.MaxClockDrift}
	}

	if untrustedHeight == header.TrustedHeight.Increment() &&
		!bytes.Equal(header.SignedHeader.ValidatorsHash, trusted.NextValidatorsHash) {
		return ErrValidatorsHashMismatch{
			Expected: trusted.NextValidatorsHash,
			Actual:   header.SignedHeader.ValidatorsHash,
		}
	}

	if err := verifier.VerifyCommit(cs, trusted, header); err != nil {
		return ErrInvalidHeader{err}
	}
	return nil
}

// HeaderExpired returns true if the consensus state is older than
// trustingPeriod at now. A state is still trusted at exactly its expiry
// instant.
func HeaderExpired(cs *types.ConsensusState, trustingPeriod time.Duration, now time.Time) bool {
	expirationTime := cs.Time().Add(trustingPeriod)
	return expirationTime.Before(now)
}

// TendermintVerifier verifies ed25519 commits of Tendermint chains.
//
// Adjacent headers need +2/3 of their own validator set. Non-adjacent headers
// additionally need +TrustLevel of the trusted validators to have signed.
type TendermintVerifier struct{}

var _ CommitVerifier = TendermintVerifier{}

// VerifyCommit implements CommitVerifier.
func (TendermintVerifier) VerifyCommit(cs *types.ClientState, trusted *types.ConsensusState, header *types.Header) error {
	if err := header.ValidateBasic(); err != nil {
		return err
	}
	sh := header.SignedHeader
	if sh.ChainID != cs.ChainID {
		return fmt.Errorf("header belongs to another chain %q, not %q", sh.ChainID, cs.ChainID)
	}

	if err := header.ValidatorSet.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid validator set: %w", err)
	}
	if err := header.TrustedValidators.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid trusted validator set: %w", err)
	}

	if vh := header.ValidatorSet.Hash(); !bytes.Equal(sh.ValidatorsHash, vh) {
		return fmt.Errorf("expected new header validators (%X) to match those that were supplied (%X) at height %d",
			[]byte(sh.ValidatorsHash), vh, sh.Height)
	}
	if tvh := header.TrustedValidators.Hash(); !bytes.Equal(trusted.NextValidatorsHash, tvh) {
		return fmt.Errorf("trusted validators %X do not hash to the trusted next validators hash %X",
			tvh, []byte(trusted.NextValidatorsHash))
	}

	if header.Height() != header.TrustedHeight.Increment() {
		// Ensure that +`trustLevel` (default 1/3) or more of last trusted
		// validators signed correctly.
		err := types.VerifyCommitLightTrusting(cs.ChainID, header.TrustedValidators, sh.Commit, cs.TrustLevel)
		if err != nil {
			var e types.ErrNotEnoughVotingPowerSigned
			if errors.As(err, &e) {
				return ErrNewValSetCantBeTrusted{e}
			}
			return err
		}
	}

	// Ensure that +2/3 of new validators signed correctly.
	//
	// NOTE: this should always be the last check because the untrusted
	// validator set can be intentionally made very large to DOS the client.
	return types.VerifyCommitLight(cs.ChainID, header.ValidatorSet, sh.Hash(), sh.Height, sh.Commit)
}

// ZKVerifier verifies CometBLS headers, whose commit is attested by a
// zero-knowledge proof instead of individual signatures.
type ZKVerifier struct {
	Proofs ZKProofVerifier
}

var _ CommitVerifier = ZKVerifier{}

// VerifyCommit implements CommitVerifier.
func (v ZKVerifier) VerifyCommit(cs *types.ClientState, trusted *types.ConsensusState, header *types.Header) error {
	if v.Proofs == nil {
		return errors.New("no zero-knowledge proof verifier configured")
	}
	if err := header.ValidateBasic(); err != nil {
		return err
	}
	if header.SignedHeader.ChainID != cs.ChainID {
		return fmt.Errorf("header belongs to another chain %q, not %q", header.SignedHeader.ChainID, cs.ChainID)
	}
	if len(header.ZKProof) == 0 {
		return errors.New("missing zero-knowledge proof")
	}
	if err := v.Proofs.VerifyZKP(cs.ChainID, trusted.NextValidatorsHash, header.SignedHeader, header.ZKProof); err != nil {
		return fmt.Errorf("zero-knowledge proof verification failed: %w", err)
	}
	return nil
}

// NewCommitVerifier returns the CommitVerifier for the client type. zk may
// be nil for Tendermint clients.
func NewCommitVerifier(clientType types.ClientType, zk ZKProofVerifier) (CommitVerifier, error) {
	switch clientType {
	case types.ClientTypeTendermint:
		return TendermintVerifier{}, nil
	case types.ClientTypeCometBLS:
		if zk == nil {
			return nil, errors.New("cometbls clients need a zero-knowledge proof verifier")
		}
		return ZKVerifier{Proofs: zk}, nil
	}
	return nil, fmt.Errorf("unknown client type %q", string(clientType))
}
