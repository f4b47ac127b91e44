package types

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/tendermint/ibclight/crypto"
	"github.com/tendermint/ibclight/crypto/merkle"
	"github.com/tendermint/ibclight/internal/libs/protoio"
	tmbytes "github.com/tendermint/ibclight/libs/bytes"
)

const (
	// HashSize is the size of header, validator set and block hashes.
	HashSize = 32

	// MaxChainIDLen is a maximum length of the chain ID.
	MaxChainIDLen = 50

	// MaxSignatureSize is a maximum allowed signature size for the Commit.
	MaxSignatureSize = 64

	// precommitType is the vote type signed into commits.
	precommitType = 2
)

// BlockIDFlag indicates which BlockID the signature is for.
type BlockIDFlag byte

const (
	// BlockIDFlagAbsent - no vote was received from a validator.
	BlockIDFlagAbsent BlockIDFlag = iota + 1
	// BlockIDFlagCommit - voted for the Commit.BlockHash.
	BlockIDFlagCommit
	// BlockIDFlagNil - voted for nil.
	BlockIDFlagNil
)

// CommitSig is a part of the Vote included in a Commit.
type CommitSig struct {
	BlockIDFlag      BlockIDFlag    `json:"block_id_flag"`
	ValidatorAddress crypto.Address `json:"validator_address"`
	Timestamp        time.Time      `json:"timestamp"`
	Signature        []byte         `json:"signature"`
}

// NewCommitSigAbsent returns new CommitSig with BlockIDFlagAbsent. Other
// fields are all empty.
func NewCommitSigAbsent() CommitSig {
	return CommitSig{
		BlockIDFlag: BlockIDFlagAbsent,
	}
}

// ForBlock returns true if CommitSig is for the block.
func (cs CommitSig) ForBlock() bool {
	return cs.BlockIDFlag == BlockIDFlagCommit
}

// Absent returns true if CommitSig is absent.
func (cs CommitSig) Absent() bool {
	return cs.BlockIDFlag == BlockIDFlagAbsent
}

// ValidateBasic performs basic validation.
func (cs CommitSig) ValidateBasic() error {
	switch cs.BlockIDFlag {
	case BlockIDFlagAbsent:
	case BlockIDFlagCommit:
	case BlockIDFlagNil:
	default:
		return fmt.Errorf("unknown BlockIDFlag: %v", cs.BlockIDFlag)
	}

	switch cs.BlockIDFlag {
	case BlockIDFlagAbsent:
		if len(cs.ValidatorAddress) != 0 {
			return errors.New("validator address is present")
		}
		if !cs.Timestamp.IsZero() {
			return errors.New("time is present")
		}
		if len(cs.Signature) != 0 {
			return errors.New("signature is present")
		}
	default:
		if len(cs.ValidatorAddress) != crypto.AddressSize {
			return fmt.Errorf("expected ValidatorAddress size to be %d bytes, got %d bytes",
				crypto.AddressSize,
				len(cs.ValidatorAddress),
			)
		}
		// NOTE: Timestamp validation is subtle and handled elsewhere.
		if len(cs.Signature) == 0 {
			return errors.New("signature is missing")
		}
		if len(cs.Signature) > MaxSignatureSize {
			return fmt.Errorf("signature is too big (max: %d)", MaxSignatureSize)
		}
	}

	return nil
}

// Commit contains the evidence that a block was committed by a set of
// validators.
type Commit struct {
	Height     int64            `json:"height"`
	Round      int32            `json:"round"`
	BlockHash  tmbytes.HexBytes `json:"block_hash"`
	Signatures []CommitSig      `json:"signatures"`
}

// VoteSignBytes returns the bytes of the precommit of the validator at
// valIdx, which is what it signed.
//
// Panics if valIdx >= commit.Size().
func (commit *Commit) VoteSignBytes(chainID string, valIdx int32) []byte {
	sig := commit.Signatures[valIdx]

	var b []byte
	b = protoio.AppendUvarint(b, 1, precommitType)
	b = protoio.AppendInt64(b, 2, commit.Height)
	b = protoio.AppendInt64(b, 3, int64(commit.Round))
	if sig.ForBlock() {
		b = protoio.AppendBytes(b, 4, commit.BlockHash)
	}
	b = protoio.AppendInt64(b, 5, timeToNanos(sig.Timestamp))
	b = protoio.AppendString(b, 6, chainID)
	return b
}

// Size returns the number of signatures in the commit.
func (commit *Commit) Size() int {
	if commit == nil {
		return 0
	}
	return len(commit.Signatures)
}

// ValidateBasic performs basic validation that doesn't involve state data.
// Does not actually check the cryptographic signatures.
func (commit *Commit) ValidateBasic() error {
	if commit.Height < 0 {
		return errors.New("negative Height")
	}
	if commit.Round < 0 {
		return errors.New("negative Round")
	}
	if len(commit.BlockHash) != HashSize {
		return fmt.Errorf("wrong BlockHash: expected size to be %d bytes, got %d bytes", HashSize, len(commit.BlockHash))
	}
	for i, cs := range commit.Signatures {
		if err := cs.ValidateBasic(); err != nil {
			return fmt.Errorf("wrong CommitSig #%d: %w", i, err)
		}
	}
	return nil
}

// SignedHeader is a header of the counterparty chain along with the commit
// that proves it.
type SignedHeader struct {
	ChainID            string           `json:"chain_id"`
	Height             int64            `json:"height"`
	Time               time.Time        `json:"time"`
	AppHash            tmbytes.HexBytes `json:"app_hash"`
	ValidatorsHash     tmbytes.HexBytes `json:"validators_hash"`
	NextValidatorsHash tmbytes.HexBytes `json:"next_validators_hash"`

	Commit *Commit `json:"commit"`
}

// Hash returns the hash of the header: the merkle root of its encoded
// fields, excluding the commit.
// Returns nil if ValidatorsHash is missing, since a header is not valid
// without it.
func (sh *SignedHeader) Hash() tmbytes.HexBytes {
	if sh == nil || len(sh.ValidatorsHash) == 0 {
		return nil
	}
	return merkle.HashFromByteSlices([][]byte{
		protoio.AppendString(nil, 1, sh.ChainID),
		protoio.AppendInt64(nil, 1, sh.Height),
		protoio.AppendInt64(nil, 1, timeToNanos(sh.Time)),
		protoio.AppendBytes(nil, 1, sh.AppHash),
		protoio.AppendBytes(nil, 1, sh.ValidatorsHash),
		protoio.AppendBytes(nil, 1, sh.NextValidatorsHash),
	})
}

// ValidateBasic does basic consistency checks and makes sure the header
// and commit are consistent.
//
// NOTE: This does not actually check the cryptographic signatures.  Make sure
// to use a Verifier to validate the signatures actually provide a
// significantly strong proof for this header's validity.
func (sh *SignedHeader) ValidateBasic(chainID string) error {
	if sh == nil {
		return errors.New("missing signed header")
	}
	if sh.ChainID != chainID {
		return fmt.Errorf("header belongs to another chain %q, not %q", sh.ChainID, chainID)
	}
	if len(sh.ChainID) > MaxChainIDLen {
		return fmt.Errorf("chainID is too long; got: %d, max: %d", len(sh.ChainID), MaxChainIDLen)
	}
	if sh.Height <= 0 {
		return fmt.Errorf("header height must be positive, got %d", sh.Height)
	}
	if len(sh.ValidatorsHash) != HashSize {
		return fmt.Errorf("wrong ValidatorsHash: expected size to be %d bytes, got %d bytes",
			HashSize, len(sh.ValidatorsHash))
	}
	if len(sh.NextValidatorsHash) != HashSize {
		return fmt.Errorf("wrong NextValidatorsHash: expected size to be %d bytes, got %d bytes",
			HashSize, len(sh.NextValidatorsHash))
	}

	if sh.Commit == nil {
		return errors.New("missing commit")
	}
	if err := sh.Commit.ValidateBasic(); err != nil {
		return fmt.Errorf("invalid commit: %w", err)
	}
	if sh.Height != sh.Commit.Height {
		return fmt.Errorf("header and commit height mismatch: %d vs %d", sh.Height, sh.Commit.Height)
	}
	if hhash, chash := sh.Hash(), sh.Commit.BlockHash; !bytes.Equal(hhash, chash) {
		return fmt.Errorf("commit signs block %X, header is block %X", chash, hhash)
	}
	return nil
}

// String returns a string representation of SignedHeader.
func (sh *SignedHeader) String() string {
	if sh == nil {
		return "nil-SignedHeader"
	}
	return fmt.Sprintf("SignedHeader{%s #%d %v %X}", sh.ChainID, sh.Height, sh.Time, []byte(sh.Hash()))
}

// timeToNanos returns t as unix nanoseconds, 0 for the zero time.
func timeToNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func nanosToTime(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
