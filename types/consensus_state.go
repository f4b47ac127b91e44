package types

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	tmbytes "github.com/tendermint/ibclight/libs/bytes"
)

// ConsensusState is the snapshot of the counterparty chain at one height
// that later headers and proofs are verified against.
type ConsensusState struct {
	// Timestamp is the header time in unix nanoseconds.
	Timestamp uint64 `json:"timestamp"`
	// Root is the app hash committing to the chain's state.
	Root               tmbytes.HexBytes `json:"root"`
	NextValidatorsHash tmbytes.HexBytes `json:"next_validators_hash"`
}

// NewConsensusState creates a consensus state for a header at t.
func NewConsensusState(t time.Time, root, nextValsHash []byte) *ConsensusState {
	return &ConsensusState{
		Timestamp:          uint64(timeToNanos(t)),
		Root:               root,
		NextValidatorsHash: nextValsHash,
	}
}

// Time returns the timestamp as a time.Time.
func (cs *ConsensusState) Time() time.Time {
	return nanosToTime(int64(cs.Timestamp))
}

// ValidateBasic checks the consensus state is usable for verification.
func (cs *ConsensusState) ValidateBasic() error {
	if cs == nil {
		return errors.New("nil consensus state")
	}
	if len(cs.Root) == 0 {
		return errors.New("root cannot be empty")
	}
	if len(cs.NextValidatorsHash) != HashSize {
		return fmt.Errorf("next validators hash is invalid: expected %d bytes, got %d", HashSize, len(cs.NextValidatorsHash))
	}
	if cs.Timestamp == 0 || cs.Timestamp > uint64(1<<63-1) {
		return fmt.Errorf("timestamp %d out of range", cs.Timestamp)
	}
	return nil
}

// Equal reports whether both consensus states hold the same data.
func (cs *ConsensusState) Equal(other *ConsensusState) bool {
	if cs == nil || other == nil {
		return cs == other
	}
	return cs.Timestamp == other.Timestamp &&
		bytes.Equal(cs.Root, other.Root) &&
		bytes.Equal(cs.NextValidatorsHash, other.NextValidatorsHash)
}

func (cs *ConsensusState) String() string {
	return fmt.Sprintf("ConsensusState{%v root:%X next_vals:%X}", cs.Time(), []byte(cs.Root), []byte(cs.NextValidatorsHash))
}
