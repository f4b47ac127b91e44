package types

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tendermint/ibclight/crypto/merkle"
	tmmath "github.com/tendermint/ibclight/libs/math"
)

// ValidatorSet represent a set of *Validator at a given height.
//
// The validators are kept in the order they sign commits: the i-th
// signature of a Commit belongs to the i-th validator of the set that
// produced it.
type ValidatorSet struct {
	Validators []*Validator `json:"validators"`

	// cached (unexported)
	totalVotingPower int64
}

// NewValidatorSet initializes a ValidatorSet by copying over the values from
// `valz`, a list of Validators.
func NewValidatorSet(valz []*Validator) *ValidatorSet {
	vals := &ValidatorSet{Validators: make([]*Validator, len(valz))}
	for i, val := range valz {
		vals.Validators[i] = val.Copy()
	}
	return vals
}

// ValidateBasic checks the set is non-empty, has no duplicate addresses and
// every validator is valid.
func (vals *ValidatorSet) ValidateBasic() error {
	if vals.IsNilOrEmpty() {
		return errors.New("validator set is nil or empty")
	}

	seen := make(map[string]bool, len(vals.Validators))
	for idx, val := range vals.Validators {
		if err := val.ValidateBasic(); err != nil {
			return fmt.Errorf("invalid validator #%d: %w", idx, err)
		}
		if seen[string(val.Address)] {
			return fmt.Errorf("duplicate validator %v", val.Address)
		}
		seen[string(val.Address)] = true
	}

	if _, err := vals.safeTotalVotingPower(); err != nil {
		return err
	}
	return nil
}

// IsNilOrEmpty returns true if validator set is nil or empty.
func (vals *ValidatorSet) IsNilOrEmpty() bool {
	return vals == nil || len(vals.Validators) == 0
}

// Size returns the length of the validator set.
func (vals *ValidatorSet) Size() int {
	return len(vals.Validators)
}

// GetByAddress returns an index of the validator with address and validator
// itself (copy) if found. Otherwise, -1 and nil are returned.
func (vals *ValidatorSet) GetByAddress(address []byte) (index int32, val *Validator) {
	for idx, val := range vals.Validators {
		if bytes.Equal(val.Address, address) {
			return int32(idx), val.Copy()
		}
	}
	return -1, nil
}

// GetByIndex returns the validator's address and validator itself (copy) by
// index.
// It returns nil values if index is less than 0 or greater or equal to
// len(ValidatorSet.Validators).
func (vals *ValidatorSet) GetByIndex(index int32) (address []byte, val *Validator) {
	if index < 0 || int(index) >= len(vals.Validators) {
		return nil, nil
	}
	val = vals.Validators[index]
	return val.Address, val.Copy()
}

// TotalVotingPower returns the sum of the voting powers of all validators.
// It panics if the sum overflows MaxTotalVotingPower; ValidateBasic rejects
// such sets.
func (vals *ValidatorSet) TotalVotingPower() int64 {
	if vals.totalVotingPower == 0 {
		sum, err := vals.safeTotalVotingPower()
		if err != nil {
			panic(err)
		}
		vals.totalVotingPower = sum
	}
	return vals.totalVotingPower
}

func (vals *ValidatorSet) safeTotalVotingPower() (int64, error) {
	var sum int64
	for _, val := range vals.Validators {
		var overflow bool
		sum, overflow = tmmath.SafeAddInt64(sum, val.VotingPower)
		if overflow || sum > MaxTotalVotingPower {
			return 0, fmt.Errorf("total voting power of resulting valset exceeds max %d", MaxTotalVotingPower)
		}
	}
	return sum, nil
}

// Hash returns the Merkle root hash build using validators (as leaves) in the
// set.
func (vals *ValidatorSet) Hash() []byte {
	bzs := make([][]byte, len(vals.Validators))
	for i, val := range vals.Validators {
		bzs[i] = val.Bytes()
	}
	return merkle.HashFromByteSlices(bzs)
}

// Copy each validator into a new ValidatorSet.
func (vals *ValidatorSet) Copy() *ValidatorSet {
	return NewValidatorSet(vals.Validators)
}

// String returns a string representation of ValidatorSet.
//
// See StringIndented.
func (vals *ValidatorSet) String() string {
	return vals.StringIndented("")
}

// StringIndented returns an intended String.
//
// See Validator#String.
func (vals *ValidatorSet) StringIndented(indent string) string {
	if vals == nil {
		return "nil-ValidatorSet"
	}
	var valStrings []string
	for _, val := range vals.Validators {
		valStrings = append(valStrings, val.String())
	}
	return fmt.Sprintf(`ValidatorSet{
%s  Validators:
%s    %v
%s}`,
		indent,
		indent, strings.Join(valStrings, "\n"+indent+"    "),
		indent)
}
