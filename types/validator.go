package types

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/tendermint/ibclight/crypto"
	"github.com/tendermint/ibclight/crypto/ed25519"
	"github.com/tendermint/ibclight/internal/libs/protoio"
)

// MaxTotalVotingPower - the maximum allowed total voting power. Tallies
// multiplied by a trust level numerator must stay within int64.
const MaxTotalVotingPower = int64(1<<63-1) / 8

// Validator is a member of a ValidatorSet. Its address is derived from its
// public key.
type Validator struct {
	Address     crypto.Address `json:"address"`
	PubKey      crypto.PubKey  `json:"pub_key"`
	VotingPower int64          `json:"voting_power"`
}

// NewValidator returns a new validator with the given pubkey and voting power.
func NewValidator(pubKey crypto.PubKey, votingPower int64) *Validator {
	return &Validator{
		Address:     pubKey.Address(),
		PubKey:      pubKey,
		VotingPower: votingPower,
	}
}

// ValidateBasic performs basic validation.
func (v *Validator) ValidateBasic() error {
	if v == nil {
		return errors.New("nil validator")
	}
	if v.PubKey == nil {
		return errors.New("validator does not have a public key")
	}
	if v.VotingPower < 0 {
		return errors.New("validator has negative voting power")
	}
	if !bytes.Equal(v.Address, v.PubKey.Address()) {
		return fmt.Errorf("validator address is incorrectly derived from pubkey. Exp: %v, got %v",
			v.PubKey.Address(), v.Address)
	}
	return nil
}

// Copy creates a new copy of the validator so we can mutate it.
func (v *Validator) Copy() *Validator {
	vCopy := *v
	return &vCopy
}

// String returns a string representation of String.
//
// 1. address
// 2. public key
// 3. voting power
func (v *Validator) String() string {
	if v == nil {
		return "nil-Validator"
	}
	return fmt.Sprintf("Validator{%v %v VP:%v}",
		v.Address,
		v.PubKey,
		v.VotingPower)
}

// Bytes computes the unique encoding of a validator with a given voting power.
// These are the bytes that gets hashed in consensus. It excludes address
// as its redundant with the pubkey.
func (v *Validator) Bytes() []byte {
	var pk []byte
	if v.PubKey != nil {
		pk = protoio.AppendBytes(nil, 1, v.PubKey.Bytes())
	}
	var b []byte
	b = protoio.AppendMessage(b, 1, pk)
	b = protoio.AppendInt64(b, 2, v.VotingPower)
	return b
}

// ValidatorListString returns a prettified validator list for logging purposes.
func ValidatorListString(vals []*Validator) string {
	chunks := make([]string, len(vals))
	for i, val := range vals {
		chunks[i] = fmt.Sprintf("%s:%d", val.Address, val.VotingPower)
	}
	return strings.Join(chunks, ",")
}

func pubKeyFromBytes(keyType string, bz []byte) (crypto.PubKey, error) {
	switch keyType {
	case ed25519.KeyType:
		if len(bz) != ed25519.PubKeySize {
			return nil, fmt.Errorf("invalid size for ed25519 pubkey: %d", len(bz))
		}
		return ed25519.PubKey(append([]byte(nil), bz...)), nil
	}
	return nil, fmt.Errorf("unsupported key type %q", keyType)
}
