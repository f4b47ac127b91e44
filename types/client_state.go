package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tendermint/ibclight/ics23"
	tmmath "github.com/tendermint/ibclight/libs/math"
)

// ClientType selects the light client family, which decides how header
// commits are verified.
type ClientType string

const (
	// ClientTypeTendermint verifies ed25519 commits against validator sets.
	ClientTypeTendermint ClientType = "07-tendermint"
	// ClientTypeCometBLS verifies a zero-knowledge proof of the BLS
	// aggregate signature of the validator set.
	ClientTypeCometBLS ClientType = "cometbls"
)

// ValidateBasic rejects unknown client types.
func (t ClientType) ValidateBasic() error {
	switch t {
	case ClientTypeTendermint, ClientTypeCometBLS:
		return nil
	}
	return fmt.Errorf("unknown client type %q", string(t))
}

// ParseClientType parses a client type, accepting the short name
// "tendermint" as well.
func ParseClientType(s string) (ClientType, error) {
	if s == "tendermint" {
		return ClientTypeTendermint, nil
	}
	t := ClientType(s)
	return t, t.ValidateBasic()
}

// DefaultTrustLevel - new header can be trusted if at least one correct
// validator signed it.
var DefaultTrustLevel = tmmath.Fraction{Numerator: 1, Denominator: 3}

// ClientState is the trusted record of a counterparty chain kept by a light
// client.
type ClientState struct {
	ChainID    string          `json:"chain_id"`
	Type       ClientType      `json:"client_type"`
	TrustLevel tmmath.Fraction `json:"trust_level"`
	// TrustingPeriod is how long a consensus state can be used to verify new
	// headers.
	TrustingPeriod time.Duration `json:"trusting_period"`
	// UnbondingPeriod of the counterparty chain, which bounds TrustingPeriod.
	UnbondingPeriod time.Duration `json:"unbonding_period"`
	// MaxClockDrift is how far in the future a header time may be.
	MaxClockDrift time.Duration `json:"max_clock_drift"`
	LatestHeight  Height        `json:"latest_height"`
	// FrozenHeight is non-zero once misbehaviour has been detected.
	FrozenHeight Height `json:"frozen_height"`
	// ProofSpecs are used to verify membership proofs, one per layer, from
	// the innermost store out to the app hash.
	ProofSpecs []*ics23.ProofSpec `json:"-"`
}

// IsFrozen reports whether misbehaviour has been detected for the client.
func (cs *ClientState) IsFrozen() bool {
	return !cs.FrozenHeight.IsZero()
}

// Validate performs a basic validation of the client state fields.
func (cs *ClientState) Validate() error {
	if strings.TrimSpace(cs.ChainID) == "" {
		return errors.New("chain id cannot be empty string")
	}
	if len(cs.ChainID) > MaxChainIDLen {
		return fmt.Errorf("chainID is too long; got: %d, max: %d", len(cs.ChainID), MaxChainIDLen)
	}
	if err := cs.Type.ValidateBasic(); err != nil {
		return err
	}
	if err := ValidateTrustLevel(cs.TrustLevel); err != nil {
		return err
	}
	if cs.TrustingPeriod <= 0 {
		return fmt.Errorf("trusting period must be greater than zero, got %v", cs.TrustingPeriod)
	}
	if cs.UnbondingPeriod <= 0 {
		return fmt.Errorf("unbonding period must be greater than zero, got %v", cs.UnbondingPeriod)
	}
	if cs.MaxClockDrift <= 0 {
		return fmt.Errorf("max clock drift must be greater than zero, got %v", cs.MaxClockDrift)
	}
	if cs.TrustingPeriod >= cs.UnbondingPeriod {
		return fmt.Errorf("trusting period (%v) should be < unbonding period (%v)", cs.TrustingPeriod, cs.UnbondingPeriod)
	}
	if cs.LatestHeight.RevisionHeight == 0 {
		return errors.New("latest height revision height cannot be zero")
	}
	if revision := ParseChainID(cs.ChainID); cs.LatestHeight.RevisionNumber != revision {
		return fmt.Errorf("latest height revision number must match chain id revision number (%d != %d)",
			cs.LatestHeight.RevisionNumber, revision)
	}
	if len(cs.ProofSpecs) == 0 {
		return errors.New("proof specs cannot be empty")
	}
	for i, spec := range cs.ProofSpecs {
		if err := spec.ValidateBasic(); err != nil {
			return fmt.Errorf("proof spec %d: %w", i, err)
		}
	}
	return nil
}

// Copy returns a copy of the client state sharing the immutable proof specs.
func (cs *ClientState) Copy() *ClientState {
	c := *cs
	c.ProofSpecs = append([]*ics23.ProofSpec(nil), cs.ProofSpecs...)
	return &c
}

// ValidateTrustLevel checks that trustLevel is within the allowed range [1/3,
// 1]. If not, it returns an error. 1/3 is the minimum amount of trust needed
// which does not break the security model.
func ValidateTrustLevel(lvl tmmath.Fraction) error {
	if lvl.Numerator*3 < lvl.Denominator || // < 1/3
		lvl.Numerator > lvl.Denominator || // > 1
		lvl.Denominator == 0 {
		return fmt.Errorf("trustLevel must be within [1/3, 1], given %v", lvl)
	}
	return nil
}
