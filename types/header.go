package types

import (
	"errors"
	"fmt"
	"time"
)

// Header is the client message that updates a light client: a signed
// header of the counterparty chain together with what is needed to verify
// it against the consensus state at TrustedHeight.
//
// Tendermint clients use ValidatorSet and TrustedValidators, CometBLS
// clients carry a ZKProof instead.
type Header struct {
	SignedHeader *SignedHeader `json:"signed_header"`
	// ValidatorSet is the set that signed SignedHeader.
	ValidatorSet *ValidatorSet `json:"validator_set,omitempty"`
	// TrustedHeight is the height of the consensus state the header is
	// verified against.
	TrustedHeight Height `json:"trusted_height"`
	// TrustedValidators is the validator set whose hash is the
	// NextValidatorsHash of the trusted consensus state.
	TrustedValidators *ValidatorSet `json:"trusted_validators,omitempty"`
	ZKProof           []byte        `json:"zk_proof,omitempty"`
}

// Height returns the height of the signed header, with the revision taken
// from the chain id. A header without a signed header has zero height.
func (h *Header) Height() Height {
	if h == nil || h.SignedHeader == nil || h.SignedHeader.Height < 0 {
		return ZeroHeight
	}
	return NewHeight(ParseChainID(h.SignedHeader.ChainID), uint64(h.SignedHeader.Height))
}

// Time returns the header time, or the zero time without a signed header.
func (h *Header) Time() time.Time {
	if h == nil || h.SignedHeader == nil {
		return time.Time{}
	}
	return h.SignedHeader.Time
}

// Timestamp returns the header time in unix nanoseconds.
func (h *Header) Timestamp() uint64 {
	return uint64(timeToNanos(h.Time()))
}

// ConsensusState returns the consensus state the header produces.
func (h *Header) ConsensusState() *ConsensusState {
	return NewConsensusState(h.SignedHeader.Time, h.SignedHeader.AppHash, h.SignedHeader.NextValidatorsHash)
}

// ValidateBasic checks the header is well formed. It does not verify the
// commit.
func (h *Header) ValidateBasic() error {
	if h == nil || h.SignedHeader == nil {
		return errors.New("tendermint signed header cannot be nil")
	}
	if err := h.SignedHeader.ValidateBasic(h.SignedHeader.ChainID); err != nil {
		return fmt.Errorf("header failed basic validation: %w", err)
	}
	if h.SignedHeader.Time.IsZero() {
		return errors.New("header time cannot be zero")
	}
	if h.Height().RevisionNumber != h.TrustedHeight.RevisionNumber {
		return fmt.Errorf("header height revision %d does not match trusted header revision %d",
			h.Height().RevisionNumber, h.TrustedHeight.RevisionNumber)
	}
	if h.TrustedHeight.GTE(h.Height()) {
		return fmt.Errorf("trusted height %v must be less than header height %v", h.TrustedHeight, h.Height())
	}
	return nil
}

// Misbehaviour is evidence of two valid but conflicting headers: either two
// different headers at the same height or two headers whose times are out
// of order.
type Misbehaviour struct {
	ClientID string  `json:"client_id"`
	Header1  *Header `json:"header_1"`
	Header2  *Header `json:"header_2"`
}

// ValidateBasic checks both headers are well formed, belong to the same
// chain, and Header1 is not below Header2.
func (m *Misbehaviour) ValidateBasic() error {
	if m == nil {
		return errors.New("nil misbehaviour")
	}
	if m.Header1 == nil {
		return errors.New("misbehaviour Header1 cannot be nil")
	}
	if m.Header2 == nil {
		return errors.New("misbehaviour Header2 cannot be nil")
	}
	if err := m.Header1.ValidateBasic(); err != nil {
		return fmt.Errorf("header 1 failed validation: %w", err)
	}
	if err := m.Header2.ValidateBasic(); err != nil {
		return fmt.Errorf("header 2 failed validation: %w", err)
	}
	if m.Header1.SignedHeader.ChainID != m.Header2.SignedHeader.ChainID {
		return errors.New("headers must have identical chainIDs")
	}
	if m.Header1.Height().LT(m.Header2.Height()) {
		return fmt.Errorf("Header1 height is less than Header2 height (%s < %s)", m.Header1.Height(), m.Header2.Height())
	}
	return nil
}
