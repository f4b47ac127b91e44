package store

import (
	"errors"

	"github.com/tendermint/ibclight/types"
)

var (
	// ErrClientStateNotFound is returned when no client state is stored for a
	// client id.
	ErrClientStateNotFound = errors.New("client state not found")

	// ErrConsensusStateNotFound is returned when no consensus state is stored
	// at the requested height.
	ErrConsensusStateNotFound = errors.New("consensus state not found")

	// ErrInvalidConsensusStateMetadata is returned when a height index entry
	// exists but cannot be decoded.
	ErrInvalidConsensusStateMetadata = errors.New("invalid consensus state metadata")
)

// IndexEntry is a row of the height index: the height of a stored consensus
// state and its timestamp.
type IndexEntry struct {
	Height    types.Height
	Timestamp uint64
}

//go:generate ../../scripts/mockery_generate.sh Store

// Store is anything that can persistently store client and consensus states.
//
// Reads are safe to call concurrently. Writes for the same client id must be
// serialized by the caller.
type Store interface {
	// ClientState returns the client state of clientID.
	//
	// If it is not found, ErrClientStateNotFound is returned.
	ClientState(clientID string) (*types.ClientState, error)

	// SaveClientState overwrites the client state of clientID.
	SaveClientState(clientID string, cs *types.ClientState) error

	// ConsensusState returns the consensus state of clientID at height.
	//
	// If it is not found, ErrConsensusStateNotFound is returned.
	ConsensusState(clientID string, height types.Height) (*types.ConsensusState, error)

	// SaveConsensusState writes the consensus state at height together with
	// its height index entry, atomically.
	SaveConsensusState(clientID string, height types.Height, cs *types.ConsensusState) error

	// NearestAtOrBefore returns the index entry with the greatest height <=
	// height, or nil if there is none.
	//
	// NOTE: an entry at height itself is returned, so calling this in a loop
	// with the returned height never advances.
	NearestAtOrBefore(clientID string, height types.Height) (*IndexEntry, error)

	// NearestAtOrAfter returns the index entry with the smallest height >=
	// height, or nil if there is none.
	//
	// NOTE: an entry at height itself is returned.
	NearestAtOrAfter(clientID string, height types.Height) (*IndexEntry, error)
}
