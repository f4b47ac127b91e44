package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"github.com/tendermint/ibclight/types"
)

const (
	// IndexKeyPrefix prefixes every height index key.
	IndexKeyPrefix = "iter_cons/"

	// IndexKeySize is the length of an index key: the prefix followed by the
	// big-endian revision number and revision height.
	IndexKeySize = len(IndexKeyPrefix) + 16

	// IndexValueSize is the length of an index value, the little-endian
	// timestamp.
	IndexValueSize = 8
)

var (
	// IndexStart and IndexEnd bound the height index: every index key k
	// satisfies IndexStart <= k < IndexEnd.
	IndexStart = []byte(IndexKeyPrefix)
	IndexEnd   = []byte("iter_cons0")
)

// IndexKey returns the height index key of h. Keys sort in the same order as
// heights.
func IndexKey(h types.Height) []byte {
	key := make([]byte, IndexKeySize)
	copy(key, IndexKeyPrefix)
	binary.BigEndian.PutUint64(key[len(IndexKeyPrefix):], h.RevisionNumber)
	binary.BigEndian.PutUint64(key[len(IndexKeyPrefix)+8:], h.RevisionHeight)
	return key
}

// ParseIndexKey is the inverse of IndexKey.
func ParseIndexKey(key []byte) (types.Height, error) {
	if len(key) != IndexKeySize || !strings.HasPrefix(string(key), IndexKeyPrefix) {
		return types.Height{}, fmt.Errorf("%w: malformed index key %X", ErrInvalidConsensusStateMetadata, key)
	}
	return types.NewHeight(
		binary.BigEndian.Uint64(key[len(IndexKeyPrefix):]),
		binary.BigEndian.Uint64(key[len(IndexKeyPrefix)+8:]),
	), nil
}

// EncodeIndexValue encodes the metadata of an index entry.
func EncodeIndexValue(timestamp uint64) []byte {
	bz := make([]byte, IndexValueSize)
	binary.LittleEndian.PutUint64(bz, timestamp)
	return bz
}

// DecodeIndexValue decodes the metadata of an index entry. Any value that is
// not exactly IndexValueSize bytes is rejected.
func DecodeIndexValue(bz []byte) (uint64, error) {
	if len(bz) != IndexValueSize {
		return 0, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidConsensusStateMetadata, IndexValueSize, len(bz))
	}
	return binary.LittleEndian.Uint64(bz), nil
}

// DecodeIndexEntry decodes a raw index row.
func DecodeIndexEntry(key, value []byte) (*IndexEntry, error) {
	h, err := ParseIndexKey(key)
	if err != nil {
		return nil, err
	}
	ts, err := DecodeIndexValue(value)
	if err != nil {
		return nil, err
	}
	return &IndexEntry{Height: h, Timestamp: ts}, nil
}

// ValidateClientID checks a client id can be used as a storage namespace.
func ValidateClientID(clientID string) error {
	switch {
	case strings.TrimSpace(clientID) == "":
		return errors.New("client id cannot be blank")
	case strings.Contains(clientID, "/"):
		return fmt.Errorf("client id %q cannot contain '/'", clientID)
	case len(clientID) > 64:
		return fmt.Errorf("client id %q is longer than 64 characters", clientID)
	}
	return nil
}
