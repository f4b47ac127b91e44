package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// IsRevisionFormat checks if a chainID is in the format required for parsing
// revisions. The chainID must be in the form: `{chainID}-{revision}`.
var IsRevisionFormat = regexp.MustCompile(`^.*[^\n-]-{1}[1-9][0-9]*$`).MatchString

// Height is a monotonically increasing data type that can be compared against
// another Height for the purposes of updating and freezing clients.
//
// RevisionNumber is incremented when the counterparty chain resets its block
// height (e.g. on an upgrade), RevisionHeight is the block height within a
// revision. Heights are ordered by revision number first.
type Height struct {
	RevisionNumber uint64 `json:"revision_number"`
	RevisionHeight uint64 `json:"revision_height"`
}

// ZeroHeight is the unset height.
var ZeroHeight = Height{}

// NewHeight is a constructor for the Height type.
func NewHeight(revisionNumber, revisionHeight uint64) Height {
	return Height{
		RevisionNumber: revisionNumber,
		RevisionHeight: revisionHeight,
	}
}

// Compare returns -1 if h < other, 0 if they are equal and 1 if h > other.
func (h Height) Compare(other Height) int {
	switch {
	case h.RevisionNumber < other.RevisionNumber:
		return -1
	case h.RevisionNumber > other.RevisionNumber:
		return 1
	case h.RevisionHeight < other.RevisionHeight:
		return -1
	case h.RevisionHeight > other.RevisionHeight:
		return 1
	}
	return 0
}

// LT is a helper for h < other.
func (h Height) LT(other Height) bool { return h.Compare(other) == -1 }

// LTE is a helper for h <= other.
func (h Height) LTE(other Height) bool { return h.Compare(other) != 1 }

// GT is a helper for h > other.
func (h Height) GT(other Height) bool { return h.Compare(other) == 1 }

// GTE is a helper for h >= other.
func (h Height) GTE(other Height) bool { return h.Compare(other) != -1 }

// EQ is a helper for h == other.
func (h Height) EQ(other Height) bool { return h.Compare(other) == 0 }

// IsZero reports whether h is the unset height.
func (h Height) IsZero() bool {
	return h.RevisionNumber == 0 && h.RevisionHeight == 0
}

// Increment returns the next height within the same revision.
func (h Height) Increment() Height {
	return NewHeight(h.RevisionNumber, h.RevisionHeight+1)
}

// Decrement returns the previous height within the same revision. It
// returns false if h is the first height of its revision.
func (h Height) Decrement() (Height, bool) {
	if h.RevisionHeight == 0 {
		return Height{}, false
	}
	return NewHeight(h.RevisionNumber, h.RevisionHeight-1), true
}

// String returns a string representation of Height, "{revision}-{height}".
func (h Height) String() string {
	return fmt.Sprintf("%d-%d", h.RevisionNumber, h.RevisionHeight)
}

// MaxHeight returns the greater of a and b.
func MaxHeight(a, b Height) Height {
	if a.GT(b) {
		return a
	}
	return b
}

// ParseHeight parses a height string in the format "{revision}-{height}".
func ParseHeight(s string) (Height, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 2 {
		return Height{}, fmt.Errorf("expected height string format: {revision}-{height}, got: %q", s)
	}
	revisionNumber, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return Height{}, fmt.Errorf("invalid revision number %q: %w", parts[0], err)
	}
	revisionHeight, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return Height{}, fmt.Errorf("invalid revision height %q: %w", parts[1], err)
	}
	return NewHeight(revisionNumber, revisionHeight), nil
}

// ParseChainID parses a chainID string and returns the revision number. If
// the chainID is not in the `{chainID}-{revision}` format, the revision is 0.
func ParseChainID(chainID string) uint64 {
	if !IsRevisionFormat(chainID) {
		return 0
	}
	split := strings.Split(chainID, "-")
	revision, err := strconv.ParseUint(split[len(split)-1], 10, 64)
	if err != nil {
		return 0
	}
	return revision
}

// SetRevisionNumber replaces the revision suffix of chainID. It fails if the
// chainID is not in revision format.
func SetRevisionNumber(chainID string, revision uint64) (string, error) {
	if !IsRevisionFormat(chainID) {
		return "", fmt.Errorf("chainID %q is not in revision format", chainID)
	}
	idx := strings.LastIndex(chainID, "-")
	return fmt.Sprintf("%s-%d", chainID[:idx], revision), nil
}
