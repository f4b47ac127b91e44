package ics23

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSpec is returned when a ProofSpec is not internally consistent.
	ErrInvalidSpec = errors.New("invalid proof spec")
	// ErrBothProofsMissing is returned by non-existence verification when
	// neither a left nor a right neighbour is supplied.
	ErrBothProofsMissing = errors.New("both left and right proofs missing")
	// ErrEmptyChild is returned when an inner op is applied to an empty child.
	ErrEmptyChild = errors.New("inner op needs child value")
	// ErrMissingLeaf is returned for existence proofs without a leaf op.
	ErrMissingLeaf = errors.New("existence proof must start with a leaf operation")
	// ErrDecode wraps all wire-format decoding failures.
	ErrDecode = errors.New("ics23: decode error")
)

// SpecMismatchError means a proof's shape disagrees with the ProofSpec it is
// verified under.
type SpecMismatchError struct {
	Reason string
}

func (e SpecMismatchError) Error() string {
	return fmt.Sprintf("proof does not match spec: %s", e.Reason)
}

func specMismatch(format string, args ...interface{}) error {
	return SpecMismatchError{Reason: fmt.Sprintf(format, args...)}
}

// KeyMismatchError means the proven key differs from the requested key.
type KeyMismatchError struct {
	Expected []byte
	Got      []byte
}

func (e KeyMismatchError) Error() string {
	return fmt.Sprintf("provided key doesn't match proof: expected %X, got %X", e.Expected, e.Got)
}

// ValueMismatchError means the proven value differs from the requested value.
type ValueMismatchError struct {
	Expected []byte
	Got      []byte
}

func (e ValueMismatchError) Error() string {
	return fmt.Sprintf("provided value doesn't match proof: expected %X, got %X", e.Expected, e.Got)
}

// RootMismatchError means the recomputed root differs from the trusted root.
type RootMismatchError struct {
	Expected   []byte
	Calculated []byte
}

func (e RootMismatchError) Error() string {
	return fmt.Sprintf("calculated root doesn't match provided root: expected %X, calculated %X",
		e.Expected, e.Calculated)
}

// InvalidBranchError means a branch index is outside of the spec's child
// order.
type InvalidBranchError struct {
	Branch     int32
	ChildOrder []int32
}

func (e InvalidBranchError) Error() string {
	return fmt.Sprintf("invalid branch %d for child order %v", e.Branch, e.ChildOrder)
}

// NeighborError explains why a non-existence proof does not bracket the key.
type NeighborError struct {
	Reason string
}

func (e NeighborError) Error() string {
	return fmt.Sprintf("invalid non-existence proof: %s", e.Reason)
}

// UnsupportedOpError is returned for hash or length ops that cannot be
// evaluated.
type UnsupportedOpError struct {
	Op fmt.Stringer
}

func (e UnsupportedOpError) Error() string {
	return fmt.Sprintf("unsupported operation %v", e.Op)
}
