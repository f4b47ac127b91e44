package ics23

import (
	"bytes"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// VerifyMembership checks that proof proves key maps to value under root.
//
// The proof is first checked against spec, then the key and value are
// compared with the proven ones, and finally the root is recomputed from the
// leaf up and compared with root.
func VerifyMembership(spec *ProofSpec, root []byte, proof *ExistenceProof, key []byte, value []byte) error {
	if proof == nil {
		return errors.New("nil existence proof")
	}
	return proof.Verify(spec, root, key, value)
}

// VerifyNonMembership checks that proof proves key is absent under root.
func VerifyNonMembership(spec *ProofSpec, root []byte, proof *NonExistenceProof, key []byte) error {
	if proof == nil {
		return errors.New("nil non-existence proof")
	}
	return proof.Verify(spec, root, key)
}

// VerifyCommitmentMembership verifies a CommitmentProof carrying an
// existence proof.
func VerifyCommitmentMembership(spec *ProofSpec, root []byte, proof *CommitmentProof, key []byte, value []byte) error {
	if proof == nil || proof.Exist == nil {
		return errors.New("commitment proof does not carry an existence proof")
	}
	return VerifyMembership(spec, root, proof.Exist, key, value)
}

// VerifyCommitmentNonMembership verifies a CommitmentProof carrying a
// non-existence proof.
func VerifyCommitmentNonMembership(spec *ProofSpec, root []byte, proof *CommitmentProof, key []byte) error {
	if proof == nil || proof.Nonexist == nil {
		return errors.New("commitment proof does not carry a non-existence proof")
	}
	return VerifyNonMembership(spec, root, proof.Nonexist, key)
}

// Verify does all checks to ensure this proof proves this key, value -> root
// and matches the spec.
func (p *ExistenceProof) Verify(spec *ProofSpec, root []byte, key []byte, value []byte) error {
	if err := p.CheckAgainstSpec(spec); err != nil {
		return err
	}

	if !bytes.Equal(key, p.Key) {
		return KeyMismatchError{Expected: key, Got: p.Key}
	}

	if !bytes.Equal(value, p.Value) {
		return ValueMismatchError{Expected: value, Got: p.Value}
	}

	calc, err := p.calculate(spec)
	if err != nil {
		return fmt.Errorf("error calculating root: %w", err)
	}

	if !bytes.Equal(root, calc) {
		return RootMismatchError{Expected: root, Calculated: calc}
	}

	return nil
}

// Calculate determines the root hash that matches the given proof.
// You must validate the result is what you have in a header.
// Returns error if the calculations cannot be performed.
func (p *ExistenceProof) Calculate() ([]byte, error) {
	return p.calculate(nil)
}

func (p *ExistenceProof) calculate(spec *ProofSpec) ([]byte, error) {
	if p.Leaf == nil {
		return nil, ErrMissingLeaf
	}

	res, err := p.Leaf.Apply(p.Key, p.Value)
	if err != nil {
		return nil, fmt.Errorf("leaf: %w", err)
	}

	for i, step := range p.Path {
		if step == nil {
			return nil, fmt.Errorf("inner op %d is nil", i)
		}
		res, err = step.Apply(res)
		if err != nil {
			return nil, fmt.Errorf("inner op %d: %w", i, err)
		}
		// intermediate hashes must fit in a child slot
		if spec != nil && spec.InnerSpec != nil {
			childSize := int(spec.InnerSpec.ChildSize)
			if childSize >= 32 && len(res) > childSize {
				return nil, fmt.Errorf("inner op %d: hash of %d bytes exceeds child size %d", i, len(res), childSize)
			}
		}
	}
	return res, nil
}

// CheckAgainstSpec will verify the leaf and all path steps are in the format
// defined in spec.
func (p *ExistenceProof) CheckAgainstSpec(spec *ProofSpec) error {
	if spec == nil || spec.LeafSpec == nil || spec.InnerSpec == nil {
		return fmt.Errorf("%w: spec must define leaf and inner specs", ErrInvalidSpec)
	}
	if p.Leaf == nil {
		return ErrMissingLeaf
	}
	if err := p.Leaf.CheckAgainstSpec(spec); err != nil {
		return fmt.Errorf("leaf, %w", err)
	}
	if spec.MinDepth > 0 && len(p.Path) < int(spec.MinDepth) {
		return specMismatch("inner op path too short: %d < min depth %d", len(p.Path), spec.MinDepth)
	}
	if spec.MaxDepth > 0 && len(p.Path) > int(spec.MaxDepth) {
		return specMismatch("inner op path too long: %d > max depth %d", len(p.Path), spec.MaxDepth)
	}

	for layer, inner := range p.Path {
		if inner == nil {
			return specMismatch("inner op %d is nil", layer)
		}
		if err := inner.CheckAgainstSpec(spec, layer+1); err != nil {
			return fmt.Errorf("inner, %w", err)
		}
	}
	return nil
}

// CheckAgainstSpec will verify the LeafOp is in the format defined in spec.
func (op *LeafOp) CheckAgainstSpec(spec *ProofSpec) error {
	lspec := spec.LeafSpec

	if spec.SpecEquals(IavlSpec) {
		if err := validateIavlOps(op.Prefix, op.Hash, 0); err != nil {
			return err
		}
	}

	if op.Hash != lspec.Hash {
		return specMismatch("unexpected HashOp: %v, expected %v", op.Hash, lspec.Hash)
	}
	if op.PrehashKey != lspec.PrehashKey {
		return specMismatch("unexpected PrehashKey: %v, expected %v", op.PrehashKey, lspec.PrehashKey)
	}
	if op.PrehashValue != lspec.PrehashValue {
		return specMismatch("unexpected PrehashValue: %v, expected %v", op.PrehashValue, lspec.PrehashValue)
	}
	if op.Length != lspec.Length {
		return specMismatch("unexpected LengthOp: %v, expected %v", op.Length, lspec.Length)
	}
	if !bytes.HasPrefix(op.Prefix, lspec.Prefix) {
		return specMismatch("leaf prefix %X does not start with %X", op.Prefix, lspec.Prefix)
	}
	return nil
}

// CheckAgainstSpec will verify the InnerOp at the given layer is in the
// format defined in spec.
func (op *InnerOp) CheckAgainstSpec(spec *ProofSpec, layer int) error {
	ispec := spec.InnerSpec

	if op.Hash != ispec.Hash {
		return specMismatch("unexpected HashOp: %v, expected %v", op.Hash, ispec.Hash)
	}

	if spec.SpecEquals(IavlSpec) {
		if err := validateIavlOps(op.Prefix, op.Hash, layer); err != nil {
			return err
		}
	}

	if bytes.HasPrefix(op.Prefix, spec.LeafSpec.Prefix) {
		return specMismatch("inner prefix starts with leaf prefix %X", spec.LeafSpec.Prefix)
	}
	if len(op.Prefix) < int(ispec.MinPrefixLength) {
		return specMismatch("inner prefix too short: %d < %d", len(op.Prefix), ispec.MinPrefixLength)
	}
	if ispec.ChildSize <= 0 {
		return fmt.Errorf("%w: child size must be positive", ErrInvalidSpec)
	}
	maxLeftChildBytes := (len(ispec.ChildOrder) - 1) * int(ispec.ChildSize)
	if len(op.Prefix) > int(ispec.MaxPrefixLength)+maxLeftChildBytes {
		return specMismatch("inner prefix too long: %d > %d", len(op.Prefix), int(ispec.MaxPrefixLength)+maxLeftChildBytes)
	}
	if len(op.Suffix)%int(ispec.ChildSize) != 0 {
		return specMismatch("inner suffix length %d is not a multiple of child size %d", len(op.Suffix), ispec.ChildSize)
	}
	return nil
}

// validateIavlOps checks the height, size and version varints IAVL encodes
// at the start of every prefix.
func validateIavlOps(prefix []byte, hash HashOp, layer int) error {
	rest := prefix
	var height int64
	for i := 0; i < 3; i++ {
		v, n := protowire.ConsumeVarint(rest)
		if n < 0 {
			return specMismatch("malformed IAVL varint in prefix %X", prefix)
		}
		value := protowire.DecodeZigZag(v)
		if value < 0 {
			return specMismatch("negative IAVL value in prefix %X", prefix)
		}
		if i == 0 {
			height = value
		}
		rest = rest[n:]
	}
	if height < int64(layer) {
		return specMismatch("IAVL height %d below layer %d", height, layer)
	}

	if layer == 0 {
		if len(rest) != 0 {
			return specMismatch("IAVL leaf prefix has %d trailing bytes", len(rest))
		}
		return nil
	}
	// an inner prefix carries either only the child length byte, or a left
	// child (length byte and 32 byte hash) followed by the child length byte
	if len(rest) != 1 && len(rest) != 34 {
		return specMismatch("IAVL inner prefix has %d trailing bytes", len(rest))
	}
	if hash != HashOpSHA256 {
		return specMismatch("IAVL inner op must use SHA256, got %v", hash)
	}
	return nil
}

// Verify checks that the proof demonstrates key is absent under root.
//
// Any present neighbour is verified as an existence proof of its own key.
// The key must sort strictly after the left neighbour and strictly before
// the right neighbour. With only one neighbour it must sit at the edge of
// the tree; with two they must be adjacent leaves.
func (p *NonExistenceProof) Verify(spec *ProofSpec, root []byte, key []byte) error {
	var leftKey, rightKey []byte

	if p.Left != nil {
		if err := p.Left.Verify(spec, root, p.Left.Key, p.Left.Value); err != nil {
			return fmt.Errorf("left proof: %w", err)
		}
		leftKey = p.Left.Key
	}
	if p.Right != nil {
		if err := p.Right.Verify(spec, root, p.Right.Key, p.Right.Value); err != nil {
			return fmt.Errorf("right proof: %w", err)
		}
		rightKey = p.Right.Key
	}

	if leftKey == nil && rightKey == nil {
		return ErrBothProofsMissing
	}

	cmpKey, err := keyForComparison(spec, key)
	if err != nil {
		return err
	}

	if rightKey != nil {
		cmpRight, err := keyForComparison(spec, rightKey)
		if err != nil {
			return err
		}
		if bytes.Compare(cmpKey, cmpRight) >= 0 {
			return NeighborError{Reason: "key is not left of right proof"}
		}
	}

	if leftKey != nil {
		cmpLeft, err := keyForComparison(spec, leftKey)
		if err != nil {
			return err
		}
		if bytes.Compare(cmpKey, cmpLeft) <= 0 {
			return NeighborError{Reason: "key is not right of left proof"}
		}
	}

	switch {
	case leftKey == nil:
		ok, err := IsLeftMost(spec.InnerSpec, p.Right.Path)
		if err != nil {
			return err
		}
		if !ok {
			return NeighborError{Reason: "left proof missing, right proof must be left-most"}
		}
	case rightKey == nil:
		ok, err := IsRightMost(spec.InnerSpec, p.Left.Path)
		if err != nil {
			return err
		}
		if !ok {
			return NeighborError{Reason: "right proof missing, left proof must be right-most"}
		}
	default:
		ok, err := IsLeftNeighbor(spec.InnerSpec, p.Left.Path, p.Right.Path)
		if err != nil {
			return err
		}
		if !ok {
			return NeighborError{Reason: "right proof is not the left neighbor's successor"}
		}
	}
	return nil
}

func keyForComparison(spec *ProofSpec, key []byte) ([]byte, error) {
	if !spec.PrehashKeyBeforeComparison {
		return key, nil
	}
	return doHashOrNoop(spec.LeafSpec.PrehashKey, key)
}
