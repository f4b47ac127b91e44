// Package ics23 verifies generalized Merkle proofs of existence and absence
// against a committed root, parameterized by a ProofSpec describing the
// layout of the tree (leaf encoding, branch ordering, padding and hashing).
package ics23

import (
	"bytes"
	"fmt"
)

// HashOp is the hash function applied by a leaf or inner operation.
type HashOp int32

const (
	HashOpNoHash HashOp = iota
	HashOpSHA256
	HashOpSHA512
	HashOpKeccak256
	HashOpRIPEMD160
	// HashOpBitcoin is ripemd160(sha256(x)).
	HashOpBitcoin
	HashOpSHA512_256
	HashOpBLAKE2b512
	HashOpBLAKE2s256
	HashOpBLAKE3
)

var hashOpNames = map[HashOp]string{
	HashOpNoHash:     "NO_HASH",
	HashOpSHA256:     "SHA256",
	HashOpSHA512:     "SHA512",
	HashOpKeccak256:  "KECCAK256",
	HashOpRIPEMD160:  "RIPEMD160",
	HashOpBitcoin:    "BITCOIN",
	HashOpSHA512_256: "SHA512_256",
	HashOpBLAKE2b512: "BLAKE2B_512",
	HashOpBLAKE2s256: "BLAKE2S_256",
	HashOpBLAKE3:     "BLAKE3",
}

func (op HashOp) String() string {
	if s, ok := hashOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("HashOp(%d)", int32(op))
}

// ParseHashOp returns the HashOp with the given name.
func ParseHashOp(s string) (HashOp, error) {
	for op, name := range hashOpNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown hash op %q", s)
}

// LengthOp defines how the length of a leaf key or value is encoded before
// hashing.
type LengthOp int32

const (
	LengthOpNoPrefix LengthOp = iota
	// LengthOpVarProto is the protobuf unsigned varint length prefix.
	LengthOpVarProto
	LengthOpVarRLP
	LengthOpFixed32Big
	LengthOpFixed32Little
	LengthOpFixed64Big
	LengthOpFixed64Little
	// LengthOpRequire32Bytes requires exactly 32 bytes and adds no prefix.
	LengthOpRequire32Bytes
	// LengthOpRequire64Bytes requires exactly 64 bytes and adds no prefix.
	LengthOpRequire64Bytes
)

var lengthOpNames = map[LengthOp]string{
	LengthOpNoPrefix:       "NO_PREFIX",
	LengthOpVarProto:       "VAR_PROTO",
	LengthOpVarRLP:         "VAR_RLP",
	LengthOpFixed32Big:     "FIXED32_BIG",
	LengthOpFixed32Little:  "FIXED32_LITTLE",
	LengthOpFixed64Big:     "FIXED64_BIG",
	LengthOpFixed64Little:  "FIXED64_LITTLE",
	LengthOpRequire32Bytes: "REQUIRE_32_BYTES",
	LengthOpRequire64Bytes: "REQUIRE_64_BYTES",
}

func (op LengthOp) String() string {
	if s, ok := lengthOpNames[op]; ok {
		return s
	}
	return fmt.Sprintf("LengthOp(%d)", int32(op))
}

// ParseLengthOp returns the LengthOp with the given name.
func ParseLengthOp(s string) (LengthOp, error) {
	for op, name := range lengthOpNames {
		if name == s {
			return op, nil
		}
	}
	return 0, fmt.Errorf("unknown length op %q", s)
}

// LeafOp represents the raw key-value data we wish to prove, and must be
// flexible to represent the internal transformation from the original
// key-value pairs into the basis hash, for many existing merkle trees.
//
// The leaf hash is hash(Prefix || length(prehash(key)) || length(prehash(value))).
type LeafOp struct {
	Hash         HashOp
	PrehashKey   HashOp
	PrehashValue HashOp
	Length       LengthOp
	// Prefix is a fixed set of bytes prepended to the leaf data, used to
	// separate leaf nodes from inner nodes.
	Prefix []byte
}

// InnerOp represents a merkle-proof step that is not a leaf. It hashes the
// result of the previous step with Prefix and Suffix:
//
//	hash(Prefix || child || Suffix)
//
// Any sibling hashes are encoded in Prefix (left siblings) or Suffix (right
// siblings).
type InnerOp struct {
	Hash   HashOp
	Prefix []byte
	Suffix []byte
}

// InnerSpec describes the layout of inner nodes so that the position of a
// child within a node can be recovered from the byte lengths of an InnerOp.
type InnerSpec struct {
	// ChildOrder is the permutation of branch indices as laid out in the
	// node, e.g. [0, 1] for a binary tree with left before right.
	ChildOrder      []int32
	ChildSize       int32
	MinPrefixLength int32
	MaxPrefixLength int32
	// EmptyChild is the placeholder for a missing branch, if the tree
	// supports it.
	EmptyChild []byte
	Hash       HashOp
}

// ProofSpec defines the layout of a tree so that a proof can be checked for
// structural conformance before it is evaluated.
type ProofSpec struct {
	LeafSpec  *LeafOp
	InnerSpec *InnerSpec
	// MaxDepth and MinDepth bound the number of InnerOps in a path. Zero
	// means unbounded.
	MaxDepth int32
	MinDepth int32
	// PrehashKeyBeforeComparison applies LeafSpec.PrehashKey to keys before
	// they are ordered for non-existence checks.
	PrehashKeyBeforeComparison bool
}

// ExistenceProof proves that Key maps to Value under a root. Path is
// ordered from the leaf upwards.
type ExistenceProof struct {
	Key   []byte
	Value []byte
	Leaf  *LeafOp
	Path  []*InnerOp
}

// NonExistenceProof proves that Key is absent from a tree by exhibiting
// existence proofs of its closest neighbours. At least one of Left or Right
// must be set.
type NonExistenceProof struct {
	Key   []byte
	Left  *ExistenceProof
	Right *ExistenceProof
}

// CommitmentProof is either an ExistenceProof or a NonExistenceProof.
type CommitmentProof struct {
	Exist    *ExistenceProof
	Nonexist *NonExistenceProof
}

// SpecEquals reports whether two specs describe the same tree layout.
func (spec *ProofSpec) SpecEquals(other *ProofSpec) bool {
	if spec == nil || other == nil {
		return spec == other
	}
	if spec.MaxDepth != other.MaxDepth ||
		spec.MinDepth != other.MinDepth ||
		spec.PrehashKeyBeforeComparison != other.PrehashKeyBeforeComparison {
		return false
	}
	return spec.LeafSpec.equals(other.LeafSpec) && spec.InnerSpec.equals(other.InnerSpec)
}

func (op *LeafOp) equals(other *LeafOp) bool {
	if op == nil || other == nil {
		return op == other
	}
	return op.Hash == other.Hash &&
		op.PrehashKey == other.PrehashKey &&
		op.PrehashValue == other.PrehashValue &&
		op.Length == other.Length &&
		bytes.Equal(op.Prefix, other.Prefix)
}

func (spec *InnerSpec) equals(other *InnerSpec) bool {
	if spec == nil || other == nil {
		return spec == other
	}
	if len(spec.ChildOrder) != len(other.ChildOrder) {
		return false
	}
	for i := range spec.ChildOrder {
		if spec.ChildOrder[i] != other.ChildOrder[i] {
			return false
		}
	}
	return spec.ChildSize == other.ChildSize &&
		spec.MinPrefixLength == other.MinPrefixLength &&
		spec.MaxPrefixLength == other.MaxPrefixLength &&
		spec.Hash == other.Hash &&
		bytes.Equal(spec.EmptyChild, other.EmptyChild)
}

// ValidateBasic checks the spec is internally consistent.
func (spec *ProofSpec) ValidateBasic() error {
	if spec == nil {
		return fmt.Errorf("%w: nil proof spec", ErrInvalidSpec)
	}
	if spec.LeafSpec == nil {
		return fmt.Errorf("%w: nil leaf spec", ErrInvalidSpec)
	}
	inner := spec.InnerSpec
	if inner == nil {
		return fmt.Errorf("%w: nil inner spec", ErrInvalidSpec)
	}
	if inner.ChildSize <= 0 {
		return fmt.Errorf("%w: child size must be positive, got %d", ErrInvalidSpec, inner.ChildSize)
	}
	if len(inner.ChildOrder) < 2 {
		return fmt.Errorf("%w: child order must have at least 2 branches", ErrInvalidSpec)
	}
	if inner.MinPrefixLength < 0 || inner.MaxPrefixLength < inner.MinPrefixLength {
		return fmt.Errorf("%w: invalid prefix bounds [%d, %d]",
			ErrInvalidSpec, inner.MinPrefixLength, inner.MaxPrefixLength)
	}
	seen := make(map[int32]bool, len(inner.ChildOrder))
	for _, branch := range inner.ChildOrder {
		if branch < 0 || int(branch) >= len(inner.ChildOrder) || seen[branch] {
			return fmt.Errorf("%w: child order %v is not a permutation", ErrInvalidSpec, inner.ChildOrder)
		}
		seen[branch] = true
	}
	if spec.MinDepth < 0 || spec.MaxDepth < 0 || (spec.MaxDepth > 0 && spec.MaxDepth < spec.MinDepth) {
		return fmt.Errorf("%w: invalid depth bounds [%d, %d]", ErrInvalidSpec, spec.MinDepth, spec.MaxDepth)
	}
	return nil
}
