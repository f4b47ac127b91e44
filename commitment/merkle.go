// Package commitment implements multi-layer Merkle commitments: a value is
// proven inside a store whose root is in turn proven inside the app hash,
// with one ICS23 proof and one ProofSpec per layer.
package commitment

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/tendermint/ibclight/ics23"
	"github.com/tendermint/ibclight/internal/libs/protoio"
)

var (
	// ErrInvalidProof is returned when a proof fails verification.
	ErrInvalidProof = errors.New("invalid merkle proof")
	// ErrInvalidPath is returned for empty paths or paths whose depth does
	// not match the proof.
	ErrInvalidPath = errors.New("invalid merkle path")
	// ErrEmptyValue is returned when membership is asked for an empty value.
	ErrEmptyValue = errors.New("empty value in membership proof")
)

// LayerError is returned when the proof of one layer fails. It matches
// ErrInvalidProof under errors.Is and unwraps to the ICS23 error.
type LayerError struct {
	Index int
	Key   []byte
	Err   error
}

func (e LayerError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("invalid merkle proof at index %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("invalid merkle proof for key %q at index %d: %v", e.Key, e.Index, e.Err)
}

func (e LayerError) Unwrap() error { return e.Err }

func (e LayerError) Is(target error) bool { return target == ErrInvalidProof }

// MerkleRoot is the root a MerkleProof is verified against, usually the
// app hash of a consensus state.
type MerkleRoot struct {
	Hash []byte
}

// NewMerkleRoot constructs a new MerkleRoot.
func NewMerkleRoot(hash []byte) MerkleRoot {
	return MerkleRoot{Hash: hash}
}

// Empty reports whether the root has no hash.
func (mr MerkleRoot) Empty() bool {
	return len(mr.Hash) == 0
}

// MerklePrefix is the store key prefix prepended to a path, e.g. "ibc".
type MerklePrefix struct {
	KeyPrefix []byte
}

// NewMerklePrefix constructs a new MerklePrefix.
func NewMerklePrefix(keyPrefix []byte) MerklePrefix {
	return MerklePrefix{KeyPrefix: keyPrefix}
}

// Empty reports whether the prefix is unset.
func (mp MerklePrefix) Empty() bool {
	return len(mp.KeyPrefix) == 0
}

// MerklePath is the path of keys from the outermost layer inwards: the
// first key names the store in the app hash tree, the last key is the key of
// the value within the innermost tree.
type MerklePath struct {
	KeyPath []string
}

// NewMerklePath creates a new MerklePath from the given keys.
func NewMerklePath(keyPath ...string) MerklePath {
	return MerklePath{KeyPath: keyPath}
}

// String joins the escaped keys with "/", e.g. "/ibc/clients%2F07-tendermint-0".
func (mp MerklePath) String() string {
	var sb strings.Builder
	for _, k := range mp.KeyPath {
		sb.WriteString("/")
		sb.WriteString(url.PathEscape(k))
	}
	return sb.String()
}

// Pretty returns the unescaped path.
func (mp MerklePath) Pretty() string {
	return "/" + strings.Join(mp.KeyPath, "/")
}

// GetKey returns the key at index i of the path.
func (mp MerklePath) GetKey(i uint64) ([]byte, error) {
	if i >= uint64(len(mp.KeyPath)) {
		return nil, fmt.Errorf("%w: index %d out of range for %d keys", ErrInvalidPath, i, len(mp.KeyPath))
	}
	return []byte(mp.KeyPath[i]), nil
}

// Empty reports whether the path has no keys.
func (mp MerklePath) Empty() bool {
	return len(mp.KeyPath) == 0
}

// ApplyPrefix prepends the store prefix to path.
func ApplyPrefix(prefix MerklePrefix, path MerklePath) (MerklePath, error) {
	if prefix.Empty() {
		return MerklePath{}, fmt.Errorf("%w: prefix can't be empty", ErrInvalidPath)
	}
	return NewMerklePath(append([]string{string(prefix.KeyPrefix)}, path.KeyPath...)...), nil
}

// MerkleProof is a chain of ICS23 proofs ordered from the innermost tree
// (the one holding the value) out to the app hash tree.
type MerkleProof struct {
	Proofs []*ics23.CommitmentProof
}

// VerifyMembership verifies that value is stored at path under root. Each
// layer i is verified with specs[i].
func (proof MerkleProof) VerifyMembership(specs []*ics23.ProofSpec, root MerkleRoot, path MerklePath, value []byte) error {
	if err := proof.validateVerificationArgs(specs, root, path); err != nil {
		return err
	}
	if len(value) == 0 {
		return ErrEmptyValue
	}
	return verifyChainedMembershipProof(root.Hash, specs, proof.Proofs, path, value, 0)
}

// VerifyNonMembership verifies that no value is stored at path under root.
// The innermost proof is a non-existence proof, the outer ones prove the
// innermost tree's root.
func (proof MerkleProof) VerifyNonMembership(specs []*ics23.ProofSpec, root MerkleRoot, path MerklePath) error {
	if err := proof.validateVerificationArgs(specs, root, path); err != nil {
		return err
	}

	nonexist := proof.Proofs[0].Nonexist
	if nonexist == nil {
		return fmt.Errorf("%w: innermost proof is not a non-existence proof", ErrInvalidProof)
	}
	subroot, err := nonExistenceRoot(nonexist)
	if err != nil {
		return fmt.Errorf("%w: could not calculate root for proof index 0: %v", ErrInvalidProof, err)
	}
	key, err := path.GetKey(uint64(len(path.KeyPath) - 1))
	if err != nil {
		return err
	}
	if err := ics23.VerifyNonMembership(specs[0], subroot, nonexist, key); err != nil {
		return LayerError{Index: 0, Key: key, Err: err}
	}

	return verifyChainedMembershipProof(root.Hash, specs, proof.Proofs, path, subroot, 1)
}

// verifyChainedMembershipProof verifies proofs[index:] where every layer
// proves the previous layer's root under the next key of the path.
func verifyChainedMembershipProof(root []byte, specs []*ics23.ProofSpec, proofs []*ics23.CommitmentProof, path MerklePath, value []byte, index int) error {
	for i := index; i < len(proofs); i++ {
		exist := proofs[i].Exist
		if exist == nil {
			return fmt.Errorf("%w: proof at index %d is not an existence proof", ErrInvalidProof, i)
		}
		subroot, err := exist.Calculate()
		if err != nil {
			return fmt.Errorf("%w: could not calculate root for proof index %d: %v", ErrInvalidProof, i, err)
		}
		key, err := path.GetKey(uint64(len(path.KeyPath) - 1 - i))
		if err != nil {
			return err
		}
		if err := ics23.VerifyMembership(specs[i], subroot, exist, key, value); err != nil {
			return LayerError{Index: i, Key: key, Err: err}
		}
		value = subroot
	}

	if !bytes.Equal(root, value) {
		return LayerError{Index: len(proofs) - 1, Err: ics23.RootMismatchError{Expected: root, Calculated: value}}
	}
	return nil
}

func nonExistenceRoot(proof *ics23.NonExistenceProof) ([]byte, error) {
	switch {
	case proof.Left != nil:
		return proof.Left.Calculate()
	case proof.Right != nil:
		return proof.Right.Calculate()
	}
	return nil, ics23.ErrBothProofsMissing
}

func (proof MerkleProof) validateVerificationArgs(specs []*ics23.ProofSpec, root MerkleRoot, path MerklePath) error {
	if len(proof.Proofs) == 0 {
		return fmt.Errorf("%w: proof cannot be empty", ErrInvalidProof)
	}
	if root.Empty() {
		return fmt.Errorf("%w: root cannot be empty", ErrInvalidProof)
	}
	if len(specs) != len(proof.Proofs) {
		return fmt.Errorf("%w: length of specs %d not equal to length of proofs %d",
			ErrInvalidProof, len(specs), len(proof.Proofs))
	}
	if len(path.KeyPath) != len(specs) {
		return fmt.Errorf("%w: path length %d not same as proof %d", ErrInvalidPath, len(path.KeyPath), len(specs))
	}
	for i, spec := range specs {
		if spec == nil {
			return fmt.Errorf("%w: spec at position %d is nil", ics23.ErrInvalidSpec, i)
		}
		if proof.Proofs[i] == nil {
			return fmt.Errorf("%w: proof at position %d is nil", ErrInvalidProof, i)
		}
	}
	return nil
}

// Marshal encodes the proof as repeated CommitmentProof messages.
func (proof MerkleProof) Marshal() []byte {
	var b []byte
	for _, p := range proof.Proofs {
		b = protoio.AppendMessage(b, 1, p.Marshal())
	}
	return b
}

// Unmarshal decodes a proof produced by Marshal.
func (proof *MerkleProof) Unmarshal(bz []byte) error {
	proof.Proofs = nil
	err := protoio.ForEachField(bz, func(f protoio.Field) error {
		if f.Num != 1 {
			return nil
		}
		data, err := f.Data()
		if err != nil {
			return err
		}
		p := new(ics23.CommitmentProof)
		if err := p.Unmarshal(data); err != nil {
			return err
		}
		proof.Proofs = append(proof.Proofs, p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: merkle proof: %v", ics23.ErrDecode, err)
	}
	return nil
}
