package merkle

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tendermint/ibclight/ics23"
)

// KVPair is a leaf of a KVTree.
type KVPair struct {
	Key   []byte
	Value []byte
}

// Bytes returns the leaf preimage, without the leaf prefix:
//
//	varint(len(key)) || key || varint(32) || sha256(value)
//
// which is what ics23.TendermintSpec expects.
func (kv KVPair) Bytes() []byte {
	vhash := sha256.Sum256(kv.Value)
	b := make([]byte, 0, len(kv.Key)+len(vhash)+2*protowire.SizeVarint(uint64(len(kv.Key))))
	b = protowire.AppendVarint(b, uint64(len(kv.Key)))
	b = append(b, kv.Key...)
	b = protowire.AppendVarint(b, uint64(len(vhash)))
	return append(b, vhash[:]...)
}

// KVTree is a simple merkle tree over key-value pairs sorted by key. It
// produces ICS23 proofs verifiable under ics23.TendermintSpec.
type KVTree struct {
	pairs  []KVPair
	root   []byte
	proofs []*Proof
}

// NewKVTree builds a tree over pairs. Keys must be unique, and keys and
// values must be non-empty.
func NewKVTree(pairs []KVPair) (*KVTree, error) {
	sorted := make([]KVPair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool { return bytes.Compare(sorted[i].Key, sorted[j].Key) < 0 })

	leaves := make([][]byte, len(sorted))
	for i, kv := range sorted {
		if len(kv.Key) == 0 || len(kv.Value) == 0 {
			return nil, fmt.Errorf("pair %d: key and value must not be empty", i)
		}
		if i > 0 && bytes.Equal(sorted[i-1].Key, kv.Key) {
			return nil, fmt.Errorf("duplicate key %X", kv.Key)
		}
		leaves[i] = kv.Bytes()
	}

	root, proofs := ProofsFromByteSlices(leaves)
	return &KVTree{pairs: sorted, root: root, proofs: proofs}, nil
}

// NewKVTreeFromMap builds a tree over the entries of m.
func NewKVTreeFromMap(m map[string][]byte) (*KVTree, error) {
	pairs := make([]KVPair, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, KVPair{Key: []byte(k), Value: v})
	}
	return NewKVTree(pairs)
}

// Root returns the merkle root of the tree.
func (t *KVTree) Root() []byte {
	return t.root
}

// Len returns the number of pairs in the tree.
func (t *KVTree) Len() int {
	return len(t.pairs)
}

// search returns the index of the first pair with a key >= key.
func (t *KVTree) search(key []byte) int {
	return sort.Search(len(t.pairs), func(i int) bool {
		return bytes.Compare(t.pairs[i].Key, key) >= 0
	})
}

// ExistenceProof proves that key is in the tree.
func (t *KVTree) ExistenceProof(key []byte) (*ics23.ExistenceProof, error) {
	idx := t.search(key)
	if idx == len(t.pairs) || !bytes.Equal(t.pairs[idx].Key, key) {
		return nil, fmt.Errorf("key %X not found", key)
	}
	return t.existenceProof(idx), nil
}

// NonExistenceProof proves that key is not in the tree.
func (t *KVTree) NonExistenceProof(key []byte) (*ics23.NonExistenceProof, error) {
	if len(t.pairs) == 0 {
		return nil, errors.New("cannot prove absence in an empty tree")
	}
	idx := t.search(key)
	if idx < len(t.pairs) && bytes.Equal(t.pairs[idx].Key, key) {
		return nil, fmt.Errorf("key %X is present", key)
	}
	proof := &ics23.NonExistenceProof{Key: key}
	if idx > 0 {
		proof.Left = t.existenceProof(idx - 1)
	}
	if idx < len(t.pairs) {
		proof.Right = t.existenceProof(idx)
	}
	return proof, nil
}

// CommitmentProof returns an existence proof if key is present, and a
// non-existence proof otherwise.
func (t *KVTree) CommitmentProof(key []byte) (*ics23.CommitmentProof, error) {
	if exist, err := t.ExistenceProof(key); err == nil {
		return &ics23.CommitmentProof{Exist: exist}, nil
	}
	nonexist, err := t.NonExistenceProof(key)
	if err != nil {
		return nil, err
	}
	return &ics23.CommitmentProof{Nonexist: nonexist}, nil
}

func (t *KVTree) existenceProof(idx int) *ics23.ExistenceProof {
	kv := t.pairs[idx]
	leaf := *ics23.TendermintSpec.LeafSpec
	leaf.Prefix = append([]byte(nil), leafPrefix...)
	return &ics23.ExistenceProof{
		Key:   kv.Key,
		Value: kv.Value,
		Leaf:  &leaf,
		Path:  t.proofs[idx].InnerOps(),
	}
}

// InnerOps converts the aunts of the proof into ICS23 inner ops, ordered
// from the leaf up.
func (sp *Proof) InnerOps() []*ics23.InnerOp {
	return innerOpsFromAunts(sp.Index, sp.Total, sp.Aunts)
}

func innerOpsFromAunts(index, total int64, aunts [][]byte) []*ics23.InnerOp {
	if total <= 1 || len(aunts) == 0 {
		return nil
	}
	numLeft := getSplitPoint(total)
	sibling := aunts[len(aunts)-1]
	below := aunts[:len(aunts)-1]

	if index < numLeft {
		return append(innerOpsFromAunts(index, numLeft, below), &ics23.InnerOp{
			Hash:   ics23.HashOpSHA256,
			Prefix: append([]byte(nil), innerPrefix...),
			Suffix: sibling,
		})
	}
	prefix := make([]byte, 0, len(innerPrefix)+len(sibling))
	prefix = append(prefix, innerPrefix...)
	return append(innerOpsFromAunts(index-numLeft, total-numLeft, below), &ics23.InnerOp{
		Hash:   ics23.HashOpSHA256,
		Prefix: append(prefix, sibling...),
	})
}
