package ics23

import (
	"bytes"
	"crypto/sha256"
	"math/bits"
	"sort"

	"github.com/stretchr/testify/require"
)

type kv struct {
	key, value []byte
}

func sortedItems(pairs ...string) []kv {
	items := make([]kv, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, kv{key: []byte(pairs[i]), value: []byte(pairs[i+1])})
	}
	sort.Slice(items, func(i, j int) bool { return bytes.Compare(items[i].key, items[j].key) < 0 })
	return items
}

// buildSimpleTree builds a tendermint simple merkle tree over sorted items
// and returns its root with one existence proof per item.
func buildSimpleTree(t require.TestingT, items []kv) ([]byte, []*ExistenceProof) {
	require.NotEmpty(t, items)

	leaves := make([][]byte, len(items))
	for i, item := range items {
		leaf, err := TendermintSpec.LeafSpec.Apply(item.key, item.value)
		require.NoError(t, err)
		leaves[i] = leaf
	}

	root, paths := simpleTreePaths(leaves)
	proofs := make([]*ExistenceProof, len(items))
	for i, item := range items {
		leaf := *TendermintSpec.LeafSpec
		proofs[i] = &ExistenceProof{
			Key:   item.key,
			Value: item.value,
			Leaf:  &leaf,
			Path:  paths[i],
		}
	}
	return root, proofs
}

func simpleTreePaths(hashes [][]byte) ([]byte, [][]*InnerOp) {
	if len(hashes) == 1 {
		return hashes[0], [][]*InnerOp{nil}
	}
	k := splitPoint(len(hashes))
	left, leftPaths := simpleTreePaths(hashes[:k])
	right, rightPaths := simpleTreePaths(hashes[k:])

	for i := range leftPaths {
		leftPaths[i] = append(leftPaths[i], &InnerOp{
			Hash:   HashOpSHA256,
			Prefix: []byte{1},
			Suffix: right,
		})
	}
	for i := range rightPaths {
		rightPaths[i] = append(rightPaths[i], &InnerOp{
			Hash:   HashOpSHA256,
			Prefix: append([]byte{1}, left...),
		})
	}

	h := sha256.New()
	h.Write([]byte{1})
	h.Write(left)
	h.Write(right)
	return h.Sum(nil), append(leftPaths, rightPaths...)
}

// splitPoint returns the largest power of 2 less than length.
func splitPoint(length int) int {
	k := 1 << uint(bits.Len(uint(length))-1)
	if k == length {
		k >>= 1
	}
	return k
}
