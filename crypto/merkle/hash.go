package merkle

import (
	"crypto/sha256"
	"hash"
)

const hashSize = 32

// RFC 6962 domain separation.
var (
	leafPrefix  = []byte{0}
	innerPrefix = []byte{1}
)

// returns tmhash(<empty>)
func emptyHash() []byte {
	sum := sha256.Sum256(nil)
	return sum[:]
}

// returns tmhash(0x00 || leaf)
func leafHash(leaf []byte) []byte {
	return leafHashOpt(sha256.New(), leaf)
}

func leafHashOpt(s hash.Hash, leaf []byte) []byte {
	s.Reset()
	s.Write(leafPrefix)
	s.Write(leaf)
	return s.Sum(nil)
}

// returns tmhash(0x01 || left || right)
func innerHash(left []byte, right []byte) []byte {
	return innerHashOpt(sha256.New(), left, right)
}

func innerHashOpt(s hash.Hash, left []byte, right []byte) []byte {
	s.Reset()
	s.Write(innerPrefix)
	s.Write(left)
	s.Write(right)
	return s.Sum(nil)
}
