package batch

import (
	"github.com/tendermint/ibclight/crypto"
	"github.com/tendermint/ibclight/crypto/ed25519"
)

// CreateBatchVerifier checks if a key type implements the batch verifier interface.
// Currently only ed25519 supports batch verification.
func CreateBatchVerifier(pk crypto.PubKey) (crypto.BatchVerifier, bool) {
	if pk.Type() == ed25519.KeyType {
		return ed25519.NewBatchVerifier(), true
	}
	// case where the key does not support batch verification
	return nil, false
}

// SupportsBatchVerifier checks if a key type implements the batch verifier
// interface.
func SupportsBatchVerifier(pk crypto.PubKey) bool {
	return pk.Type() == ed25519.KeyType
}
