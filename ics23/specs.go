package ics23

// IavlSpec constrains the format from proofs-iavl (iavl merkle proofs).
var IavlSpec = &ProofSpec{
	LeafSpec: &LeafOp{
		Prefix:       []byte{0},
		PrehashKey:   HashOpNoHash,
		Hash:         HashOpSHA256,
		PrehashValue: HashOpSHA256,
		Length:       LengthOpVarProto,
	},
	InnerSpec: &InnerSpec{
		ChildOrder:      []int32{0, 1},
		MinPrefixLength: 4,
		MaxPrefixLength: 12,
		ChildSize:       33, // (with length byte)
		EmptyChild:      nil,
		Hash:            HashOpSHA256,
	},
}

// TendermintSpec constrains the format from proofs-tendermint (crypto/merkle
// simple tree proofs).
var TendermintSpec = &ProofSpec{
	LeafSpec: &LeafOp{
		Prefix:       []byte{0},
		PrehashKey:   HashOpNoHash,
		Hash:         HashOpSHA256,
		PrehashValue: HashOpSHA256,
		Length:       LengthOpVarProto,
	},
	InnerSpec: &InnerSpec{
		ChildOrder:      []int32{0, 1},
		MinPrefixLength: 1,
		MaxPrefixLength: 1,
		ChildSize:       32, // (no length byte)
		Hash:            HashOpSHA256,
	},
}

// SmtSpec constrains the format for SMT proofs (as implemented by
// github.com/celestiaorg/smt).
var SmtSpec = &ProofSpec{
	LeafSpec: &LeafOp{
		Hash:         HashOpSHA256,
		PrehashKey:   HashOpSHA256,
		PrehashValue: HashOpSHA256,
		Length:       LengthOpNoPrefix,
		Prefix:       []byte{0},
	},
	InnerSpec: &InnerSpec{
		ChildOrder:      []int32{0, 1},
		ChildSize:       32,
		MinPrefixLength: 1,
		MaxPrefixLength: 1,
		EmptyChild:      make([]byte, 32),
		Hash:            HashOpSHA256,
	},
	MaxDepth:                   256,
	PrehashKeyBeforeComparison: true,
}

// SDKSpecs are the specs of a Cosmos SDK chain: the IAVL store proof
// followed by the Tendermint multistore proof.
func SDKSpecs() []*ProofSpec {
	return []*ProofSpec{IavlSpec, TendermintSpec}
}

// SpecByName returns one of the builtin specs.
func SpecByName(name string) (*ProofSpec, bool) {
	switch name {
	case "iavl":
		return IavlSpec, true
	case "tendermint":
		return TendermintSpec, true
	case "smt":
		return SmtSpec, true
	}
	return nil, false
}
