package ics23

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/binary"
	"fmt"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required by the BITCOIN and RIPEMD160 hash ops
	"golang.org/x/crypto/sha3"
	"google.golang.org/protobuf/encoding/protowire"
	"lukechampine.com/blake3"
)

// Apply computes the leaf hash of key and value.
func (op *LeafOp) Apply(key []byte, value []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("leaf op needs key")
	}
	if len(value) == 0 {
		return nil, fmt.Errorf("leaf op needs value")
	}
	pkey, err := prepareLeafData(op.PrehashKey, op.Length, key)
	if err != nil {
		return nil, fmt.Errorf("prehash key: %w", err)
	}
	pvalue, err := prepareLeafData(op.PrehashValue, op.Length, value)
	if err != nil {
		return nil, fmt.Errorf("prehash value: %w", err)
	}

	data := make([]byte, 0, len(op.Prefix)+len(pkey)+len(pvalue))
	data = append(data, op.Prefix...)
	data = append(data, pkey...)
	data = append(data, pvalue...)
	return doHash(op.Hash, data)
}

// Apply computes hash(Prefix || child || Suffix).
func (op *InnerOp) Apply(child []byte) ([]byte, error) {
	if len(child) == 0 {
		return nil, ErrEmptyChild
	}
	preimage := make([]byte, 0, len(op.Prefix)+len(child)+len(op.Suffix))
	preimage = append(preimage, op.Prefix...)
	preimage = append(preimage, child...)
	preimage = append(preimage, op.Suffix...)
	return doHash(op.Hash, preimage)
}

func prepareLeafData(hashOp HashOp, lengthOp LengthOp, data []byte) ([]byte, error) {
	hdata, err := doHashOrNoop(hashOp, data)
	if err != nil {
		return nil, err
	}
	return doLengthOp(lengthOp, hdata)
}

// doHashOrNoop is doHash except NO_HASH returns data unchanged.
func doHashOrNoop(hashOp HashOp, preimage []byte) ([]byte, error) {
	if hashOp == HashOpNoHash {
		return preimage, nil
	}
	return doHash(hashOp, preimage)
}

func doHash(hashOp HashOp, preimage []byte) ([]byte, error) {
	switch hashOp {
	case HashOpNoHash:
		return preimage, nil
	case HashOpSHA256:
		sum := sha256.Sum256(preimage)
		return sum[:], nil
	case HashOpSHA512:
		sum := sha512.Sum512(preimage)
		return sum[:], nil
	case HashOpSHA512_256:
		sum := sha512.Sum512_256(preimage)
		return sum[:], nil
	case HashOpKeccak256:
		hasher := sha3.NewLegacyKeccak256()
		hasher.Write(preimage)
		return hasher.Sum(nil), nil
	case HashOpRIPEMD160:
		hasher := ripemd160.New()
		hasher.Write(preimage)
		return hasher.Sum(nil), nil
	case HashOpBitcoin:
		sum := sha256.Sum256(preimage)
		hasher := ripemd160.New()
		hasher.Write(sum[:])
		return hasher.Sum(nil), nil
	case HashOpBLAKE2b512:
		sum := blake2b.Sum512(preimage)
		return sum[:], nil
	case HashOpBLAKE2s256:
		sum := blake2s.Sum256(preimage)
		return sum[:], nil
	case HashOpBLAKE3:
		sum := blake3.Sum256(preimage)
		return sum[:], nil
	}
	return nil, UnsupportedOpError{Op: hashOp}
}

func doLengthOp(lengthOp LengthOp, data []byte) ([]byte, error) {
	switch lengthOp {
	case LengthOpNoPrefix:
		return data, nil
	case LengthOpVarProto:
		res := protowire.AppendVarint(make([]byte, 0, len(data)+binary.MaxVarintLen64), uint64(len(data)))
		return append(res, data...), nil
	case LengthOpRequire32Bytes:
		if len(data) != 32 {
			return nil, fmt.Errorf("data was %d bytes, not 32", len(data))
		}
		return data, nil
	case LengthOpRequire64Bytes:
		if len(data) != 64 {
			return nil, fmt.Errorf("data was %d bytes, not 64", len(data))
		}
		return data, nil
	case LengthOpFixed32Big:
		res := make([]byte, 4, 4+len(data))
		binary.BigEndian.PutUint32(res, uint32(len(data)))
		return append(res, data...), nil
	case LengthOpFixed32Little:
		res := make([]byte, 4, 4+len(data))
		binary.LittleEndian.PutUint32(res, uint32(len(data)))
		return append(res, data...), nil
	case LengthOpFixed64Big:
		res := make([]byte, 8, 8+len(data))
		binary.BigEndian.PutUint64(res, uint64(len(data)))
		return append(res, data...), nil
	case LengthOpFixed64Little:
		res := make([]byte, 8, 8+len(data))
		binary.LittleEndian.PutUint64(res, uint64(len(data)))
		return append(res, data...), nil
	}
	// VAR_RLP is not supported.
	return nil, UnsupportedOpError{Op: lengthOp}
}
