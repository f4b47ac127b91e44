package ics23

import (
	"fmt"

	"github.com/tendermint/ibclight/internal/libs/protoio"
)

// The wire format is the canonical protobuf encoding of the cosmos.ics23.v1
// messages. Field numbers are fixed by that schema.

// Marshal encodes the proof deterministically.
func (p *ExistenceProof) Marshal() []byte {
	var b []byte
	b = protoio.AppendBytes(b, 1, p.Key)
	b = protoio.AppendBytes(b, 2, p.Value)
	if p.Leaf != nil {
		b = protoio.AppendMessage(b, 3, p.Leaf.Marshal())
	}
	for _, step := range p.Path {
		if step == nil {
			step = &InnerOp{}
		}
		b = protoio.AppendMessage(b, 4, step.Marshal())
	}
	return b
}

// Unmarshal decodes an ExistenceProof. Unknown fields are ignored.
func (p *ExistenceProof) Unmarshal(bz []byte) error {
	*p = ExistenceProof{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			p.Key, err = f.Data()
		case 2:
			p.Value, err = f.Data()
		case 3:
			p.Leaf = new(LeafOp)
			err = unmarshalEmbedded(f, p.Leaf)
		case 4:
			step := new(InnerOp)
			if err = unmarshalEmbedded(f, step); err == nil {
				p.Path = append(p.Path, step)
			}
		}
		return err
	})
	return wrapDecode("existence proof", err)
}

// Marshal encodes the proof deterministically.
func (p *NonExistenceProof) Marshal() []byte {
	var b []byte
	b = protoio.AppendBytes(b, 1, p.Key)
	if p.Left != nil {
		b = protoio.AppendMessage(b, 2, p.Left.Marshal())
	}
	if p.Right != nil {
		b = protoio.AppendMessage(b, 3, p.Right.Marshal())
	}
	return b
}

// Unmarshal decodes a NonExistenceProof. Unknown fields are ignored.
func (p *NonExistenceProof) Unmarshal(bz []byte) error {
	*p = NonExistenceProof{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			p.Key, err = f.Data()
		case 2:
			p.Left = new(ExistenceProof)
			err = unmarshalEmbedded(f, p.Left)
		case 3:
			p.Right = new(ExistenceProof)
			err = unmarshalEmbedded(f, p.Right)
		}
		return err
	})
	return wrapDecode("non-existence proof", err)
}

// Marshal encodes the proof deterministically. If both variants are set only
// the existence proof is written.
func (p *CommitmentProof) Marshal() []byte {
	switch {
	case p.Exist != nil:
		return protoio.AppendMessage(nil, 1, p.Exist.Marshal())
	case p.Nonexist != nil:
		return protoio.AppendMessage(nil, 2, p.Nonexist.Marshal())
	}
	return nil
}

// Unmarshal decodes a CommitmentProof. As with protobuf oneofs, the last
// variant on the wire wins.
func (p *CommitmentProof) Unmarshal(bz []byte) error {
	*p = CommitmentProof{}
	err := protoio.ForEachField(bz, func(f protoio.Field) error {
		switch f.Num {
		case 1:
			exist := new(ExistenceProof)
			if err := unmarshalEmbedded(f, exist); err != nil {
				return err
			}
			p.Exist, p.Nonexist = exist, nil
		case 2:
			nonexist := new(NonExistenceProof)
			if err := unmarshalEmbedded(f, nonexist); err != nil {
				return err
			}
			p.Exist, p.Nonexist = nil, nonexist
		}
		return nil
	})
	if err != nil {
		return wrapDecode("commitment proof", err)
	}
	if p.Exist == nil && p.Nonexist == nil {
		return fmt.Errorf("%w: commitment proof: no proof set", ErrDecode)
	}
	return nil
}

// Marshal encodes the op deterministically.
func (op *LeafOp) Marshal() []byte {
	var b []byte
	b = protoio.AppendInt32(b, 1, int32(op.Hash))
	b = protoio.AppendInt32(b, 2, int32(op.PrehashKey))
	b = protoio.AppendInt32(b, 3, int32(op.PrehashValue))
	b = protoio.AppendInt32(b, 4, int32(op.Length))
	b = protoio.AppendBytes(b, 5, op.Prefix)
	return b
}

// Unmarshal decodes a LeafOp. Unknown fields are ignored.
func (op *LeafOp) Unmarshal(bz []byte) error {
	*op = LeafOp{}
	err := protoio.ForEachField(bz, func(f protoio.Field) error {
		var (
			v   int32
			err error
		)
		switch f.Num {
		case 1, 2, 3, 4:
			v, err = f.Int32()
		case 5:
			op.Prefix, err = f.Data()
			return err
		default:
			return nil
		}
		if err != nil {
			return err
		}
		switch f.Num {
		case 1:
			op.Hash = HashOp(v)
		case 2:
			op.PrehashKey = HashOp(v)
		case 3:
			op.PrehashValue = HashOp(v)
		case 4:
			op.Length = LengthOp(v)
		}
		return nil
	})
	return wrapDecode("leaf op", err)
}

// Marshal encodes the op deterministically.
func (op *InnerOp) Marshal() []byte {
	var b []byte
	b = protoio.AppendInt32(b, 1, int32(op.Hash))
	b = protoio.AppendBytes(b, 2, op.Prefix)
	b = protoio.AppendBytes(b, 3, op.Suffix)
	return b
}

// Unmarshal decodes an InnerOp. Unknown fields are ignored.
func (op *InnerOp) Unmarshal(bz []byte) error {
	*op = InnerOp{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			var v int32
			v, err = f.Int32()
			op.Hash = HashOp(v)
		case 2:
			op.Prefix, err = f.Data()
		case 3:
			op.Suffix, err = f.Data()
		}
		return err
	})
	return wrapDecode("inner op", err)
}

// Marshal encodes the spec deterministically.
func (spec *InnerSpec) Marshal() []byte {
	var b []byte
	b = protoio.AppendPackedInt32(b, 1, spec.ChildOrder)
	b = protoio.AppendInt32(b, 2, spec.ChildSize)
	b = protoio.AppendInt32(b, 3, spec.MinPrefixLength)
	b = protoio.AppendInt32(b, 4, spec.MaxPrefixLength)
	b = protoio.AppendBytes(b, 5, spec.EmptyChild)
	b = protoio.AppendInt32(b, 6, int32(spec.Hash))
	return b
}

// Unmarshal decodes an InnerSpec. Unknown fields are ignored.
func (spec *InnerSpec) Unmarshal(bz []byte) error {
	*spec = InnerSpec{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			var order []int32
			if order, err = f.Int32s(); err == nil {
				spec.ChildOrder = append(spec.ChildOrder, order...)
			}
		case 2:
			spec.ChildSize, err = f.Int32()
		case 3:
			spec.MinPrefixLength, err = f.Int32()
		case 4:
			spec.MaxPrefixLength, err = f.Int32()
		case 5:
			spec.EmptyChild, err = f.Data()
		case 6:
			var v int32
			v, err = f.Int32()
			spec.Hash = HashOp(v)
		}
		return err
	})
	return wrapDecode("inner spec", err)
}

// Marshal encodes the spec deterministically.
func (spec *ProofSpec) Marshal() []byte {
	var b []byte
	if spec.LeafSpec != nil {
		b = protoio.AppendMessage(b, 1, spec.LeafSpec.Marshal())
	}
	if spec.InnerSpec != nil {
		b = protoio.AppendMessage(b, 2, spec.InnerSpec.Marshal())
	}
	b = protoio.AppendInt32(b, 3, spec.MaxDepth)
	b = protoio.AppendInt32(b, 4, spec.MinDepth)
	b = protoio.AppendBool(b, 5, spec.PrehashKeyBeforeComparison)
	return b
}

// Unmarshal decodes a ProofSpec. Unknown fields are ignored.
func (spec *ProofSpec) Unmarshal(bz []byte) error {
	*spec = ProofSpec{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			spec.LeafSpec = new(LeafOp)
			err = unmarshalEmbedded(f, spec.LeafSpec)
		case 2:
			spec.InnerSpec = new(InnerSpec)
			err = unmarshalEmbedded(f, spec.InnerSpec)
		case 3:
			spec.MaxDepth, err = f.Int32()
		case 4:
			spec.MinDepth, err = f.Int32()
		case 5:
			spec.PrehashKeyBeforeComparison, err = f.Bool()
		}
		return err
	})
	return wrapDecode("proof spec", err)
}

type unmarshaler interface {
	Unmarshal([]byte) error
}

func unmarshalEmbedded(f protoio.Field, msg unmarshaler) error {
	data, err := f.Data()
	if err != nil {
		return err
	}
	return msg.Unmarshal(data)
}

func wrapDecode(what string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrDecode, what, err)
}
