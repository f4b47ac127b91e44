// Package protoio holds the field level helpers shared by the hand written
// protobuf codecs. Encoders follow proto3 rules (zero scalars and empty
// bytes are omitted, fields are written in field number order) so that equal
// values always produce identical bytes.
package protoio

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformed is returned for input that is not valid protobuf wire data.
var ErrMalformed = errors.New("malformed protobuf data")

// AppendUvarint appends a varint field unless v is zero.
func AppendUvarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

// AppendInt32 appends a sign-extended int32 varint field unless v is zero.
func AppendInt32(b []byte, num protowire.Number, v int32) []byte {
	return AppendUvarint(b, num, uint64(int64(v)))
}

// AppendInt64 appends an int64 varint field unless v is zero.
func AppendInt64(b []byte, num protowire.Number, v int64) []byte {
	return AppendUvarint(b, num, uint64(v))
}

// AppendBool appends a bool field unless v is false.
func AppendBool(b []byte, num protowire.Number, v bool) []byte {
	if !v {
		return b
	}
	return AppendUvarint(b, num, 1)
}

// AppendBytes appends a bytes field unless v is empty.
func AppendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

// AppendString appends a string field unless v is empty.
func AppendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

// AppendMessage appends an embedded message field. Unlike scalars, a present
// but empty message is still written.
func AppendMessage(b []byte, num protowire.Number, msg []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, msg)
}

// AppendPackedInt32 appends a packed repeated int32 field unless vs is empty.
func AppendPackedInt32(b []byte, num protowire.Number, vs []int32) []byte {
	if len(vs) == 0 {
		return b
	}
	var packed []byte
	for _, v := range vs {
		packed = protowire.AppendVarint(packed, uint64(int64(v)))
	}
	return AppendBytes(b, num, packed)
}

// Field is a single decoded field. Varint holds the value of varint fields,
// Bytes the payload of length delimited fields.
type Field struct {
	Num    protowire.Number
	Type   protowire.Type
	Varint uint64
	Bytes  []byte
}

// Int32 returns the field as an int32, rejecting values out of range.
func (f Field) Int32() (int32, error) {
	if f.Type != protowire.VarintType {
		return 0, f.typeError(protowire.VarintType)
	}
	v := int64(f.Varint)
	if v < -1<<31 || v > 1<<31-1 {
		return 0, fmt.Errorf("%w: field %d overflows int32", ErrMalformed, f.Num)
	}
	return int32(v), nil
}

// Int64 returns the field as an int64.
func (f Field) Int64() (int64, error) {
	if f.Type != protowire.VarintType {
		return 0, f.typeError(protowire.VarintType)
	}
	return int64(f.Varint), nil
}

// Uint64 returns the field as a uint64.
func (f Field) Uint64() (uint64, error) {
	if f.Type != protowire.VarintType {
		return 0, f.typeError(protowire.VarintType)
	}
	return f.Varint, nil
}

// Bool returns the field as a bool.
func (f Field) Bool() (bool, error) {
	if f.Type != protowire.VarintType {
		return false, f.typeError(protowire.VarintType)
	}
	return f.Varint != 0, nil
}

// Data returns a copy of a length delimited field.
func (f Field) Data() ([]byte, error) {
	if f.Type != protowire.BytesType {
		return nil, f.typeError(protowire.BytesType)
	}
	return append([]byte(nil), f.Bytes...), nil
}

// Int32s decodes a repeated int32 field in packed or unpacked form.
func (f Field) Int32s() ([]int32, error) {
	switch f.Type {
	case protowire.VarintType:
		v, err := f.Int32()
		if err != nil {
			return nil, err
		}
		return []int32{v}, nil
	case protowire.BytesType:
		var (
			out []int32
			b   = f.Bytes
		)
		for len(b) > 0 {
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, fmt.Errorf("%w: packed field %d: %v", ErrMalformed, f.Num, protowire.ParseError(n))
			}
			elem, err := Field{Num: f.Num, Type: protowire.VarintType, Varint: v}.Int32()
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
			b = b[n:]
		}
		return out, nil
	}
	return nil, f.typeError(protowire.BytesType)
}

func (f Field) typeError(want protowire.Type) error {
	return fmt.Errorf("%w: field %d has wire type %d, expected %d", ErrMalformed, f.Num, f.Type, want)
}

// ForEachField calls fn for every varint and length delimited field of b, in
// wire order. Fields of other wire types are skipped.
func ForEachField(b []byte, fn func(Field) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		field := Field{Num: num, Type: typ}
		switch typ {
		case protowire.VarintType:
			field.Varint, n = protowire.ConsumeVarint(b)
		case protowire.BytesType:
			field.Bytes, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
			continue
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]

		if err := fn(field); err != nil {
			return err
		}
	}
	return nil
}
