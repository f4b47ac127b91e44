package types

import (
	"fmt"
	"time"

	"github.com/tendermint/ibclight/crypto/ed25519"
	"github.com/tendermint/ibclight/ics23"
	"github.com/tendermint/ibclight/internal/libs/protoio"
	tmmath "github.com/tendermint/ibclight/libs/math"
)

// Marshal and Unmarshal implement the canonical protobuf encoding of the
// client types. Encoding is deterministic and decoding ignores unknown
// fields.

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

func (h Height) Marshal() []byte {
	var b []byte
	b = protoio.AppendUvarint(b, 1, h.RevisionNumber)
	b = protoio.AppendUvarint(b, 2, h.RevisionHeight)
	return b
}

func (h *Height) Unmarshal(bz []byte) error {
	*h = Height{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			h.RevisionNumber, err = f.Uint64()
		case 2:
			h.RevisionHeight, err = f.Uint64()
		}
		return err
	})
	return wrapDecode("height", err)
}

func marshalFraction(fr tmmath.Fraction) []byte {
	var b []byte
	b = protoio.AppendUvarint(b, 1, fr.Numerator)
	b = protoio.AppendUvarint(b, 2, fr.Denominator)
	return b
}

func unmarshalFraction(f protoio.Field) (fr tmmath.Fraction, err error) {
	data, err := f.Data()
	if err != nil {
		return fr, err
	}
	err = protoio.ForEachField(data, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			fr.Numerator, err = f.Uint64()
		case 2:
			fr.Denominator, err = f.Uint64()
		}
		return err
	})
	return fr, err
}

func durationField(f protoio.Field) (time.Duration, error) {
	v, err := f.Int64()
	return time.Duration(v), err
}

func (cs *ClientState) Marshal() []byte {
	var b []byte
	b = protoio.AppendString(b, 1, cs.ChainID)
	b = protoio.AppendString(b, 2, string(cs.Type))
	b = protoio.AppendMessage(b, 3, marshalFraction(cs.TrustLevel))
	b = protoio.AppendInt64(b, 4, int64(cs.TrustingPeriod))
	b = protoio.AppendInt64(b, 5, int64(cs.UnbondingPeriod))
	b = protoio.AppendInt64(b, 6, int64(cs.MaxClockDrift))
	if !cs.FrozenHeight.IsZero() {
		b = protoio.AppendMessage(b, 7, cs.FrozenHeight.Marshal())
	}
	b = protoio.AppendMessage(b, 8, cs.LatestHeight.Marshal())
	for _, spec := range cs.ProofSpecs {
		b = protoio.AppendMessage(b, 9, spec.Marshal())
	}
	return b
}

func (cs *ClientState) Unmarshal(bz []byte) error {
	*cs = ClientState{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			var data []byte
			data, err = f.Data()
			cs.ChainID = string(data)
		case 2:
			var data []byte
			data, err = f.Data()
			cs.Type = ClientType(data)
		case 3:
			cs.TrustLevel, err = unmarshalFraction(f)
		case 4:
			cs.TrustingPeriod, err = durationField(f)
		case 5:
			cs.UnbondingPeriod, err = durationField(f)
		case 6:
			cs.MaxClockDrift, err = durationField(f)
		case 7:
			err = unmarshalEmbedded(f, &cs.FrozenHeight)
		case 8:
			err = unmarshalEmbedded(f, &cs.LatestHeight)
		case 9:
			spec := new(ics23.ProofSpec)
			if err = unmarshalEmbedded(f, spec); err == nil {
				cs.ProofSpecs = append(cs.ProofSpecs, spec)
			}
		}
		return err
	})
	return wrapDecode("client state", err)
}

func (cs *ConsensusState) Marshal() []byte {
	var b []byte
	b = protoio.AppendUvarint(b, 1, cs.Timestamp)
	b = protoio.AppendBytes(b, 2, cs.Root)
	b = protoio.AppendBytes(b, 3, cs.NextValidatorsHash)
	return b
}

func (cs *ConsensusState) Unmarshal(bz []byte) error {
	*cs = ConsensusState{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			cs.Timestamp, err = f.Uint64()
		case 2:
			cs.Root, err = f.Data()
		case 3:
			cs.NextValidatorsHash, err = f.Data()
		}
		return err
	})
	return wrapDecode("consensus state", err)
}

func (v *Validator) Marshal() []byte {
	var b []byte
	b = protoio.AppendBytes(b, 1, v.Address)
	if v.PubKey != nil {
		b = protoio.AppendMessage(b, 2, protoio.AppendBytes(nil, 1, v.PubKey.Bytes()))
	}
	b = protoio.AppendInt64(b, 3, v.VotingPower)
	return b
}

func (v *Validator) Unmarshal(bz []byte) error {
	*v = Validator{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			v.Address, err = f.Data()
		case 2:
			var data []byte
			if data, err = f.Data(); err != nil {
				return err
			}
			err = protoio.ForEachField(data, func(pk protoio.Field) error {
				if pk.Num != 1 {
					return fmt.Errorf("unsupported public key field %d", pk.Num)
				}
				key, err := pk.Data()
				if err != nil {
					return err
				}
				v.PubKey, err = pubKeyFromBytes(ed25519.KeyType, key)
				return err
			})
		case 3:
			v.VotingPower, err = f.Int64()
		}
		return err
	})
	return wrapDecode("validator", err)
}

func (vals *ValidatorSet) Marshal() []byte {
	var b []byte
	for _, val := range vals.Validators {
		b = protoio.AppendMessage(b, 1, val.Marshal())
	}
	return b
}

func (vals *ValidatorSet) Unmarshal(bz []byte) error {
	*vals = ValidatorSet{}
	err := protoio.ForEachField(bz, func(f protoio.Field) error {
		if f.Num != 1 {
			return nil
		}
		val := new(Validator)
		if err := unmarshalEmbedded(f, val); err != nil {
			return err
		}
		vals.Validators = append(vals.Validators, val)
		return nil
	})
	return wrapDecode("validator set", err)
}

func (cs *CommitSig) Marshal() []byte {
	var b []byte
	b = protoio.AppendUvarint(b, 1, uint64(cs.BlockIDFlag))
	b = protoio.AppendBytes(b, 2, cs.ValidatorAddress)
	b = protoio.AppendInt64(b, 3, timeToNanos(cs.Timestamp))
	b = protoio.AppendBytes(b, 4, cs.Signature)
	return b
}

func (cs *CommitSig) Unmarshal(bz []byte) error {
	*cs = CommitSig{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			var v uint64
			v, err = f.Uint64()
			if v > 0xff {
				return fmt.Errorf("block id flag %d out of range", v)
			}
			cs.BlockIDFlag = BlockIDFlag(v)
		case 2:
			cs.ValidatorAddress, err = f.Data()
		case 3:
			var n int64
			n, err = f.Int64()
			cs.Timestamp = nanosToTime(n)
		case 4:
			cs.Signature, err = f.Data()
		}
		return err
	})
	return err
}

func (commit *Commit) Marshal() []byte {
	var b []byte
	b = protoio.AppendInt64(b, 1, commit.Height)
	b = protoio.AppendInt32(b, 2, commit.Round)
	b = protoio.AppendBytes(b, 3, commit.BlockHash)
	for i := range commit.Signatures {
		b = protoio.AppendMessage(b, 4, commit.Signatures[i].Marshal())
	}
	return b
}

func (commit *Commit) Unmarshal(bz []byte) error {
	*commit = Commit{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			commit.Height, err = f.Int64()
		case 2:
			commit.Round, err = f.Int32()
		case 3:
			commit.BlockHash, err = f.Data()
		case 4:
			var sig CommitSig
			if err = unmarshalEmbedded(f, &sig); err == nil {
				commit.Signatures = append(commit.Signatures, sig)
			}
		}
		return err
	})
	return wrapDecode("commit", err)
}

func (sh *SignedHeader) Marshal() []byte {
	var b []byte
	b = protoio.AppendString(b, 1, sh.ChainID)
	b = protoio.AppendInt64(b, 2, sh.Height)
	b = protoio.AppendInt64(b, 3, timeToNanos(sh.Time))
	b = protoio.AppendBytes(b, 4, sh.AppHash)
	b = protoio.AppendBytes(b, 5, sh.ValidatorsHash)
	b = protoio.AppendBytes(b, 6, sh.NextValidatorsHash)
	if sh.Commit != nil {
		b = protoio.AppendMessage(b, 7, sh.Commit.Marshal())
	}
	return b
}

func (sh *SignedHeader) Unmarshal(bz []byte) error {
	*sh = SignedHeader{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			var data []byte
			data, err = f.Data()
			sh.ChainID = string(data)
		case 2:
			sh.Height, err = f.Int64()
		case 3:
			var n int64
			n, err = f.Int64()
			sh.Time = nanosToTime(n)
		case 4:
			sh.AppHash, err = f.Data()
		case 5:
			sh.ValidatorsHash, err = f.Data()
		case 6:
			sh.NextValidatorsHash, err = f.Data()
		case 7:
			sh.Commit = new(Commit)
			err = unmarshalEmbedded(f, sh.Commit)
		}
		return err
	})
	return wrapDecode("signed header", err)
}

func (h *Header) Marshal() []byte {
	var b []byte
	if h.SignedHeader != nil {
		b = protoio.AppendMessage(b, 1, h.SignedHeader.Marshal())
	}
	if h.ValidatorSet != nil {
		b = protoio.AppendMessage(b, 2, h.ValidatorSet.Marshal())
	}
	b = protoio.AppendMessage(b, 3, h.TrustedHeight.Marshal())
	if h.TrustedValidators != nil {
		b = protoio.AppendMessage(b, 4, h.TrustedValidators.Marshal())
	}
	b = protoio.AppendBytes(b, 5, h.ZKProof)
	return b
}

func (h *Header) Unmarshal(bz []byte) error {
	*h = Header{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			h.SignedHeader = new(SignedHeader)
			err = unmarshalEmbedded(f, h.SignedHeader)
		case 2:
			h.ValidatorSet = new(ValidatorSet)
			err = unmarshalEmbedded(f, h.ValidatorSet)
		case 3:
			err = unmarshalEmbedded(f, &h.TrustedHeight)
		case 4:
			h.TrustedValidators = new(ValidatorSet)
			err = unmarshalEmbedded(f, h.TrustedValidators)
		case 5:
			h.ZKProof, err = f.Data()
		}
		return err
	})
	return wrapDecode("header", err)
}

func (m *Misbehaviour) Marshal() []byte {
	var b []byte
	b = protoio.AppendString(b, 1, m.ClientID)
	if m.Header1 != nil {
		b = protoio.AppendMessage(b, 2, m.Header1.Marshal())
	}
	if m.Header2 != nil {
		b = protoio.AppendMessage(b, 3, m.Header2.Marshal())
	}
	return b
}

func (m *Misbehaviour) Unmarshal(bz []byte) error {
	*m = Misbehaviour{}
	err := protoio.ForEachField(bz, func(f protoio.Field) (err error) {
		switch f.Num {
		case 1:
			var data []byte
			data, err = f.Data()
			m.ClientID = string(data)
		case 2:
			m.Header1 = new(Header)
			err = unmarshalEmbedded(f, m.Header1)
		case 3:
			m.Header2 = new(Header)
			err = unmarshalEmbedded(f, m.Header2)
		}
		return err
	})
	return wrapDecode("misbehaviour", err)
}
