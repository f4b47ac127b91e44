package config

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/tendermint/ibclight/ics23"
)

// proofSpecsFile is the layout of a proof specs file:
//
//	[[spec]]
//	preset = "iavl"
//
//	[[spec]]
//	max-depth = 0
//	[spec.leaf]
//	hash = "SHA256"
//	prehash-value = "SHA256"
//	length = "VAR_PROTO"
//	prefix = "00"
//	[spec.inner]
//	child-order = [0, 1]
//	child-size = 32
//	min-prefix-length = 1
//	max-prefix-length = 1
//	hash = "SHA256"
type proofSpecsFile struct {
	Specs []proofSpecTOML `toml:"spec"`
}

type proofSpecTOML struct {
	// Preset names a builtin spec: iavl | tendermint | smt. The other
	// fields are ignored when it is set.
	Preset                     string         `toml:"preset"`
	Leaf                       *leafOpTOML    `toml:"leaf"`
	Inner                      *innerSpecTOML `toml:"inner"`
	MaxDepth                   int32          `toml:"max-depth"`
	MinDepth                   int32          `toml:"min-depth"`
	PrehashKeyBeforeComparison bool           `toml:"prehash-key-before-comparison"`
}

type leafOpTOML struct {
	Hash         string `toml:"hash"`
	PrehashKey   string `toml:"prehash-key"`
	PrehashValue string `toml:"prehash-value"`
	Length       string `toml:"length"`
	Prefix       string `toml:"prefix"`
}

type innerSpecTOML struct {
	ChildOrder      []int32 `toml:"child-order"`
	ChildSize       int32   `toml:"child-size"`
	MinPrefixLength int32   `toml:"min-prefix-length"`
	MaxPrefixLength int32   `toml:"max-prefix-length"`
	EmptyChild      string  `toml:"empty-child"`
	Hash            string  `toml:"hash"`
}

// LoadProofSpecs reads the proof specs file at path.
func LoadProofSpecs(path string) ([]*ics23.ProofSpec, error) {
	var f proofSpecsFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, fmt.Errorf("failed to read proof specs %s: %w", path, err)
	}
	return f.proofSpecs()
}

// ParseProofSpecs parses proof specs in the proof specs file format.
func ParseProofSpecs(data string) ([]*ics23.ProofSpec, error) {
	var f proofSpecsFile
	if _, err := toml.Decode(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse proof specs: %w", err)
	}
	return f.proofSpecs()
}

func (f proofSpecsFile) proofSpecs() ([]*ics23.ProofSpec, error) {
	if len(f.Specs) == 0 {
		return nil, errors.New("no proof specs")
	}
	specs := make([]*ics23.ProofSpec, len(f.Specs))
	for i, s := range f.Specs {
		spec, err := s.proofSpec()
		if err != nil {
			return nil, fmt.Errorf("spec #%d: %w", i, err)
		}
		if err := spec.ValidateBasic(); err != nil {
			return nil, fmt.Errorf("spec #%d: %w", i, err)
		}
		specs[i] = spec
	}
	return specs, nil
}

func (s proofSpecTOML) proofSpec() (*ics23.ProofSpec, error) {
	if s.Preset != "" {
		spec, ok := ics23.SpecByName(s.Preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
		return spec, nil
	}
	if s.Leaf == nil || s.Inner == nil {
		return nil, errors.New("leaf and inner specs are required without a preset")
	}

	leaf, err := s.Leaf.leafOp()
	if err != nil {
		return nil, fmt.Errorf("leaf: %w", err)
	}
	inner, err := s.Inner.innerSpec()
	if err != nil {
		return nil, fmt.Errorf("inner: %w", err)
	}
	return &ics23.ProofSpec{
		LeafSpec:                   leaf,
		InnerSpec:                  inner,
		MaxDepth:                   s.MaxDepth,
		MinDepth:                   s.MinDepth,
		PrehashKeyBeforeComparison: s.PrehashKeyBeforeComparison,
	}, nil
}

func (l leafOpTOML) leafOp() (*ics23.LeafOp, error) {
	var (
		op  ics23.LeafOp
		err error
	)
	if op.Hash, err = parseHashOp(l.Hash); err != nil {
		return nil, err
	}
	if op.PrehashKey, err = parseHashOp(l.PrehashKey); err != nil {
		return nil, err
	}
	if op.PrehashValue, err = parseHashOp(l.PrehashValue); err != nil {
		return nil, err
	}
	if l.Length != "" {
		if op.Length, err = ics23.ParseLengthOp(l.Length); err != nil {
			return nil, err
		}
	}
	if op.Prefix, err = hex.DecodeString(l.Prefix); err != nil {
		return nil, fmt.Errorf("invalid prefix: %w", err)
	}
	return &op, nil
}

func (s innerSpecTOML) innerSpec() (*ics23.InnerSpec, error) {
	hash, err := parseHashOp(s.Hash)
	if err != nil {
		return nil, err
	}
	empty, err := hex.DecodeString(s.EmptyChild)
	if err != nil {
		return nil, fmt.Errorf("invalid empty-child: %w", err)
	}
	return &ics23.InnerSpec{
		ChildOrder:      s.ChildOrder,
		ChildSize:       s.ChildSize,
		MinPrefixLength: s.MinPrefixLength,
		MaxPrefixLength: s.MaxPrefixLength,
		EmptyChild:      empty,
		Hash:            hash,
	}, nil
}

func parseHashOp(s string) (ics23.HashOp, error) {
	if s == "" {
		return ics23.HashOpNoHash, nil
	}
	return ics23.ParseHashOp(s)
}
