package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tendermint/ibclight/commitment"
	"github.com/tendermint/ibclight/config"
	"github.com/tendermint/ibclight/libs/log"
	"github.com/tendermint/ibclight/types"
)

type proofFlags struct {
	height string
	prefix string
	keys   []string
}

func (f *proofFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.height, "height", "", "height of the consensus state to verify against, {revision}-{height}")
	cmd.Flags().StringVar(&f.prefix, "prefix", "ibc", "store prefix, the key of the store in the app hash tree")
	cmd.Flags().StringArrayVar(&f.keys, "key", nil, "key within the store; repeat for nested stores")
	_ = cmd.MarkFlagRequired("height")
	_ = cmd.MarkFlagRequired("key")
}

func (f *proofFlags) parse(proofFile string) (types.Height, commitment.MerkleProof, commitment.MerklePath, error) {
	var (
		proof commitment.MerkleProof
		path  commitment.MerklePath
	)
	height, err := types.ParseHeight(f.height)
	if err != nil {
		return height, proof, path, err
	}
	if err := readMessage(proofFile, &proof); err != nil {
		return height, proof, path, err
	}
	path, err = commitment.ApplyPrefix(commitment.NewMerklePrefix([]byte(f.prefix)), commitment.NewMerklePath(f.keys...))
	return height, proof, path, err
}

// MakeProofCommand returns the command to verify state proofs against the
// consensus states of a client.
func MakeProofCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proof",
		Short: "Verify state proofs of the counterparty chain",
	}
	cmd.AddCommand(
		makeVerifyMembershipCommand(conf, logger),
		makeVerifyNonMembershipCommand(conf, logger),
	)
	return cmd
}

func makeVerifyMembershipCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var (
		flags proofFlags
		value string
	)
	cmd := &cobra.Command{
		Use:   "verify-membership [client-id] [proof-file]",
		Short: "Verify that a value is stored under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			height, proof, path, err := flags.parse(args[1])
			if err != nil {
				return err
			}
			bz, err := hex.DecodeString(value)
			if err != nil {
				return fmt.Errorf("invalid value: %w", err)
			}

			c, closer, err := openClient(conf, logger, args[0])
			if err != nil {
				return err
			}
			defer closeClient(closer, &err)

			if err := c.VerifyMembership(height, proof, path, bz); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified %s = %X at height %v\n", path.Pretty(), bz, height)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&value, "value", "", "hex encoded value")
	return cmd
}

func makeVerifyNonMembershipCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var flags proofFlags
	cmd := &cobra.Command{
		Use:   "verify-non-membership [client-id] [proof-file]",
		Short: "Verify that nothing is stored under a key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			height, proof, path, err := flags.parse(args[1])
			if err != nil {
				return err
			}

			c, closer, err := openClient(conf, logger, args[0])
			if err != nil {
				return err
			}
			defer closeClient(closer, &err)

			if err := c.VerifyNonMembership(height, proof, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "verified %s is absent at height %v\n", path.Pretty(), height)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
