package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tendermint/ibclight/config"
	"github.com/tendermint/ibclight/libs/cli"
	"github.com/tendermint/ibclight/libs/log"
	"github.com/tendermint/ibclight/light"
	"github.com/tendermint/ibclight/light/store"
	"github.com/tendermint/ibclight/types"
)

// MakeClientCommand returns the command to create, update and inspect light
// clients.
func MakeClientCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "client",
		Short: "Create, update and query light clients",
	}
	cmd.AddCommand(
		makeCreateCommand(conf, logger),
		makeUpdateCommand(conf, logger),
		makeStatusCommand(conf, logger),
	)
	return cmd
}

func makeCreateCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "create [client-id] [signed-header-file]",
		Short: "Create a client trusting the given signed header",
		Long: `Create a client trusting the given signed header.

The header is trusted as is, without verifying its commit: obtain it from a
source you trust. The trust parameters and proof specs come from the [client]
section of the config.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			var sh types.SignedHeader
			if err := readMessage(args[1], &sh); err != nil {
				return err
			}
			if err := sh.ValidateBasic(sh.ChainID); err != nil {
				return fmt.Errorf("invalid header: %w", err)
			}

			height := types.NewHeight(types.ParseChainID(sh.ChainID), uint64(sh.Height))
			cs, err := conf.Client.ClientState(sh.ChainID, height)
			if err != nil {
				return err
			}

			c, closer, err := openClient(conf, logger, args[0])
			if err != nil {
				return err
			}
			defer closeClient(closer, &err)

			cons := types.NewConsensusState(sh.Time, sh.AppHash, sh.NextValidatorsHash)
			if err := c.CreateClient(cs, cons); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created client %s of %s at height %v\n", args[0], sh.ChainID, height)
			return nil
		},
	}
}

func makeUpdateCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var misbehaviour bool
	cmd := &cobra.Command{
		Use:   "update [client-id] [message-file...]",
		Short: "Update a client with headers, or submit misbehaviour",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, closer, err := openClient(conf, logger, args[0])
			if err != nil {
				return err
			}
			defer closeClient(closer, &err)

			for _, path := range args[1:] {
				var msg interface{ Unmarshal([]byte) error }
				if misbehaviour {
					msg = new(types.Misbehaviour)
				} else {
					msg = new(types.Header)
				}
				if err := readMessage(path, msg); err != nil {
					return err
				}

				heights, err := c.Update(msg)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				if len(heights) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: misbehaviour detected, client %s is frozen\n", path, args[0])
					return nil
				}
				for _, h := range heights {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: stored consensus state at height %v\n", path, h)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&misbehaviour, "misbehaviour", false, "decode the files as misbehaviour evidence instead of headers")
	return cmd
}

type clientStatus struct {
	ClientID     string       `json:"client_id"`
	ChainID      string       `json:"chain_id"`
	ClientType   string       `json:"client_type"`
	Status       light.Status `json:"status"`
	LatestHeight types.Height `json:"latest_height"`
	FrozenHeight types.Height `json:"frozen_height"`
	// unix nanoseconds, 0 if the latest consensus state is missing
	LatestTimestamp uint64 `json:"latest_timestamp"`
}

func makeStatusCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "status [client-id]",
		Short: "Show the status of a client",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			c, closer, err := openClient(conf, logger, args[0])
			if err != nil {
				return err
			}
			defer closeClient(closer, &err)

			cs, err := c.ClientState()
			if err != nil {
				return err
			}
			status, err := c.Status()
			if err != nil {
				return err
			}
			ts, err := c.TimestampAtHeight(cs.LatestHeight)
			if err != nil && !errors.Is(err, store.ErrConsensusStateNotFound) {
				return err
			}

			return printStatus(cmd.OutOrStdout(), output, clientStatus{
				ClientID:        c.ClientID(),
				ChainID:         cs.ChainID,
				ClientType:      string(cs.Type),
				Status:          status,
				LatestHeight:    cs.LatestHeight,
				FrozenHeight:    cs.FrozenHeight,
				LatestTimestamp: ts,
			})
		},
	}
	cmd.Flags().StringVarP(&output, cli.OutputFlag, "o", "text", "output format: text | json")
	return cmd
}

func printStatus(w io.Writer, output string, s clientStatus) error {
	switch strings.ToLower(output) {
	case "json":
		bz, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(bz))
		return err
	case "text":
		_, err := fmt.Fprintf(w, "client:  %s\nchain:   %s\ntype:    %s\nstatus:  %s\nlatest:  %v\nfrozen:  %v\ntime:    %d\n",
			s.ClientID, s.ChainID, s.ClientType, s.Status, s.LatestHeight, s.FrozenHeight, s.LatestTimestamp)
		return err
	}
	return fmt.Errorf("unknown output format %q", output)
}
