package main

import (
	"context"
	"os"

	"github.com/tendermint/ibclight/cmd/ibclight/commands"
	"github.com/tendermint/ibclight/config"
	"github.com/tendermint/ibclight/libs/cli"
	"github.com/tendermint/ibclight/libs/log"
)

func main() {
	ctx := context.Background()

	conf := config.DefaultConfig()
	logger, err := log.NewDefaultLogger(conf.LogFormat, conf.LogLevel)
	if err != nil {
		panic(err)
	}

	rcmd := commands.RootCommand(conf, logger)
	rcmd.AddCommand(
		commands.MakeInitCommand(conf, logger),
		commands.MakeClientCommand(conf, logger),
		commands.MakeProofCommand(conf, logger),
		commands.VersionCmd,
	)

	if err := cli.RunWithTrace(ctx, rcmd); err != nil {
		os.Exit(1)
	}
}
