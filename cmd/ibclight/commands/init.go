package commands

import (
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tendermint/ibclight/config"
	"github.com/tendermint/ibclight/libs/log"
	tmos "github.com/tendermint/ibclight/libs/os"
)

// MakeInitCommand returns the command that initializes the ibclight home:
// the config file and the data directory.
func MakeInitCommand(conf *config.Config, logger log.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initializes the ibclight home directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			configFile := filepath.Join(conf.RootDir, "config", "config.toml")
			if tmos.FileExists(configFile) {
				logger.Info("Found config file", "path", configFile)
			} else if err := config.WriteConfigFile(conf.RootDir, conf); err != nil {
				return err
			} else {
				logger.Info("Generated config file", "path", configFile)
			}
			return tmos.EnsureDir(conf.DBDir(), 0700)
		},
	}
}
