package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"github.com/creachadair/atomicfile"

	tmos "github.com/tendermint/ibclight/libs/os"
)

// defaultDirPerm is the default permissions used when creating directories.
const defaultDirPerm = 0700

var configTemplate *template.Template

func init() {
	var err error
	tmpl := template.New("configFileTemplate").Funcs(template.FuncMap{
		"StringsJoin": strings.Join,
	})
	if configTemplate, err = tmpl.Parse(defaultConfigTemplate); err != nil {
		panic(err)
	}
}

/****** these are for production settings ***********/

// EnsureRoot creates the root, config, and data directories if they don't
// exist, and writes the default config file if there is none.
func EnsureRoot(rootDir string) error {
	if err := tmos.EnsureDir(rootDir, defaultDirPerm); err != nil {
		return err
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultConfigDir), defaultDirPerm); err != nil {
		return err
	}
	if err := tmos.EnsureDir(filepath.Join(rootDir, defaultDataDir), defaultDirPerm); err != nil {
		return err
	}
	return writeDefaultConfigFileIfNone(rootDir)
}

// WriteConfigFile renders config using the template and writes it to
// the config file under rootDir.
// This function is called by cmd/ibclight/commands/init.go
func WriteConfigFile(rootDir string, config *Config) error {
	return config.WriteToTemplate(filepath.Join(rootDir, defaultConfigFilePath))
}

// WriteToTemplate writes the config to the exact file specified by
// the path, in the default toml template and does not mangle the path
// or filename at all.
func (cfg *Config) WriteToTemplate(path string) error {
	var buffer bytes.Buffer

	if err := configTemplate.Execute(&buffer, cfg); err != nil {
		return err
	}

	return writeFile(path, buffer.Bytes(), 0644)
}

func writeDefaultConfigFileIfNone(rootDir string) error {
	configFilePath := filepath.Join(rootDir, defaultConfigFilePath)
	if !tmos.FileExists(configFilePath) {
		return WriteConfigFile(rootDir, DefaultConfig())
	}
	return nil
}

func writeFile(filePath string, contents []byte, mode os.FileMode) error {
	if _, err := atomicfile.WriteAll(filePath, bytes.NewReader(contents), mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Note: any changes to the comments/variables/mapstructure
// must be reflected in the appropriate struct in config/config.go
const defaultConfigTemplate = `# This is a TOML config file.
# For more information, see https://github.com/toml-lang/toml

# NOTE: Any path below can be absolute (e.g. "/var/ibclight/data") or
# relative to the home directory (e.g. "data"). The home directory is
# "$HOME/.ibclight" by default, but could be changed via $IBCLIGHT_HOME env
# variable or --home cmd flag.

#######################################################################
###                   Main Base Config Options                      ###
#######################################################################

# Database backend: goleveldb | cleveldb | boltdb | rocksdb | badgerdb | memdb
# * goleveldb (github.com/syndtr/goleveldb - most popular implementation)
#   - pure go
#   - stable
# * memdb
#   - nothing is persisted, useful for dry runs
# The remaining backends need the matching tm-db build tag.
db-backend = "{{ .BaseConfig.DBBackend }}"

# Database directory
db-dir = "{{ js .BaseConfig.DBPath }}"

# Output level for logging: debug | info | error
log-level = "{{ .BaseConfig.LogLevel }}"

# Output format: 'plain' (colored text) or 'json'
log-format = "{{ .BaseConfig.LogFormat }}"

#######################################################################
###                 Light Client Configuration Options              ###
#######################################################################
[client]

# Client family: 07-tendermint | cometbls
client-type = "{{ .Client.ClientType }}"

# Minimum fraction of the trusted validator set that must sign a
# non-adjacent header.
trust-level = "{{ .Client.TrustLevel }}"

# How long a consensus state can be used to verify new headers. Must be
# less than the unbonding period of the counterparty chain.
trusting-period = "{{ .Client.TrustingPeriod }}"

# Unbonding period of the counterparty chain.
unbonding-period = "{{ .Client.UnbondingPeriod }}"

# How far in the future a header time may be, relative to this host.
max-clock-drift = "{{ .Client.MaxClockDrift }}"

# TOML file with the proof specs of the counterparty chain, one [[spec]]
# table per commitment layer, innermost first. Empty means two Tendermint
# layers.
proof-specs-file = "{{ js .Client.ProofSpecsFile }}"

#######################################################################
###                 Instrumentation Configuration Options           ###
#######################################################################
[instrumentation]

# When true, Prometheus metrics are written to metrics-file when a command
# completes, in the text format read by the node exporter textfile collector.
prometheus = {{ .Instrumentation.Prometheus }}

# Path of the metrics file.
metrics-file = "{{ js .Instrumentation.MetricsFile }}"

# Instrumentation namespace
namespace = "{{ .Instrumentation.Namespace }}"
`
