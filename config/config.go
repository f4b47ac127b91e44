package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/tendermint/ibclight/ics23"
	tmmath "github.com/tendermint/ibclight/libs/math"
	"github.com/tendermint/ibclight/types"
)

const (
	// LogFormatPlain is a format for colored text
	LogFormatPlain = "plain"
	// LogFormatJSON is a format for json output
	LogFormatJSON = "json"

	// DefaultLogLevel defines a default log level as INFO.
	DefaultLogLevel = "info"
)

// NOTE: Most of the structs & relevant comments + the
// default configuration options were used to manually
// generate the config.toml. Please reflect any changes
// made here in the defaultConfigTemplate constant in
// config/toml.go
// NOTE: libs/cli must know to look in the config dir!
var (
	DefaultIBCLightDir = ".ibclight"
	defaultConfigDir   = "config"
	defaultDataDir     = "data"

	defaultConfigFileName = "config.toml"

	defaultConfigFilePath = filepath.Join(defaultConfigDir, defaultConfigFileName)
)

// Config defines the top level configuration for ibclight.
type Config struct {
	// Top level options use an anonymous struct
	BaseConfig `mapstructure:",squash"`

	// Options for light clients
	Client          *ClientConfig          `mapstructure:"client"`
	Instrumentation *InstrumentationConfig `mapstructure:"instrumentation"`
}

// DefaultConfig returns a default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseConfig:      DefaultBaseConfig(),
		Client:          DefaultClientConfig(),
		Instrumentation: DefaultInstrumentationConfig(),
	}
}

// TestConfig returns a configuration that can be used for testing
func TestConfig() *Config {
	return &Config{
		BaseConfig:      TestBaseConfig(),
		Client:          TestClientConfig(),
		Instrumentation: TestInstrumentationConfig(),
	}
}

// SetRoot sets the RootDir for all Config structs
func (cfg *Config) SetRoot(root string) *Config {
	cfg.BaseConfig.RootDir = root
	cfg.Client.RootDir = root
	cfg.Instrumentation.RootDir = root
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *Config) ValidateBasic() error {
	if err := cfg.BaseConfig.ValidateBasic(); err != nil {
		return err
	}
	if err := cfg.Client.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [client] section: %w", err)
	}
	if err := cfg.Instrumentation.ValidateBasic(); err != nil {
		return fmt.Errorf("error in [instrumentation] section: %w", err)
	}
	return nil
}

//-----------------------------------------------------------------------------
// BaseConfig

// BaseConfig defines the base configuration.
type BaseConfig struct { //nolint: maligned
	// The root directory for all data.
	// This should be set in viper so it can unmarshal into this struct
	RootDir string `mapstructure:"home"`

	// Database backend: goleveldb | cleveldb | boltdb | rocksdb | badgerdb | memdb
	// * goleveldb (github.com/syndtr/goleveldb - most popular implementation)
	//   - pure go
	//   - stable
	// * memdb
	//   - nothing is persisted, useful for dry runs
	// The remaining backends need the matching tm-db build tag.
	DBBackend string `mapstructure:"db-backend"`

	// Database directory
	DBPath string `mapstructure:"db-dir"`

	// Output level for logging
	LogLevel string `mapstructure:"log-level"`

	// Output format: 'plain' (colored text) or 'json'
	LogFormat string `mapstructure:"log-format"`
}

// DefaultBaseConfig returns a default base configuration.
func DefaultBaseConfig() BaseConfig {
	return BaseConfig{
		LogLevel:  DefaultLogLevel,
		LogFormat: LogFormatPlain,
		DBBackend: "goleveldb",
		DBPath:    defaultDataDir,
	}
}

// TestBaseConfig returns a base configuration for testing.
func TestBaseConfig() BaseConfig {
	cfg := DefaultBaseConfig()
	cfg.DBBackend = "memdb"
	return cfg
}

// DBDir returns the full path to the database directory
func (cfg BaseConfig) DBDir() string {
	return rootify(cfg.DBPath, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg BaseConfig) ValidateBasic() error {
	switch cfg.LogFormat {
	case LogFormatJSON, LogFormatPlain:
	default:
		return errors.New("unknown log format (must be 'plain' or 'json')")
	}
	if cfg.DBBackend == "" {
		return errors.New("db-backend can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// ClientConfig

// ClientConfig holds the parameters used when creating light clients and the
// proof specs they verify state proofs with.
type ClientConfig struct {
	RootDir string `mapstructure:"home"`

	// Client family: 07-tendermint | cometbls
	ClientType string `mapstructure:"client-type"`

	// Minimum fraction of the trusted validator set that must sign a
	// non-adjacent header, e.g. "1/3".
	TrustLevel string `mapstructure:"trust-level"`

	// How long a consensus state can be used to verify new headers. Must be
	// less than the unbonding period of the counterparty chain.
	TrustingPeriod time.Duration `mapstructure:"trusting-period"`

	// Unbonding period of the counterparty chain.
	UnbondingPeriod time.Duration `mapstructure:"unbonding-period"`

	// How far in the future a header time may be, relative to this host.
	MaxClockDrift time.Duration `mapstructure:"max-clock-drift"`

	// TOML file with the proof specs of the counterparty chain, one
	// [[spec]] table per commitment layer, innermost first. Empty means
	// two Tendermint layers.
	ProofSpecsFile string `mapstructure:"proof-specs-file"`
}

// DefaultClientConfig returns a default configuration for light clients.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		ClientType:      string(types.ClientTypeTendermint),
		TrustLevel:      types.DefaultTrustLevel.String(),
		TrustingPeriod:  168 * time.Hour,
		UnbondingPeriod: 504 * time.Hour,
		MaxClockDrift:   10 * time.Second,
	}
}

// TestClientConfig returns a light client configuration for testing.
func TestClientConfig() *ClientConfig {
	cfg := DefaultClientConfig()
	cfg.TrustingPeriod = 100 * time.Second
	cfg.UnbondingPeriod = 200 * time.Second
	return cfg
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *ClientConfig) ValidateBasic() error {
	if _, err := types.ParseClientType(cfg.ClientType); err != nil {
		return err
	}
	lvl, err := tmmath.ParseFraction(cfg.TrustLevel)
	if err != nil {
		return fmt.Errorf("invalid trust-level: %w", err)
	}
	if err := types.ValidateTrustLevel(lvl); err != nil {
		return err
	}
	if cfg.TrustingPeriod <= 0 {
		return errors.New("trusting-period must be positive")
	}
	if cfg.UnbondingPeriod <= cfg.TrustingPeriod {
		return errors.New("unbonding-period must be greater than trusting-period")
	}
	if cfg.MaxClockDrift <= 0 {
		return errors.New("max-clock-drift must be positive")
	}
	return nil
}

// ProofSpecsPath returns the full path to the proof specs file, or "" if
// none is configured.
func (cfg *ClientConfig) ProofSpecsPath() string {
	if cfg.ProofSpecsFile == "" {
		return ""
	}
	return rootify(cfg.ProofSpecsFile, cfg.RootDir)
}

// ProofSpecs loads the configured proof specs.
func (cfg *ClientConfig) ProofSpecs() ([]*ics23.ProofSpec, error) {
	path := cfg.ProofSpecsPath()
	if path == "" {
		return []*ics23.ProofSpec{ics23.TendermintSpec, ics23.TendermintSpec}, nil
	}
	return LoadProofSpecs(path)
}

// ClientState builds the initial client state of a client of chainID at
// latestHeight from the configured parameters.
func (cfg *ClientConfig) ClientState(chainID string, latestHeight types.Height) (*types.ClientState, error) {
	clientType, err := types.ParseClientType(cfg.ClientType)
	if err != nil {
		return nil, err
	}
	lvl, err := tmmath.ParseFraction(cfg.TrustLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid trust-level: %w", err)
	}
	specs, err := cfg.ProofSpecs()
	if err != nil {
		return nil, err
	}
	cs := &types.ClientState{
		ChainID:         chainID,
		Type:            clientType,
		TrustLevel:      lvl,
		TrustingPeriod:  cfg.TrustingPeriod,
		UnbondingPeriod: cfg.UnbondingPeriod,
		MaxClockDrift:   cfg.MaxClockDrift,
		LatestHeight:    latestHeight,
		ProofSpecs:      specs,
	}
	return cs, cs.Validate()
}

//-----------------------------------------------------------------------------
// InstrumentationConfig

// InstrumentationConfig defines the configuration for metrics reporting.
type InstrumentationConfig struct {
	RootDir string `mapstructure:"home"`

	// When true, Prometheus metrics are collected and written to MetricsFile
	// in the text exposition format when a command completes, for the node
	// exporter textfile collector.
	Prometheus bool `mapstructure:"prometheus"`

	// Path of the metrics file.
	MetricsFile string `mapstructure:"metrics-file"`

	// Instrumentation namespace.
	Namespace string `mapstructure:"namespace"`
}

// DefaultInstrumentationConfig returns a default configuration for metrics
// reporting.
func DefaultInstrumentationConfig() *InstrumentationConfig {
	return &InstrumentationConfig{
		Prometheus:  false,
		MetricsFile: filepath.Join(defaultDataDir, "ibclight.prom"),
		Namespace:   "ibclight",
	}
}

// TestInstrumentationConfig returns a default configuration for metrics
// reporting.
func TestInstrumentationConfig() *InstrumentationConfig {
	return DefaultInstrumentationConfig()
}

// MetricsPath returns the full path to the metrics file.
func (cfg *InstrumentationConfig) MetricsPath() string {
	return rootify(cfg.MetricsFile, cfg.RootDir)
}

// ValidateBasic performs basic validation (checking param bounds, etc.) and
// returns an error if any check fails.
func (cfg *InstrumentationConfig) ValidateBasic() error {
	if cfg.Prometheus && cfg.MetricsFile == "" {
		return errors.New("metrics-file can't be empty when prometheus is enabled")
	}
	if cfg.Namespace == "" {
		return errors.New("namespace can't be empty")
	}
	return nil
}

//-----------------------------------------------------------------------------
// Utils

// helper function to make config creation independent of root dir
func rootify(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
