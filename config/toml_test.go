package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ensureFiles(t *testing.T, rootDir string, files ...string) {
	for _, f := range files {
		p := rootify(f, rootDir)
		_, err := os.Stat(p)
		assert.NoError(t, err, p)
	}
}

func TestEnsureRoot(t *testing.T) {
	// setup temp dir for test
	tmpDir := t.TempDir()

	// create root dir
	require.NoError(t, EnsureRoot(tmpDir))

	// make sure config is set properly
	data, err := os.ReadFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(t, err)
	checkConfig(t, string(data))

	ensureFiles(t, tmpDir, "data")

	// an existing config file is kept
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, defaultConfigFilePath), []byte("log-level = \"debug\"\n"), 0644))
	require.NoError(t, EnsureRoot(tmpDir))
	data, err = os.ReadFile(filepath.Join(tmpDir, defaultConfigFilePath))
	require.NoError(t, err)
	assert.Equal(t, "log-level = \"debug\"\n", string(data))
}

func checkConfig(t *testing.T, configFile string) {
	t.Helper()
	// list of words we expect in the config
	var elems = []string{
		"db-backend",
		"log-level",
		"log-format",
		"[client]",
		"trust-level",
		"trusting-period",
		"unbonding-period",
		"max-clock-drift",
		"proof-specs-file",
		"[instrumentation]",
		"metrics-file",
	}
	for _, e := range elems {
		if !strings.Contains(configFile, e) {
			t.Errorf("config file was expected to contain %s but did not", e)
		}
	}
}

func TestConfigRoundTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFormat = LogFormatJSON
	cfg.Client.TrustLevel = "2/3"
	cfg.Client.ProofSpecsFile = `C:\specs\"chain".toml`
	cfg.Instrumentation.Prometheus = true

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, cfg.WriteToTemplate(path))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	loaded := DefaultConfig()
	require.NoError(t, v.Unmarshal(loaded))
	assert.Equal(t, cfg, loaded)
	assert.NoError(t, loaded.ValidateBasic())
}

func TestWriteToTemplateReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0644))

	cfg := DefaultConfig()
	cfg.LogLevel = "debug"
	require.NoError(t, cfg.WriteToTemplate(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
	assert.Contains(t, string(data), `log-level = "debug"`)

	// the file is swapped in whole, no temporary files are left behind
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())

	// a missing directory is an error, not a partial write
	assert.Error(t, cfg.WriteToTemplate(filepath.Join(dir, "missing", "config.toml")))
}
