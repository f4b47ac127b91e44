package commands

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendermint/ibclight/commitment"
	"github.com/tendermint/ibclight/crypto/merkle"
	"github.com/tendermint/ibclight/ics23"
	"github.com/tendermint/ibclight/internal/test/factory"
	"github.com/tendermint/ibclight/light"
	"github.com/tendermint/ibclight/types"
)

const (
	testChainID  = "testchain-1"
	testClientID = "07-tendermint-0"
)

// run executes ibclight with args against the home root and returns its
// output.
func run(t *testing.T, root string, args ...string) (string, error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conf := clearConfigKeepRoot(t, root)
	cmd := testRootCmd(conf)
	var out bytes.Buffer
	cmd.SetOut(&out)

	args = append([]string{cmd.Use}, append(args, "--home", root)...)
	err := RunWithArgs(ctx, cmd, args, nil)
	return out.String(), err
}

func writeFile(t *testing.T, dir, name string, bz []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, bz, 0600))
	return path
}

func TestClientLifecycle(t *testing.T) {
	var (
		root    = t.TempDir()
		keys    = factory.GenPrivKeys(4)
		vals    = keys.ToValidators(10, 0)
		genesis = time.Now().Add(-time.Hour).Round(time.Second)
	)

	ibc, err := merkle.NewKVTreeFromMap(map[string][]byte{
		"clients/a": []byte("state-a"),
		"clients/c": []byte("state-c"),
	})
	require.NoError(t, err)
	app, err := merkle.NewKVTreeFromMap(map[string][]byte{"ibc": ibc.Root()})
	require.NoError(t, err)

	_, err = run(t, root, "init")
	require.NoError(t, err)

	trusted := keys.GenSignedHeader(t, testChainID, 1, genesis, vals, vals, []byte("genesis"), 0, len(keys))
	out, err := run(t, root, "client", "create", testClientID, writeFile(t, root, "trusted.bin", trusted.Marshal()))
	require.NoError(t, err)
	assert.Contains(t, out, "at height 1-1")

	_, err = run(t, root, "client", "create", testClientID, filepath.Join(root, "trusted.bin"))
	assert.ErrorIs(t, err, light.ErrClientExists)

	sh := keys.GenSignedHeader(t, testChainID, 2, genesis.Add(time.Minute), vals, vals, app.Root(), 0, len(keys))
	header := factory.MakeHeader(sh, vals, types.NewHeight(1, 1), vals)
	out, err = run(t, root, "client", "update", testClientID, writeFile(t, root, "header.bin", header.Marshal()))
	require.NoError(t, err)
	assert.Contains(t, out, "stored consensus state at height 1-2")

	out, err = run(t, root, "client", "status", testClientID, "-o", "json")
	require.NoError(t, err)
	var status clientStatus
	require.NoError(t, json.Unmarshal([]byte(out), &status))
	assert.Equal(t, light.Active, status.Status)
	assert.Equal(t, types.NewHeight(1, 2), status.LatestHeight)
	assert.EqualValues(t, genesis.Add(time.Minute).UnixNano(), status.LatestTimestamp)

	proof := func(key string) string {
		inner, err := ibc.CommitmentProof([]byte(key))
		require.NoError(t, err)
		outer, err := app.CommitmentProof([]byte("ibc"))
		require.NoError(t, err)
		mp := commitment.MerkleProof{Proofs: []*ics23.CommitmentProof{inner, outer}}
		return writeFile(t, root, key[len("clients/"):]+".proof", mp.Marshal())
	}

	out, err = run(t, root, "proof", "verify-membership", testClientID, proof("clients/c"),
		"--height", "1-2", "--key", "clients/c", "--value", hex.EncodeToString([]byte("state-c")))
	require.NoError(t, err)
	assert.Contains(t, out, "verified /ibc/clients/c")

	_, err = run(t, root, "proof", "verify-membership", testClientID, proof("clients/c"),
		"--height", "1-2", "--key", "clients/c", "--value", hex.EncodeToString([]byte("state-x")))
	assert.ErrorIs(t, err, commitment.ErrInvalidProof)

	out, err = run(t, root, "proof", "verify-non-membership", testClientID, proof("clients/b"),
		"--height", "1-2", "--key", "clients/b")
	require.NoError(t, err)
	assert.Contains(t, out, "is absent")

	// a conflicting header at the same height freezes the client
	fork := keys.GenSignedHeader(t, testChainID, 2, genesis.Add(time.Minute), vals, vals, []byte("fork"), 0, len(keys))
	forkHeader := factory.MakeHeader(fork, vals, types.NewHeight(1, 1), vals)
	out, err = run(t, root, "client", "update", testClientID, writeFile(t, root, "fork.bin", forkHeader.Marshal()))
	require.NoError(t, err)
	assert.Contains(t, out, "frozen")

	out, err = run(t, root, "client", "status", testClientID)
	require.NoError(t, err)
	assert.Contains(t, out, "status:  Frozen")
	assert.Contains(t, out, "frozen:  1-2")

	_, err = run(t, root, "proof", "verify-non-membership", testClientID, proof("clients/b"),
		"--height", "1-2", "--key", "clients/b")
	assert.ErrorIs(t, err, light.ErrClientFrozen)
}

func TestClientCommandErrors(t *testing.T) {
	root := t.TempDir()

	_, err := run(t, root, "client", "status", testClientID)
	assert.Error(t, err)

	_, err = run(t, root, "client", "create", testClientID, filepath.Join(root, "missing.bin"))
	assert.Error(t, err)

	_, err = run(t, root, "client", "create", testClientID, writeFile(t, root, "garbage.bin", []byte{0xff, 0xff}))
	assert.Error(t, err)

	_, err = run(t, root, "client", "create", "bad/client", writeFile(t, root, "empty.bin", nil))
	assert.Error(t, err)

	_, err = run(t, root, "proof", "verify-non-membership", testClientID, filepath.Join(root, "missing.proof"),
		"--height", "x", "--key", "k")
	assert.Error(t, err)
}

func TestCloseClient(t *testing.T) {
	closeErr := errors.New("close failed")
	failing := func() error { return closeErr }

	var err error
	closeClient(failing, &err)
	assert.ErrorIs(t, err, closeErr)

	// the error of the command wins
	cmdErr := errors.New("command failed")
	err = cmdErr
	closeClient(failing, &err)
	assert.Equal(t, cmdErr, err)

	err = nil
	closeClient(func() error { return nil }, &err)
	assert.NoError(t, err)
}
