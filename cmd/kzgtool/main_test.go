package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/ethereum/kzgwrap/kzg"
	"github.com/ethereum/kzgwrap/types"
)

func runTool(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	err := app.Run(append([]string{"kzgtool"}, args...))
	return strings.TrimSpace(out.String()), err
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func identity() string {
	c := make([]byte, types.CommitmentSize)
	c[0] = 0xc0
	return hexutil.Encode(c)
}

func TestCommitRawAndHexBlob(t *testing.T) {
	raw := writeFile(t, "blob.bin", make([]byte, types.BlobSize))
	out, err := runTool(t, "commit", raw)
	require.NoError(t, err)
	require.Equal(t, identity(), out)

	hexBlob := writeFile(t, "blob.hex", []byte(hexutil.Encode(make([]byte, types.BlobSize))+"\n"))
	out, err = runTool(t, "commit", hexBlob)
	require.NoError(t, err)
	require.Equal(t, identity(), out)
}

func TestCommitRejectsShortBlob(t *testing.T) {
	path := writeFile(t, "blob.hex", []byte("0x0102"))
	_, err := runTool(t, "commit", path)
	require.ErrorIs(t, err, kzg.ErrInvalidBlobLength)
}

func TestProveAndVerifyBlob(t *testing.T) {
	blob := make([]byte, types.BlobSize)
	blob[31] = 7
	path := writeFile(t, "blob.bin", blob)

	commitment, err := runTool(t, "commit", path)
	require.NoError(t, err)
	proof, err := runTool(t, "prove-blob", path, commitment)
	require.NoError(t, err)

	out, err := runTool(t, "verify-blob", path, commitment, proof)
	require.NoError(t, err)
	require.Equal(t, "true", out)

	// A proof for another blob does not verify.
	out, err = runTool(t, "verify-blob", path, commitment, identity())
	require.ErrorIs(t, err, errNotValid)
	require.Equal(t, "false", out)
}

func TestVerifyBatchFile(t *testing.T) {
	blob := make([]byte, types.BlobSize)
	k, err := kzg.New(kzg.DefaultConfig())
	require.NoError(t, err)
	defer k.Close()
	commitment, err := k.BlobToKZGCommitment(blob)
	require.NoError(t, err)
	proof, err := k.ComputeBlobKZGProof(blob, commitment)
	require.NoError(t, err)

	items := []batchItem{{Blob: blob, Commitment: commitment, Proof: proof}}
	data, err := json.Marshal(items)
	require.NoError(t, err)
	out, err := runTool(t, "verify-batch", writeFile(t, "batch.json", data))
	require.NoError(t, err)
	require.Equal(t, "true", out)

	items[0].Proof = items[0].Proof[:47]
	data, err = json.Marshal(items)
	require.NoError(t, err)
	_, err = runTool(t, "verify-batch", writeFile(t, "batch.json", data))
	require.ErrorIs(t, err, kzg.ErrInvalidProofLength)
}

func TestVersionedHash(t *testing.T) {
	out, err := runTool(t, "versioned-hash", strings.TrimPrefix(identity(), "0x"))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "0x01"))
	require.Len(t, out, 2+2*types.VersionedHashSize)
}

func TestArgumentErrors(t *testing.T) {
	_, err := runTool(t, "verify", "0x00")
	require.ErrorContains(t, err, "need 4 arguments")

	_, err = runTool(t, "versioned-hash", "0xzz")
	require.ErrorContains(t, err, "invalid commitment")
	// The decoder error stays reachable as the cause.
	require.NotEqual(t, err, errors.Cause(err))
	require.NotContains(t, errors.Cause(err).Error(), "invalid commitment")

	blob := writeFile(t, "blob.bin", make([]byte, types.BlobSize))
	_, err = runTool(t, "--verbosity", "loud", "commit", blob)
	require.ErrorContains(t, err, `invalid log level "loud"`)
}

func TestHexBlobFileOfBlobSize(t *testing.T) {
	// As many hex digits as a raw blob has bytes: half a blob, not a blob.
	unprefixed := writeFile(t, "half.hex", bytes.Repeat([]byte("0"), types.BlobSize))
	_, err := runTool(t, "commit", unprefixed)
	require.ErrorIs(t, err, kzg.ErrInvalidBlobLength)

	prefixed := writeFile(t, "half0x.hex", append([]byte("0x"), bytes.Repeat([]byte("ab"), types.BlobSize/2-1)...))
	_, err = runTool(t, "commit", prefixed)
	require.ErrorIs(t, err, kzg.ErrInvalidBlobLength)

	// Raw files that are not blob sized are rejected outright.
	_, err = runTool(t, "commit", writeFile(t, "short.bin", []byte{0xff, 0x00}))
	require.ErrorContains(t, err, "neither a raw nor a hex encoded blob")
}

func TestConfigFileAndFlags(t *testing.T) {
	cfgFile := writeFile(t, "kzg.toml", []byte("backend = \"gokzg\"\nlog_level = \"warn\"\n"))
	blob := writeFile(t, "blob.bin", make([]byte, types.BlobSize))

	out, err := runTool(t, "--config", cfgFile, "--verbosity", "error", "commit", blob)
	require.NoError(t, err)
	require.Equal(t, identity(), out)

	_, err = runTool(t, "--backend", "nope", "commit", blob)
	require.ErrorContains(t, err, "unknown kzg backend")

	bad := writeFile(t, "bad.toml", []byte("colour = \"blue\"\n"))
	_, err = runTool(t, "--config", bad, "commit", blob)
	require.ErrorContains(t, err, "unknown config keys")
}
