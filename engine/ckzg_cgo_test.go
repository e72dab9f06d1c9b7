//go:build ckzg && !nacl && !js && cgo && !gofuzz

package engine

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ethereum/kzgwrap/types"
)

// loadCKZG loads the text trusted setup named by KZG_TRUSTED_SETUP.
func loadCKZG(t *testing.T) (*CKZG, Context) {
	t.Helper()
	path := os.Getenv("KZG_TRUSTED_SETUP")
	if path == "" {
		t.Skip("KZG_TRUSTED_SETUP not set")
	}
	b, err := NewCKZG()
	require.NoError(t, err)
	ctx, err := b.Load(path, FormatText)
	require.NoError(t, err)
	return b.(*CKZG), ctx
}

func TestCKZGLoadErrors(t *testing.T) {
	b, err := NewCKZG()
	require.NoError(t, err)
	_, err = b.Load("", FormatBuiltin)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = b.Load("/does/not/exist.txt", FormatText)
	require.ErrorContains(t, err, "could not read trusted setup")
}

func TestCKZGReloadInvalidatesHandles(t *testing.T) {
	b, first := loadCKZG(t)
	second, err := b.Load(os.Getenv("KZG_TRUSTED_SETUP"), FormatText)
	require.NoError(t, err)
	defer b.Release(second)

	var blob types.Blob
	_, err = b.BlobToKZGCommitment(first, &blob)
	require.ErrorIs(t, err, ErrContextInvalid)

	// Releasing the stale handle leaves the current setup alone.
	b.Release(first)
	_, err = b.BlobToKZGCommitment(second, &blob)
	require.NoError(t, err)
}

func TestCKZGMatchesGoKZG(t *testing.T) {
	b, ctx := loadCKZG(t)
	defer b.Release(ctx)

	var blob types.Blob
	for i := 0; i < types.FieldElementsPerBlob; i++ {
		blob[i*types.BytesPerFieldElement+31] = byte(i)
	}
	want, err := testEngine.BlobToKZGCommitment(testContext, &blob)
	require.NoError(t, err)
	have, err := b.BlobToKZGCommitment(ctx, &blob)
	require.NoError(t, err)
	require.Equal(t, want, have)

	proof, err := b.ComputeBlobKZGProof(ctx, &blob, have)
	require.NoError(t, err)
	valid, err := testEngine.VerifyBlobKZGProof(testContext, &blob, have, proof)
	require.NoError(t, err)
	require.True(t, valid)

	valid, err = b.VerifyBlobKZGProofBatch(ctx, blob[:], have[:], proof[:])
	require.NoError(t, err)
	require.True(t, valid)
}
