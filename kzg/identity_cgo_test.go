//go:build cgo

package kzg

import (
	"testing"

	"github.com/stretchr/testify/require"
	blst "github.com/supranational/blst/bindings/go"

	"github.com/ethereum/kzgwrap/types"
)

func TestZeroBlobCommitmentMatchesBLST(t *testing.T) {
	commitment, err := BlobToKZGCommitment(make([]byte, types.BlobSize))
	require.NoError(t, err)

	var inf blst.P1Affine
	require.True(t, inf.Compress()[0]&0x40 != 0, "infinity flag")
	require.Equal(t, inf.Compress(), commitment)
}
