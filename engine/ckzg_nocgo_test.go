//go:build !ckzg || nacl || js || !cgo || gofuzz

package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCKZGUnavailable(t *testing.T) {
	require.False(t, CKZGAvailable())
	b, err := NewCKZG()
	require.Nil(t, b)
	require.ErrorIs(t, err, ErrCKZGUnavailable)
}
