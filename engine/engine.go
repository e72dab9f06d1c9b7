// Package engine defines the contract the KZG layer consumes from a
// cryptography engine, together with adapters for the C library
// (c-kzg-4844, cgo) and the pure Go library (go-kzg-4844).
//
// Engines receive fixed-size inputs only. Deciding whether a byte slice has
// the right length is the caller's job; an engine reports ErrBadArgs when the
// bytes have the right size but do not decode (non-canonical scalars, points
// off the curve, buffers that are not a whole number of items).
package engine

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/ethereum/kzgwrap/types"
)

var (
	ErrBadArgs = errors.New("bad arguments")
	ErrError   = errors.New("unexpected error")
	ErrMalloc  = errors.New("malloc failed")

	// ErrContextInvalid is returned when an operation is handed a context
	// that the engine has released or replaced. It is the only error a
	// caller may recover from by reloading the trusted setup.
	ErrContextInvalid = errors.New("trusted setup context is no longer valid")

	ErrUnsupportedFormat = errors.New("unsupported trusted setup format")
	ErrCKZGUnavailable   = errors.New("ckzg unavailable on your platform")
)

// Format tells an engine how to read a trusted setup resource.
type Format uint8

const (
	// FormatBuiltin selects the setup compiled into the engine; the path is ignored.
	FormatBuiltin Format = iota
	// FormatJSON is the {"g1_lagrange": [...], "g2_monomial": [...]} layout
	// used by the consensus specs and go-ethereum.
	FormatJSON
	// FormatText is the c-kzg-4844 trusted_setup.txt layout.
	FormatText
)

func (f Format) String() string {
	switch f {
	case FormatBuiltin:
		return "builtin"
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "builtin":
		return FormatBuiltin, nil
	case "json":
		return FormatJSON, nil
	case "text", "txt":
		return FormatText, nil
	}
	return 0, errors.Wrapf(ErrUnsupportedFormat, "%q", s)
}

// Context is an opaque handle to a loaded trusted setup. Handles are only
// meaningful to the Backend that produced them.
type Context interface {
	// Backend names the engine that produced the handle.
	Backend() string
	// Generation increases with every load performed by the engine.
	Generation() uint64
}

// Backend is a KZG cryptography engine.
type Backend interface {
	Name() string

	// Load reads a trusted setup and returns a handle to it.
	Load(path string, format Format) (Context, error)
	// Release frees the resources behind ctx. Operations using ctx afterwards
	// fail with ErrContextInvalid.
	Release(ctx Context)

	BlobToKZGCommitment(ctx Context, blob *types.Blob) (types.Commitment, error)
	ComputeKZGProof(ctx Context, blob *types.Blob, z types.FieldElement) (types.Proof, types.FieldElement, error)
	VerifyKZGProof(ctx Context, commitment types.Commitment, z, y types.FieldElement, proof types.Proof) (bool, error)
	ComputeBlobKZGProof(ctx Context, blob *types.Blob, commitment types.Commitment) (types.Proof, error)
	VerifyBlobKZGProof(ctx Context, blob *types.Blob, commitment types.Commitment, proof types.Proof) (bool, error)

	// VerifyBlobKZGProofBatch takes the blobs, commitments and proofs of a
	// batch each concatenated into one buffer, in batch order.
	VerifyBlobKZGProofBatch(ctx Context, blobs, commitments, proofs []byte) (bool, error)
}

// New returns the backend registered under name ("gokzg" or "ckzg").
func New(name string, parallelism int) (Backend, error) {
	switch strings.ToLower(name) {
	case "", GoKZGName:
		return NewGoKZG(parallelism), nil
	case CKZGName:
		return NewCKZG()
	}
	return nil, errors.Errorf("unknown kzg backend %q", name)
}

// CKZGAvailable reports whether the cgo backend was compiled in.
func CKZGAvailable() bool {
	return ckzgAvailable
}

// batchCount checks that the three buffers hold the same whole number of
// items and returns that number.
func batchCount(blobs, commitments, proofs []byte) (int, error) {
	if len(blobs)%types.BlobSize != 0 {
		return 0, errors.Wrapf(ErrBadArgs, "blobs buffer of %d bytes is not a multiple of %d", len(blobs), types.BlobSize)
	}
	if len(commitments)%types.CommitmentSize != 0 {
		return 0, errors.Wrapf(ErrBadArgs, "commitments buffer of %d bytes is not a multiple of %d", len(commitments), types.CommitmentSize)
	}
	if len(proofs)%types.ProofSize != 0 {
		return 0, errors.Wrapf(ErrBadArgs, "proofs buffer of %d bytes is not a multiple of %d", len(proofs), types.ProofSize)
	}
	n := len(blobs) / types.BlobSize
	if len(commitments)/types.CommitmentSize != n || len(proofs)/types.ProofSize != n {
		return 0, errors.Wrapf(ErrBadArgs, "batch of %d blobs, %d commitments, %d proofs",
			n, len(commitments)/types.CommitmentSize, len(proofs)/types.ProofSize)
	}
	return n, nil
}
