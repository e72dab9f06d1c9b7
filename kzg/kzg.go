// Package kzg is the entry point for EIP-4844 KZG operations.
//
// Every operation checks the size of its inputs before the cryptography
// engine sees them, so a malformed argument fails with one of the
// ErrInvalid*Length errors and never reaches the engine. The trusted setup
// is loaded on first use and kept for the lifetime of the KZG instance; if
// the engine reports the loaded setup as no longer valid, it is reloaded and
// the operation retried once.
//
// The package level functions use a process-wide instance backed by the pure
// Go engine and the built-in trusted setup. Use SetDefault to change it.
package kzg

import (
	"crypto/sha256"
	"sync/atomic"

	"github.com/ethereum/kzgwrap/engine"
	"github.com/ethereum/kzgwrap/types"
)

// KZG validates inputs and runs them through an engine with a lazily loaded
// trusted setup. It is safe for concurrent use.
type KZG struct {
	backend  engine.Backend
	contexts *contextManager
}

// New creates a KZG instance from cfg. The trusted setup is not read until
// the first operation needs it.
func New(cfg Config) (*KZG, error) {
	backend, err := engine.New(cfg.Backend, cfg.Parallelism)
	if err != nil {
		return nil, err
	}
	path, format, err := cfg.source()
	if err != nil {
		return nil, err
	}
	return NewWithBackend(backend, path, format), nil
}

// NewWithBackend creates a KZG instance over an arbitrary engine.
func NewWithBackend(backend engine.Backend, path string, format engine.Format) *KZG {
	return &KZG{
		backend:  backend,
		contexts: newContextManager(backend, path, format),
	}
}

// Backend returns the name of the engine in use.
func (k *KZG) Backend() string {
	return k.backend.Name()
}

// ResetContext discards the current trusted setup context and loads a fresh
// one, which it returns. Operations recover from an invalidated context on
// their own; this is for callers that know the engine state was disturbed.
func (k *KZG) ResetContext() (engine.Context, error) {
	e, err := k.contexts.reset()
	if err != nil {
		return nil, err
	}
	return e.ctx, nil
}

// Close releases the trusted setup. A later operation loads it again.
func (k *KZG) Close() {
	k.contexts.close()
}

// BlobToKZGCommitment computes the commitment to the polynomial in blob.
func (k *KZG) BlobToKZGCommitment(blob []byte) ([]byte, error) {
	if err := ValidateBlob(blob); err != nil {
		return nil, err
	}
	commitment, err := dispatch(k, "blob to kzg commitment", func(ctx engine.Context) (types.Commitment, error) {
		return k.backend.BlobToKZGCommitment(ctx, (*types.Blob)(blob))
	})
	if err != nil {
		return nil, err
	}
	return commitment[:], nil
}

type proofAndClaim struct {
	proof types.Proof
	y     types.FieldElement
}

// ComputeKZGProof computes the proof that the polynomial in blob evaluates
// to y at z, and returns it together with y.
func (k *KZG) ComputeKZGProof(blob, z []byte) (proof, y []byte, err error) {
	if err := ValidateBlob(blob); err != nil {
		return nil, nil, err
	}
	if err := ValidateFieldElement(z); err != nil {
		return nil, nil, err
	}
	res, err := dispatch(k, "compute kzg proof", func(ctx engine.Context) (proofAndClaim, error) {
		proof, y, err := k.backend.ComputeKZGProof(ctx, (*types.Blob)(blob), types.FieldElement(z))
		return proofAndClaim{proof, y}, err
	})
	if err != nil {
		return nil, nil, err
	}
	return res.proof[:], res.y[:], nil
}

// VerifyKZGProof checks that proof attests that the polynomial behind
// commitment evaluates to y at z. A proof that does not verify is reported
// as false with a nil error.
func (k *KZG) VerifyKZGProof(commitment, z, y, proof []byte) (bool, error) {
	if err := ValidateCommitment(commitment); err != nil {
		return false, err
	}
	if err := ValidateFieldElement(z); err != nil {
		return false, err
	}
	if err := ValidateFieldElement(y); err != nil {
		return false, err
	}
	if err := ValidateProof(proof); err != nil {
		return false, err
	}
	return dispatch(k, "verify kzg proof", func(ctx engine.Context) (bool, error) {
		return k.backend.VerifyKZGProof(ctx, types.Commitment(commitment), types.FieldElement(z), types.FieldElement(y), types.Proof(proof))
	})
}

// ComputeBlobKZGProof computes the proof used to verify blob against
// commitment. It does not check that commitment belongs to blob.
func (k *KZG) ComputeBlobKZGProof(blob, commitment []byte) ([]byte, error) {
	if err := ValidateBlob(blob); err != nil {
		return nil, err
	}
	if err := ValidateCommitment(commitment); err != nil {
		return nil, err
	}
	proof, err := dispatch(k, "compute blob kzg proof", func(ctx engine.Context) (types.Proof, error) {
		return k.backend.ComputeBlobKZGProof(ctx, (*types.Blob)(blob), types.Commitment(commitment))
	})
	if err != nil {
		return nil, err
	}
	return proof[:], nil
}

// VerifyBlobKZGProof checks that proof attests that commitment commits to blob.
func (k *KZG) VerifyBlobKZGProof(blob, commitment, proof []byte) (bool, error) {
	if err := ValidateBlob(blob); err != nil {
		return false, err
	}
	if err := ValidateCommitment(commitment); err != nil {
		return false, err
	}
	if err := ValidateProof(proof); err != nil {
		return false, err
	}
	return dispatch(k, "verify blob kzg proof", func(ctx engine.Context) (bool, error) {
		return k.backend.VerifyBlobKZGProof(ctx, (*types.Blob)(blob), types.Commitment(commitment), types.Proof(proof))
	})
}

// VersionedHash computes the EIP-4844 versioned hash of a commitment:
// sha256(commitment) with the first byte replaced by the version.
func VersionedHash(commitment []byte) (types.VersionedHash, error) {
	if err := ValidateCommitment(commitment); err != nil {
		return types.VersionedHash{}, err
	}
	h := types.VersionedHash(sha256.Sum256(commitment))
	h[0] = types.BlobCommitmentVersionKZG
	return h, nil
}

var defaultKZG atomic.Pointer[KZG]

// Default returns the process-wide instance, creating it on first use.
func Default() *KZG {
	if k := defaultKZG.Load(); k != nil {
		return k
	}
	k, err := New(DefaultConfig())
	if err != nil {
		// The default config names the pure Go engine and the built-in
		// setup, neither of which can fail here.
		panic(err)
	}
	defaultKZG.CompareAndSwap(nil, k)
	return defaultKZG.Load()
}

// SetDefault replaces the process-wide instance and returns the previous one.
func SetDefault(k *KZG) *KZG {
	return defaultKZG.Swap(k)
}

// BlobToKZGCommitment calls (*KZG).BlobToKZGCommitment on the default instance.
func BlobToKZGCommitment(blob []byte) ([]byte, error) {
	return Default().BlobToKZGCommitment(blob)
}

// ComputeKZGProof calls (*KZG).ComputeKZGProof on the default instance.
func ComputeKZGProof(blob, z []byte) (proof, y []byte, err error) {
	return Default().ComputeKZGProof(blob, z)
}

// VerifyKZGProof calls (*KZG).VerifyKZGProof on the default instance.
func VerifyKZGProof(commitment, z, y, proof []byte) (bool, error) {
	return Default().VerifyKZGProof(commitment, z, y, proof)
}

// ComputeBlobKZGProof calls (*KZG).ComputeBlobKZGProof on the default instance.
func ComputeBlobKZGProof(blob, commitment []byte) ([]byte, error) {
	return Default().ComputeBlobKZGProof(blob, commitment)
}

// VerifyBlobKZGProof calls (*KZG).VerifyBlobKZGProof on the default instance.
func VerifyBlobKZGProof(blob, commitment, proof []byte) (bool, error) {
	return Default().VerifyBlobKZGProof(blob, commitment, proof)
}

// VerifyBlobKZGProofBatch calls (*KZG).VerifyBlobKZGProofBatch on the default instance.
func VerifyBlobKZGProofBatch(blobs, commitments, proofs [][]byte) (bool, error) {
	return Default().VerifyBlobKZGProofBatch(blobs, commitments, proofs)
}

// IsValidBlobKZGProofBatch reports every error as false, see
// (*KZG).IsValidBlobKZGProofBatch.
func IsValidBlobKZGProofBatch(blobs, commitments, proofs [][]byte) bool {
	return Default().IsValidBlobKZGProofBatch(blobs, commitments, proofs)
}
