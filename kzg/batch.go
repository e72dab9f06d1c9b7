package kzg

import (
	"github.com/ethereum/kzgwrap/engine"
	"github.com/ethereum/kzgwrap/types"
)

// validateBatch checks a batch in a fixed order: every blob, then every
// commitment, then every proof, and only then that the three lists have the
// same length. The first failing check decides the error.
func validateBatch(blobs, commitments, proofs [][]byte) error {
	if err := ValidateBlobs(blobs); err != nil {
		return err
	}
	if err := ValidateCommitments(commitments); err != nil {
		return err
	}
	if err := ValidateProofs(proofs); err != nil {
		return err
	}
	if len(blobs) != len(commitments) {
		return &LengthError{Kind: ErrInvalidBatchLength, Index: -1, Got: len(commitments), Want: len(blobs)}
	}
	if len(blobs) != len(proofs) {
		return &LengthError{Kind: ErrInvalidBatchLength, Index: -1, Got: len(proofs), Want: len(blobs)}
	}
	return nil
}

// concat joins items of a fixed size into one buffer, keeping their order.
func concat(items [][]byte, size int) []byte {
	buf := make([]byte, 0, len(items)*size)
	for _, item := range items {
		buf = append(buf, item...)
	}
	return buf
}

// VerifyBlobKZGProofBatch verifies that proofs[i] attests that commitments[i]
// commits to blobs[i], for every i, with a single aggregated check.
func (k *KZG) VerifyBlobKZGProofBatch(blobs, commitments, proofs [][]byte) (bool, error) {
	if err := validateBatch(blobs, commitments, proofs); err != nil {
		return false, err
	}
	var (
		blobsBuf       = concat(blobs, types.BlobSize)
		commitmentsBuf = concat(commitments, types.CommitmentSize)
		proofsBuf      = concat(proofs, types.ProofSize)
	)
	return dispatch(k, "verify blob kzg proof batch", func(ctx engine.Context) (bool, error) {
		return k.backend.VerifyBlobKZGProofBatch(ctx, blobsBuf, commitmentsBuf, proofsBuf)
	})
}

// IsValidBlobKZGProofBatch is VerifyBlobKZGProofBatch with every error
// reported as false. Malformed input and a batch that does not verify are
// deliberately indistinguishable here; use VerifyBlobKZGProofBatch when the
// difference matters.
func (k *KZG) IsValidBlobKZGProofBatch(blobs, commitments, proofs [][]byte) bool {
	valid, err := k.VerifyBlobKZGProofBatch(blobs, commitments, proofs)
	return err == nil && valid
}
