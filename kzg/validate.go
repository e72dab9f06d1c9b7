package kzg

import "github.com/ethereum/kzgwrap/types"

// The validators only look at sizes. Whether a field element is canonical or
// a commitment decodes to a curve point is for the engine to decide.

func checkLength(kind error, index int, b []byte, want int) error {
	if len(b) != want {
		return &LengthError{Kind: kind, Index: index, Got: len(b), Want: want}
	}
	return nil
}

func checkLengths(kind error, items [][]byte, want int) error {
	for i, b := range items {
		if err := checkLength(kind, i, b, want); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBlob reports ErrInvalidBlobLength unless blob is exactly
// types.BlobSize bytes.
func ValidateBlob(blob []byte) error {
	return checkLength(ErrInvalidBlobLength, -1, blob, types.BlobSize)
}

// ValidateFieldElement reports ErrInvalidFieldElementLength unless fe is
// exactly 32 bytes.
func ValidateFieldElement(fe []byte) error {
	return checkLength(ErrInvalidFieldElementLength, -1, fe, types.BytesPerFieldElement)
}

// ValidateCommitment reports ErrInvalidCommitmentLength unless commitment is
// exactly 48 bytes.
func ValidateCommitment(commitment []byte) error {
	return checkLength(ErrInvalidCommitmentLength, -1, commitment, types.CommitmentSize)
}

// ValidateProof reports ErrInvalidProofLength unless proof is exactly 48 bytes.
func ValidateProof(proof []byte) error {
	return checkLength(ErrInvalidProofLength, -1, proof, types.ProofSize)
}

// ValidateBlobs checks every blob and stops at the first one of the wrong size.
func ValidateBlobs(blobs [][]byte) error {
	return checkLengths(ErrInvalidBlobLength, blobs, types.BlobSize)
}

// ValidateCommitments checks every commitment and stops at the first one of
// the wrong size.
func ValidateCommitments(commitments [][]byte) error {
	return checkLengths(ErrInvalidCommitmentLength, commitments, types.CommitmentSize)
}

// ValidateProofs checks every proof and stops at the first one of the wrong size.
func ValidateProofs(proofs [][]byte) error {
	return checkLengths(ErrInvalidProofLength, proofs, types.ProofSize)
}
