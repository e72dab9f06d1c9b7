// Package types holds the fixed-size byte types exchanged with the KZG engines.
package types

import (
	"reflect"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	FieldElementsPerBlob = 4096
	BytesPerFieldElement = 32
	BlobSize             = FieldElementsPerBlob * BytesPerFieldElement
	CommitmentSize       = 48
	ProofSize            = 48
	G1Size               = 48
	G2Size               = 96
	VersionedHashSize    = 32

	// BlobCommitmentVersionKZG is the version byte of a KZG versioned hash.
	BlobCommitmentVersionKZG byte = 0x01
)

type (
	Blob          [BlobSize]byte
	Commitment    [CommitmentSize]byte
	Proof         [ProofSize]byte
	FieldElement  [BytesPerFieldElement]byte
	G1            [G1Size]byte
	G2            [G2Size]byte
	VersionedHash [VersionedHashSize]byte
)

var (
	blobT          = reflect.TypeOf(Blob{})
	commitmentT    = reflect.TypeOf(Commitment{})
	proofT         = reflect.TypeOf(Proof{})
	fieldElementT  = reflect.TypeOf(FieldElement{})
	versionedHashT = reflect.TypeOf(VersionedHash{})
)

// UnmarshalText parses a blob in hex syntax, with or without the 0x prefix.
func (b *Blob) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedUnprefixedText("Blob", input, b[:])
}

// UnmarshalJSON parses a blob in hex syntax.
func (b *Blob) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON(blobT, input, b[:])
}

// MarshalText returns the hex representation of b.
func (b *Blob) MarshalText() ([]byte, error) {
	return hexutil.Bytes(b[:]).MarshalText()
}

func (c *Commitment) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedUnprefixedText("Commitment", input, c[:])
}

func (c *Commitment) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON(commitmentT, input, c[:])
}

func (c Commitment) MarshalText() ([]byte, error) {
	return hexutil.Bytes(c[:]).MarshalText()
}

func (p *Proof) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedUnprefixedText("Proof", input, p[:])
}

func (p *Proof) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON(proofT, input, p[:])
}

func (p Proof) MarshalText() ([]byte, error) {
	return hexutil.Bytes(p[:]).MarshalText()
}

func (f *FieldElement) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedUnprefixedText("FieldElement", input, f[:])
}

func (f *FieldElement) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON(fieldElementT, input, f[:])
}

func (f FieldElement) MarshalText() ([]byte, error) {
	return hexutil.Bytes(f[:]).MarshalText()
}

func (h *VersionedHash) UnmarshalJSON(input []byte) error {
	return hexutil.UnmarshalFixedJSON(versionedHashT, input, h[:])
}

func (h VersionedHash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

// IsValidVersionedHash checks that h is a structurally-valid versioned blob hash.
func IsValidVersionedHash(h []byte) bool {
	return len(h) == VersionedHashSize && h[0] == BlobCommitmentVersionKZG
}
