package engine

import (
	"bytes"
	"encoding/json"
	"sync/atomic"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	gokzg4844 "github.com/crate-crypto/go-kzg-4844"
	"github.com/pkg/errors"

	"github.com/ethereum/kzgwrap/types"
)

const GoKZGName = "gokzg"

// blsModulus is the scalar field modulus, big-endian.
var blsModulus = fr.Modulus().FillBytes(make([]byte, types.BytesPerFieldElement))

type goKZGContext struct {
	ctx        *gokzg4844.Context
	generation uint64
	released   atomic.Bool
}

func (c *goKZGContext) Backend() string    { return GoKZGName }
func (c *goKZGContext) Generation() uint64 { return c.generation }

// GoKZG is the pure Go engine backed by go-kzg-4844. Every Load builds an
// independent context, so handles stay usable until they are released.
type GoKZG struct {
	parallelism int
	generation  atomic.Uint64
}

// NewGoKZG creates the go-kzg-4844 engine. parallelism bounds the goroutines
// used to compute commitments and proofs; zero lets the library decide.
func NewGoKZG(parallelism int) *GoKZG {
	return &GoKZG{parallelism: parallelism}
}

func (b *GoKZG) Name() string { return GoKZGName }

func (b *GoKZG) Load(path string, format Format) (Context, error) {
	var (
		ctx *gokzg4844.Context
		err error
	)
	switch format {
	case FormatBuiltin:
		ctx, err = gokzg4844.NewContext4096Secure()
	case FormatJSON:
		var data []byte
		if data, err = readSetupFile(path); err != nil {
			return nil, err
		}
		setup := new(gokzg4844.JSONTrustedSetup)
		if err = json.Unmarshal(data, setup); err != nil {
			return nil, errors.Wrap(err, "could not parse trusted setup JSON")
		}
		ctx, err = gokzg4844.NewContext4096(setup)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%v setup on %s", format, GoKZGName)
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not initialize go-kzg context")
	}
	return &goKZGContext{ctx: ctx, generation: b.generation.Add(1)}, nil
}

func (b *GoKZG) Release(ctx Context) {
	if c, ok := ctx.(*goKZGContext); ok && c != nil {
		c.released.Store(true)
	}
}

func (b *GoKZG) context(ctx Context) (*gokzg4844.Context, error) {
	c, ok := ctx.(*goKZGContext)
	if !ok || c == nil || c.released.Load() {
		return nil, ErrContextInvalid
	}
	return c.ctx, nil
}

func (b *GoKZG) BlobToKZGCommitment(ctx Context, blob *types.Blob) (types.Commitment, error) {
	c, err := b.context(ctx)
	if err != nil {
		return types.Commitment{}, err
	}
	commitment, err := c.BlobToKZGCommitment(gokzg4844.Blob(*blob), b.parallelism)
	if err != nil {
		return types.Commitment{}, badArgs(err)
	}
	return types.Commitment(commitment), nil
}

func (b *GoKZG) ComputeKZGProof(ctx Context, blob *types.Blob, z types.FieldElement) (types.Proof, types.FieldElement, error) {
	c, err := b.context(ctx)
	if err != nil {
		return types.Proof{}, types.FieldElement{}, err
	}
	proof, y, err := c.ComputeKZGProof(gokzg4844.Blob(*blob), gokzg4844.Scalar(z), b.parallelism)
	if err != nil {
		return types.Proof{}, types.FieldElement{}, badArgs(err)
	}
	return types.Proof(proof), types.FieldElement(y), nil
}

func (b *GoKZG) ComputeBlobKZGProof(ctx Context, blob *types.Blob, commitment types.Commitment) (types.Proof, error) {
	c, err := b.context(ctx)
	if err != nil {
		return types.Proof{}, err
	}
	proof, err := c.ComputeBlobKZGProof(gokzg4844.Blob(*blob), gokzg4844.KZGCommitment(commitment), b.parallelism)
	if err != nil {
		return types.Proof{}, badArgs(err)
	}
	return types.Proof(proof), nil
}

// go-kzg-4844 reports a failed pairing check and an undecodable input the
// same way, so the verifiers decode every input first: anything that fails
// afterwards is a proof that does not verify.

func (b *GoKZG) VerifyKZGProof(ctx Context, commitment types.Commitment, z, y types.FieldElement, proof types.Proof) (bool, error) {
	c, err := b.context(ctx)
	if err != nil {
		return false, err
	}
	if err := checkG1(commitment[:]); err != nil {
		return false, errors.Wrap(err, "commitment")
	}
	if err := checkScalar(z[:]); err != nil {
		return false, errors.Wrap(err, "z")
	}
	if err := checkScalar(y[:]); err != nil {
		return false, errors.Wrap(err, "y")
	}
	if err := checkG1(proof[:]); err != nil {
		return false, errors.Wrap(err, "proof")
	}
	err = c.VerifyKZGProof(gokzg4844.KZGCommitment(commitment), gokzg4844.Scalar(z), gokzg4844.Scalar(y), gokzg4844.KZGProof(proof))
	return err == nil, nil
}

func (b *GoKZG) VerifyBlobKZGProof(ctx Context, blob *types.Blob, commitment types.Commitment, proof types.Proof) (bool, error) {
	c, err := b.context(ctx)
	if err != nil {
		return false, err
	}
	if err := checkBlob(blob[:]); err != nil {
		return false, err
	}
	if err := checkG1(commitment[:]); err != nil {
		return false, errors.Wrap(err, "commitment")
	}
	if err := checkG1(proof[:]); err != nil {
		return false, errors.Wrap(err, "proof")
	}
	err = c.VerifyBlobKZGProof(gokzg4844.Blob(*blob), gokzg4844.KZGCommitment(commitment), gokzg4844.KZGProof(proof))
	return err == nil, nil
}

func (b *GoKZG) VerifyBlobKZGProofBatch(ctx Context, blobs, commitments, proofs []byte) (bool, error) {
	c, err := b.context(ctx)
	if err != nil {
		return false, err
	}
	n, err := batchCount(blobs, commitments, proofs)
	if err != nil {
		return false, err
	}
	var (
		kzgBlobs       = make([]gokzg4844.Blob, n)
		kzgCommitments = make([]gokzg4844.KZGCommitment, n)
		kzgProofs      = make([]gokzg4844.KZGProof, n)
	)
	for i := 0; i < n; i++ {
		copy(kzgBlobs[i][:], blobs[i*types.BlobSize:])
		copy(kzgCommitments[i][:], commitments[i*types.CommitmentSize:])
		copy(kzgProofs[i][:], proofs[i*types.ProofSize:])

		if err := checkBlob(kzgBlobs[i][:]); err != nil {
			return false, errors.Wrapf(err, "blob %d", i)
		}
		if err := checkG1(kzgCommitments[i][:]); err != nil {
			return false, errors.Wrapf(err, "commitment %d", i)
		}
		if err := checkG1(kzgProofs[i][:]); err != nil {
			return false, errors.Wrapf(err, "proof %d", i)
		}
	}
	err = c.VerifyBlobKZGProofBatch(kzgBlobs, kzgCommitments, kzgProofs)
	return err == nil, nil
}

func badArgs(err error) error {
	return errors.WithMessage(ErrBadArgs, err.Error())
}

// checkG1 checks that b is a compressed G1 point in the prime order subgroup.
func checkG1(b []byte) error {
	var p bls12381.G1Affine
	if _, err := p.SetBytes(b); err != nil {
		return badArgs(err)
	}
	return nil
}

// checkScalar checks that b is a canonical big-endian field element.
func checkScalar(b []byte) error {
	if bytes.Compare(b, blsModulus) >= 0 {
		return errors.WithMessage(ErrBadArgs, "scalar is not canonical")
	}
	return nil
}

func checkBlob(blob []byte) error {
	for i := 0; i < len(blob); i += types.BytesPerFieldElement {
		if err := checkScalar(blob[i : i+types.BytesPerFieldElement]); err != nil {
			return errors.Wrapf(err, "blob field element %d", i/types.BytesPerFieldElement)
		}
	}
	return nil
}
