//go:build ckzg && !nacl && !js && cgo && !gofuzz

package engine

import (
	"os"
	"sync"

	ckzg4844 "github.com/ethereum/c-kzg-4844/bindings/go"
	"github.com/pkg/errors"

	"github.com/ethereum/kzgwrap/types"
)

const (
	CKZGName      = "ckzg"
	ckzgAvailable = true
)

// The C library keeps its settings in a single global, so there is exactly
// one ckzg engine per process.
var ckzgEngine = new(CKZG)

type ckzgContext struct {
	generation uint64
}

func (c ckzgContext) Backend() string    { return CKZGName }
func (c ckzgContext) Generation() uint64 { return c.generation }

// CKZG is the engine backed by the c-kzg-4844 bindings. Loading a setup
// replaces the previous one, after which handles of earlier generations
// report ErrContextInvalid.
type CKZG struct {
	lock       sync.RWMutex // held for writing while the C settings change
	loaded     bool
	generation uint64
}

// NewCKZG returns the process-wide c-kzg-4844 engine.
func NewCKZG() (Backend, error) {
	return ckzgEngine, nil
}

func (b *CKZG) Name() string { return CKZGName }

// translateError turns an error reported by the bindings into one of the
// engine's sentinel errors.
func translateError(err error) error {
	switch {
	case errors.Is(err, ckzg4844.ErrBadArgs):
		return ErrBadArgs
	case errors.Is(err, ckzg4844.ErrError):
		return ErrError
	case errors.Is(err, ckzg4844.ErrMalloc):
		return ErrMalloc
	}
	return errors.Wrap(ErrError, err.Error())
}

/*
Load is the binding for:

	C_KZG_RET load_trusted_setup_file(
	    KZGSettings *out,
	    FILE *in);

or, for JSON setups:

	C_KZG_RET load_trusted_setup(
	    KZGSettings *out,
	    const uint8_t *g1_bytes,
	    size_t n1,
	    const uint8_t *g2_bytes,
	    size_t n2);
*/
func (b *CKZG) Load(path string, format Format) (Context, error) {
	var g1s, g2s []byte
	switch format {
	case FormatText:
		// The bindings panic when fopen fails.
		if _, err := os.Stat(path); err != nil {
			return nil, errors.Wrap(err, "could not read trusted setup")
		}
	case FormatJSON:
		data, err := readSetupFile(path)
		if err != nil {
			return nil, err
		}
		if g1s, g2s, err = decodeJSONSetup(data); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "%v setup on %s", format, CKZGName)
	}

	b.lock.Lock()
	defer b.lock.Unlock()

	if b.loaded {
		ckzg4844.FreeTrustedSetup()
		b.loaded = false
		b.generation++
	}
	var err error
	if format == FormatText {
		err = ckzg4844.LoadTrustedSetupFile(path)
	} else {
		err = ckzg4844.LoadTrustedSetup(g1s, g2s)
	}
	if err != nil {
		return nil, errors.Wrap(translateError(err), "could not load trusted setup")
	}
	b.loaded = true
	b.generation++
	return ckzgContext{generation: b.generation}, nil
}

/*
Release is the binding for:

	void free_trusted_setup(
	    KZGSettings *s);

Releasing a handle that is already stale is a no-op.
*/
func (b *CKZG) Release(ctx Context) {
	b.lock.Lock()
	defer b.lock.Unlock()

	c, ok := ctx.(ckzgContext)
	if !ok || !b.loaded || c.generation != b.generation {
		return
	}
	ckzg4844.FreeTrustedSetup()
	b.loaded = false
	b.generation++
}

// acquire read-locks the settings for the duration of one call. The returned
// function must be called once the call returns, also on error.
func (b *CKZG) acquire(ctx Context) (func(), error) {
	b.lock.RLock()
	c, ok := ctx.(ckzgContext)
	if !ok || !b.loaded || c.generation != b.generation {
		b.lock.RUnlock()
		return nil, ErrContextInvalid
	}
	return b.lock.RUnlock, nil
}

/*
BlobToKZGCommitment is the binding for:

	C_KZG_RET blob_to_kzg_commitment(
	    KZGCommitment *out,
	    const Blob *blob,
	    const KZGSettings *s);
*/
func (b *CKZG) BlobToKZGCommitment(ctx Context, blob *types.Blob) (types.Commitment, error) {
	release, err := b.acquire(ctx)
	if err != nil {
		return types.Commitment{}, err
	}
	defer release()

	commitment, err := ckzg4844.BlobToKZGCommitment(ckzg4844.Blob(*blob))
	if err != nil {
		return types.Commitment{}, translateError(err)
	}
	return types.Commitment(commitment), nil
}

/*
ComputeKZGProof is the binding for:

	C_KZG_RET compute_kzg_proof(
	    KZGProof *proof_out,
	    Bytes32 *y_out,
	    const Blob *blob,
	    const Bytes32 *z_bytes,
	    const KZGSettings *s);
*/
func (b *CKZG) ComputeKZGProof(ctx Context, blob *types.Blob, z types.FieldElement) (types.Proof, types.FieldElement, error) {
	release, err := b.acquire(ctx)
	if err != nil {
		return types.Proof{}, types.FieldElement{}, err
	}
	defer release()

	proof, y, err := ckzg4844.ComputeKZGProof(ckzg4844.Blob(*blob), ckzg4844.Bytes32(z))
	if err != nil {
		return types.Proof{}, types.FieldElement{}, translateError(err)
	}
	return types.Proof(proof), types.FieldElement(y), nil
}

/*
ComputeBlobKZGProof is the binding for:

	C_KZG_RET compute_blob_kzg_proof(
	    KZGProof *out,
	    const Blob *blob,
	    const Bytes48 *commitment_bytes,
	    const KZGSettings *s);
*/
func (b *CKZG) ComputeBlobKZGProof(ctx Context, blob *types.Blob, commitment types.Commitment) (types.Proof, error) {
	release, err := b.acquire(ctx)
	if err != nil {
		return types.Proof{}, err
	}
	defer release()

	proof, err := ckzg4844.ComputeBlobKZGProof(ckzg4844.Blob(*blob), ckzg4844.Bytes48(commitment))
	if err != nil {
		return types.Proof{}, translateError(err)
	}
	return types.Proof(proof), nil
}

/*
VerifyKZGProof is the binding for:

	C_KZG_RET verify_kzg_proof(
	    bool *out,
	    const Bytes48 *commitment_bytes,
	    const Bytes32 *z_bytes,
	    const Bytes32 *y_bytes,
	    const Bytes48 *proof_bytes,
	    const KZGSettings *s);
*/
func (b *CKZG) VerifyKZGProof(ctx Context, commitment types.Commitment, z, y types.FieldElement, proof types.Proof) (bool, error) {
	release, err := b.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	valid, err := ckzg4844.VerifyKZGProof(ckzg4844.Bytes48(commitment), ckzg4844.Bytes32(z), ckzg4844.Bytes32(y), ckzg4844.Bytes48(proof))
	if err != nil {
		return false, translateError(err)
	}
	return valid, nil
}

/*
VerifyBlobKZGProof is the binding for:

	C_KZG_RET verify_blob_kzg_proof(
	    bool *out,
	    const Blob *blob,
	    const Bytes48 *commitment_bytes,
	    const Bytes48 *proof_bytes,
	    const KZGSettings *s);
*/
func (b *CKZG) VerifyBlobKZGProof(ctx Context, blob *types.Blob, commitment types.Commitment, proof types.Proof) (bool, error) {
	release, err := b.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	valid, err := ckzg4844.VerifyBlobKZGProof(ckzg4844.Blob(*blob), ckzg4844.Bytes48(commitment), ckzg4844.Bytes48(proof))
	if err != nil {
		return false, translateError(err)
	}
	return valid, nil
}

/*
VerifyBlobKZGProofBatch is the binding for:

	C_KZG_RET verify_blob_kzg_proof_batch(
	    bool *out,
	    const Blob *blobs,
	    const Bytes48 *commitments_bytes,
	    const Bytes48 *proofs_bytes,
	    size_t n,
	    const KZGSettings *s);
*/
func (b *CKZG) VerifyBlobKZGProofBatch(ctx Context, blobs, commitments, proofs []byte) (bool, error) {
	n, err := batchCount(blobs, commitments, proofs)
	if err != nil {
		return false, err
	}
	var (
		ckzgBlobs       = make([]ckzg4844.Blob, n)
		ckzgCommitments = make([]ckzg4844.Bytes48, n)
		ckzgProofs      = make([]ckzg4844.Bytes48, n)
	)
	for i := 0; i < n; i++ {
		copy(ckzgBlobs[i][:], blobs[i*types.BlobSize:])
		copy(ckzgCommitments[i][:], commitments[i*types.CommitmentSize:])
		copy(ckzgProofs[i][:], proofs[i*types.ProofSize:])
	}

	release, err := b.acquire(ctx)
	if err != nil {
		return false, err
	}
	defer release()

	valid, err := ckzg4844.VerifyBlobKZGProofBatch(ckzgBlobs, ckzgCommitments, ckzgProofs)
	if err != nil {
		return false, translateError(err)
	}
	return valid, nil
}
