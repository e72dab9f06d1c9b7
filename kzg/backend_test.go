package kzg

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/ethereum/kzgwrap/engine"
	"github.com/ethereum/kzgwrap/types"
)

type fakeContext struct {
	generation uint64
}

func (c *fakeContext) Backend() string    { return "fake" }
func (c *fakeContext) Generation() uint64 { return c.generation }

// fakeBackend records every call and lets a test script the errors returned
// by operations.
type fakeBackend struct {
	loads    atomic.Int32
	releases atomic.Int32
	calls    atomic.Int32

	loadGate chan struct{} // when set, Load blocks until it is closed
	loadErr  error

	mu       sync.Mutex
	opErrs   []error // popped front to back, one per operation call
	released map[*fakeContext]bool
	seen     []engine.Context
	batch    [3][]byte
}

func newFakeBackend(opErrs ...error) *fakeBackend {
	return &fakeBackend{opErrs: opErrs, released: make(map[*fakeContext]bool)}
}

func (f *fakeBackend) Name() string { return "fake" }

func (f *fakeBackend) Load(path string, format engine.Format) (engine.Context, error) {
	if f.loadGate != nil {
		<-f.loadGate
	}
	n := f.loads.Add(1)
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return &fakeContext{generation: uint64(n)}, nil
}

func (f *fakeBackend) Release(ctx engine.Context) {
	f.releases.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.released[ctx.(*fakeContext)] = true
}

func (f *fakeBackend) call(ctx engine.Context) error {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seen = append(f.seen, ctx)
	if f.released[ctx.(*fakeContext)] {
		return engine.ErrContextInvalid
	}
	if len(f.opErrs) == 0 {
		return nil
	}
	err := f.opErrs[0]
	f.opErrs = f.opErrs[1:]
	return err
}

func (f *fakeBackend) BlobToKZGCommitment(ctx engine.Context, blob *types.Blob) (types.Commitment, error) {
	if err := f.call(ctx); err != nil {
		return types.Commitment{}, err
	}
	var c types.Commitment
	copy(c[:], blob[:types.CommitmentSize])
	return c, nil
}

func (f *fakeBackend) ComputeKZGProof(ctx engine.Context, blob *types.Blob, z types.FieldElement) (types.Proof, types.FieldElement, error) {
	if err := f.call(ctx); err != nil {
		return types.Proof{}, types.FieldElement{}, err
	}
	return types.Proof{1}, z, nil
}

func (f *fakeBackend) VerifyKZGProof(ctx engine.Context, commitment types.Commitment, z, y types.FieldElement, proof types.Proof) (bool, error) {
	if err := f.call(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeBackend) ComputeBlobKZGProof(ctx engine.Context, blob *types.Blob, commitment types.Commitment) (types.Proof, error) {
	if err := f.call(ctx); err != nil {
		return types.Proof{}, err
	}
	return types.Proof(commitment), nil
}

func (f *fakeBackend) VerifyBlobKZGProof(ctx engine.Context, blob *types.Blob, commitment types.Commitment, proof types.Proof) (bool, error) {
	if err := f.call(ctx); err != nil {
		return false, err
	}
	return commitment == types.Commitment(proof), nil
}

func (f *fakeBackend) VerifyBlobKZGProofBatch(ctx engine.Context, blobs, commitments, proofs []byte) (bool, error) {
	if err := f.call(ctx); err != nil {
		return false, err
	}
	f.mu.Lock()
	f.batch = [3][]byte{blobs, commitments, proofs}
	f.mu.Unlock()
	return true, nil
}

var errFakeEngine = errors.New("fake engine failure")

func newFakeKZG(opErrs ...error) (*KZG, *fakeBackend) {
	backend := newFakeBackend(opErrs...)
	return NewWithBackend(backend, "", engine.FormatBuiltin), backend
}
