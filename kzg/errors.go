package kzg

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/ethereum/kzgwrap/engine"
)

// Input errors. These are detected before the engine is involved and are
// never retried.
var (
	ErrInvalidBlobLength         = errors.New("invalid blob length")
	ErrInvalidFieldElementLength = errors.New("invalid field element length")
	ErrInvalidCommitmentLength   = errors.New("invalid commitment length")
	ErrInvalidProofLength        = errors.New("invalid proof length")
	ErrInvalidBatchLength        = errors.New("invalid batch length")

	// ErrLoadTrustedSetup matches every failure to load the trusted setup.
	ErrLoadTrustedSetup = errors.New("could not load trusted setup")
)

// LengthError describes an input of the wrong size. It matches its Kind
// with errors.Is.
type LengthError struct {
	Kind  error // one of the ErrInvalid*Length sentinels
	Index int   // position in the list, -1 for a single value
	Got   int
	Want  int
}

func (e *LengthError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%v: have %d, want %d", e.Kind, e.Got, e.Want)
	}
	return fmt.Sprintf("%v: item %d: have %d, want %d", e.Kind, e.Index, e.Got, e.Want)
}

func (e *LengthError) Unwrap() error { return e.Kind }

type loadError struct {
	err error
}

func (e *loadError) Error() string        { return ErrLoadTrustedSetup.Error() + ": " + e.err.Error() }
func (e *loadError) Unwrap() error        { return e.err }
func (e *loadError) Is(target error) bool { return target == ErrLoadTrustedSetup }

// ErrorKind classifies the errors returned by this package.
type ErrorKind uint8

const (
	KindNone ErrorKind = iota
	KindInvalidBlobLength
	KindInvalidFieldElementLength
	KindInvalidCommitmentLength
	KindInvalidProofLength
	KindInvalidBatchLength
	KindContextInvalid
	KindLoadTrustedSetup
	KindEngine
)

var kindNames = [...]string{
	KindNone:                      "none",
	KindInvalidBlobLength:         "invalid blob length",
	KindInvalidFieldElementLength: "invalid field element length",
	KindInvalidCommitmentLength:   "invalid commitment length",
	KindInvalidProofLength:        "invalid proof length",
	KindInvalidBatchLength:        "invalid batch length",
	KindContextInvalid:            "context invalid",
	KindLoadTrustedSetup:          "load trusted setup",
	KindEngine:                    "engine",
}

func (k ErrorKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// KindOf returns the kind of err. Errors this package does not recognise
// are reported as KindEngine.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrInvalidBlobLength):
		return KindInvalidBlobLength
	case errors.Is(err, ErrInvalidFieldElementLength):
		return KindInvalidFieldElementLength
	case errors.Is(err, ErrInvalidCommitmentLength):
		return KindInvalidCommitmentLength
	case errors.Is(err, ErrInvalidProofLength):
		return KindInvalidProofLength
	case errors.Is(err, ErrInvalidBatchLength):
		return KindInvalidBatchLength
	case errors.Is(err, ErrLoadTrustedSetup):
		return KindLoadTrustedSetup
	case errors.Is(err, engine.ErrContextInvalid):
		return KindContextInvalid
	}
	return KindEngine
}
