package kzg

import (
	"fmt"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func loadYAML(t *testing.T, path string, out interface{}) {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	err = yaml.NewDecoder(f).Decode(out)
	require.NoError(t, f.Close())
	require.NoError(t, err)
}

func makeItems(lengths []int) [][]byte {
	items := make([][]byte, len(lengths))
	for i, n := range lengths {
		items[i] = make([]byte, n)
	}
	return items
}

func TestValidateLengths(t *testing.T) {
	type Test struct {
		Kind   string `yaml:"kind"`
		Length int    `yaml:"length"`
		Error  string `yaml:"error"`
	}
	var tests []Test
	loadYAML(t, "testdata/lengths.yaml", &tests)
	require.NotEmpty(t, tests)

	validators := map[string]func([]byte) error{
		"blob":          ValidateBlob,
		"field_element": ValidateFieldElement,
		"commitment":    ValidateCommitment,
		"proof":         ValidateProof,
	}
	for _, test := range tests {
		test := test
		t.Run(fmt.Sprintf("%s/%d", test.Kind, test.Length), func(t *testing.T) {
			validate, ok := validators[test.Kind]
			require.True(t, ok, "unknown kind %q", test.Kind)

			err := validate(make([]byte, test.Length))
			require.Equal(t, test.Error, KindOf(err).String())
			if err != nil {
				var lerr *LengthError
				require.True(t, errors.As(err, &lerr))
				require.Equal(t, test.Length, lerr.Got)
				require.Equal(t, -1, lerr.Index)
			}
		})
	}
}

func TestValidateBatch(t *testing.T) {
	type Test struct {
		Name        string `yaml:"name"`
		Blobs       []int  `yaml:"blobs"`
		Commitments []int  `yaml:"commitments"`
		Proofs      []int  `yaml:"proofs"`
		Error       string `yaml:"error"`
	}
	var tests []Test
	loadYAML(t, "testdata/batches.yaml", &tests)
	require.NotEmpty(t, tests)

	for _, test := range tests {
		test := test
		t.Run(test.Name, func(t *testing.T) {
			err := validateBatch(makeItems(test.Blobs), makeItems(test.Commitments), makeItems(test.Proofs))
			require.Equal(t, test.Error, KindOf(err).String())
		})
	}
}

func TestValidateListsReportFirstBadIndex(t *testing.T) {
	err := ValidateCommitments(makeItems([]int{48, 48, 12, 50}))
	require.ErrorIs(t, err, ErrInvalidCommitmentLength)

	var lerr *LengthError
	require.True(t, errors.As(err, &lerr))
	require.Equal(t, 2, lerr.Index)
	require.Equal(t, 12, lerr.Got)
	require.Equal(t, 48, lerr.Want)

	require.NoError(t, ValidateProofs(nil))
	require.NoError(t, ValidateBlobs(makeItems([]int{131072})))
	require.ErrorIs(t, ValidateProofs(makeItems([]int{48, 49})), ErrInvalidProofLength)
	require.ErrorIs(t, ValidateBlobs(makeItems([]int{1})), ErrInvalidBlobLength)
}

func TestErrorKind(t *testing.T) {
	require.Equal(t, KindNone, KindOf(nil))
	require.Equal(t, KindInvalidBatchLength, KindOf(&LengthError{Kind: ErrInvalidBatchLength, Index: -1}))
	require.Equal(t, KindLoadTrustedSetup, KindOf(&loadError{err: errFakeEngine}))
	require.Equal(t, KindEngine, KindOf(errFakeEngine))
	require.Equal(t, "kind(200)", ErrorKind(200).String())
}
