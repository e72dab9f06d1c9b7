package engine

import (
	"encoding/json"
	"os"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"

	"github.com/ethereum/kzgwrap/types"
)

// jsonSetup is the JSON trusted setup layout shared by the consensus specs,
// go-ethereum and go-kzg-4844.
type jsonSetup struct {
	G1Lagrange []string `json:"g1_lagrange"`
	G2Monomial []string `json:"g2_monomial"`
}

func readSetupFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not read trusted setup")
	}
	return data, nil
}

// decodeJSONSetup returns the concatenated G1 (Lagrange form) and G2
// (monomial form) points of a JSON trusted setup.
func decodeJSONSetup(data []byte) (g1s, g2s []byte, err error) {
	var setup jsonSetup
	if err := json.Unmarshal(data, &setup); err != nil {
		return nil, nil, errors.Wrap(err, "could not parse trusted setup JSON")
	}
	if len(setup.G1Lagrange) != types.FieldElementsPerBlob {
		return nil, nil, errors.Errorf("trusted setup has %d G1 points, want %d", len(setup.G1Lagrange), types.FieldElementsPerBlob)
	}
	if len(setup.G2Monomial) == 0 {
		return nil, nil, errors.New("trusted setup has no G2 points")
	}
	g1s, err = decodePoints(setup.G1Lagrange, types.G1Size)
	if err != nil {
		return nil, nil, errors.Wrap(err, "g1_lagrange")
	}
	g2s, err = decodePoints(setup.G2Monomial, types.G2Size)
	if err != nil {
		return nil, nil, errors.Wrap(err, "g2_monomial")
	}
	return g1s, g2s, nil
}

func decodePoints(points []string, size int) ([]byte, error) {
	out := make([]byte, 0, len(points)*size)
	for i, p := range points {
		b, err := hexutil.Decode(p)
		if err != nil {
			return nil, errors.Wrapf(err, "point %d", i)
		}
		if len(b) != size {
			return nil, errors.Errorf("point %d has %d bytes, want %d", i, len(b), size)
		}
		out = append(out, b...)
	}
	return out, nil
}
