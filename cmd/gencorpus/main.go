// gencorpus writes seed corpora for the fuzz targets in package fuzz.
package main

import (
	"bytes"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ethereum/kzgwrap/kzg"
	"github.com/ethereum/kzgwrap/types"
)

var (
	outFlag = &cli.StringFlag{
		Name:  "out",
		Usage: "Corpus root, one directory per fuzz target is created below it",
		Value: filepath.Join("fuzz", "testdata", "fuzz"),
	}
	seedFlag = &cli.Int64Flag{
		Name:  "seed",
		Usage: "Seed of the random inputs",
		Value: 1,
	}
	countFlag = &cli.IntFlag{
		Name:  "count",
		Usage: "Number of corpus entries per target",
		Value: 4,
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Log level (debug, info, warn, error)",
		Value: "info",
	}
)

func main() {
	app := &cli.App{
		Name:   "gencorpus",
		Usage:  "Writes fuzz seed corpora built from valid KZG inputs",
		Flags:  []cli.Flag{outFlag, seedFlag, countFlag, verbosityFlag},
		Action: generate,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

///////////////////////////////////////////////////////////////////////////////
// Helper functions
///////////////////////////////////////////////////////////////////////////////

// generator produces valid inputs from a deterministic source.
type generator struct {
	rng *rand.Rand
	k   *kzg.KZG
}

func (g *generator) fieldElement() []byte {
	// The first byte stays zero, which guarantees a canonical field element.
	fe := make([]byte, types.BytesPerFieldElement)
	g.rng.Read(fe[1:])
	return fe
}

// blobPart is the chunk the fuzz targets repeat to fill a blob.
func (g *generator) blobPart() []byte {
	return g.fieldElement()
}

func blobOf(part []byte) []byte {
	return bytes.Repeat(part, types.FieldElementsPerBlob)
}

func (g *generator) commitmentAndProof(part []byte) (commitment, proof []byte, err error) {
	blob := blobOf(part)
	if commitment, err = g.k.BlobToKZGCommitment(blob); err != nil {
		return nil, nil, err
	}
	if proof, err = g.k.ComputeBlobKZGProof(blob, commitment); err != nil {
		return nil, nil, err
	}
	return commitment, proof, nil
}

///////////////////////////////////////////////////////////////////////////////
// Generators
///////////////////////////////////////////////////////////////////////////////

// corpusFuncs maps fuzz target names to the function building one entry.
var corpusFuncs = map[string]func(g *generator) ([]byte, error){
	"FuzzBlobToKZGCommitment": func(g *generator) ([]byte, error) {
		return g.blobPart(), nil
	},
	"FuzzComputeKZGProof": func(g *generator) ([]byte, error) {
		return bytes.Join([][]byte{g.blobPart(), g.fieldElement()}, nil), nil
	},
	"FuzzVerifyKZGProof": func(g *generator) ([]byte, error) {
		blob, z := blobOf(g.blobPart()), g.fieldElement()
		commitment, err := g.k.BlobToKZGCommitment(blob)
		if err != nil {
			return nil, err
		}
		proof, y, err := g.k.ComputeKZGProof(blob, z)
		if err != nil {
			return nil, err
		}
		return bytes.Join([][]byte{commitment, z, y, proof}, nil), nil
	},
	"FuzzComputeBlobKZGProof": func(g *generator) ([]byte, error) {
		part := g.blobPart()
		commitment, err := g.k.BlobToKZGCommitment(blobOf(part))
		if err != nil {
			return nil, err
		}
		return bytes.Join([][]byte{part, commitment}, nil), nil
	},
	"FuzzVerifyBlobKZGProof": func(g *generator) ([]byte, error) {
		part := g.blobPart()
		commitment, proof, err := g.commitmentAndProof(part)
		if err != nil {
			return nil, err
		}
		return bytes.Join([][]byte{part, commitment, proof}, nil), nil
	},
	"FuzzVerifyBlobKZGProofBatch": func(g *generator) ([]byte, error) {
		count := 1 + g.rng.Intn(3)
		data := []byte{byte(count)}
		for i := 0; i < count; i++ {
			part := g.blobPart()
			commitment, proof, err := g.commitmentAndProof(part)
			if err != nil {
				return nil, err
			}
			data = append(data, part...)
			data = append(data, commitment...)
			data = append(data, proof...)
		}
		return data, nil
	},
}

// encodeCorpusEntry renders data in the go test fuzz v1 file format.
func encodeCorpusEntry(data []byte) []byte {
	return []byte(fmt.Sprintf("go test fuzz v1\n[]byte(%q)\n", data))
}

// typeProviderSeedSize is the number of leading bytes a go-fuzz-utils
// TypeProvider consumes as its own random seed before serving any value.
const typeProviderSeedSize = 8

// buildInput returns one fuzz input: the TypeProvider seed followed by the
// fields the target reads.
func buildInput(g *generator, build func(*generator) ([]byte, error)) ([]byte, error) {
	input := make([]byte, typeProviderSeedSize)
	g.rng.Read(input)
	fields, err := build(g)
	if err != nil {
		return nil, err
	}
	return append(input, fields...), nil
}

func writeCorpus(dir string, g *generator, build func(*generator) ([]byte, error), count int) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for i := 0; i < count; i++ {
		data, err := buildInput(g, build)
		if err != nil {
			return err
		}
		file := filepath.Join(dir, fmt.Sprintf("init-%d", i))
		if err := os.WriteFile(file, encodeCorpusEntry(data), 0644); err != nil {
			return err
		}
	}
	return nil
}

///////////////////////////////////////////////////////////////////////////////
// Entry point
///////////////////////////////////////////////////////////////////////////////

func generate(ctx *cli.Context) error {
	logger, err := kzg.NewLogger(ctx.String(verbosityFlag.Name))
	if err != nil {
		return err
	}
	kzg.SetLogger(logger)

	k, err := kzg.New(kzg.DefaultConfig())
	if err != nil {
		return err
	}
	defer k.Close()

	var (
		root  = ctx.String(outFlag.Name)
		seed  = ctx.Int64(seedFlag.Name)
		count = ctx.Int(countFlag.Name)
		eg    errgroup.Group
	)
	names := make([]string, 0, len(corpusFuncs))
	for name := range corpusFuncs {
		names = append(names, name)
	}
	sort.Strings(names)

	for i, name := range names {
		name, build := name, corpusFuncs[name]
		// One source per target keeps the output independent of scheduling.
		g := &generator{rng: rand.New(rand.NewSource(seed + int64(i))), k: k}
		eg.Go(func() error {
			if err := writeCorpus(filepath.Join(root, name), g, build, count); err != nil {
				return errors.Wrap(err, name)
			}
			logger.Info("Wrote corpus", zap.String("target", name), zap.Int("entries", count))
			return nil
		})
	}
	return eg.Wait()
}
