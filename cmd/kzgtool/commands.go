package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/ethereum/kzgwrap/kzg"
	"github.com/ethereum/kzgwrap/types"
)

var (
	commitCommand = &cli.Command{
		Name:      "commit",
		Usage:     "Computes the commitment to a blob",
		ArgsUsage: "<blobfile>",
		Action:    commit,
	}
	proveCommand = &cli.Command{
		Name:      "prove",
		Usage:     "Computes the proof of a blob evaluation at z",
		ArgsUsage: "<blobfile> <z>",
		Action:    prove,
	}
	verifyCommand = &cli.Command{
		Name:      "verify",
		Usage:     "Verifies a proof of evaluation",
		ArgsUsage: "<commitment> <z> <y> <proof>",
		Action:    verify,
	}
	proveBlobCommand = &cli.Command{
		Name:      "prove-blob",
		Usage:     "Computes the proof binding a blob to its commitment",
		ArgsUsage: "<blobfile> <commitment>",
		Action:    proveBlob,
	}
	verifyBlobCommand = &cli.Command{
		Name:      "verify-blob",
		Usage:     "Verifies a blob against its commitment and proof",
		ArgsUsage: "<blobfile> <commitment> <proof>",
		Action:    verifyBlob,
	}
	verifyBatchCommand = &cli.Command{
		Name:      "verify-batch",
		Usage:     "Verifies a JSON list of blob, commitment and proof triples",
		ArgsUsage: "<batchfile>",
		Action:    verifyBatch,
	}
	versionedHashCommand = &cli.Command{
		Name:      "versioned-hash",
		Usage:     "Computes the versioned hash of a commitment",
		ArgsUsage: "<commitment>",
		Action:    versionedHash,
	}
)

// batchItem is one entry of a verify-batch file. The fields are kept as
// plain bytes so that size errors come from the kzg package.
type batchItem struct {
	Blob       hexutil.Bytes `json:"blob"`
	Commitment hexutil.Bytes `json:"commitment"`
	Proof      hexutil.Bytes `json:"proof"`
}

func needArgs(ctx *cli.Context, n int) error {
	if ctx.NArg() != n {
		return errors.Errorf("need %d arguments: %s", n, ctx.Command.ArgsUsage)
	}
	return nil
}

// parseHex decodes a hex argument, with or without the 0x prefix.
func parseHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// hexBlob matches a hex encoded file, with or without the 0x prefix.
var hexBlob = regexp.MustCompile(`^(0[xX])?[0-9a-fA-F]*$`)

// readBlob reads a blob file holding either the raw blob bytes or their hex
// encoding. Anything that reads as hex is decoded as hex.
func readBlob(file string) ([]byte, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	if text := bytes.TrimSpace(data); len(text) > 0 && hexBlob.Match(text) {
		blob, err := parseHex(string(text))
		if err != nil {
			return nil, errors.Wrapf(err, "%s: invalid hex blob", file)
		}
		return blob, nil
	}
	if len(data) != types.BlobSize {
		return nil, errors.Errorf("%s: neither a raw nor a hex encoded blob", file)
	}
	return data, nil
}

// errNotValid makes the process exit with status 1 after a failed check.
var errNotValid = errors.New("verification failed")

func printResult(ctx *cli.Context, valid bool) error {
	fmt.Fprintln(ctx.App.Writer, valid)
	if !valid {
		return errNotValid
	}
	return nil
}

func commit(ctx *cli.Context) error {
	if err := needArgs(ctx, 1); err != nil {
		return err
	}
	blob, err := readBlob(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	k, err := openKZG(ctx)
	if err != nil {
		return err
	}
	commitment, err := k.BlobToKZGCommitment(blob)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(commitment))
	return nil
}

func prove(ctx *cli.Context) error {
	if err := needArgs(ctx, 2); err != nil {
		return err
	}
	blob, err := readBlob(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	z, err := parseHex(ctx.Args().Get(1))
	if err != nil {
		return errors.Wrap(err, "invalid z")
	}
	k, err := openKZG(ctx)
	if err != nil {
		return err
	}
	proof, y, err := k.ComputeKZGProof(blob, z)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, "proof", hexutil.Encode(proof))
	fmt.Fprintln(ctx.App.Writer, "y", hexutil.Encode(y))
	return nil
}

func verify(ctx *cli.Context) error {
	if err := needArgs(ctx, 4); err != nil {
		return err
	}
	var args [4][]byte
	for i, name := range []string{"commitment", "z", "y", "proof"} {
		b, err := parseHex(ctx.Args().Get(i))
		if err != nil {
			return errors.Wrapf(err, "invalid %s", name)
		}
		args[i] = b
	}
	k, err := openKZG(ctx)
	if err != nil {
		return err
	}
	valid, err := k.VerifyKZGProof(args[0], args[1], args[2], args[3])
	if err != nil {
		return err
	}
	return printResult(ctx, valid)
}

func proveBlob(ctx *cli.Context) error {
	if err := needArgs(ctx, 2); err != nil {
		return err
	}
	blob, err := readBlob(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	commitment, err := parseHex(ctx.Args().Get(1))
	if err != nil {
		return errors.Wrap(err, "invalid commitment")
	}
	k, err := openKZG(ctx)
	if err != nil {
		return err
	}
	proof, err := k.ComputeBlobKZGProof(blob, commitment)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(proof))
	return nil
}

func verifyBlob(ctx *cli.Context) error {
	if err := needArgs(ctx, 3); err != nil {
		return err
	}
	blob, err := readBlob(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	commitment, err := parseHex(ctx.Args().Get(1))
	if err != nil {
		return errors.Wrap(err, "invalid commitment")
	}
	proof, err := parseHex(ctx.Args().Get(2))
	if err != nil {
		return errors.Wrap(err, "invalid proof")
	}
	k, err := openKZG(ctx)
	if err != nil {
		return err
	}
	valid, err := k.VerifyBlobKZGProof(blob, commitment, proof)
	if err != nil {
		return err
	}
	return printResult(ctx, valid)
}

func verifyBatch(ctx *cli.Context) error {
	if err := needArgs(ctx, 1); err != nil {
		return err
	}
	data, err := os.ReadFile(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	var items []batchItem
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&items); err != nil {
		return errors.Wrap(err, "invalid batch file")
	}
	var blobs, commitments, proofs [][]byte
	for _, item := range items {
		blobs = append(blobs, item.Blob)
		commitments = append(commitments, item.Commitment)
		proofs = append(proofs, item.Proof)
	}
	k, err := openKZG(ctx)
	if err != nil {
		return err
	}
	valid, err := k.VerifyBlobKZGProofBatch(blobs, commitments, proofs)
	if err != nil {
		return err
	}
	return printResult(ctx, valid)
}

func versionedHash(ctx *cli.Context) error {
	if err := needArgs(ctx, 1); err != nil {
		return err
	}
	commitment, err := parseHex(ctx.Args().Get(0))
	if err != nil {
		return errors.Wrap(err, "invalid commitment")
	}
	h, err := kzg.VersionedHash(commitment)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.App.Writer, hexutil.Encode(h[:]))
	return nil
}
