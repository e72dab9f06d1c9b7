// kzgtool runs EIP-4844 KZG operations from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ethereum/kzgwrap/kzg"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "TOML config file",
	}
	backendFlag = &cli.StringFlag{
		Name:  "backend",
		Usage: "KZG engine (gokzg, ckzg)",
	}
	setupFlag = &cli.StringFlag{
		Name:  "trusted-setup",
		Usage: "Trusted setup file, the built-in setup is used when empty",
	}
	formatFlag = &cli.StringFlag{
		Name:  "format",
		Usage: "Trusted setup format (builtin, json, text)",
	}
	parallelismFlag = &cli.IntFlag{
		Name:  "parallelism",
		Usage: "Goroutines per operation for the gokzg engine",
	}
	verbosityFlag = &cli.StringFlag{
		Name:  "verbosity",
		Usage: "Log level (debug, info, warn, error)",
	}
)

func newApp() *cli.App {
	return &cli.App{
		Name:     "kzgtool",
		Usage:    "EIP-4844 KZG commitments and proofs",
		Metadata: map[string]interface{}{},
		Flags: []cli.Flag{
			configFlag,
			backendFlag,
			setupFlag,
			formatFlag,
			parallelismFlag,
			verbosityFlag,
		},
		Commands: []*cli.Command{
			commitCommand,
			proveCommand,
			verifyCommand,
			proveBlobCommand,
			verifyBlobCommand,
			verifyBatchCommand,
			versionedHashCommand,
		},
		After: func(ctx *cli.Context) error {
			if k, ok := ctx.App.Metadata["kzg"].(*kzg.KZG); ok {
				k.Close()
			}
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if err != errNotValid {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// makeConfig merges the config file with the command line flags.
func makeConfig(ctx *cli.Context) (kzg.Config, error) {
	cfg := kzg.DefaultConfig()
	if file := ctx.String(configFlag.Name); file != "" {
		var err error
		if cfg, err = kzg.LoadConfig(file); err != nil {
			return kzg.Config{}, err
		}
	}
	if ctx.IsSet(backendFlag.Name) {
		cfg.Backend = ctx.String(backendFlag.Name)
	}
	if ctx.IsSet(setupFlag.Name) {
		cfg.TrustedSetup = ctx.String(setupFlag.Name)
	}
	if ctx.IsSet(formatFlag.Name) {
		cfg.Format = ctx.String(formatFlag.Name)
	}
	if ctx.IsSet(parallelismFlag.Name) {
		cfg.Parallelism = ctx.Int(parallelismFlag.Name)
	}
	if ctx.IsSet(verbosityFlag.Name) {
		cfg.LogLevel = ctx.String(verbosityFlag.Name)
	}
	return cfg, nil
}

// openKZG creates the KZG instance for this invocation. It is closed when
// the app exits.
func openKZG(ctx *cli.Context) (*kzg.KZG, error) {
	cfg, err := makeConfig(ctx)
	if err != nil {
		return nil, err
	}
	logger, err := kzg.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", cfg.LogLevel)
	}
	kzg.SetLogger(logger)

	k, err := kzg.New(cfg)
	if err != nil {
		return nil, err
	}
	logger.Debug("Created KZG instance",
		zap.String("backend", k.Backend()),
		zap.String("trusted_setup", cfg.TrustedSetup))
	ctx.App.Metadata["kzg"] = k
	return k, nil
}
