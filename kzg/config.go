package kzg

import (
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/ethereum/kzgwrap/engine"
)

// Config selects the engine and the trusted setup a KZG instance uses.
type Config struct {
	// Backend is "gokzg" (pure Go, default) or "ckzg" (cgo, needs the ckzg
	// build tag).
	Backend string `toml:"backend"`
	// TrustedSetup is the path of the setup file. Empty selects the setup
	// built into the engine.
	TrustedSetup string `toml:"trusted_setup"`
	// Format is "builtin", "json" or "text". When empty it is derived from
	// the TrustedSetup file extension.
	Format string `toml:"format"`
	// Parallelism bounds the goroutines gokzg uses per operation, 0 lets the
	// library decide.
	Parallelism int `toml:"parallelism"`
	// LogLevel is used by the command line tools.
	LogLevel string `toml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Backend:  engine.GoKZGName,
		LogLevel: "info",
	}
}

// LoadConfig reads a TOML config file over DefaultConfig. Unknown keys are
// an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "could not read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// source resolves the trusted setup path and format. Relative paths are
// resolved against the current working directory.
func (c Config) source() (string, engine.Format, error) {
	format := c.Format
	if format == "" && c.TrustedSetup != "" {
		switch strings.ToLower(filepath.Ext(c.TrustedSetup)) {
		case ".json":
			format = "json"
		case ".txt":
			format = "text"
		}
	}
	f, err := engine.ParseFormat(format)
	if err != nil {
		return "", 0, err
	}
	if f == engine.FormatBuiltin {
		return "", f, nil
	}
	if c.TrustedSetup == "" {
		return "", 0, errors.Errorf("%v trusted setup needs a path", f)
	}
	path, err := filepath.Abs(c.TrustedSetup)
	if err != nil {
		return "", 0, errors.Wrap(err, "could not resolve trusted setup path")
	}
	return path, f, nil
}
