package kzg

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ethereum/kzgwrap/engine"
)

// dispatch runs op against the current trusted setup context. Inputs must
// have been validated already. If the engine reports the context invalid,
// the context is reloaded and op runs exactly once more; whatever the second
// attempt returns is final.
func dispatch[R any](k *KZG, name string, op func(engine.Context) (R, error)) (R, error) {
	e, err := k.contexts.get()
	if err != nil {
		var zero R
		return zero, err
	}
	res, err := op(e.ctx)
	if !errors.Is(err, engine.ErrContextInvalid) {
		return res, wrapEngineError(name, err)
	}
	log().Debug("Trusted setup context rejected, reloading",
		zap.String("op", name),
		zap.Uint64("generation", e.ctx.Generation()))

	if e, err = k.contexts.refresh(e, "context invalidated"); err != nil {
		var zero R
		return zero, err
	}
	res, err = op(e.ctx)
	return res, wrapEngineError(name, err)
}

func wrapEngineError(op string, err error) error {
	if err == nil {
		return nil
	}
	return errors.WithMessage(err, op)
}
