package block

import (
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/errors"
)

var panicPolicy atomic.Int32

// SetPanicPolicy selects what invoke thunks do when a wrapped closure panics.
// The default, PanicPropagate, lets the panic unwind through the caller.
func SetPanicPolicy(p blocks.PanicPolicy) {
	panicPolicy.Store(int32(p))
}

// Configure applies package-level settings from cfg.
func Configure(cfg *blocks.Config) {
	SetPanicPolicy(cfg.PanicPolicy)
}

func abortEnabled() bool {
	return panicPolicy.Load() == int32(blocks.PanicAbort)
}

// abortOnPanic is deferred by thunks under PanicAbort.
func abortOnPanic(blk unsafe.Pointer) {
	if r := recover(); r != nil {
		err := errors.Panicked(errors.PhaseInvoke, uintptr(blk), r)
		Logger().Fatal("block closure panicked", zap.Error(err), zap.Stack("stack"))
		// a fatal hook that returns must not turn the panic into a zero result
		panic(r)
	}
}
