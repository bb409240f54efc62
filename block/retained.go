package block

import (
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/errors"
)

// Retained owns one reference to a block. Release gives the reference back;
// it is never released implicitly.
type Retained[F any, M Marker] struct {
	blk      *Block[F, M]
	rt       blocks.Runtime
	released atomic.Bool
}

// Adopt takes ownership of a reference the foreign side handed over, for
// example a block returned from a copy call.
func Adopt[F any, M Marker](rt blocks.Runtime, b *Block[F, M]) *Retained[F, M] {
	return &Retained[F, M]{blk: b, rt: rt}
}

// RetainBlock copies a borrowed block through rt and owns the result.
func RetainBlock[F any, M Escapes](rt blocks.Runtime, b *Block[F, M]) (*Retained[F, M], error) {
	p := rt.Copy(b.Ptr())
	if p == nil {
		return nil, errors.New(errors.PhaseRetain, errors.KindAllocation).
			Block(uintptr(b.Ptr())).
			Class(b.Class().String()).
			Detail("runtime copy returned nil").
			Build()
	}
	return &Retained[F, M]{blk: (*Block[F, M])(p), rt: rt}, nil
}

// Block returns the owned block. It stays valid until Release.
func (r *Retained[F, M]) Block() *Block[F, M] {
	return r.blk
}

// Ptr returns the literal address.
func (r *Retained[F, M]) Ptr() unsafe.Pointer {
	return r.blk.Ptr()
}

// Retain takes another reference through the runtime.
func (r *Retained[F, M]) Retain() *Retained[F, M] {
	if r.released.Load() {
		panic(errors.Disposed(errors.PhaseRetain, uintptr(r.blk.Ptr())))
	}
	p := r.rt.Copy(r.blk.Ptr())
	if p == nil {
		panic(errors.New(errors.PhaseRetain, errors.KindAllocation).
			Block(uintptr(r.blk.Ptr())).
			Detail("runtime copy returned nil").
			Build())
	}
	return &Retained[F, M]{blk: (*Block[F, M])(p), rt: r.rt}
}

// Release gives the reference back. Only the first call on a handle has an
// effect.
func (r *Retained[F, M]) Release() {
	if !r.released.CompareAndSwap(false, true) {
		Logger().Warn("block released twice through one handle", zap.Uintptr("block", uintptr(r.blk.Ptr())))
		return
	}
	r.rt.Release(r.blk.Ptr())
}

// Leak hands the reference to the foreign side and returns the block. The
// handle can no longer release it.
func (r *Retained[F, M]) Leak() *Block[F, M] {
	r.released.Store(true)
	return r.blk
}

// Released reports whether the handle gave up its reference.
func (r *Retained[F, M]) Released() bool {
	return r.released.Load()
}
