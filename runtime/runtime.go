package runtime

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
)

// Runtime emulates the native closure runtime: Copy and Release with the
// refcount kept in the header flags, dispose helpers run on the last release,
// and NEEDS_FREE storage returned to an off-heap arena.
//
// Runtime is safe for concurrent use.
type Runtime struct {
	arena  *Arena
	cfg    *blocks.Config
	log    *zap.Logger
	closed atomic.Bool

	copies    atomic.Int64
	retains   atomic.Int64
	releases  atomic.Int64
	disposals atomic.Int64
	frees     atomic.Int64
	live      atomic.Int64
}

var _ blocks.Host = (*Runtime)(nil)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger overrides the package logger for one runtime.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) { r.log = l }
}

// WithArena supplies the arena literal storage is allocated from.
func WithArena(a *Arena) Option {
	return func(r *Runtime) { r.arena = a }
}

// New creates a runtime. A nil cfg means blocks.DefaultConfig().
func New(cfg *blocks.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = blocks.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Runtime{cfg: cfg}
	for _, opt := range opts {
		opt(r)
	}
	if r.log == nil {
		r.log = Logger()
	}
	if r.arena == nil {
		r.arena = NewArena(cfg.ArenaChunkSize)
	}
	return r, nil
}

var defaultRuntime = sync.OnceValue(func() *Runtime {
	cfg, err := blocks.ConfigFromEnv()
	if err != nil {
		Logger().Warn("invalid BLOCKS_* environment, using defaults", zap.Error(err))
		cfg = blocks.DefaultConfig()
	}
	r, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return r
})

// Default returns the process-wide runtime, configured from the environment
// on first use. It is never closed.
func Default() *Runtime {
	return defaultRuntime()
}

// Config returns the runtime configuration.
func (r *Runtime) Config() *blocks.Config {
	return r.cfg
}

// Malloc allocates literal storage.
func (r *Runtime) Malloc(size uintptr) (unsafe.Pointer, error) {
	p, err := r.arena.Malloc(size)
	if err != nil {
		return nil, err
	}
	r.live.Add(1)
	return p, nil
}

// Free returns literal storage to the arena. Freeing memory the arena does
// not own panics.
func (r *Runtime) Free(p unsafe.Pointer) {
	if err := r.arena.Free(p); err != nil {
		r.log.Error("free failed", zap.Uintptr("block", uintptr(p)), zap.Error(err))
		panic(err)
	}
	r.frees.Add(1)
	r.live.Add(-1)
}

// Copy is the retain primitive.
//
// A malloc literal gains one reference and is returned unchanged. A global
// literal is returned unchanged. Copying a stack literal panics: stack
// literals borrow goroutine-stack memory and must not outlive the call they
// were passed to.
func (r *Runtime) Copy(blk unsafe.Pointer) unsafe.Pointer {
	if blk == nil {
		return nil
	}
	h := abi.HeaderAt(blk)
	flags := h.LoadFlags()

	switch {
	case flags.Has(abi.FlagNeedsFree):
		next := h.Retain()
		r.retains.Add(1)
		if r.cfg.Debug {
			r.log.Debug("retain",
				zap.Uintptr("block", uintptr(blk)),
				zap.Int("refcount", abi.Refcount(next)),
				zap.Bool("latched", abi.Latched(next)))
		}
		return blk
	case flags.Has(abi.FlagIsGlobal):
		return blk
	}

	if h.Class() == abi.ClassStack {
		panic(errors.New(errors.PhaseRetain, errors.KindContract).
			Block(uintptr(blk)).
			Class(abi.ClassStack.String()).
			Detail("stack literal copied; it must not escape the call it was passed to").
			Build())
	}

	return r.copyForeign(blk, h, flags)
}

// copyForeign moves a literal without NEEDS_FREE that is neither global nor
// one of our stack literals into arena storage with one reference.
func (r *Runtime) copyForeign(blk unsafe.Pointer, h *abi.Header, flags abi.Flags) unsafe.Pointer {
	size := h.Desc().Size
	dst, err := r.Malloc(size)
	if err != nil {
		r.log.Error("copy allocation failed", zap.Uintptr("block", uintptr(blk)), zap.Error(err))
		return nil
	}
	copy(unsafe.Slice((*byte)(dst), size), unsafe.Slice((*byte)(blk), size))

	nh := abi.HeaderAt(dst)
	nh.Isa = abi.ClassMalloc.Isa()
	next := flags &^ (abi.FlagRefcountMask | abi.FlagDeallocating)
	nh.StoreFlags(abi.WithRefcount(next|abi.FlagNeedsFree, 1))
	if cd := nh.CopyDispose(); cd != nil {
		cd.CallCopy(dst, blk)
	}

	r.copies.Add(1)
	if r.cfg.Debug {
		r.log.Debug("copy", zap.Uintptr("from", uintptr(blk)), zap.Uintptr("block", uintptr(dst)), zap.Uintptr("size", size))
	}
	return dst
}

// Release drops one reference. The last release of a malloc literal runs its
// dispose helper and frees its storage. Global and stack literals are not
// affected. Releasing a literal with no references panics.
func (r *Runtime) Release(blk unsafe.Pointer) {
	if blk == nil {
		return
	}
	h := abi.HeaderAt(blk)
	if !h.LoadFlags().Has(abi.FlagNeedsFree) {
		return
	}

	out := h.Release()
	r.releases.Add(1)
	if r.cfg.Debug {
		r.log.Debug("release",
			zap.Uintptr("block", uintptr(blk)),
			zap.Stringer("outcome", out),
			zap.Int("refcount", abi.Refcount(h.LoadFlags())))
	}

	switch out {
	case abi.LastReference:
		if cd := h.CopyDispose(); cd != nil {
			cd.CallDispose(blk)
			r.disposals.Add(1)
		}
		r.Free(blk)
	case abi.Underflow:
		panic(errors.Contract(errors.PhaseRelease, uintptr(blk), "release of a literal with no references"))
	}
}

// Stats is a snapshot of runtime counters.
type Stats struct {
	Copies    int64
	Retains   int64
	Releases  int64
	Disposals int64
	Frees     int64
	Live      int64
	Arena     ArenaStats
}

// Stats returns current counters.
func (r *Runtime) Stats() Stats {
	return Stats{
		Copies:    r.copies.Load(),
		Retains:   r.retains.Load(),
		Releases:  r.releases.Load(),
		Disposals: r.disposals.Load(),
		Frees:     r.frees.Load(),
		Live:      r.live.Load(),
		Arena:     r.arena.Stats(),
	}
}

// Close unmaps the arena. Live literals become invalid.
func (r *Runtime) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	if n := r.live.Load(); n > 0 {
		r.log.Warn("closing runtime with live literals", zap.Int64("live", n))
	}
	return r.arena.Close()
}
