package wasmblock

import (
	"context"
	"fmt"
	"reflect"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/resource"
	"github.com/wippyai/blocks/wasmblock/internal/memory"
	"github.com/wippyai/blocks/wasmblock/internal/synth"
)

// HostModule is the import namespace of the block helpers.
const HostModule = "blocks"

// MaxArity is the highest arity with an invoke entry point.
const MaxArity = 6

// Literal and descriptor layouts at the wasm32 ABI.
var (
	literalLayout    = abi.Calc(abi.Wasm32, abi.OwnedPayload...)
	heapDescLayout   = abi.DescriptorLayout(abi.Wasm32, true, true)
	staticDescLayout = abi.DescriptorLayout(abi.Wasm32, false, true)

	offIsa        = literalLayout.MustOffset("isa")
	offFlags      = literalLayout.MustOffset("flags")
	offInvoke     = literalLayout.MustOffset("invoke")
	offDescriptor = literalLayout.MustOffset("descriptor")
	offPayload    = literalLayout.MustOffset("payload")

	offDescSize    = heapDescLayout.MustOffset("size")
	offDescCopy    = heapDescLayout.MustOffset("copy")
	offDescDispose = heapDescLayout.MustOffset("dispose")
)

// Class objects live below the heap. Only their addresses matter.
const (
	isaStack  uint32 = 16
	isaMalloc uint32 = 24
	isaGlobal uint32 = 32
	heapBase  uint32 = 64
)

const maxSignature = 256

func classOf(isa uint32) abi.Class {
	switch isa {
	case isaStack:
		return abi.ClassStack
	case isaMalloc:
		return abi.ClassMalloc
	case isaGlobal:
		return abi.ClassGlobal
	default:
		return abi.ClassUnknown
	}
}

// RawFunc is a static invoke entry point over core values. self is the
// literal address; args holds one slot per argument and must not be
// retained.
type RawFunc func(ctx context.Context, self uint32, args []uint64) uint64

type capture struct {
	fn     RawFunc
	drop   func()
	arity  int
	static bool
}

func (c *capture) Drop() {
	if c.drop != nil {
		c.drop()
	}
}

type descriptorKey struct {
	sig    string
	static bool
}

// Stats counts runtime operations.
type Stats struct {
	Invocations uint64
	Copies      uint64
	Releases    uint64
	Disposals   uint64
	Frees       uint64
	Payloads    int
	Heap        HeapStats
}

// Runtime is a wasm32 foreign runtime hosted in wazero. Block literals are
// laid out in guest memory and invoked through a guest module that loads the
// invoke slot and calls through the function table.
//
// A Runtime is not safe for concurrent use.
type Runtime struct {
	cfg         *blocks.Config
	wz          wazero.Runtime
	guest       api.Module
	mem         *memory.Wrapper
	heap        *heap
	slots       *synth.Builder
	invokes     [MaxArity + 1]api.Function
	copyFn      api.Function
	disposeFn   api.Function
	table       *resource.UnifiedTable
	payloads    *resource.Typed[*capture]
	descriptors map[descriptorKey]uint32
	fault       error
	stats       Stats
}

// New creates a runtime with its host and guest modules instantiated. A nil
// cfg uses blocks.DefaultConfig.
func New(ctx context.Context, cfg *blocks.Config) (*Runtime, error) {
	if cfg == nil {
		cfg = blocks.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	runtimeCfg := wazero.NewRuntimeConfig().WithMemoryLimitPages(cfg.GuestMemoryLimitPages)
	r := &Runtime{
		cfg:         cfg,
		wz:          wazero.NewRuntimeWithConfig(ctx, runtimeCfg),
		table:       resource.NewTable(),
		descriptors: make(map[descriptorKey]uint32),
	}
	r.payloads = resource.NewTyped[*capture](r.table, resource.TypeGuestClosure)

	r.slots = synth.NewBuilder(HostModule, synth.Offsets{
		Invoke:     offInvoke,
		Descriptor: offDescriptor,
		Copy:       offDescCopy,
		Dispose:    offDescDispose,
	})
	r.slots.SetMaxArity(MaxArity)
	r.slots.SetMemory(cfg.GuestMemoryPages, cfg.GuestMemoryLimitPages)

	if err := r.instantiate(ctx); err != nil {
		r.wz.Close(ctx)
		return nil, err
	}

	if cfg.Debug {
		Logger().Debug("wasm32 block runtime ready",
			zap.Uint32("pages", r.mem.Size()/memory.PageSize),
			zap.Uint32("literal_size", literalLayout.Size),
			zap.Uint32("table_size", r.slots.TableSize()))
	}
	return r, nil
}

func (r *Runtime) instantiate(ctx context.Context) error {
	host := r.wz.NewHostModuleBuilder(HostModule)
	for k := 0; k <= MaxArity; k++ {
		host.NewFunctionBuilder().
			WithGoModuleFunction(r.thunk(k), synth.InvokeParams(k), synth.InvokeResults).
			Export(synth.ThunkName(k))
	}
	host.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(r.copyHelper), synth.CopyParams, nil).
		Export(synth.CopyHelper)
	host.NewFunctionBuilder().
		WithGoModuleFunction(api.GoModuleFunc(r.disposeHelper), synth.DisposeParams, nil).
		Export(synth.DisposeHelper)
	if _, err := host.Instantiate(ctx); err != nil {
		return errors.Instantiation("host module "+HostModule, err)
	}

	wasm, err := r.slots.Build()
	if err != nil {
		return errors.Instantiation("guest module", err)
	}
	compiled, err := r.wz.CompileModule(ctx, wasm)
	if err != nil {
		return errors.Instantiation("guest module", err)
	}
	guest, err := r.wz.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName("guest"))
	if err != nil {
		return errors.Instantiation("guest module", err)
	}
	r.guest = guest
	r.mem = memory.Wrap(guest.Memory())

	for k := 0; k <= MaxArity; k++ {
		r.invokes[k] = guest.ExportedFunction(synth.InvokeName(k))
		if r.invokes[k] == nil {
			return errors.NotFound(errors.PhaseGuest, "export", synth.InvokeName(k))
		}
	}
	if r.copyFn = guest.ExportedFunction(synth.CopyExport); r.copyFn == nil {
		return errors.NotFound(errors.PhaseGuest, "export", synth.CopyExport)
	}
	if r.disposeFn = guest.ExportedFunction(synth.DisposeExport); r.disposeFn == nil {
		return errors.NotFound(errors.PhaseGuest, "export", synth.DisposeExport)
	}

	r.heap = newHeap(r.mem, heapBase)
	return nil
}

// Config returns the runtime configuration.
func (r *Runtime) Config() *blocks.Config { return r.cfg }

// raise records err for the guest call in flight and traps.
func (r *Runtime) raise(err error) {
	if r.fault == nil {
		r.fault = err
	}
	panic(err)
}

func (r *Runtime) takeFault(err error, phase errors.Phase, addr uint32) error {
	if r.fault != nil {
		fault := r.fault
		r.fault = nil
		return fault
	}
	return errors.New(phase, errors.KindPanic).
		Block(uintptr(addr)).
		Cause(err).
		Detail("guest trapped").
		Build()
}

func (r *Runtime) thunk(k int) api.GoModuleFunc {
	return func(ctx context.Context, _ api.Module, stack []uint64) {
		self := api.DecodeU32(stack[0])
		c := r.capture(self, errors.PhaseInvoke)
		if c.arity != k {
			r.raise(errors.Contract(errors.PhaseInvoke, uintptr(self),
				fmt.Sprintf("literal of arity %d invoked with %d arguments", c.arity, k)))
		}
		r.stats.Invocations++

		defer func() {
			if rec := recover(); rec != nil {
				if r.fault == nil {
					r.fault = errors.Panicked(errors.PhaseInvoke, uintptr(self), rec)
				}
				if r.cfg.PanicPolicy == blocks.PanicAbort {
					Logger().Fatal("guest block closure panicked",
						zap.Uint32("block", self), zap.Any("panic", rec))
				}
				panic(rec)
			}
		}()
		stack[0] = c.fn(ctx, self, stack[1:1+k])
	}
}

func (r *Runtime) capture(self uint32, phase errors.Phase) *capture {
	h, err := r.mem.ReadU32(self + offPayload)
	if err != nil {
		r.raise(err)
	}
	c, ok := r.payloads.Get(resource.Handle(h))
	if !ok {
		r.raise(errors.Disposed(phase, uintptr(self)))
	}
	return c
}

// Payloads are handles, and duplicating one would break single disposal.
func (r *Runtime) copyHelper(_ context.Context, _ api.Module, stack []uint64) {
	src := api.DecodeU32(stack[1])
	r.raise(errors.Contract(errors.PhaseRetain, uintptr(src), "copy helper called on a heap literal"))
}

func (r *Runtime) disposeHelper(_ context.Context, _ api.Module, stack []uint64) {
	self := api.DecodeU32(stack[0])
	h, err := r.mem.ReadU32(self + offPayload)
	if err != nil {
		r.raise(err)
	}
	if h == 0 {
		r.raise(errors.Contract(errors.PhaseDispose, uintptr(self), "literal disposed twice"))
	}
	if err := r.mem.WriteU32(self+offPayload, 0); err != nil {
		r.raise(err)
	}
	if _, ok := r.payloads.Remove(resource.Handle(h)); !ok {
		r.raise(errors.Disposed(errors.PhaseDispose, uintptr(self)))
	}
	r.stats.Disposals++
}

func (r *Runtime) descriptor(sig string, static bool) (uint32, error) {
	key := descriptorKey{sig: sig, static: static}
	if p, ok := r.descriptors[key]; ok {
		return p, nil
	}

	layout := heapDescLayout
	if static {
		layout = staticDescLayout
	}
	desc, err := r.heap.alloc(layout.Size)
	if err != nil {
		return 0, err
	}
	str, err := r.heap.alloc(uint32(len(sig)) + 1)
	if err != nil {
		_ = r.heap.release(desc)
		return 0, err
	}
	if err := r.writeDescriptor(desc, str, sig, layout, static); err != nil {
		_ = r.heap.release(str)
		_ = r.heap.release(desc)
		return 0, err
	}

	r.descriptors[key] = desc
	return desc, nil
}

func (r *Runtime) writeDescriptor(desc, str uint32, sig string, layout abi.Layout, static bool) error {
	if err := r.mem.WriteCString(str, sig); err != nil {
		return err
	}
	writes := []struct{ off, v uint32 }{
		{offDescSize, literalLayout.Size},
		{layout.MustOffset("signature"), str},
	}
	if !static {
		writes = append(writes,
			struct{ off, v uint32 }{offDescCopy, r.slots.CopySlot()},
			struct{ off, v uint32 }{offDescDispose, r.slots.DisposeSlot()},
		)
	}
	for _, w := range writes {
		if err := r.mem.WriteU32(desc+w.off, w.v); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) newLiteral(arity int, sig string, c *capture) (uint32, error) {
	if arity < 0 || arity > MaxArity {
		return 0, errors.Unsupported(errors.PhaseConstruct, fmt.Sprintf("arity %d", arity))
	}
	c.arity = arity

	desc, err := r.descriptor(sig, c.static)
	if err != nil {
		return 0, err
	}
	p, err := r.heap.alloc(literalLayout.Size)
	if err != nil {
		return 0, err
	}

	isa, flags := isaMalloc, abi.WithRefcount(abi.FlagNeedsFree|abi.FlagHasCopyDispose|abi.FlagHasSignature, 1)
	if c.static {
		isa, flags = isaGlobal, abi.FlagIsGlobal|abi.FlagHasSignature
	}
	h := r.payloads.Insert(c)

	writes := []struct{ off, v uint32 }{
		{offIsa, isa},
		{offFlags, uint32(flags)},
		{offInvoke, r.slots.ThunkSlot(arity)},
		{offDescriptor, desc},
		{offPayload, uint32(h)},
	}
	for _, w := range writes {
		if err := r.mem.WriteU32(p+w.off, w.v); err != nil {
			c.drop = nil
			r.payloads.Remove(h)
			_ = r.heap.release(p)
			return 0, err
		}
	}

	if r.cfg.Debug {
		Logger().Debug("guest literal created",
			zap.Uint32("block", p),
			zap.Int("arity", arity),
			zap.String("signature", sig),
			zap.Bool("static", c.static))
	}
	return p, nil
}

// Static creates a global literal whose invoke entry point is fn. Copy and
// Release leave it untouched; it lives until the runtime is closed.
func (r *Runtime) Static(arity int, fn RawFunc) (uint32, error) {
	if fn == nil {
		return 0, errors.InvalidInput(errors.PhaseConstruct, "nil static invoke")
	}
	if arity < 0 || arity > MaxArity {
		return 0, errors.Unsupported(errors.PhaseConstruct, fmt.Sprintf("arity %d", arity))
	}
	sig, err := abi.Signature(abi.Wasm32, rawType(arity))
	if err != nil {
		return 0, err
	}
	return r.newLiteral(arity, sig, &capture{fn: fn, static: true})
}

func rawType(arity int) reflect.Type {
	u64 := reflect.TypeFor[uint64]()
	in := make([]reflect.Type, arity)
	for i := range in {
		in[i] = u64
	}
	return reflect.FuncOf(in, []reflect.Type{u64}, false)
}

func (r *Runtime) readHeader(p uint32) (isa uint32, flags abi.Flags, err error) {
	if isa, err = r.mem.ReadU32(p + offIsa); err != nil {
		return 0, 0, err
	}
	f, err := r.mem.ReadU32(p + offFlags)
	if err != nil {
		return 0, 0, err
	}
	return isa, abi.Flags(int32(f)), nil
}

// Copy retains the literal at p and returns the retained pointer. Heap
// literals gain a reference; global literals are returned unchanged.
func (r *Runtime) Copy(p uint32) (uint32, error) {
	isa, flags, err := r.readHeader(p)
	if err != nil {
		return 0, err
	}
	switch classOf(isa) {
	case abi.ClassGlobal:
		return p, nil
	case abi.ClassMalloc:
		if flags.Has(abi.FlagDeallocating) {
			return 0, errors.Disposed(errors.PhaseRetain, uintptr(p))
		}
		next := abi.Retain(flags)
		if err := r.mem.WriteU32(p+offFlags, uint32(next)); err != nil {
			return 0, err
		}
		r.stats.Copies++
		if r.cfg.Debug {
			Logger().Debug("guest literal retained", zap.Uint32("block", p), zap.Int("refcount", abi.Refcount(next)))
		}
		return p, nil
	case abi.ClassStack:
		return 0, errors.Contract(errors.PhaseRetain, uintptr(p), "stack literals cannot be copied")
	default:
		return 0, errors.New(errors.PhaseRetain, errors.KindInvalidInput).
			Block(uintptr(p)).
			Detail("not a block literal (isa %#x)", isa).
			Build()
	}
}

// Release drops one reference to the literal at p. Releasing the last
// reference calls the dispose helper through the guest and frees the storage.
func (r *Runtime) Release(ctx context.Context, p uint32) error {
	isa, flags, err := r.readHeader(p)
	if err != nil {
		return err
	}
	switch classOf(isa) {
	case abi.ClassGlobal, abi.ClassStack:
		return nil
	case abi.ClassMalloc:
	default:
		return errors.New(errors.PhaseRelease, errors.KindInvalidInput).
			Block(uintptr(p)).
			Detail("not a block literal (isa %#x)", isa).
			Build()
	}

	next, outcome := abi.Release(flags)
	switch outcome {
	case abi.Underflow:
		return errors.Contract(errors.PhaseRelease, uintptr(p), "release without a matching retain")
	case abi.Saturated:
		return nil
	}
	if err := r.mem.WriteU32(p+offFlags, uint32(next)); err != nil {
		return err
	}
	r.stats.Releases++
	if outcome != abi.LastReference {
		return nil
	}

	if next.Has(abi.FlagHasCopyDispose) {
		if _, err := r.disposeFn.Call(ctx, api.EncodeU32(p)); err != nil {
			return r.takeFault(err, errors.PhaseDispose, p)
		}
	}
	if next.Has(abi.FlagNeedsFree) {
		if err := r.heap.release(p); err != nil {
			return err
		}
		r.stats.Frees++
	}
	if r.cfg.Debug {
		Logger().Debug("guest literal disposed", zap.Uint32("block", p))
	}
	return nil
}

// Invoke calls the literal at p through the guest with one core value per
// argument.
func (r *Runtime) Invoke(ctx context.Context, p uint32, args ...uint64) (uint64, error) {
	if len(args) > MaxArity {
		return 0, errors.Unsupported(errors.PhaseInvoke, fmt.Sprintf("arity %d", len(args)))
	}
	params := make([]uint64, 1+len(args))
	params[0] = api.EncodeU32(p)
	copy(params[1:], args)

	res, err := r.invokes[len(args)].Call(ctx, params...)
	if err != nil {
		return 0, r.takeFault(err, errors.PhaseInvoke, p)
	}
	return res[0], nil
}

// Refcount returns the logical reference count of the literal at p.
func (r *Runtime) Refcount(p uint32) (int, error) {
	_, flags, err := r.readHeader(p)
	if err != nil {
		return 0, err
	}
	return abi.Refcount(flags), nil
}

// Info is a decoded literal header.
type Info struct {
	Signature  string
	Addr       uint32
	Invoke     uint32
	Descriptor uint32
	Size       uint32
	Payload    uint32
	Flags      abi.Flags
	Refcount   int
	Class      abi.Class
}

func (i Info) String() string {
	return fmt.Sprintf("%#x %s size=%d refcount=%d invoke=slot%d sig=%q",
		i.Addr, i.Class, i.Size, i.Refcount, i.Invoke, i.Signature)
}

// Inspect decodes the literal at p and its descriptor.
func (r *Runtime) Inspect(p uint32) (Info, error) {
	isa, flags, err := r.readHeader(p)
	if err != nil {
		return Info{}, err
	}
	info := Info{
		Addr:     p,
		Flags:    flags,
		Refcount: abi.Refcount(flags),
		Class:    classOf(isa),
	}
	if info.Class == abi.ClassUnknown {
		return Info{}, errors.InvalidInput(errors.PhaseGuest, fmt.Sprintf("not a block literal at %#x", p))
	}
	if info.Invoke, err = r.mem.ReadU32(p + offInvoke); err != nil {
		return Info{}, err
	}
	if info.Descriptor, err = r.mem.ReadU32(p + offDescriptor); err != nil {
		return Info{}, err
	}
	if info.Payload, err = r.mem.ReadU32(p + offPayload); err != nil {
		return Info{}, err
	}
	if info.Size, err = r.mem.ReadU32(info.Descriptor + offDescSize); err != nil {
		return Info{}, err
	}
	if flags.Has(abi.FlagHasSignature) {
		layout := staticDescLayout
		if flags.Has(abi.FlagHasCopyDispose) {
			layout = heapDescLayout
		}
		str, err := r.mem.ReadU32(info.Descriptor + layout.MustOffset("signature"))
		if err != nil {
			return Info{}, err
		}
		if info.Signature, err = r.mem.ReadCString(str, maxSignature); err != nil {
			return Info{}, err
		}
	}
	return info, nil
}

// Stats returns operation counters and heap usage.
func (r *Runtime) Stats() Stats {
	s := r.stats
	s.Payloads = r.table.Len()
	s.Heap = r.heap.stats()
	return s
}

// Close drops every remaining payload and closes the wazero runtime.
func (r *Runtime) Close(ctx context.Context) error {
	if err := r.table.Close(); err != nil {
		return err
	}
	return r.wz.Close(ctx)
}
