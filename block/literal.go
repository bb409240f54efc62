package block

import (
	"reflect"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/resource"
)

// StackLiteral is a borrowed-capture literal: the header followed by a
// pointer to the caller's closure variable. It is a value type meant to live
// in the caller's frame:
//
//	f := func(x int32) int32 { return x + 1 }
//	lit := block.StackValue1(&f)
//	api.Each(lit.Block())
//
// The literal must not outlive the call it is passed to, and f must not be
// reassigned while the literal is in use.
type StackLiteral[F any] struct {
	blk     Block[F, NoEsc]
	closure *F
}

// Block returns the literal as a non-escaping block.
func (s *StackLiteral[F]) Block() *Block[F, NoEsc] {
	return &s.blk
}

// heapLiteral is the owned-capture literal. It lives in runtime-allocated
// memory, so the payload is a handle into the payload table rather than a Go
// pointer.
type heapLiteral struct {
	hdr     abi.Header
	payload resource.Handle
}

// staticLiteral is the capture-free literal.
type staticLiteral struct {
	hdr abi.Header
}

const (
	stackLiteralSize  = unsafe.Sizeof(StackLiteral[func()]{})
	heapLiteralSize   = unsafe.Sizeof(heapLiteral{})
	staticLiteralSize = unsafe.Sizeof(staticLiteral{})
)

// stackDescriptor is shared by every stack literal; the closure pointer has
// the same size for every F.
var stackDescriptor = abi.Descriptor{Size: stackLiteralSize}

// payloads owns the Go side of every heap literal.
var payloads = resource.NewTable()

// LivePayloads returns the number of heap literals not yet disposed.
func LivePayloads() int {
	return payloads.Len()
}

// capture is the payload of a heap literal.
type capture[F any] struct {
	fn   F
	drop func()
}

// Drop runs the dispose hook. The payload table calls it exactly once.
func (c *capture[F]) Drop() {
	if c.drop != nil {
		c.drop()
	}
}

// descriptor is a cached process-lifetime descriptor.
type descriptor struct {
	ptr   unsafe.Pointer
	flags abi.Flags
	sig   string
}

var (
	heapDescriptors   sync.Map // reflect.Type -> *descriptor
	staticDescriptors sync.Map // reflect.Type -> *descriptor
)

var (
	heapCopyHelper    = abi.FuncPtr[abi.CopyFunc](heapCopy)
	heapDisposeHelper = abi.FuncPtr[abi.DisposeFunc](heapDispose)
)

func signatureOf(fn reflect.Type) (abi.SignatureTail, abi.Flags, string) {
	sig, err := abi.Signature(abi.HostTarget(), fn)
	if err != nil {
		Logger().Debug("block signature unavailable", zap.Stringer("type", fn), zap.Error(err))
		return abi.SignatureTail{}, 0, ""
	}
	return abi.NewSignatureTail(sig), abi.FlagHasSignature, sig
}

func heapDescriptorFor(key reflect.Type) *descriptor {
	if d, ok := heapDescriptors.Load(key); ok {
		return d.(*descriptor)
	}
	tail, sigFlag, sig := signatureOf(key)
	desc := &abi.SignedCopyDisposeDescriptor{
		CopyDisposeDescriptor: abi.CopyDisposeDescriptor{
			Descriptor: abi.Descriptor{Size: heapLiteralSize},
			Copy:       heapCopyHelper,
			Dispose:    heapDisposeHelper,
		},
		SignatureTail: tail,
	}
	d := &descriptor{
		ptr:   unsafe.Pointer(desc),
		flags: abi.FlagNeedsFree | abi.FlagHasCopyDispose | sigFlag,
		sig:   sig,
	}
	actual, _ := heapDescriptors.LoadOrStore(key, d)
	return actual.(*descriptor)
}

func staticDescriptorFor(key reflect.Type) *descriptor {
	if d, ok := staticDescriptors.Load(key); ok {
		return d.(*descriptor)
	}
	tail, sigFlag, sig := signatureOf(key)
	desc := &abi.SignedDescriptor{
		Descriptor:    abi.Descriptor{Size: staticLiteralSize},
		SignatureTail: tail,
	}
	d := &descriptor{
		ptr:   unsafe.Pointer(desc),
		flags: abi.FlagIsGlobal | sigFlag,
		sig:   sig,
	}
	actual, _ := staticDescriptors.LoadOrStore(key, d)
	return actual.(*descriptor)
}

// heapCopy is the copy helper of heap literals. Heap literals carry
// NEEDS_FREE and are retained by count, so a runtime that memmoves one has
// broken the contract.
func heapCopy(dst, src unsafe.Pointer) {
	panic(errors.New(errors.PhaseRetain, errors.KindContract).
		Block(uintptr(src)).
		Class(abi.ClassMalloc.String()).
		Detail("heap literal copied by memmove to %#x", uintptr(dst)).
		Build())
}

// heapDispose is the dispose helper of heap literals: it drops the payload,
// which runs the OnDispose hook.
func heapDispose(obj unsafe.Pointer) {
	lit := (*heapLiteral)(obj)
	h := lit.payload
	lit.payload = 0
	if _, ok := payloads.Remove(h); !ok {
		panic(errors.New(errors.PhaseDispose, errors.KindContract).
			Block(uintptr(obj)).
			Class(abi.ClassMalloc.String()).
			Detail("payload %d disposed twice", h).
			Build())
	}
}

func loadCapture[F any](blk unsafe.Pointer) *capture[F] {
	h := (*heapLiteral)(blk).payload
	v, ok := payloads.GetTyped(h, resource.TypeClosure)
	if !ok {
		panic(errors.Disposed(errors.PhaseInvoke, uintptr(blk)))
	}
	return v.(*capture[F])
}

func newStack[F any](f *F, invoke unsafe.Pointer) StackLiteral[F] {
	return StackLiteral[F]{
		blk: Block[F, NoEsc]{hdr: abi.Header{
			Isa:        abi.ClassStack.Isa(),
			Invoke:     invoke,
			Descriptor: unsafe.Pointer(&stackDescriptor),
		}},
		closure: f,
	}
}

func newHeap[F any, M Escapes](fn F, invoke unsafe.Pointer, opts []Option) *Retained[F, M] {
	o := buildOptions(opts)
	key := reflect.TypeFor[F]()
	desc := heapDescriptorFor(key)

	c := &capture[F]{fn: fn}
	h := payloads.Insert(resource.TypeClosure, c)
	if h == 0 {
		panic(errors.New(errors.PhaseConstruct, errors.KindAllocation).
			Signature(key.String()).
			Detail("payload table closed").
			Build())
	}

	mem, err := o.host.Malloc(heapLiteralSize)
	if err != nil {
		payloads.Remove(h)
		panic(errors.New(errors.PhaseConstruct, errors.KindAllocation).
			Signature(key.String()).
			Cause(err).
			Build())
	}
	c.drop = o.onDispose

	lit := (*heapLiteral)(mem)
	lit.hdr = abi.Header{
		Isa:        abi.ClassMalloc.Isa(),
		Flags:      abi.WithRefcount(desc.flags, 1),
		Invoke:     invoke,
		Descriptor: desc.ptr,
	}
	lit.payload = h

	Logger().Debug("heap block",
		zap.Uintptr("block", uintptr(mem)),
		zap.Uintptr("payload", uintptr(h)),
		zap.String("signature", desc.sig),
		zap.String("marker", MarkerName[M]()))

	return &Retained[F, M]{blk: (*Block[F, M])(mem), rt: o.host}
}

// statics pins static literals and their functions for the life of the
// process.
var statics struct {
	mu   sync.Mutex
	lits []*staticEntry
}

type staticEntry struct {
	lit staticLiteral
	fn  any
}

func newStatic[F any](fn any, invoke unsafe.Pointer) *Block[F, Sync] {
	if invoke == nil {
		panic(errors.InvalidInput(errors.PhaseConstruct, "nil static block function"))
	}
	desc := staticDescriptorFor(reflect.TypeFor[F]())
	e := &staticEntry{
		lit: staticLiteral{hdr: abi.Header{
			Isa:        abi.ClassGlobal.Isa(),
			Flags:      desc.flags,
			Invoke:     invoke,
			Descriptor: desc.ptr,
		}},
		fn: fn,
	}

	statics.mu.Lock()
	statics.lits = append(statics.lits, e)
	statics.mu.Unlock()

	return (*Block[F, Sync])(unsafe.Pointer(&e.lit))
}

// StaticCount returns the number of static literals created so far.
func StaticCount() int {
	statics.mu.Lock()
	defer statics.mu.Unlock()
	return len(statics.lits)
}
