package block

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/wippyai/blocks/abi"
)

// Capability markers, weakest first. A block's marker records what the
// foreign side may do with it: NoEsc blocks must not outlive the call they
// are passed to, Esc blocks may be retained, Send blocks may be invoked from
// another goroutine, Sync blocks may be invoked from several at once.
type (
	NoEsc struct{}
	Esc   struct{}
	Send  struct{}
	Sync  struct{}
)

func (NoEsc) tier() int { return 0 }
func (Esc) tier() int   { return 1 }
func (Send) tier() int  { return 2 }
func (Sync) tier() int  { return 3 }

func (Esc) escapes()  {}
func (Send) escapes() {}
func (Sync) escapes() {}

func (Send) sendable() {}
func (Sync) sendable() {}

func (Sync) shareable() {}

// Marker is satisfied by every capability marker.
type Marker interface {
	NoEsc | Esc | Send | Sync
	tier() int
}

// Escapes is satisfied by markers whose blocks may be retained.
//
//	func Async[M block.Escapes](b *block.Block[func(), M])
type Escapes interface {
	Esc | Send | Sync
	tier() int
	escapes()
}

// Sendable is satisfied by markers whose blocks may run on another goroutine.
type Sendable interface {
	Send | Sync
	tier() int
	escapes()
	sendable()
}

// Shareable is satisfied only by Sync.
type Shareable interface {
	Sync
	tier() int
	escapes()
	sendable()
	shareable()
}

// MarkerName returns the name of M, for diagnostics.
func MarkerName[M Marker]() string {
	var m M
	switch m.tier() {
	case 0:
		return "NoEsc"
	case 1:
		return "Esc"
	case 2:
		return "Send"
	default:
		return "Sync"
	}
}

// Block is a block literal viewed from Go. F is the Go type of the closure
// it wraps and M its capability marker. A *Block points at the header of a
// literal that may live on the goroutine stack, in arena memory or in a
// static registry.
type Block[F any, M Marker] struct {
	hdr abi.Header
}

// FromPtr views a foreign block pointer as a *Block. The caller vouches for
// F and M.
func FromPtr[F any, M Marker](p unsafe.Pointer) *Block[F, M] {
	return (*Block[F, M])(p)
}

// Ptr returns the literal address to hand to foreign code.
func (b *Block[F, M]) Ptr() unsafe.Pointer {
	return unsafe.Pointer(b)
}

// Header returns the literal header.
func (b *Block[F, M]) Header() *abi.Header {
	return &b.hdr
}

// Class returns the storage class of the literal.
func (b *Block[F, M]) Class() abi.Class {
	return b.hdr.Class()
}

// Flags returns the current flags word.
func (b *Block[F, M]) Flags() abi.Flags {
	return b.hdr.LoadFlags()
}

// Refcount returns the logical reference count. Stack and static literals
// report zero.
func (b *Block[F, M]) Refcount() int {
	return abi.Refcount(b.hdr.LoadFlags())
}

// Size returns the literal size recorded in its descriptor.
func (b *Block[F, M]) Size() uintptr {
	return b.hdr.Desc().Size
}

// Signature returns the type encoding carried by the descriptor, if any.
func (b *Block[F, M]) Signature() string {
	return b.hdr.Signature()
}

// NoEscape views b as a non-escaping block.
func (b *Block[F, M]) NoEscape() *Block[F, NoEsc] {
	return (*Block[F, NoEsc])(unsafe.Pointer(b))
}

func (b *Block[F, M]) String() string {
	return fmt.Sprintf("Block[%s, %s]@%p(%s)", reflect.TypeFor[F](), MarkerName[M](), b, b.Class())
}

// AsEscaping views b as an escaping block.
func AsEscaping[F any, M Escapes](b *Block[F, M]) *Block[F, Esc] {
	return (*Block[F, Esc])(unsafe.Pointer(b))
}

// AsSend views b as a sendable block.
func AsSend[F any, M Sendable](b *Block[F, M]) *Block[F, Send] {
	return (*Block[F, Send])(unsafe.Pointer(b))
}

// ptr returns the literal address hidden from escape analysis, so a stack
// literal passed to Call stays on the stack. The invoke slot is an indirect
// call, which would otherwise force every argument to the heap. Callees
// never retain the pointer past the call; Retain copies heap literals
// through the runtime instead.
//
// The address round-trips through a uintptr local and is read back as a
// pointer word, which drops the data flow from b without a uintptr to
// unsafe.Pointer conversion.
//
//go:nosplit
func (b *Block[F, M]) ptr() unsafe.Pointer {
	x := uintptr(unsafe.Pointer(b))
	return *(*unsafe.Pointer)(unsafe.Pointer(&x))
}
