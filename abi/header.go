package abi

import (
	"reflect"
	"unsafe"
)

// Flags is the flags word of a block header.
type Flags int32

const (
	FlagDeallocating   Flags = 0x1
	FlagRefcountMask   Flags = 0xfffe
	FlagNeedsFree      Flags = 1 << 24
	FlagHasCopyDispose Flags = 1 << 25
	FlagHasCtor        Flags = 1 << 26
	FlagIsGC           Flags = 1 << 27
	FlagIsGlobal       Flags = 1 << 28
	FlagUseStret       Flags = 1 << 29
	FlagHasSignature   Flags = 1 << 30
)

// Has reports whether all bits of mask are set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Header is the common prefix of every block literal.
type Header struct {
	Isa        unsafe.Pointer
	Flags      Flags
	Reserved   int32
	Invoke     unsafe.Pointer
	Descriptor unsafe.Pointer
}

// HeaderSize is the native size of Header.
const HeaderSize = unsafe.Sizeof(Header{})

func init() {
	ptr := unsafe.Sizeof(uintptr(0))
	if HeaderSize != 3*ptr+8 {
		panic("abi.Header is not laid out as isa, flags, reserved, invoke, descriptor")
	}
	t := reflect.TypeFor[Header]()
	if f, _ := t.FieldByName("Invoke"); f.Offset != ptr+8 {
		panic("abi.Header.Invoke misplaced")
	}
}

// HeaderAt reinterprets p as a block header.
func HeaderAt(p unsafe.Pointer) *Header {
	return (*Header)(p)
}

// Class returns the storage class encoded by the isa pointer.
func (h *Header) Class() Class {
	return ClassOf(h.Isa)
}

// Desc returns the tier 1 descriptor.
func (h *Header) Desc() *Descriptor {
	return (*Descriptor)(h.Descriptor)
}

// CopyDispose returns the tier 2 descriptor, or nil when the literal has no
// copy/dispose helpers.
func (h *Header) CopyDispose() *CopyDisposeDescriptor {
	if !h.LoadFlags().Has(FlagHasCopyDispose) {
		return nil
	}
	return (*CopyDisposeDescriptor)(h.Descriptor)
}

// Signature returns the type-encoded signature from the descriptor tail, or
// "" when the literal carries none.
func (h *Header) Signature() string {
	flags := h.LoadFlags()
	if !flags.Has(FlagHasSignature) || h.Descriptor == nil {
		return ""
	}
	tail := (*SignatureTail)(unsafe.Add(h.Descriptor, signatureOffset(flags)))
	return CString(tail.Signature)
}

func signatureOffset(flags Flags) uintptr {
	if flags.Has(FlagHasCopyDispose) {
		return unsafe.Sizeof(CopyDisposeDescriptor{})
	}
	return unsafe.Sizeof(Descriptor{})
}

// CString reads a NUL-terminated byte string.
func CString(p *byte) string {
	if p == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(unsafe.Pointer(p), n)) != 0 {
		n++
	}
	return unsafe.String(p, n)
}

// Class is the runtime storage class of a literal.
type Class uint8

const (
	ClassUnknown Class = iota
	ClassStack
	ClassMalloc
	ClassGlobal
)

func (c Class) String() string {
	switch c {
	case ClassStack:
		return "stack"
	case ClassMalloc:
		return "malloc"
	case ClassGlobal:
		return "global"
	default:
		return "unknown"
	}
}

// Class objects. Only their addresses matter.
var (
	concreteStack  [2]uintptr
	concreteMalloc [2]uintptr
	concreteGlobal [2]uintptr
)

// Isa returns the stable sentinel address tagging literals of class c.
func (c Class) Isa() unsafe.Pointer {
	switch c {
	case ClassStack:
		return unsafe.Pointer(&concreteStack)
	case ClassMalloc:
		return unsafe.Pointer(&concreteMalloc)
	case ClassGlobal:
		return unsafe.Pointer(&concreteGlobal)
	default:
		return nil
	}
}

// ClassOf maps an isa pointer back to its class.
func ClassOf(isa unsafe.Pointer) Class {
	switch isa {
	case unsafe.Pointer(&concreteStack):
		return ClassStack
	case unsafe.Pointer(&concreteMalloc):
		return ClassMalloc
	case unsafe.Pointer(&concreteGlobal):
		return ClassGlobal
	default:
		return ClassUnknown
	}
}
