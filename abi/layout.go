package abi

import (
	"fmt"
	"unsafe"
)

// Target describes the C ABI a literal is laid out for.
type Target struct {
	Name        string
	PointerSize uint32
}

var (
	// Native is a 64-bit host.
	Native = Target{Name: "native64", PointerSize: 8}
	// Native32 is a 32-bit host.
	Native32 = Target{Name: "native32", PointerSize: 4}
	// Wasm32 is WebAssembly with 32-bit linear memory; function pointers are
	// table indices.
	Wasm32 = Target{Name: "wasm32", PointerSize: 4}
)

// HostTarget returns Native or Native32 depending on the pointer size of the
// running program.
func HostTarget() Target {
	if unsafe.Sizeof(uintptr(0)) == 8 {
		return Native
	}
	return Native32
}

// Targets lists every known target.
var Targets = []Target{Native, Native32, Wasm32}

func (t Target) String() string { return t.Name }

// Kind is the C type class of a literal field.
type Kind uint8

const (
	KindPointer Kind = iota
	KindInt32
	KindInt64
	KindWord
)

func (k Kind) String() string {
	switch k {
	case KindPointer:
		return "pointer"
	case KindInt32:
		return "int32"
	case KindInt64:
		return "int64"
	case KindWord:
		return "word"
	default:
		return "unknown"
	}
}

// Field names a literal field.
type Field struct {
	Name string
	Kind Kind
}

// HeaderFields is the fixed header, in order.
var HeaderFields = []Field{
	{Name: "isa", Kind: KindPointer},
	{Name: "flags", Kind: KindInt32},
	{Name: "reserved", Kind: KindInt32},
	{Name: "invoke", Kind: KindPointer},
	{Name: "descriptor", Kind: KindPointer},
}

// Placed is a field with its computed offset.
type Placed struct {
	Field
	Offset uint32
	Size   uint32
}

// Layout is the computed shape of a record.
type Layout struct {
	Fields []Placed
	Size   uint32
	Align  uint32
}

// Offset returns the offset of the named field.
func (l Layout) Offset(name string) (uint32, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Offset, true
		}
	}
	return 0, false
}

// MustOffset is Offset for fields known to exist.
func (l Layout) MustOffset(name string) uint32 {
	off, ok := l.Offset(name)
	if !ok {
		panic(fmt.Sprintf("abi: layout has no field %q", name))
	}
	return off
}

// AlignTo rounds offset up to align, which must be a power of two.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// SizeAlign returns the size and alignment of k on t.
func (t Target) SizeAlign(k Kind) (size, align uint32) {
	switch k {
	case KindInt32:
		return 4, 4
	case KindInt64:
		return 8, 8
	default:
		return t.PointerSize, t.PointerSize
	}
}

// Record lays out fields in order with C struct rules.
func (t Target) Record(fields ...Field) Layout {
	out := Layout{Fields: make([]Placed, 0, len(fields)), Align: 1}
	offset := uint32(0)
	for _, f := range fields {
		size, align := t.SizeAlign(f.Kind)
		offset = AlignTo(offset, align)
		out.Fields = append(out.Fields, Placed{Field: f, Offset: offset, Size: size})
		if align > out.Align {
			out.Align = align
		}
		offset += size
	}
	out.Size = AlignTo(offset, out.Align)
	return out
}

// Calc lays out a literal: the header followed by payload fields.
func Calc(t Target, payload ...Field) Layout {
	fields := make([]Field, 0, len(HeaderFields)+len(payload))
	fields = append(fields, HeaderFields...)
	fields = append(fields, payload...)
	return t.Record(fields...)
}

// DescriptorLayout lays out a descriptor with the optional tier 2 helpers and
// signature tail.
func DescriptorLayout(t Target, copyDispose, signature bool) Layout {
	fields := []Field{
		{Name: "reserved", Kind: KindWord},
		{Name: "size", Kind: KindWord},
	}
	if copyDispose {
		fields = append(fields,
			Field{Name: "copy", Kind: KindPointer},
			Field{Name: "dispose", Kind: KindPointer},
		)
	}
	if signature {
		fields = append(fields,
			Field{Name: "signature", Kind: KindPointer},
			Field{Name: "layout", Kind: KindPointer},
		)
	}
	return t.Record(fields...)
}

// Payload shapes used by the storage classes.
var (
	// NoPayload is the capture-free static literal.
	NoPayload []Field
	// BorrowedPayload is the stack literal: a pointer to the caller's closure.
	BorrowedPayload = []Field{{Name: "closure", Kind: KindPointer}}
	// OwnedPayload is the heap literal: a handle into the payload table.
	OwnedPayload = []Field{{Name: "payload", Kind: KindWord}}
)
