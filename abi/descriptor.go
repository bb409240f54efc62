package abi

import "unsafe"

// Descriptor is the tier 1 descriptor present on every literal.
type Descriptor struct {
	Reserved uintptr
	Size     uintptr
}

// CopyDisposeDescriptor extends Descriptor with helpers, present iff
// FlagHasCopyDispose is set.
//
// Copy has the Go ABI of func(dst, src unsafe.Pointer) and Dispose the ABI of
// func(obj unsafe.Pointer). Both are funcval pointers; see FuncPtr.
type CopyDisposeDescriptor struct {
	Descriptor
	Copy    unsafe.Pointer
	Dispose unsafe.Pointer
}

// SignatureTail follows the descriptor when FlagHasSignature is set.
type SignatureTail struct {
	Signature *byte
	Layout    *byte
}

// SignedDescriptor is a tier 1 descriptor with a signature tail.
type SignedDescriptor struct {
	Descriptor
	SignatureTail
}

// SignedCopyDisposeDescriptor is a tier 2 descriptor with a signature tail.
type SignedCopyDisposeDescriptor struct {
	CopyDisposeDescriptor
	SignatureTail
}

// CopyFunc is the ABI of a copy helper.
type CopyFunc = func(dst, src unsafe.Pointer)

// DisposeFunc is the ABI of a dispose helper.
type DisposeFunc = func(obj unsafe.Pointer)

// NewSignatureTail builds a tail holding a NUL-terminated copy of sig.
func NewSignatureTail(sig string) SignatureTail {
	if sig == "" {
		return SignatureTail{}
	}
	b := make([]byte, len(sig)+1)
	copy(b, sig)
	return SignatureTail{Signature: &b[0]}
}

// CallCopy runs the copy helper of d.
func (d *CopyDisposeDescriptor) CallCopy(dst, src unsafe.Pointer) {
	FuncAt[CopyFunc](d.Copy)(dst, src)
}

// CallDispose runs the dispose helper of d.
func (d *CopyDisposeDescriptor) CallDispose(obj unsafe.Pointer) {
	FuncAt[DisposeFunc](d.Dispose)(obj)
}
