package block

import (
	"unsafe"

	"github.com/wippyai/blocks/abi"
)

// Static0 installs fn as the invoke function of a capture-free literal that
// lives for the rest of the process. fn receives the literal pointer
// followed by the block arguments, so any state it needs comes from the
// caller rather than a capture.
func Static0(fn func(unsafe.Pointer)) *Block[func(), Sync] {
	return newStatic[func()](fn, abi.FuncPtr(fn))
}

// Static1 installs a 1-argument function as a static literal.
func Static1[A1 any](fn func(unsafe.Pointer, A1)) *Block[func(A1), Sync] {
	return newStatic[func(A1)](fn, abi.FuncPtr(fn))
}

// Static2 installs a 2-argument function as a static literal.
func Static2[A1, A2 any](fn func(unsafe.Pointer, A1, A2)) *Block[func(A1, A2), Sync] {
	return newStatic[func(A1, A2)](fn, abi.FuncPtr(fn))
}

// Static3 installs a 3-argument function as a static literal.
func Static3[A1, A2, A3 any](fn func(unsafe.Pointer, A1, A2, A3)) *Block[func(A1, A2, A3), Sync] {
	return newStatic[func(A1, A2, A3)](fn, abi.FuncPtr(fn))
}

// Static4 installs a 4-argument function as a static literal.
func Static4[A1, A2, A3, A4 any](fn func(unsafe.Pointer, A1, A2, A3, A4)) *Block[func(A1, A2, A3, A4), Sync] {
	return newStatic[func(A1, A2, A3, A4)](fn, abi.FuncPtr(fn))
}

// Static5 installs a 5-argument function as a static literal.
func Static5[A1, A2, A3, A4, A5 any](fn func(unsafe.Pointer, A1, A2, A3, A4, A5)) *Block[func(A1, A2, A3, A4, A5), Sync] {
	return newStatic[func(A1, A2, A3, A4, A5)](fn, abi.FuncPtr(fn))
}

// Static6 installs a 6-argument function as a static literal.
func Static6[A1, A2, A3, A4, A5, A6 any](fn func(unsafe.Pointer, A1, A2, A3, A4, A5, A6)) *Block[func(A1, A2, A3, A4, A5, A6), Sync] {
	return newStatic[func(A1, A2, A3, A4, A5, A6)](fn, abi.FuncPtr(fn))
}

// StaticValue0 is Static0 for functions with a result.
func StaticValue0[R any](fn func(unsafe.Pointer) R) *Block[func() R, Sync] {
	return newStatic[func() R](fn, abi.FuncPtr(fn))
}

// StaticValue1 installs a 1-argument function as a static literal.
func StaticValue1[A1, R any](fn func(unsafe.Pointer, A1) R) *Block[func(A1) R, Sync] {
	return newStatic[func(A1) R](fn, abi.FuncPtr(fn))
}

// StaticValue2 installs a 2-argument function as a static literal.
func StaticValue2[A1, A2, R any](fn func(unsafe.Pointer, A1, A2) R) *Block[func(A1, A2) R, Sync] {
	return newStatic[func(A1, A2) R](fn, abi.FuncPtr(fn))
}

// StaticValue3 installs a 3-argument function as a static literal.
func StaticValue3[A1, A2, A3, R any](fn func(unsafe.Pointer, A1, A2, A3) R) *Block[func(A1, A2, A3) R, Sync] {
	return newStatic[func(A1, A2, A3) R](fn, abi.FuncPtr(fn))
}

// StaticValue4 installs a 4-argument function as a static literal.
func StaticValue4[A1, A2, A3, A4, R any](fn func(unsafe.Pointer, A1, A2, A3, A4) R) *Block[func(A1, A2, A3, A4) R, Sync] {
	return newStatic[func(A1, A2, A3, A4) R](fn, abi.FuncPtr(fn))
}

// StaticValue5 installs a 5-argument function as a static literal.
func StaticValue5[A1, A2, A3, A4, A5, R any](fn func(unsafe.Pointer, A1, A2, A3, A4, A5) R) *Block[func(A1, A2, A3, A4, A5) R, Sync] {
	return newStatic[func(A1, A2, A3, A4, A5) R](fn, abi.FuncPtr(fn))
}

// StaticValue6 installs a 6-argument function as a static literal.
func StaticValue6[A1, A2, A3, A4, A5, A6, R any](fn func(unsafe.Pointer, A1, A2, A3, A4, A5, A6) R) *Block[func(A1, A2, A3, A4, A5, A6) R, Sync] {
	return newStatic[func(A1, A2, A3, A4, A5, A6) R](fn, abi.FuncPtr(fn))
}
