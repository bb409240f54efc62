package abi

import "unsafe"

// FuncPtr returns the funcval pointer behind a func value, the single word a
// Go func variable holds. It is what invoke, copy and dispose slots store.
// F must be a func type.
func FuncPtr[F any](fn F) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Pointer(&fn))
}

// FuncAt is the inverse of FuncPtr.
func FuncAt[F any](p unsafe.Pointer) F {
	var fn F
	*(*unsafe.Pointer)(unsafe.Pointer(&fn)) = p
	return fn
}
