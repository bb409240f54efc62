package block

import (
	"unsafe"

	"github.com/wippyai/blocks/abi"
)

// Call0 invokes b through its invoke slot, exactly as foreign code would.
func Call0[M Marker](b *Block[func(), M]) {
	abi.FuncAt[func(unsafe.Pointer)](b.hdr.Invoke)(b.ptr())
}

func Call1[A1 any, M Marker](b *Block[func(A1), M], a1 A1) {
	abi.FuncAt[func(unsafe.Pointer, A1)](b.hdr.Invoke)(b.ptr(), a1)
}

func Call2[A1, A2 any, M Marker](b *Block[func(A1, A2), M], a1 A1, a2 A2) {
	abi.FuncAt[func(unsafe.Pointer, A1, A2)](b.hdr.Invoke)(b.ptr(), a1, a2)
}

func Call3[A1, A2, A3 any, M Marker](b *Block[func(A1, A2, A3), M], a1 A1, a2 A2, a3 A3) {
	abi.FuncAt[func(unsafe.Pointer, A1, A2, A3)](b.hdr.Invoke)(b.ptr(), a1, a2, a3)
}

func Call4[A1, A2, A3, A4 any, M Marker](b *Block[func(A1, A2, A3, A4), M], a1 A1, a2 A2, a3 A3, a4 A4) {
	abi.FuncAt[func(unsafe.Pointer, A1, A2, A3, A4)](b.hdr.Invoke)(b.ptr(), a1, a2, a3, a4)
}

func Call5[A1, A2, A3, A4, A5 any, M Marker](b *Block[func(A1, A2, A3, A4, A5), M], a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) {
	abi.FuncAt[func(unsafe.Pointer, A1, A2, A3, A4, A5)](b.hdr.Invoke)(b.ptr(), a1, a2, a3, a4, a5)
}

func Call6[A1, A2, A3, A4, A5, A6 any, M Marker](b *Block[func(A1, A2, A3, A4, A5, A6), M], a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) {
	abi.FuncAt[func(unsafe.Pointer, A1, A2, A3, A4, A5, A6)](b.hdr.Invoke)(b.ptr(), a1, a2, a3, a4, a5, a6)
}

// CallValue0 invokes b and returns its result.
func CallValue0[R any, M Marker](b *Block[func() R, M]) R {
	return abi.FuncAt[func(unsafe.Pointer) R](b.hdr.Invoke)(b.ptr())
}

func CallValue1[A1, R any, M Marker](b *Block[func(A1) R, M], a1 A1) R {
	return abi.FuncAt[func(unsafe.Pointer, A1) R](b.hdr.Invoke)(b.ptr(), a1)
}

func CallValue2[A1, A2, R any, M Marker](b *Block[func(A1, A2) R, M], a1 A1, a2 A2) R {
	return abi.FuncAt[func(unsafe.Pointer, A1, A2) R](b.hdr.Invoke)(b.ptr(), a1, a2)
}

func CallValue3[A1, A2, A3, R any, M Marker](b *Block[func(A1, A2, A3) R, M], a1 A1, a2 A2, a3 A3) R {
	return abi.FuncAt[func(unsafe.Pointer, A1, A2, A3) R](b.hdr.Invoke)(b.ptr(), a1, a2, a3)
}

func CallValue4[A1, A2, A3, A4, R any, M Marker](b *Block[func(A1, A2, A3, A4) R, M], a1 A1, a2 A2, a3 A3, a4 A4) R {
	return abi.FuncAt[func(unsafe.Pointer, A1, A2, A3, A4) R](b.hdr.Invoke)(b.ptr(), a1, a2, a3, a4)
}

func CallValue5[A1, A2, A3, A4, A5, R any, M Marker](b *Block[func(A1, A2, A3, A4, A5) R, M], a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) R {
	return abi.FuncAt[func(unsafe.Pointer, A1, A2, A3, A4, A5) R](b.hdr.Invoke)(b.ptr(), a1, a2, a3, a4, a5)
}

func CallValue6[A1, A2, A3, A4, A5, A6, R any, M Marker](b *Block[func(A1, A2, A3, A4, A5, A6) R, M], a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) R {
	return abi.FuncAt[func(unsafe.Pointer, A1, A2, A3, A4, A5, A6) R](b.hdr.Invoke)(b.ptr(), a1, a2, a3, a4, a5, a6)
}
