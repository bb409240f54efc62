package block

import "unsafe"

// Invoke thunks. Each has the ABI of the literal's invoke slot: the literal
// pointer followed by the closure arguments. Stack thunks follow the borrowed
// closure pointer; heap thunks resolve the payload handle.

func stackInvoke0(blk unsafe.Pointer) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	(*(*StackLiteral[func()])(blk).closure)()
}

func stackInvoke1[A1 any](blk unsafe.Pointer, a1 A1) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	(*(*StackLiteral[func(A1)])(blk).closure)(a1)
}

func stackInvoke2[A1, A2 any](blk unsafe.Pointer, a1 A1, a2 A2) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	(*(*StackLiteral[func(A1, A2)])(blk).closure)(a1, a2)
}

func stackInvoke3[A1, A2, A3 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	(*(*StackLiteral[func(A1, A2, A3)])(blk).closure)(a1, a2, a3)
}

func stackInvoke4[A1, A2, A3, A4 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	(*(*StackLiteral[func(A1, A2, A3, A4)])(blk).closure)(a1, a2, a3, a4)
}

func stackInvoke5[A1, A2, A3, A4, A5 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	(*(*StackLiteral[func(A1, A2, A3, A4, A5)])(blk).closure)(a1, a2, a3, a4, a5)
}

func stackInvoke6[A1, A2, A3, A4, A5, A6 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	(*(*StackLiteral[func(A1, A2, A3, A4, A5, A6)])(blk).closure)(a1, a2, a3, a4, a5, a6)
}

func stackInvokeValue0[R any](blk unsafe.Pointer) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return (*(*StackLiteral[func() R])(blk).closure)()
}

func stackInvokeValue1[A1, R any](blk unsafe.Pointer, a1 A1) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return (*(*StackLiteral[func(A1) R])(blk).closure)(a1)
}

func stackInvokeValue2[A1, A2, R any](blk unsafe.Pointer, a1 A1, a2 A2) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return (*(*StackLiteral[func(A1, A2) R])(blk).closure)(a1, a2)
}

func stackInvokeValue3[A1, A2, A3, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return (*(*StackLiteral[func(A1, A2, A3) R])(blk).closure)(a1, a2, a3)
}

func stackInvokeValue4[A1, A2, A3, A4, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return (*(*StackLiteral[func(A1, A2, A3, A4) R])(blk).closure)(a1, a2, a3, a4)
}

func stackInvokeValue5[A1, A2, A3, A4, A5, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return (*(*StackLiteral[func(A1, A2, A3, A4, A5) R])(blk).closure)(a1, a2, a3, a4, a5)
}

func stackInvokeValue6[A1, A2, A3, A4, A5, A6, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return (*(*StackLiteral[func(A1, A2, A3, A4, A5, A6) R])(blk).closure)(a1, a2, a3, a4, a5, a6)
}

func heapInvoke0(blk unsafe.Pointer) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	loadCapture[func()](blk).fn()
}

func heapInvoke1[A1 any](blk unsafe.Pointer, a1 A1) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	loadCapture[func(A1)](blk).fn(a1)
}

func heapInvoke2[A1, A2 any](blk unsafe.Pointer, a1 A1, a2 A2) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	loadCapture[func(A1, A2)](blk).fn(a1, a2)
}

func heapInvoke3[A1, A2, A3 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	loadCapture[func(A1, A2, A3)](blk).fn(a1, a2, a3)
}

func heapInvoke4[A1, A2, A3, A4 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	loadCapture[func(A1, A2, A3, A4)](blk).fn(a1, a2, a3, a4)
}

func heapInvoke5[A1, A2, A3, A4, A5 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	loadCapture[func(A1, A2, A3, A4, A5)](blk).fn(a1, a2, a3, a4, a5)
}

func heapInvoke6[A1, A2, A3, A4, A5, A6 any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	loadCapture[func(A1, A2, A3, A4, A5, A6)](blk).fn(a1, a2, a3, a4, a5, a6)
}

func heapInvokeValue0[R any](blk unsafe.Pointer) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return loadCapture[func() R](blk).fn()
}

func heapInvokeValue1[A1, R any](blk unsafe.Pointer, a1 A1) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return loadCapture[func(A1) R](blk).fn(a1)
}

func heapInvokeValue2[A1, A2, R any](blk unsafe.Pointer, a1 A1, a2 A2) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return loadCapture[func(A1, A2) R](blk).fn(a1, a2)
}

func heapInvokeValue3[A1, A2, A3, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return loadCapture[func(A1, A2, A3) R](blk).fn(a1, a2, a3)
}

func heapInvokeValue4[A1, A2, A3, A4, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return loadCapture[func(A1, A2, A3, A4) R](blk).fn(a1, a2, a3, a4)
}

func heapInvokeValue5[A1, A2, A3, A4, A5, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return loadCapture[func(A1, A2, A3, A4, A5) R](blk).fn(a1, a2, a3, a4, a5)
}

func heapInvokeValue6[A1, A2, A3, A4, A5, A6, R any](blk unsafe.Pointer, a1 A1, a2 A2, a3 A3, a4 A4, a5 A5, a6 A6) R {
	if abortEnabled() {
		defer abortOnPanic(blk)
	}
	return loadCapture[func(A1, A2, A3, A4, A5, A6) R](blk).fn(a1, a2, a3, a4, a5, a6)
}
