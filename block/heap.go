package block

import (
	"reflect"

	"github.com/wippyai/blocks/abi"
)

// Heap0 moves f into a heap literal with one reference owned by the
// returned handle. M is the capability tier, given explicitly:
//
//	r := block.Heap0[block.Send](func() { ... }, block.OnDispose(done))
//	defer r.Release()
func Heap0[M Escapes](f func(), opts ...Option) *Retained[func(), M] {
	key := reflect.TypeFor[func()]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvoke0))
	}
	return newHeap[func(), M](f, invoke, opts)
}

// Heap1 moves a 1-argument closure into a heap literal.
func Heap1[M Escapes, A1 any](f func(A1), opts ...Option) *Retained[func(A1), M] {
	key := reflect.TypeFor[func(A1)]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvoke1[A1]))
	}
	return newHeap[func(A1), M](f, invoke, opts)
}

// Heap2 moves a 2-argument closure into a heap literal.
func Heap2[M Escapes, A1, A2 any](f func(A1, A2), opts ...Option) *Retained[func(A1, A2), M] {
	key := reflect.TypeFor[func(A1, A2)]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvoke2[A1, A2]))
	}
	return newHeap[func(A1, A2), M](f, invoke, opts)
}

// Heap3 moves a 3-argument closure into a heap literal.
func Heap3[M Escapes, A1, A2, A3 any](f func(A1, A2, A3), opts ...Option) *Retained[func(A1, A2, A3), M] {
	key := reflect.TypeFor[func(A1, A2, A3)]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvoke3[A1, A2, A3]))
	}
	return newHeap[func(A1, A2, A3), M](f, invoke, opts)
}

// Heap4 moves a 4-argument closure into a heap literal.
func Heap4[M Escapes, A1, A2, A3, A4 any](f func(A1, A2, A3, A4), opts ...Option) *Retained[func(A1, A2, A3, A4), M] {
	key := reflect.TypeFor[func(A1, A2, A3, A4)]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvoke4[A1, A2, A3, A4]))
	}
	return newHeap[func(A1, A2, A3, A4), M](f, invoke, opts)
}

// Heap5 moves a 5-argument closure into a heap literal.
func Heap5[M Escapes, A1, A2, A3, A4, A5 any](f func(A1, A2, A3, A4, A5), opts ...Option) *Retained[func(A1, A2, A3, A4, A5), M] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5)]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvoke5[A1, A2, A3, A4, A5]))
	}
	return newHeap[func(A1, A2, A3, A4, A5), M](f, invoke, opts)
}

// Heap6 moves a 6-argument closure into a heap literal.
func Heap6[M Escapes, A1, A2, A3, A4, A5, A6 any](f func(A1, A2, A3, A4, A5, A6), opts ...Option) *Retained[func(A1, A2, A3, A4, A5, A6), M] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5, A6)]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvoke6[A1, A2, A3, A4, A5, A6]))
	}
	return newHeap[func(A1, A2, A3, A4, A5, A6), M](f, invoke, opts)
}

// HeapValue0 is Heap0 for closures with a result.
func HeapValue0[M Escapes, R any](f func() R, opts ...Option) *Retained[func() R, M] {
	key := reflect.TypeFor[func() R]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvokeValue0[R]))
	}
	return newHeap[func() R, M](f, invoke, opts)
}

// HeapValue1 moves a 1-argument closure into a heap literal.
func HeapValue1[M Escapes, A1, R any](f func(A1) R, opts ...Option) *Retained[func(A1) R, M] {
	key := reflect.TypeFor[func(A1) R]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvokeValue1[A1, R]))
	}
	return newHeap[func(A1) R, M](f, invoke, opts)
}

// HeapValue2 moves a 2-argument closure into a heap literal.
func HeapValue2[M Escapes, A1, A2, R any](f func(A1, A2) R, opts ...Option) *Retained[func(A1, A2) R, M] {
	key := reflect.TypeFor[func(A1, A2) R]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvokeValue2[A1, A2, R]))
	}
	return newHeap[func(A1, A2) R, M](f, invoke, opts)
}

// HeapValue3 moves a 3-argument closure into a heap literal.
func HeapValue3[M Escapes, A1, A2, A3, R any](f func(A1, A2, A3) R, opts ...Option) *Retained[func(A1, A2, A3) R, M] {
	key := reflect.TypeFor[func(A1, A2, A3) R]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvokeValue3[A1, A2, A3, R]))
	}
	return newHeap[func(A1, A2, A3) R, M](f, invoke, opts)
}

// HeapValue4 moves a 4-argument closure into a heap literal.
func HeapValue4[M Escapes, A1, A2, A3, A4, R any](f func(A1, A2, A3, A4) R, opts ...Option) *Retained[func(A1, A2, A3, A4) R, M] {
	key := reflect.TypeFor[func(A1, A2, A3, A4) R]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvokeValue4[A1, A2, A3, A4, R]))
	}
	return newHeap[func(A1, A2, A3, A4) R, M](f, invoke, opts)
}

// HeapValue5 moves a 5-argument closure into a heap literal.
func HeapValue5[M Escapes, A1, A2, A3, A4, A5, R any](f func(A1, A2, A3, A4, A5) R, opts ...Option) *Retained[func(A1, A2, A3, A4, A5) R, M] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5) R]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvokeValue5[A1, A2, A3, A4, A5, R]))
	}
	return newHeap[func(A1, A2, A3, A4, A5) R, M](f, invoke, opts)
}

// HeapValue6 moves a 6-argument closure into a heap literal.
func HeapValue6[M Escapes, A1, A2, A3, A4, A5, A6, R any](f func(A1, A2, A3, A4, A5, A6) R, opts ...Option) *Retained[func(A1, A2, A3, A4, A5, A6) R, M] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5, A6) R]()
	invoke := heapThunks.lookup(key)
	if invoke == nil {
		invoke = heapThunks.store(key, abi.FuncPtr(heapInvokeValue6[A1, A2, A3, A4, A5, A6, R]))
	}
	return newHeap[func(A1, A2, A3, A4, A5, A6) R, M](f, invoke, opts)
}
