package block

import (
	"reflect"

	"github.com/wippyai/blocks/abi"
)

// Stack0 wraps a closure with no arguments in a stack literal.
func Stack0(f *func()) StackLiteral[func()] {
	key := reflect.TypeFor[func()]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvoke0))
	}
	return newStack(f, invoke)
}

// Stack1 wraps *f in a stack literal without allocating. The literal
// borrows f and must not outlive the call it is passed to.
func Stack1[A1 any](f *func(A1)) StackLiteral[func(A1)] {
	key := reflect.TypeFor[func(A1)]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvoke1[A1]))
	}
	return newStack(f, invoke)
}

// Stack2 wraps a 2-argument closure in a stack literal.
func Stack2[A1, A2 any](f *func(A1, A2)) StackLiteral[func(A1, A2)] {
	key := reflect.TypeFor[func(A1, A2)]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvoke2[A1, A2]))
	}
	return newStack(f, invoke)
}

// Stack3 wraps a 3-argument closure in a stack literal.
func Stack3[A1, A2, A3 any](f *func(A1, A2, A3)) StackLiteral[func(A1, A2, A3)] {
	key := reflect.TypeFor[func(A1, A2, A3)]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvoke3[A1, A2, A3]))
	}
	return newStack(f, invoke)
}

// Stack4 wraps a 4-argument closure in a stack literal.
func Stack4[A1, A2, A3, A4 any](f *func(A1, A2, A3, A4)) StackLiteral[func(A1, A2, A3, A4)] {
	key := reflect.TypeFor[func(A1, A2, A3, A4)]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvoke4[A1, A2, A3, A4]))
	}
	return newStack(f, invoke)
}

// Stack5 wraps a 5-argument closure in a stack literal.
func Stack5[A1, A2, A3, A4, A5 any](f *func(A1, A2, A3, A4, A5)) StackLiteral[func(A1, A2, A3, A4, A5)] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5)]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvoke5[A1, A2, A3, A4, A5]))
	}
	return newStack(f, invoke)
}

// Stack6 wraps a 6-argument closure in a stack literal.
func Stack6[A1, A2, A3, A4, A5, A6 any](f *func(A1, A2, A3, A4, A5, A6)) StackLiteral[func(A1, A2, A3, A4, A5, A6)] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5, A6)]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvoke6[A1, A2, A3, A4, A5, A6]))
	}
	return newStack(f, invoke)
}

// StackValue0 wraps a closure with no arguments in a stack literal.
func StackValue0[R any](f *func() R) StackLiteral[func() R] {
	key := reflect.TypeFor[func() R]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvokeValue0[R]))
	}
	return newStack(f, invoke)
}

// StackValue1 is Stack1 for closures with a result.
func StackValue1[A1, R any](f *func(A1) R) StackLiteral[func(A1) R] {
	key := reflect.TypeFor[func(A1) R]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvokeValue1[A1, R]))
	}
	return newStack(f, invoke)
}

// StackValue2 wraps a 2-argument closure in a stack literal.
func StackValue2[A1, A2, R any](f *func(A1, A2) R) StackLiteral[func(A1, A2) R] {
	key := reflect.TypeFor[func(A1, A2) R]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvokeValue2[A1, A2, R]))
	}
	return newStack(f, invoke)
}

// StackValue3 wraps a 3-argument closure in a stack literal.
func StackValue3[A1, A2, A3, R any](f *func(A1, A2, A3) R) StackLiteral[func(A1, A2, A3) R] {
	key := reflect.TypeFor[func(A1, A2, A3) R]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvokeValue3[A1, A2, A3, R]))
	}
	return newStack(f, invoke)
}

// StackValue4 wraps a 4-argument closure in a stack literal.
func StackValue4[A1, A2, A3, A4, R any](f *func(A1, A2, A3, A4) R) StackLiteral[func(A1, A2, A3, A4) R] {
	key := reflect.TypeFor[func(A1, A2, A3, A4) R]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvokeValue4[A1, A2, A3, A4, R]))
	}
	return newStack(f, invoke)
}

// StackValue5 wraps a 5-argument closure in a stack literal.
func StackValue5[A1, A2, A3, A4, A5, R any](f *func(A1, A2, A3, A4, A5) R) StackLiteral[func(A1, A2, A3, A4, A5) R] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5) R]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvokeValue5[A1, A2, A3, A4, A5, R]))
	}
	return newStack(f, invoke)
}

// StackValue6 wraps a 6-argument closure in a stack literal.
func StackValue6[A1, A2, A3, A4, A5, A6, R any](f *func(A1, A2, A3, A4, A5, A6) R) StackLiteral[func(A1, A2, A3, A4, A5, A6) R] {
	key := reflect.TypeFor[func(A1, A2, A3, A4, A5, A6) R]()
	invoke := stackThunks.lookup(key)
	if invoke == nil {
		invoke = stackThunks.store(key, abi.FuncPtr(stackInvokeValue6[A1, A2, A3, A4, A5, A6, R]))
	}
	return newStack(f, invoke)
}
