// Package errors provides structured error types for the blocks bridge.
//
// Errors are categorized by Phase (which part of a block's life cycle failed)
// and Kind (error category). The Error type carries the block address, its
// storage class, the Go signature involved and an optional cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseInvoke, errors.KindDisposed).
//		Block(uintptr(ptr)).
//		Class("malloc").
//		Signature("func(int32) int32").
//		Detail("payload handle %d already released", h).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.Disposed(errors.PhaseInvoke, addr)
//	err := errors.OutOfBounds(errors.PhaseGuest, addr, 24, memSize)
//
// Contract violations that cannot be returned (a copy helper called on a heap
// literal, a double dispose) are raised as panics whose value is an *Error, so
// recover sites can still match them with errors.Is.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
