// Package block turns Go closures into block literals that foreign code can
// invoke, retain and release.
//
// # Storage Classes
//
// Every constructor exists for arities 0 through 6, in a void form (StackN,
// HeapN, StaticN) and a value-returning form (StackValueN, HeapValueN,
// StaticValueN):
//
//	Stack   borrowed capture, lives in the caller's frame, zero allocations,
//	        must not outlive the call it is passed to
//	Heap    owned capture, allocated by a runtime with one reference,
//	        disposed exactly once when the last reference is released
//	Static  no capture, the function itself is the invoke entry point,
//	        lives for the rest of the process
//
// Stack literals are values:
//
//	f := func(x int32) int32 { return x + 1 }
//	lit := block.StackValue1(&f)
//	n := block.CallValue1(lit.Block(), 41) // 42
//
// Heap literals are owned through a Retained handle:
//
//	r := block.Heap1[block.Send](func(err error) { ... }, block.OnDispose(cleanup))
//	native.Submit(r.Leak().Ptr()) // the foreign side now owns the reference
//
// # Capability Markers
//
// Block[F, M] carries a marker M recording what the foreign side may do with
// the literal: NoEsc, Esc, Send or Sync, weakest first. Consumers state their
// requirement as a constraint and the compiler rejects weaker blocks:
//
//	func Async[M block.Sendable](b *block.Block[func(), M]) { ... }
//
//	lit := block.Stack0(&f)
//	Async(lit.Block()) // does not compile: NoEsc is not Sendable
//
// NoEscape, AsEscaping and AsSend weaken a marker without touching the
// literal. There is no conversion to a stronger marker.
//
// # Invocation
//
// CallN and CallValueN invoke a block through its invoke slot with the
// literal pointer as the first argument, the same way foreign code does.
// Panics inside the closure unwind through the caller unless SetPanicPolicy
// selects PanicAbort.
//
// # Memory
//
// Heap literals live in runtime memory that the garbage collector does not
// scan. Their payload slot holds a handle into a table that keeps the Go
// closure reachable; dispose removes the handle and runs the OnDispose hook.
// Nothing is released implicitly: every Retained must be released or leaked.
package block
