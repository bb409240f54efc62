// Package runtime is an in-process emulation of the native closure runtime.
//
// It implements blocks.Runtime (Copy, Release) and blocks.Allocator
// (Malloc, Free) with the semantics foreign code expects:
//
//	literal class   Copy                          Release
//	malloc          +1, latching at the maximum   -1; at zero: dispose, free
//	global          returned unchanged            no-op
//	stack           panics (must not escape)      no-op
//	other           copied into arena storage     n/a
//
// The reference count lives in the header flags word (logical count x2) and is
// updated with compare-and-swap, so literals may be retained and released from
// any goroutine. A count that reaches the maximum latches and the literal is
// never freed, as with the native runtime.
//
// Literal storage comes from an Arena: a slab allocator over anonymous mmap
// chunks on unix, so heap literals live outside the Go heap like malloc'd
// blocks do. Captured Go state never goes into arena memory; block literals
// store a handle to it instead.
//
// Most programs use Default, configured from BLOCKS_* environment variables:
//
//	rt := runtime.Default()
//	p := rt.Copy(blk)
//	defer rt.Release(p)
package runtime
