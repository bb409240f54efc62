// Package abi describes the in-memory shape of block literals.
//
// A block literal starts with a fixed header:
//
//	isa        pointer  runtime class tag (stack, malloc, global)
//	flags      int32    refcount (x2) and capability bits
//	reserved   int32
//	invoke     pointer  entry point, receives the literal as first argument
//	descriptor pointer  size, optional copy/dispose helpers, optional signature
//
// The header is 32 bytes on 64-bit hosts and 20 bytes on wasm32. Captured
// state follows the header. The descriptor's Size field covers the whole
// literal, header included.
//
// The package has no knowledge of Go closures. It provides the layout types,
// flag arithmetic shared by every runtime, a per-target layout calculator and
// the native type-encoding used for block signatures.
package abi
