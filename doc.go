// Package blocks bridges Go closures and the native closure ABI ("blocks").
//
// Native APIs accept closures as reference-counted objects with a fixed header
// (isa, flags, reserved, invoke, descriptor) followed by captured state. This
// module builds such objects from Go functions, invokes them, and takes part in
// the foreign runtime's reference counting.
//
// # Architecture Overview
//
//	blocks/          Root package with the Runtime, Allocator and Config types
//	├── abi/         Header, flags, descriptor tiers, per-target layouts, signatures
//	├── block/       Typed blocks, storage-class constructors, thunks, Retained
//	├── completion/  Single-shot completion blocks adapted to awaitable futures
//	├── runtime/     In-process emulation of the native copy/release runtime
//	├── resource/    Handle table holding captured Go payloads
//	├── wasmblock/   wasm32 foreign runtime hosted in wazero
//	├── errors/      Structured error types
//	└── cmd/         blockscope inspector
//
// # Quick Start
//
// Stack blocks borrow a closure for the duration of one call:
//
//	inc := func(x int32) int32 { return x + 1 }
//	lit := block.StackValue1(&inc)
//	fmt.Println(block.CallValue1(lit.Block(), 41)) // 42
//
// Heap blocks own their closure and are released through the runtime:
//
//	r := block.Heap0[block.Esc](func() { n++ }, block.OnDispose(func() { done = true }))
//	block.Call0(r.Block())
//	r.Release() // last reference: dispose runs, done == true
//
// Completion handlers become futures:
//
//	fut, handler := completion.Err()
//	api.DoWork(handler.Leak())
//	_, err := fut.Await(ctx)
//
// # Capability Tiers
//
// Block pointers carry a marker type: NoEsc, Esc, Send or Sync. Binding code
// constrains its parameters with block.Escapes, block.Sendable or
// block.Shareable so passing a stack block to an API that stores it does not
// compile.
//
// # Memory Model
//
// Heap literals are placed in memory owned by the foreign runtime and hold a
// handle to the Go closure rather than a Go pointer. The closure stays
// reachable through the handle table until the dispose helper removes it.
package blocks
