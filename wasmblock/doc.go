// Package wasmblock is a block runtime hosted in a WebAssembly guest.
//
// Literals are laid out at the wasm32 ABI inside guest linear memory:
//
//	0   isa         class object address
//	4   flags       refcount and feature bits
//	8   reserved
//	12  invoke      function table index
//	16  descriptor  descriptor address
//	20  payload     handle of the captured Go closure
//
// A synthesized guest module calls literals the way clang-compiled wasm32
// code does. invoke_N loads the invoke slot out of the header and issues
// call_indirect, which lands in the host thunk for arity N. The thunk looks
// the payload up and runs the Go closure. Release of the last reference
// calls the guest dispose export, which loads the dispose helper out of the
// descriptor and calls it through the table; the helper drops the payload.
//
// Arguments and results travel as one 64-bit core value each. Go scalars
// flatten through their WIT primitive type:
//
//	r, _ := wasmblock.New(ctx, nil)
//	add, _ := wasmblock.NewBlock2(r, func(a, b int32) int32 { return a + b })
//	sum, _ := wasmblock.Call2[int32](ctx, r, add, int32(40), int32(2)) // 42
//	_ = r.Release(ctx, add)
package wasmblock
