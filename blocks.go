package blocks

import "unsafe"

// Runtime is the reference-counting surface of a foreign closure runtime.
// It mirrors the two native entry points the bridge calls directly:
// "copy a closure object" and "release a closure object".
type Runtime interface {
	// Copy returns a counted reference to blk. Heap literals are retained in
	// place and global literals are returned unchanged. Copying a stack
	// literal is a contract violation. A nil blk yields nil.
	Copy(blk unsafe.Pointer) unsafe.Pointer

	// Release drops one reference. When the last reference of a heap literal
	// goes away the runtime runs its dispose helper and frees its storage.
	Release(blk unsafe.Pointer)
}

// Allocator provides the storage heap literals live in. Memory returned by
// Malloc is owned by the foreign side and is not scanned by the Go collector.
type Allocator interface {
	Malloc(size uintptr) (unsafe.Pointer, error)
	Free(p unsafe.Pointer)
}

// Host is a Runtime that also owns the allocator it frees literals with.
type Host interface {
	Runtime
	Allocator
}
