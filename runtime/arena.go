package runtime

import (
	"sync"
	"unsafe"

	"github.com/wippyai/blocks/errors"
)

// Slot size classes. Literals built by this module are 40 bytes; larger
// foreign literals land in the bigger classes.
var slotClasses = [...]uintptr{32, 64, 128, 256}

const maxSlot = 256

// pageSource provides raw memory outside the Go heap.
type pageSource interface {
	Map(size int) ([]byte, error)
	Unmap(b []byte) error
}

// Arena is a slab allocator for block literal storage. Small requests are
// carved from chunk mappings into per-class free lists; requests above the
// largest class get a dedicated mapping. The Go garbage collector never
// scans arena memory.
type Arena struct {
	source    pageSource
	live      map[unsafe.Pointer]allocation
	chunks    [][]byte
	free      [len(slotClasses)][]unsafe.Pointer
	chunkSize int
	mu        sync.Mutex
	closed    bool
}

type allocation struct {
	mapping []byte // dedicated mapping, nil for slab slots
	size    uintptr
	class   int8
}

// ArenaStats describes arena occupancy.
type ArenaStats struct {
	Chunks    int
	LiveSlots int
	LiveLarge int
	FreeSlots int
}

// NewArena creates an arena that maps chunkSize bytes at a time.
func NewArena(chunkSize int) *Arena {
	return newArena(defaultSource(), chunkSize)
}

func newArena(src pageSource, chunkSize int) *Arena {
	return &Arena{
		source:    src,
		chunkSize: chunkSize,
		live:      make(map[unsafe.Pointer]allocation),
	}
}

func classFor(size uintptr) int {
	for i, c := range slotClasses {
		if size <= c {
			return i
		}
	}
	return -1
}

// Malloc returns zeroed storage of at least size bytes, aligned to 16.
func (a *Arena) Malloc(size uintptr) (unsafe.Pointer, error) {
	if size == 0 {
		size = 1
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("arena closed").
			Build()
	}

	if size > maxSlot {
		m, err := a.source.Map(int(size))
		if err != nil {
			return nil, errors.AllocationFailed(errors.PhaseAlloc, size, err)
		}
		p := unsafe.Pointer(unsafe.SliceData(m))
		a.live[p] = allocation{mapping: m, size: size, class: -1}
		return p, nil
	}

	class := classFor(size)
	if len(a.free[class]) == 0 {
		if err := a.refill(class); err != nil {
			return nil, errors.AllocationFailed(errors.PhaseAlloc, size, err)
		}
	}

	list := a.free[class]
	p := list[len(list)-1]
	a.free[class] = list[:len(list)-1]
	clear(unsafe.Slice((*byte)(p), slotClasses[class]))
	a.live[p] = allocation{size: size, class: int8(class)}
	return p, nil
}

// refill maps one chunk and splits it into slots of the given class.
func (a *Arena) refill(class int) error {
	chunk, err := a.source.Map(a.chunkSize)
	if err != nil {
		return err
	}
	a.chunks = append(a.chunks, chunk)

	slot := slotClasses[class]
	n := uintptr(len(chunk)) / slot
	base := unsafe.Pointer(unsafe.SliceData(chunk))
	for i := n; i > 0; i-- {
		a.free[class] = append(a.free[class], unsafe.Add(base, (i-1)*slot))
	}
	return nil
}

// Free returns storage obtained from Malloc. Freeing an unknown or already
// freed pointer is an error.
func (a *Arena) Free(p unsafe.Pointer) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	alloc, ok := a.live[p]
	if !ok {
		return errors.Contract(errors.PhaseAlloc, uintptr(p), "free of memory not owned by the arena")
	}
	delete(a.live, p)

	if alloc.mapping != nil {
		return a.source.Unmap(alloc.mapping)
	}
	a.free[alloc.class] = append(a.free[alloc.class], p)
	return nil
}

// Owns reports whether p is a live allocation of this arena.
func (a *Arena) Owns(p unsafe.Pointer) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.live[p]
	return ok
}

// SizeOf returns the requested size of a live allocation.
func (a *Arena) SizeOf(p unsafe.Pointer) (uintptr, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	alloc, ok := a.live[p]
	return alloc.size, ok
}

// Stats returns a snapshot of arena occupancy.
func (a *Arena) Stats() ArenaStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	s := ArenaStats{Chunks: len(a.chunks)}
	for _, alloc := range a.live {
		if alloc.mapping != nil {
			s.LiveLarge++
		} else {
			s.LiveSlots++
		}
	}
	for _, l := range a.free {
		s.FreeSlots += len(l)
	}
	return s
}

// Close unmaps all memory. Pointers handed out earlier become invalid.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.closed = true

	var firstErr error
	for p, alloc := range a.live {
		if alloc.mapping != nil {
			if err := a.source.Unmap(alloc.mapping); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		delete(a.live, p)
	}
	for _, c := range a.chunks {
		if err := a.source.Unmap(c); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.chunks = nil
	for i := range a.free {
		a.free[i] = nil
	}
	return firstErr
}
