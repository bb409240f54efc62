package wasmblock

import (
	"go.uber.org/zap"

	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/wasmblock/internal/memory"
)

var sizeClasses = [...]uint32{16, 32, 64, 128, 256}

const heapAlign = 16

func classFor(n uint32) uint32 {
	for _, c := range sizeClasses {
		if n <= c {
			return c
		}
	}
	return abi.AlignTo(n, heapAlign)
}

// heap is a size-class allocator over guest linear memory. Blocks are
// bump allocated from base and recycled through per-size free lists.
type heap struct {
	mem  *memory.Wrapper
	top  uint32
	free map[uint32][]uint32
	live map[uint32]uint32
}

// HeapStats describes guest heap usage.
type HeapStats struct {
	Live      int
	LiveBytes uint64
	Top       uint32
	Pages     uint32
}

func newHeap(mem *memory.Wrapper, base uint32) *heap {
	return &heap{
		mem:  mem,
		top:  abi.AlignTo(base, heapAlign),
		free: make(map[uint32][]uint32),
		live: make(map[uint32]uint32),
	}
}

func (h *heap) alloc(n uint32) (uint32, error) {
	if n == 0 {
		return 0, errors.InvalidInput(errors.PhaseAlloc, "zero-size allocation")
	}
	size := classFor(n)

	if list := h.free[size]; len(list) > 0 {
		p := list[len(list)-1]
		h.free[size] = list[:len(list)-1]
		if err := h.mem.Zero(p, size); err != nil {
			return 0, err
		}
		h.live[p] = size
		return p, nil
	}

	p := h.top
	end := uint64(p) + uint64(size)
	if end > uint64(h.mem.Size()) {
		need := (end - uint64(h.mem.Size()) + memory.PageSize - 1) / memory.PageSize
		if _, err := h.mem.Grow(uint32(need)); err != nil {
			return 0, errors.AllocationFailed(errors.PhaseAlloc, uintptr(n), err)
		}
		Logger().Debug("guest memory grown", zap.Uint64("pages", need), zap.Uint32("top", h.top))
	}
	h.top = uint32(end)
	h.live[p] = size
	return p, nil
}

func (h *heap) release(p uint32) error {
	size, ok := h.live[p]
	if !ok {
		return errors.Contract(errors.PhaseAlloc, uintptr(p), "free of unowned guest pointer")
	}
	delete(h.live, p)
	h.free[size] = append(h.free[size], p)
	return nil
}

func (h *heap) owns(p uint32) bool {
	_, ok := h.live[p]
	return ok
}

func (h *heap) stats() HeapStats {
	s := HeapStats{
		Live:  len(h.live),
		Top:   h.top,
		Pages: h.mem.Size() / memory.PageSize,
	}
	for _, size := range h.live {
		s.LiveBytes += uint64(size)
	}
	return s
}
