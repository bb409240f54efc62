package wasmblock

import (
	"testing"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/errors"
	"github.com/wippyai/blocks/wasmblock/internal/memory"
)

func TestClassFor(t *testing.T) {
	tests := []struct{ in, want uint32 }{
		{1, 16}, {16, 16}, {17, 32}, {24, 32}, {200, 256}, {257, 272}, {1000, 1008},
	}
	for _, tt := range tests {
		if got := classFor(tt.in); got != tt.want {
			t.Errorf("classFor(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestHeapReuse(t *testing.T) {
	r := newRuntime(t, nil)
	h := r.heap

	a, err := h.alloc(24)
	if err != nil {
		t.Fatal(err)
	}
	if a%heapAlign != 0 || a < heapBase {
		t.Errorf("alloc = %#x", a)
	}
	_ = r.mem.WriteU32(a, 0xffffffff)
	if err := h.release(a); err != nil {
		t.Fatal(err)
	}
	b, _ := h.alloc(20)
	if b != a {
		t.Errorf("same class not reused: %#x vs %#x", b, a)
	}
	if v, _ := r.mem.ReadU32(b); v != 0 {
		t.Errorf("reused block not zeroed: %#x", v)
	}
	if !h.owns(b) {
		t.Error("owns")
	}
	if err := h.release(b + 4); errKind(err) != errors.KindContract {
		t.Errorf("foreign free err = %v", err)
	}
	if err := h.release(b); err != nil {
		t.Fatal(err)
	}
	if err := h.release(b); err == nil {
		t.Error("double free should fail")
	}
}

func TestHeapGrows(t *testing.T) {
	r := newRuntime(t, nil)
	before := r.mem.Size()

	if _, err := r.heap.alloc(memory.PageSize); err != nil {
		t.Fatal(err)
	}
	if r.mem.Size() <= before {
		t.Errorf("memory did not grow: %d", r.mem.Size())
	}
	s := r.heap.stats()
	if s.Live != 1 || s.LiveBytes != memory.PageSize || s.Pages != r.mem.Size()/memory.PageSize {
		t.Errorf("stats = %+v", s)
	}
}

func TestHeapLimit(t *testing.T) {
	cfg := blocks.DefaultConfig()
	cfg.GuestMemoryLimitPages = 2
	r := newRuntime(t, cfg)

	_, err := r.heap.alloc(2 * memory.PageSize)
	if errKind(err) != errors.KindAllocation {
		t.Errorf("err = %v, want allocation", err)
	}
}

func TestDescriptorAllocFailureReleases(t *testing.T) {
	cfg := blocks.DefaultConfig()
	cfg.GuestMemoryPages = 1
	cfg.GuestMemoryLimitPages = 1
	r := newRuntime(t, cfg)
	h := r.heap

	// one free descriptor-sized block, no room for anything else
	spare, err := h.alloc(heapDescLayout.Size)
	if err != nil {
		t.Fatal(err)
	}
	for _, size := range []uint32{4096, 16} {
		for i := 0; i < memory.PageSize; i++ {
			if _, err := h.alloc(size); err != nil {
				break
			}
		}
	}
	if err := h.release(spare); err != nil {
		t.Fatal(err)
	}
	before := h.stats()

	const sig = "i12@?0i4i8"
	if _, err := r.descriptor(sig, false); errKind(err) != errors.KindAllocation {
		t.Fatalf("descriptor err = %v, want allocation", err)
	}
	if after := h.stats(); after.Live != before.Live || after.LiveBytes != before.LiveBytes {
		t.Errorf("heap stats = %+v, want %+v", after, before)
	}
	if len(r.descriptors) != 0 {
		t.Errorf("failed descriptor cached: %v", r.descriptors)
	}
	if p, err := h.alloc(heapDescLayout.Size); err != nil || p != spare {
		t.Errorf("descriptor block not returned: %#x, %v", p, err)
	}
}
