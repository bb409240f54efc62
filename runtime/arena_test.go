package runtime

import (
	"testing"
	"unsafe"
)

func TestArena_SlotReuse(t *testing.T) {
	a := NewArena(64 << 10)
	defer a.Close()

	p1, err := a.Malloc(40)
	if err != nil {
		t.Fatalf("Malloc: %v", err)
	}
	if uintptr(p1)%16 != 0 {
		t.Errorf("slot %p not 16-byte aligned", p1)
	}

	b := unsafe.Slice((*byte)(p1), 40)
	for i := range b {
		b[i] = 0xff
	}
	if err := a.Free(p1); err != nil {
		t.Fatalf("Free: %v", err)
	}

	p2, err := a.Malloc(33)
	if err != nil {
		t.Fatalf("Malloc: %v", err)
	}
	if p2 != p1 {
		t.Fatal("expected the freed 64-byte slot to be reused")
	}
	for _, v := range unsafe.Slice((*byte)(p2), 64) {
		if v != 0 {
			t.Fatal("reused slot not zeroed")
		}
	}
	if size, ok := a.SizeOf(p2); !ok || size != 33 {
		t.Errorf("SizeOf = %d, %v", size, ok)
	}
}

func TestArena_DoubleFree(t *testing.T) {
	a := NewArena(64 << 10)
	defer a.Close()

	p, _ := a.Malloc(24)
	if err := a.Free(p); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if err := a.Free(p); err == nil {
		t.Fatal("double free must fail")
	}
}

func TestArena_Large(t *testing.T) {
	a := NewArena(64 << 10)
	defer a.Close()

	p, err := a.Malloc(10000)
	if err != nil {
		t.Fatalf("Malloc: %v", err)
	}
	buf := unsafe.Slice((*byte)(p), 10000)
	buf[9999] = 1

	s := a.Stats()
	if s.LiveLarge != 1 || s.LiveSlots != 0 {
		t.Errorf("stats = %+v", s)
	}
	if !a.Owns(p) {
		t.Error("arena should own large allocation")
	}
	if err := a.Free(p); err != nil {
		t.Fatalf("Free: %v", err)
	}
	if a.Owns(p) {
		t.Error("freed allocation still owned")
	}
}

func TestArena_ManyAllocations(t *testing.T) {
	a := NewArena(4096)
	defer a.Close()

	seen := make(map[unsafe.Pointer]bool)
	var ptrs []unsafe.Pointer
	for i := 0; i < 500; i++ {
		p, err := a.Malloc(40)
		if err != nil {
			t.Fatalf("Malloc %d: %v", i, err)
		}
		if seen[p] {
			t.Fatalf("pointer %p handed out twice", p)
		}
		seen[p] = true
		ptrs = append(ptrs, p)
	}
	if a.Stats().Chunks < 2 {
		t.Error("expected more than one chunk")
	}
	for _, p := range ptrs {
		if err := a.Free(p); err != nil {
			t.Fatalf("Free: %v", err)
		}
	}
	if s := a.Stats(); s.LiveSlots != 0 {
		t.Errorf("LiveSlots = %d", s.LiveSlots)
	}
}

func TestArena_Closed(t *testing.T) {
	a := NewArena(4096)
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := a.Malloc(8); err == nil {
		t.Fatal("Malloc after Close must fail")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
