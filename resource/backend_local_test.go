package resource

import (
	"errors"
	"sync"
	"testing"
)

func TestLocalBackend_Basic(t *testing.T) {
	b := NewLocalBackend()

	handle, err := b.Create(TypeClosure, "test value")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if handle == 0 {
		t.Fatal("Expected non-zero handle")
	}

	val, ok := b.Get(handle)
	if !ok {
		t.Fatal("Get failed")
	}
	if val != "test value" {
		t.Fatalf("Expected 'test value', got %v", val)
	}

	typeID, ok := b.TypeID(handle)
	if !ok || typeID != TypeClosure {
		t.Fatalf("TypeID = %d, %v", typeID, ok)
	}

	val, ok = b.Drop(handle)
	if !ok {
		t.Fatal("Drop failed")
	}
	if val != "test value" {
		t.Fatalf("Expected 'test value', got %v", val)
	}

	if _, ok = b.Get(handle); ok {
		t.Fatal("Expected Get to fail after Drop")
	}
	if _, ok = b.Drop(handle); ok {
		t.Fatal("second Drop must fail")
	}
}

func TestLocalBackend_HandleReuse(t *testing.T) {
	b := NewLocalBackend()

	h1, _ := b.Create(TypeClosure, 1)
	h2, _ := b.Create(TypeClosure, 2)
	h3, _ := b.Create(TypeClosure, 3)

	b.Drop(h2)
	b.Drop(h1)

	h4, _ := b.Create(TypeClosure, 4)
	h5, _ := b.Create(TypeClosure, 5)

	if h4 != h1 || h5 != h2 {
		t.Fatalf("expected LIFO reuse, got %d %d", h4, h5)
	}

	for _, h := range []Handle{h3, h4, h5} {
		if _, ok := b.Get(h); !ok {
			t.Fatalf("handle %d should be valid", h)
		}
	}
	if v, _ := b.Get(h4); v != 4 {
		t.Fatalf("reused slot holds %v", v)
	}
}

type countingDropper struct {
	mu    sync.Mutex
	count int
}

func (d *countingDropper) Drop() {
	d.mu.Lock()
	d.count++
	d.mu.Unlock()
}

func TestLocalBackend_Close(t *testing.T) {
	b := NewLocalBackend()
	d := &countingDropper{}

	b.Create(TypeClosure, d)
	b.Create(TypeClosure, "plain")

	if err := b.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if d.count != 1 {
		t.Fatalf("Close ran Drop %d times, want 1", d.count)
	}

	_, err := b.Create(TypeClosure, "test")
	if !errors.Is(err, ErrClosed) {
		t.Fatal("Expected ErrClosed after Close")
	}

	if err := b.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
	if d.count != 1 {
		t.Fatal("second Close must not drop again")
	}
}

func TestLocalBackend_Concurrent(t *testing.T) {
	b := NewLocalBackend()
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			h, _ := b.Create(TypeClosure, id)
			if v, ok := b.Get(h); !ok || v != id {
				t.Errorf("handle %d resolved to %v", h, v)
			}
			b.Drop(h)
		}(i)
	}

	wg.Wait()
	if b.Len() != 0 {
		t.Fatalf("Len = %d after all drops", b.Len())
	}
}

func TestLocalBackend_Len(t *testing.T) {
	b := NewLocalBackend()

	if b.Len() != 0 {
		t.Fatal("Expected Len() == 0 initially")
	}

	h1, _ := b.Create(TypeClosure, "a")
	h2, _ := b.Create(TypeClosure, "b")
	b.Create(TypeClosure, "c")

	if b.Len() != 3 {
		t.Fatalf("Expected Len() == 3, got %d", b.Len())
	}

	b.Drop(h1)
	if b.Len() != 2 {
		t.Fatalf("Expected Len() == 2, got %d", b.Len())
	}

	b.Drop(h2)
	if b.Len() != 1 {
		t.Fatalf("Expected Len() == 1, got %d", b.Len())
	}
}

func TestLocalBackend_Each(t *testing.T) {
	b := NewLocalBackend()

	b.Create(TypeClosure, "a")
	b.Create(TypeGuestClosure, "b")
	b.Create(TypeClosure, "c")

	count := 0
	b.Each(func(h Handle, typeID TypeID, value any) bool {
		count++
		return true
	})

	if count != 3 {
		t.Fatalf("Expected to iterate over 3 items, got %d", count)
	}

	count = 0
	b.Each(func(h Handle, typeID TypeID, value any) bool {
		count++
		return false
	})

	if count != 1 {
		t.Fatalf("Expected to iterate over 1 item (early term), got %d", count)
	}
}

func TestLocalBackend_InvalidHandle(t *testing.T) {
	b := NewLocalBackend()

	if _, ok := b.Get(0); ok {
		t.Fatal("Handle 0 should be invalid")
	}
	if _, ok := b.TypeID(0); ok {
		t.Fatal("Handle 0 should be invalid for TypeID")
	}
	if _, ok := b.Drop(0); ok {
		t.Fatal("Handle 0 should fail Drop")
	}

	if _, ok := b.Get(999); ok {
		t.Fatal("Non-existent handle should be invalid")
	}
	if _, ok := b.Drop(999); ok {
		t.Fatal("Non-existent handle should fail Drop")
	}
}
