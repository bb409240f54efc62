package block

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/wippyai/blocks/runtime"
)

func sum(xs ...int) int {
	total := 100
	for _, x := range xs {
		total += x
	}
	return total
}

// TestArities invokes every arity in every storage class through the invoke
// slot and compares against calling the closure directly.
func TestArities(t *testing.T) {
	rt, err := runtime.New(nil)
	if err != nil {
		t.Fatalf("runtime.New: %v", err)
	}
	defer rt.Close()

	t.Run("0", func(t *testing.T) {
		want := 100

		fv := func() int { return sum() }
		if got := fv(); got != want {
			t.Fatalf("direct call = %d, want %d", got, want)
		}
		slv := StackValue0(&fv)
		if got := CallValue0(slv.Block()); got != want {
			t.Errorf("stack value = %d, want %d", got, want)
		}
		hv := HeapValue0[Esc](fv, WithRuntime(rt))
		if got := CallValue0(hv.Block()); got != want {
			t.Errorf("heap value = %d, want %d", got, want)
		}
		hv.Release()
		sv := StaticValue0(func(_ unsafe.Pointer) int { return sum() })
		if got := CallValue0(sv); got != want {
			t.Errorf("static value = %d, want %d", got, want)
		}

		var got int
		f := func() { got = sum() }
		sl := Stack0(&f)
		Call0(sl.Block())
		if got != want {
			t.Errorf("stack = %d, want %d", got, want)
		}
		got = 0
		h := Heap0[Send](f, WithRuntime(rt))
		Call0(h.Block())
		h.Release()
		if got != want {
			t.Errorf("heap = %d, want %d", got, want)
		}
		got = 0
		s := Static0(func(_ unsafe.Pointer) { got = sum() })
		Call0(s)
		if got != want {
			t.Errorf("static = %d, want %d", got, want)
		}
	})

	t.Run("1", func(t *testing.T) {
		want := 101

		fv := func(a1 int) int { return sum(a1) }
		if got := fv(1); got != want {
			t.Fatalf("direct call = %d, want %d", got, want)
		}
		slv := StackValue1(&fv)
		if got := CallValue1(slv.Block(), 1); got != want {
			t.Errorf("stack value = %d, want %d", got, want)
		}
		hv := HeapValue1[Esc](fv, WithRuntime(rt))
		if got := CallValue1(hv.Block(), 1); got != want {
			t.Errorf("heap value = %d, want %d", got, want)
		}
		hv.Release()
		sv := StaticValue1(func(_ unsafe.Pointer, a1 int) int { return sum(a1) })
		if got := CallValue1(sv, 1); got != want {
			t.Errorf("static value = %d, want %d", got, want)
		}

		var got int
		f := func(a1 int) { got = sum(a1) }
		sl := Stack1(&f)
		Call1(sl.Block(), 1)
		if got != want {
			t.Errorf("stack = %d, want %d", got, want)
		}
		got = 0
		h := Heap1[Send](f, WithRuntime(rt))
		Call1(h.Block(), 1)
		h.Release()
		if got != want {
			t.Errorf("heap = %d, want %d", got, want)
		}
		got = 0
		s := Static1(func(_ unsafe.Pointer, a1 int) { got = sum(a1) })
		Call1(s, 1)
		if got != want {
			t.Errorf("static = %d, want %d", got, want)
		}
	})

	t.Run("2", func(t *testing.T) {
		want := 103

		fv := func(a1, a2 int) int { return sum(a1, a2) }
		if got := fv(1, 2); got != want {
			t.Fatalf("direct call = %d, want %d", got, want)
		}
		slv := StackValue2(&fv)
		if got := CallValue2(slv.Block(), 1, 2); got != want {
			t.Errorf("stack value = %d, want %d", got, want)
		}
		hv := HeapValue2[Esc](fv, WithRuntime(rt))
		if got := CallValue2(hv.Block(), 1, 2); got != want {
			t.Errorf("heap value = %d, want %d", got, want)
		}
		hv.Release()
		sv := StaticValue2(func(_ unsafe.Pointer, a1, a2 int) int { return sum(a1, a2) })
		if got := CallValue2(sv, 1, 2); got != want {
			t.Errorf("static value = %d, want %d", got, want)
		}

		var got int
		f := func(a1, a2 int) { got = sum(a1, a2) }
		sl := Stack2(&f)
		Call2(sl.Block(), 1, 2)
		if got != want {
			t.Errorf("stack = %d, want %d", got, want)
		}
		got = 0
		h := Heap2[Send](f, WithRuntime(rt))
		Call2(h.Block(), 1, 2)
		h.Release()
		if got != want {
			t.Errorf("heap = %d, want %d", got, want)
		}
		got = 0
		s := Static2(func(_ unsafe.Pointer, a1, a2 int) { got = sum(a1, a2) })
		Call2(s, 1, 2)
		if got != want {
			t.Errorf("static = %d, want %d", got, want)
		}
	})

	t.Run("3", func(t *testing.T) {
		want := 106

		fv := func(a1, a2, a3 int) int { return sum(a1, a2, a3) }
		if got := fv(1, 2, 3); got != want {
			t.Fatalf("direct call = %d, want %d", got, want)
		}
		slv := StackValue3(&fv)
		if got := CallValue3(slv.Block(), 1, 2, 3); got != want {
			t.Errorf("stack value = %d, want %d", got, want)
		}
		hv := HeapValue3[Esc](fv, WithRuntime(rt))
		if got := CallValue3(hv.Block(), 1, 2, 3); got != want {
			t.Errorf("heap value = %d, want %d", got, want)
		}
		hv.Release()
		sv := StaticValue3(func(_ unsafe.Pointer, a1, a2, a3 int) int { return sum(a1, a2, a3) })
		if got := CallValue3(sv, 1, 2, 3); got != want {
			t.Errorf("static value = %d, want %d", got, want)
		}

		var got int
		f := func(a1, a2, a3 int) { got = sum(a1, a2, a3) }
		sl := Stack3(&f)
		Call3(sl.Block(), 1, 2, 3)
		if got != want {
			t.Errorf("stack = %d, want %d", got, want)
		}
		got = 0
		h := Heap3[Send](f, WithRuntime(rt))
		Call3(h.Block(), 1, 2, 3)
		h.Release()
		if got != want {
			t.Errorf("heap = %d, want %d", got, want)
		}
		got = 0
		s := Static3(func(_ unsafe.Pointer, a1, a2, a3 int) { got = sum(a1, a2, a3) })
		Call3(s, 1, 2, 3)
		if got != want {
			t.Errorf("static = %d, want %d", got, want)
		}
	})

	t.Run("4", func(t *testing.T) {
		want := 110

		fv := func(a1, a2, a3, a4 int) int { return sum(a1, a2, a3, a4) }
		if got := fv(1, 2, 3, 4); got != want {
			t.Fatalf("direct call = %d, want %d", got, want)
		}
		slv := StackValue4(&fv)
		if got := CallValue4(slv.Block(), 1, 2, 3, 4); got != want {
			t.Errorf("stack value = %d, want %d", got, want)
		}
		hv := HeapValue4[Esc](fv, WithRuntime(rt))
		if got := CallValue4(hv.Block(), 1, 2, 3, 4); got != want {
			t.Errorf("heap value = %d, want %d", got, want)
		}
		hv.Release()
		sv := StaticValue4(func(_ unsafe.Pointer, a1, a2, a3, a4 int) int { return sum(a1, a2, a3, a4) })
		if got := CallValue4(sv, 1, 2, 3, 4); got != want {
			t.Errorf("static value = %d, want %d", got, want)
		}

		var got int
		f := func(a1, a2, a3, a4 int) { got = sum(a1, a2, a3, a4) }
		sl := Stack4(&f)
		Call4(sl.Block(), 1, 2, 3, 4)
		if got != want {
			t.Errorf("stack = %d, want %d", got, want)
		}
		got = 0
		h := Heap4[Send](f, WithRuntime(rt))
		Call4(h.Block(), 1, 2, 3, 4)
		h.Release()
		if got != want {
			t.Errorf("heap = %d, want %d", got, want)
		}
		got = 0
		s := Static4(func(_ unsafe.Pointer, a1, a2, a3, a4 int) { got = sum(a1, a2, a3, a4) })
		Call4(s, 1, 2, 3, 4)
		if got != want {
			t.Errorf("static = %d, want %d", got, want)
		}
	})

	t.Run("5", func(t *testing.T) {
		want := 115

		fv := func(a1, a2, a3, a4, a5 int) int { return sum(a1, a2, a3, a4, a5) }
		if got := fv(1, 2, 3, 4, 5); got != want {
			t.Fatalf("direct call = %d, want %d", got, want)
		}
		slv := StackValue5(&fv)
		if got := CallValue5(slv.Block(), 1, 2, 3, 4, 5); got != want {
			t.Errorf("stack value = %d, want %d", got, want)
		}
		hv := HeapValue5[Esc](fv, WithRuntime(rt))
		if got := CallValue5(hv.Block(), 1, 2, 3, 4, 5); got != want {
			t.Errorf("heap value = %d, want %d", got, want)
		}
		hv.Release()
		sv := StaticValue5(func(_ unsafe.Pointer, a1, a2, a3, a4, a5 int) int { return sum(a1, a2, a3, a4, a5) })
		if got := CallValue5(sv, 1, 2, 3, 4, 5); got != want {
			t.Errorf("static value = %d, want %d", got, want)
		}

		var got int
		f := func(a1, a2, a3, a4, a5 int) { got = sum(a1, a2, a3, a4, a5) }
		sl := Stack5(&f)
		Call5(sl.Block(), 1, 2, 3, 4, 5)
		if got != want {
			t.Errorf("stack = %d, want %d", got, want)
		}
		got = 0
		h := Heap5[Send](f, WithRuntime(rt))
		Call5(h.Block(), 1, 2, 3, 4, 5)
		h.Release()
		if got != want {
			t.Errorf("heap = %d, want %d", got, want)
		}
		got = 0
		s := Static5(func(_ unsafe.Pointer, a1, a2, a3, a4, a5 int) { got = sum(a1, a2, a3, a4, a5) })
		Call5(s, 1, 2, 3, 4, 5)
		if got != want {
			t.Errorf("static = %d, want %d", got, want)
		}
	})

	t.Run("6", func(t *testing.T) {
		want := 121

		fv := func(a1, a2, a3, a4, a5, a6 int) int { return sum(a1, a2, a3, a4, a5, a6) }
		if got := fv(1, 2, 3, 4, 5, 6); got != want {
			t.Fatalf("direct call = %d, want %d", got, want)
		}
		slv := StackValue6(&fv)
		if got := CallValue6(slv.Block(), 1, 2, 3, 4, 5, 6); got != want {
			t.Errorf("stack value = %d, want %d", got, want)
		}
		hv := HeapValue6[Esc](fv, WithRuntime(rt))
		if got := CallValue6(hv.Block(), 1, 2, 3, 4, 5, 6); got != want {
			t.Errorf("heap value = %d, want %d", got, want)
		}
		hv.Release()
		sv := StaticValue6(func(_ unsafe.Pointer, a1, a2, a3, a4, a5, a6 int) int { return sum(a1, a2, a3, a4, a5, a6) })
		if got := CallValue6(sv, 1, 2, 3, 4, 5, 6); got != want {
			t.Errorf("static value = %d, want %d", got, want)
		}

		var got int
		f := func(a1, a2, a3, a4, a5, a6 int) { got = sum(a1, a2, a3, a4, a5, a6) }
		sl := Stack6(&f)
		Call6(sl.Block(), 1, 2, 3, 4, 5, 6)
		if got != want {
			t.Errorf("stack = %d, want %d", got, want)
		}
		got = 0
		h := Heap6[Send](f, WithRuntime(rt))
		Call6(h.Block(), 1, 2, 3, 4, 5, 6)
		h.Release()
		if got != want {
			t.Errorf("heap = %d, want %d", got, want)
		}
		got = 0
		s := Static6(func(_ unsafe.Pointer, a1, a2, a3, a4, a5, a6 int) { got = sum(a1, a2, a3, a4, a5, a6) })
		Call6(s, 1, 2, 3, 4, 5, 6)
		if got != want {
			t.Errorf("static = %d, want %d", got, want)
		}
	})

	if s := rt.Stats(); s.Live != 0 {
		t.Errorf("%d literals leaked", s.Live)
	}
}

func ExampleStackValue1() {
	f := func(x int32) int32 { return x + 1 }
	lit := StackValue1(&f)
	fmt.Println(CallValue1(lit.Block(), 41))
	// Output: 42
}
