package wasmblock

import (
	"context"
	stderrors "errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/blocks"
	"github.com/wippyai/blocks/abi"
	"github.com/wippyai/blocks/errors"
)

func newRuntime(t *testing.T, cfg *blocks.Config) *Runtime {
	t.Helper()
	ctx := context.Background()
	r, err := New(ctx, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { r.Close(ctx) })
	return r
}

func errKind(err error) errors.Kind {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func TestCounterScenario(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	count, drops := 0, 0
	p, err := NewBlock0(r, func() int32 {
		count++
		return int32(count)
	}, OnDispose(func() { drops++ }))
	if err != nil {
		t.Fatal(err)
	}

	for want := int32(1); want <= 2; want++ {
		got, err := Call0[int32](ctx, r, p)
		if err != nil {
			t.Fatalf("Call0: %v", err)
		}
		if got != want {
			t.Errorf("Call0 = %d, want %d", got, want)
		}
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	q, err := r.Copy(p)
	if err != nil || q != p {
		t.Fatalf("Copy = %#x, %v", q, err)
	}
	if n, _ := r.Refcount(p); n != 2 {
		t.Errorf("refcount after copy = %d, want 2", n)
	}

	if err := r.Release(ctx, p); err != nil {
		t.Fatal(err)
	}
	if drops != 0 {
		t.Fatalf("dropped early")
	}
	if err := r.Release(ctx, p); err != nil {
		t.Fatal(err)
	}
	if drops != 1 {
		t.Errorf("drops = %d, want 1", drops)
	}

	s := r.Stats()
	if s.Disposals != 1 || s.Frees != 1 || s.Copies != 1 || s.Releases != 2 {
		t.Errorf("stats = %+v", s)
	}
	if s.Payloads != 0 {
		t.Errorf("payloads = %d, want 0", s.Payloads)
	}

	err = r.Release(ctx, p)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRelease, Kind: errors.KindContract}) {
		t.Errorf("extra release err = %v", err)
	}
	if drops != 1 {
		t.Errorf("drops after extra release = %d", drops)
	}
}

func TestArities(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	type build func() (uint32, error)
	tests := []struct {
		build build
		args  []int64
		want  int64
	}{
		{func() (uint32, error) { return NewBlock0(r, func() int64 { return 7 }) }, nil, 7},
		{func() (uint32, error) {
			return NewBlock1(r, func(a int64) int64 { return a * 2 })
		}, []int64{21}, 42},
		{func() (uint32, error) {
			return NewBlock2(r, func(a, b int64) int64 { return a - b })
		}, []int64{50, 8}, 42},
		{func() (uint32, error) {
			return NewBlock3(r, func(a, b, c int64) int64 { return a + b + c })
		}, []int64{1, 2, 3}, 6},
		{func() (uint32, error) {
			return NewBlock4(r, func(a, b, c, d int64) int64 { return a*1000 + b*100 + c*10 + d })
		}, []int64{1, 2, 3, 4}, 1234},
		{func() (uint32, error) {
			return NewBlock5(r, func(a, b, c, d, e int64) int64 { return a + b + c + d + e })
		}, []int64{-1, -2, -3, -4, -5}, -15},
		{func() (uint32, error) {
			return NewBlock6(r, func(a, b, c, d, e, f int64) int64 { return a*b + c*d + e*f })
		}, []int64{1, 2, 3, 4, 5, 6}, 44},
	}

	for arity, tt := range tests {
		p, err := tt.build()
		if err != nil {
			t.Fatalf("arity %d: build: %v", arity, err)
		}
		args := make([]uint64, len(tt.args))
		for i, a := range tt.args {
			args[i] = Lower(a)
		}
		got, err := r.Invoke(ctx, p, args...)
		if err != nil {
			t.Fatalf("arity %d: Invoke: %v", arity, err)
		}
		if Lift[int64](got) != tt.want {
			t.Errorf("arity %d: got %d, want %d", arity, Lift[int64](got), tt.want)
		}
		info, err := r.Inspect(p)
		if err != nil {
			t.Fatal(err)
		}
		if info.Invoke != r.slots.ThunkSlot(arity) {
			t.Errorf("arity %d: invoke slot = %d", arity, info.Invoke)
		}
		if err := r.Release(ctx, p); err != nil {
			t.Errorf("arity %d: Release: %v", arity, err)
		}
	}
}

func TestTypedCall(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	p, err := NewBlock3(r, func(neg bool, x float32, scale uint8) float64 {
		v := float64(x) * float64(scale)
		if neg {
			v = -v
		}
		return v
	})
	if err != nil {
		t.Fatal(err)
	}
	got, err := Call3[float64](ctx, r, p, true, float32(1.5), uint8(4))
	if err != nil {
		t.Fatal(err)
	}
	if got != -6 {
		t.Errorf("Call3 = %v, want -6", got)
	}
}

func TestInspectLayout(t *testing.T) {
	r := newRuntime(t, nil)

	p, err := NewBlock2(r, func(a, b int32) int32 { return a + b })
	if err != nil {
		t.Fatal(err)
	}
	info, err := r.Inspect(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Class != abi.ClassMalloc {
		t.Errorf("class = %v", info.Class)
	}
	if info.Size != 24 {
		t.Errorf("size = %d, want 24", info.Size)
	}
	if info.Refcount != 1 {
		t.Errorf("refcount = %d, want 1", info.Refcount)
	}
	if info.Signature != "i12@?0i4i8" {
		t.Errorf("signature = %q", info.Signature)
	}
	want := abi.FlagNeedsFree | abi.FlagHasCopyDispose | abi.FlagHasSignature
	if info.Flags&want != want {
		t.Errorf("flags = %#x", info.Flags)
	}
	if info.Payload == 0 {
		t.Error("payload handle is zero")
	}
}

func TestSharedDescriptor(t *testing.T) {
	r := newRuntime(t, nil)

	p1, _ := NewBlock1(r, func(x int32) int32 { return x })
	p2, _ := NewBlock1(r, func(x int32) int32 { return -x })
	i1, _ := r.Inspect(p1)
	i2, _ := r.Inspect(p2)
	if i1.Descriptor != i2.Descriptor {
		t.Errorf("descriptors differ: %#x, %#x", i1.Descriptor, i2.Descriptor)
	}
}

func TestStatic(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	var seen uint32
	p, err := r.Static(1, func(_ context.Context, self uint32, args []uint64) uint64 {
		seen = self
		return args[0] + 1
	})
	if err != nil {
		t.Fatal(err)
	}

	got, err := r.Invoke(ctx, p, 41)
	if err != nil || got != 42 {
		t.Fatalf("Invoke = %d, %v", got, err)
	}
	if seen != p {
		t.Errorf("self = %#x, want %#x", seen, p)
	}

	q, err := r.Copy(p)
	if err != nil || q != p {
		t.Errorf("Copy = %#x, %v", q, err)
	}
	for range 3 {
		if err := r.Release(ctx, p); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := r.Invoke(ctx, p, 1); err != nil {
		t.Errorf("static invoke after release: %v", err)
	}

	info, err := r.Inspect(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Class != abi.ClassGlobal || info.Refcount != 0 {
		t.Errorf("info = %v", info)
	}
	if !info.Flags.Has(abi.FlagIsGlobal) || info.Flags.Has(abi.FlagHasCopyDispose) {
		t.Errorf("flags = %#x", info.Flags)
	}
	if info.Signature != "Q12@?0Q4" {
		t.Errorf("signature = %q", info.Signature)
	}
}

func TestStaticInvalid(t *testing.T) {
	r := newRuntime(t, nil)
	if _, err := r.Static(0, nil); errKind(err) != errors.KindInvalidInput {
		t.Errorf("nil fn err = %v", err)
	}
	raw := func(context.Context, uint32, []uint64) uint64 { return 0 }
	if _, err := r.Static(MaxArity+1, raw); errKind(err) != errors.KindUnsupported {
		t.Errorf("arity err = %v", err)
	}
}

func TestInvokeDisposed(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	p, _ := NewBlock0(r, func() int32 { return 1 })
	if err := r.Release(ctx, p); err != nil {
		t.Fatal(err)
	}
	_, err := r.Invoke(ctx, p)
	if errKind(err) != errors.KindDisposed {
		t.Errorf("err = %v, want disposed", err)
	}
	if _, err := r.Copy(p); errKind(err) != errors.KindDisposed {
		t.Errorf("Copy err = %v, want disposed", err)
	}
}

func TestInvokeArityMismatchTraps(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	p, _ := NewBlock1(r, func(x int32) int32 { return x })
	if _, err := r.Invoke(ctx, p); err == nil {
		t.Fatal("expected trap")
	}
	if got, err := Call1[int32](ctx, r, p, int32(5)); err != nil || got != 5 {
		t.Errorf("after trap: %d, %v", got, err)
	}
	if _, err := r.Invoke(ctx, p, make([]uint64, MaxArity+1)...); errKind(err) != errors.KindUnsupported {
		t.Errorf("too many args err = %v", err)
	}
}

func TestCopyHelperTraps(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	p, _ := NewBlock0(r, func() int32 { return 1 })
	dst, err := r.heap.alloc(literalLayout.Size)
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.copyFn.Call(ctx, uint64(dst), uint64(p))
	if err == nil {
		t.Fatal("copy helper should trap")
	}
	err = r.takeFault(err, errors.PhaseRetain, p)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseRetain, Kind: errors.KindContract}) {
		t.Errorf("err = %v", err)
	}
}

func TestPanicPropagates(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	p, _ := NewBlock0(r, func() int32 { panic("boom") })
	_, err := r.Invoke(ctx, p)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindPanic || e.Value != "boom" {
		t.Fatalf("err = %v", err)
	}

	ok, _ := NewBlock0(r, func() int32 { return 3 })
	if got, err := Call0[int32](ctx, r, ok); err != nil || got != 3 {
		t.Errorf("runtime unusable after panic: %d, %v", got, err)
	}
}

func TestPanicAbortLogsFatal(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic)))
	defer SetLogger(prev)

	cfg := blocks.DefaultConfig()
	cfg.PanicPolicy = blocks.PanicAbort
	r := newRuntime(t, cfg)

	p, _ := NewBlock0(r, func() int32 { panic("boom") })
	if _, err := r.Invoke(ctx, p); err == nil {
		t.Fatal("expected error")
	}
	entries := logs.FilterLevelExact(zapcore.FatalLevel).All()
	if len(entries) != 1 || entries[0].Message != "guest block closure panicked" {
		t.Errorf("fatal entries = %v", entries)
	}
}

func TestReleaseInvalid(t *testing.T) {
	ctx := context.Background()
	r := newRuntime(t, nil)

	if err := r.Release(ctx, 1024); errKind(err) != errors.KindInvalidInput {
		t.Errorf("err = %v", err)
	}
	if _, err := r.Copy(1024); errKind(err) != errors.KindInvalidInput {
		t.Errorf("Copy err = %v", err)
	}
	if _, err := r.Inspect(1 << 30); errKind(err) != errors.KindOutOfBounds {
		t.Errorf("Inspect err = %v", err)
	}
}

func TestCloseDropsLivePayloads(t *testing.T) {
	ctx := context.Background()
	r, err := New(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	drops := 0
	if _, err := NewBlock0(r, func() int32 { return 0 }, OnDispose(func() { drops++ })); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(ctx); err != nil {
		t.Fatal(err)
	}
	if drops != 1 {
		t.Errorf("drops = %d, want 1", drops)
	}
}

func TestNewInvalidConfig(t *testing.T) {
	cfg := blocks.DefaultConfig()
	cfg.GuestMemoryPages = 0
	if _, err := New(context.Background(), cfg); err == nil {
		t.Fatal("expected config error")
	}
}

func TestDebugLogging(t *testing.T) {
	ctx := context.Background()
	core, logs := observer.New(zapcore.DebugLevel)
	prev := Logger()
	SetLogger(zap.New(core))
	defer SetLogger(prev)

	cfg := blocks.DefaultConfig()
	cfg.Debug = true
	r := newRuntime(t, cfg)
	p, _ := NewBlock0(r, func() int32 { return 0 })
	_ = r.Release(ctx, p)

	for _, msg := range []string{"wasm32 block runtime ready", "guest literal created", "guest literal disposed"} {
		if logs.FilterMessage(msg).Len() != 1 {
			t.Errorf("missing log %q", msg)
		}
	}
}
