package memory

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/tetratelabs/wazero"

	"github.com/wippyai/blocks/errors"
)

// (module (memory (export "memory") 1 2))
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x04, 0x01, 0x01, 0x01, 0x02,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

func newWrapper(t *testing.T) *Wrapper {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })
	mod, err := rt.Instantiate(ctx, memoryModule)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	return Wrap(mod.Memory())
}

func TestWrapNil(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}
}

func TestU32RoundTrip(t *testing.T) {
	m := newWrapper(t)
	if err := m.WriteU32(64, 0xdeadbeef); err != nil {
		t.Fatal(err)
	}
	v, err := m.ReadU32(64)
	if err != nil || v != 0xdeadbeef {
		t.Errorf("ReadU32 = %#x, %v", v, err)
	}
}

func TestOutOfBounds(t *testing.T) {
	m := newWrapper(t)
	_, err := m.ReadU32(PageSize - 2)
	var e *errors.Error
	if !stderrors.As(err, &e) || e.Kind != errors.KindOutOfBounds {
		t.Fatalf("ReadU32 err = %v", err)
	}
	if err := m.WriteU32(PageSize, 1); err == nil {
		t.Error("WriteU32 past end should fail")
	}
	if _, err := m.Read(PageSize-4, 8); err == nil {
		t.Error("Read past end should fail")
	}
}

func TestCString(t *testing.T) {
	m := newWrapper(t)
	if err := m.WriteCString(100, "i12@?0i8"); err != nil {
		t.Fatal(err)
	}
	s, err := m.ReadCString(100, 64)
	if err != nil || s != "i12@?0i8" {
		t.Errorf("ReadCString = %q, %v", s, err)
	}
	if _, err := m.ReadCString(100, 4); err == nil {
		t.Error("expected unterminated error")
	}
}

func TestZero(t *testing.T) {
	m := newWrapper(t)
	_ = m.WriteU32(8, 7)
	if err := m.Zero(8, 4); err != nil {
		t.Fatal(err)
	}
	if v, _ := m.ReadU32(8); v != 0 {
		t.Errorf("after Zero = %d", v)
	}
}

func TestGrow(t *testing.T) {
	m := newWrapper(t)
	prev, err := m.Grow(1)
	if err != nil || prev != 1 {
		t.Fatalf("Grow = %d, %v", prev, err)
	}
	if m.Size() != 2*PageSize {
		t.Errorf("Size = %d", m.Size())
	}
	if _, err := m.Grow(1); err == nil {
		t.Error("Grow past max should fail")
	}
}
