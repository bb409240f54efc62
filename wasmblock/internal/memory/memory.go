// Package memory provides bounds-checked access to guest linear memory.
package memory

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/blocks/errors"
)

// PageSize is the wasm page size in bytes.
const PageSize = 65536

// Wrapper adapts wazero api.Memory to structured out-of-bounds errors.
type Wrapper struct {
	Mem api.Memory
}

// Wrap wraps a wazero memory.
func Wrap(mem api.Memory) *Wrapper {
	if mem == nil {
		return nil
	}
	return &Wrapper{Mem: mem}
}

func (m *Wrapper) oob(offset uint32, length uint64) error {
	return errors.OutOfBounds(errors.PhaseGuest, uintptr(offset), length, uint64(m.Mem.Size()))
}

// Size returns the current memory size in bytes.
func (m *Wrapper) Size() uint32 {
	return m.Mem.Size()
}

// Grow adds delta pages and returns the previous size in pages.
func (m *Wrapper) Grow(delta uint32) (uint32, error) {
	prev, ok := m.Mem.Grow(delta)
	if !ok {
		return 0, errors.AllocationFailed(errors.PhaseAlloc, uintptr(delta)*PageSize, nil)
	}
	return prev, nil
}

// Read reads bytes from memory. The slice aliases guest memory.
func (m *Wrapper) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.Mem.Read(offset, length)
	if !ok {
		return nil, m.oob(offset, uint64(length))
	}
	return data, nil
}

// Write writes bytes to memory.
func (m *Wrapper) Write(offset uint32, data []byte) error {
	if !m.Mem.Write(offset, data) {
		return m.oob(offset, uint64(len(data)))
	}
	return nil
}

// Zero clears length bytes at offset.
func (m *Wrapper) Zero(offset, length uint32) error {
	data, err := m.Read(offset, length)
	if err != nil {
		return err
	}
	clear(data)
	return nil
}

// ReadU32 reads an unsigned 32-bit little-endian value.
func (m *Wrapper) ReadU32(offset uint32) (uint32, error) {
	v, ok := m.Mem.ReadUint32Le(offset)
	if !ok {
		return 0, m.oob(offset, 4)
	}
	return v, nil
}

// WriteU32 writes an unsigned 32-bit little-endian value.
func (m *Wrapper) WriteU32(offset uint32, value uint32) error {
	if !m.Mem.WriteUint32Le(offset, value) {
		return m.oob(offset, 4)
	}
	return nil
}

// WriteCString writes s followed by a NUL byte.
func (m *Wrapper) WriteCString(offset uint32, s string) error {
	buf := make([]byte, len(s)+1)
	copy(buf, s)
	return m.Write(offset, buf)
}

// ReadCString reads a NUL-terminated string of at most limit bytes.
func (m *Wrapper) ReadCString(offset, limit uint32) (string, error) {
	for n := uint32(0); n < limit; n++ {
		b, ok := m.Mem.ReadByte(offset + n)
		if !ok {
			return "", m.oob(offset, uint64(n)+1)
		}
		if b == 0 {
			data, _ := m.Mem.Read(offset, n)
			return string(data), nil
		}
	}
	return "", errors.InvalidInput(errors.PhaseGuest, "unterminated string")
}
