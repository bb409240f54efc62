package synth

import (
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Section ids in the order the binary format requires.
const (
	sectionType   byte = 0x01
	sectionImport byte = 0x02
	sectionFunc   byte = 0x03
	sectionTable  byte = 0x04
	sectionMemory byte = 0x05
	sectionExport byte = 0x07
	sectionElem   byte = 0x09
	sectionCode   byte = 0x0a
)

// Instructions used by the guest bodies.
const (
	opEnd          byte = 0x0b
	opCallIndirect byte = 0x11
	opLocalGet     byte = 0x20
	opI32Load      byte = 0x28
	opI32Const     byte = 0x41
)

// Descriptor bytes.
const (
	kindFunc   byte = 0x00
	kindTable  byte = 0x01
	kindMemory byte = 0x02
	typeFunc   byte = 0x60
	refFunc    byte = 0x70
	limitsMax  byte = 0x01
	alignWord  byte = 0x02
)

var preamble = []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

// appendU32 appends v as unsigned LEB128.
func appendU32(buf []byte, v uint32) []byte {
	for v >= 0x80 {
		buf = append(buf, byte(v)|0x80)
		v >>= 7
	}
	return append(buf, byte(v))
}

// appendI32 appends v as signed LEB128, the immediate form of i32.const.
func appendI32(buf []byte, v int32) []byte {
	for {
		c := byte(v & 0x7f)
		v >>= 7
		if (v == 0 && c&0x40 == 0) || (v == -1 && c&0x40 != 0) {
			return append(buf, c)
		}
		buf = append(buf, c|0x80)
	}
}

// readU32 decodes an unsigned LEB128 value at the start of data and
// returns it with the number of bytes consumed.
func readU32(data []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < len(data) && i < 5; i++ {
		c := data[i]
		if i == 4 && c > 0x0f {
			return 0, 0, fmt.Errorf("u32 overflows at byte %d", i)
		}
		v |= uint32(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return v, i + 1, nil
		}
	}
	return 0, 0, fmt.Errorf("u32 truncated after %d bytes", len(data))
}

func valType(t api.ValueType) byte {
	switch t {
	case api.ValueTypeI64:
		return 0x7e
	case api.ValueTypeF32:
		return 0x7d
	case api.ValueTypeF64:
		return 0x7c
	default:
		return 0x7f
	}
}

// Section is one top-level section of a module binary.
type Section struct {
	ID   byte
	Body []byte
}

// Count reads the vector length every emitted section starts with.
func (s Section) Count() (uint32, error) {
	n, _, err := readU32(s.Body)
	if err != nil {
		return 0, fmt.Errorf("section %d: %w", s.ID, err)
	}
	return n, nil
}

// Sections splits a module binary into its sections. It rejects a bad
// preamble, truncated sections and sections out of order.
func Sections(wasm []byte) ([]Section, error) {
	if len(wasm) < len(preamble) || string(wasm[:len(preamble)]) != string(preamble) {
		return nil, fmt.Errorf("missing wasm preamble")
	}
	var out []Section
	rest := wasm[len(preamble):]
	for len(rest) > 0 {
		id := rest[0]
		size, n, err := readU32(rest[1:])
		if err != nil {
			return nil, fmt.Errorf("section %d size: %w", id, err)
		}
		start := 1 + n
		if uint64(start)+uint64(size) > uint64(len(rest)) {
			return nil, fmt.Errorf("section %d: %d bytes past end", id, uint64(start)+uint64(size)-uint64(len(rest)))
		}
		if len(out) > 0 && id <= out[len(out)-1].ID {
			return nil, fmt.Errorf("section %d after section %d", id, out[len(out)-1].ID)
		}
		out = append(out, Section{ID: id, Body: rest[start : start+int(size)]})
		rest = rest[start+int(size):]
	}
	return out, nil
}
