package abi

import (
	"math/bits"
	"reflect"
	"strconv"
	"strings"

	"github.com/wippyai/blocks/errors"
)

// Signature returns the native type encoding of a block whose invoke function
// has the Go type fn, minus the leading block pointer. For example
// func(int32) int32 on Native encodes as "i12@?0i8".
func Signature(t Target, fn reflect.Type) (string, error) {
	if fn.Kind() != reflect.Func {
		return "", errors.InvalidInput(errors.PhaseConstruct, "signature of non-func type "+fn.String())
	}
	if fn.IsVariadic() {
		return "", errors.Unsupported(errors.PhaseConstruct, "variadic block signature "+fn.String())
	}

	var ret string
	switch fn.NumOut() {
	case 0:
		ret = "v"
	case 1:
		enc, _, err := t.encode(fn.Out(0))
		if err != nil {
			return "", err
		}
		ret = enc
	default:
		return "", errors.Unsupported(errors.PhaseConstruct, "multiple results in "+fn.String())
	}

	var args strings.Builder
	args.WriteString("@?0")
	offset := t.PointerSize
	for i := range fn.NumIn() {
		enc, size, err := t.encode(fn.In(i))
		if err != nil {
			return "", err
		}
		args.WriteString(enc)
		args.WriteString(strconv.FormatUint(uint64(offset), 10))
		offset += max(size, 4)
	}

	return ret + strconv.FormatUint(uint64(offset), 10) + args.String(), nil
}

// encode returns the type encoding of typ and its argument size.
func (t Target) encode(typ reflect.Type) (string, uint32, error) {
	ptr := t.PointerSize
	switch typ.Kind() {
	case reflect.Bool:
		return "B", 1, nil
	case reflect.Int8:
		return "c", 1, nil
	case reflect.Uint8:
		return "C", 1, nil
	case reflect.Int16:
		return "s", 2, nil
	case reflect.Uint16:
		return "S", 2, nil
	case reflect.Int32:
		return "i", 4, nil
	case reflect.Uint32:
		return "I", 4, nil
	case reflect.Int64:
		return "q", 8, nil
	case reflect.Uint64:
		return "Q", 8, nil
	case reflect.Int:
		if ptr == 8 {
			return "q", 8, nil
		}
		return "i", 4, nil
	case reflect.Uint, reflect.Uintptr:
		if ptr == 8 {
			return "Q", 8, nil
		}
		return "I", 4, nil
	case reflect.Float32:
		return "f", 4, nil
	case reflect.Float64:
		return "d", 8, nil
	case reflect.Complex64:
		return "jf", 8, nil
	case reflect.Complex128:
		return "jd", 16, nil
	case reflect.Func:
		return "@?", ptr, nil
	case reflect.Interface:
		return "@", ptr, nil
	case reflect.Pointer, reflect.UnsafePointer, reflect.Map, reflect.Chan:
		return "^v", ptr, nil
	case reflect.String:
		return "{_GoString_=*" + t.wordCode() + "}", 2 * ptr, nil
	case reflect.Slice:
		return "{_GoSlice_=^v" + t.wordCode() + t.wordCode() + "}", 3 * ptr, nil
	case reflect.Array:
		elem, size, err := t.encode(typ.Elem())
		if err != nil {
			return "", 0, err
		}
		return "[" + strconv.Itoa(typ.Len()) + elem + "]", size * uint32(typ.Len()), nil
	case reflect.Struct:
		return t.encodeStruct(typ)
	}
	return "", 0, errors.Unsupported(errors.PhaseConstruct, "type encoding of "+typ.String())
}

func (t Target) wordCode() string {
	if t.PointerSize == 8 {
		return "q"
	}
	return "i"
}

func (t Target) encodeStruct(typ reflect.Type) (string, uint32, error) {
	name := typ.Name()
	if name == "" {
		name = "?"
	}
	var b strings.Builder
	b.WriteByte('{')
	b.WriteString(name)
	b.WriteByte('=')
	var size, align uint32 = 0, 1
	for i := range typ.NumField() {
		enc, fsize, err := t.encode(typ.Field(i).Type)
		if err != nil {
			return "", 0, err
		}
		b.WriteString(enc)
		falign := min(max(fsize, 1), t.PointerSize)
		falign = 1 << (31 - bits.LeadingZeros32(falign))
		size = AlignTo(size, falign) + fsize
		align = max(align, falign)
	}
	b.WriteByte('}')
	return b.String(), AlignTo(size, align), nil
}
