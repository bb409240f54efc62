package wasmblock

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tetratelabs/wazero/api"
	"go.bytecodealliance.org/wit"

	"github.com/wippyai/blocks/errors"
)

// Scalar is a Go type that crosses the guest boundary in one core value.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 | int |
		uint8 | uint16 | uint32 | uint64 | uint |
		float32 | float64
}

// TypeOf returns the WIT primitive a scalar flattens through.
func TypeOf[T Scalar]() wit.Type {
	var zero T
	switch any(zero).(type) {
	case bool:
		return wit.Bool{}
	case int8:
		return wit.S8{}
	case int16:
		return wit.S16{}
	case int32:
		return wit.S32{}
	case int64, int:
		return wit.S64{}
	case uint8:
		return wit.U8{}
	case uint16:
		return wit.U16{}
	case uint32:
		return wit.U32{}
	case uint64, uint:
		return wit.U64{}
	case float32:
		return wit.F32{}
	default:
		return wit.F64{}
	}
}

// CoreType is the core wasm type a WIT primitive flattens to.
func CoreType(t wit.Type) api.ValueType {
	switch t.(type) {
	case wit.S64, wit.U64:
		return api.ValueTypeI64
	case wit.F32:
		return api.ValueTypeF32
	case wit.F64:
		return api.ValueTypeF64
	default:
		return api.ValueTypeI32
	}
}

// Lower encodes v into an argument slot.
func Lower[T Scalar](v T) uint64 {
	switch x := any(v).(type) {
	case bool:
		if x {
			return 1
		}
		return 0
	case int8:
		return api.EncodeI32(int32(x))
	case int16:
		return api.EncodeI32(int32(x))
	case int32:
		return api.EncodeI32(x)
	case int64:
		return api.EncodeI64(x)
	case int:
		return api.EncodeI64(int64(x))
	case uint8:
		return api.EncodeU32(uint32(x))
	case uint16:
		return api.EncodeU32(uint32(x))
	case uint32:
		return api.EncodeU32(x)
	case uint64:
		return x
	case uint:
		return uint64(x)
	case float32:
		return api.EncodeF32(x)
	case float64:
		return api.EncodeF64(x)
	}
	return 0
}

// Lift decodes an argument slot into T.
func Lift[T Scalar](v uint64) T {
	var out T
	switch p := any(&out).(type) {
	case *bool:
		*p = uint32(v) != 0
	case *int8:
		*p = int8(api.DecodeI32(v))
	case *int16:
		*p = int16(api.DecodeI32(v))
	case *int32:
		*p = api.DecodeI32(v)
	case *int64:
		*p = int64(v)
	case *int:
		*p = int(int64(v))
	case *uint8:
		*p = uint8(api.DecodeU32(v))
	case *uint16:
		*p = uint16(api.DecodeU32(v))
	case *uint32:
		*p = api.DecodeU32(v)
	case *uint64:
		*p = v
	case *uint:
		*p = uint(v)
	case *float32:
		*p = api.DecodeF32(v)
	case *float64:
		*p = api.DecodeF64(v)
	}
	return out
}

// ParseValue parses text into an argument slot for a WIT primitive.
func ParseValue(s string, t wit.Type) (uint64, error) {
	s = strings.TrimSpace(s)
	bad := func(err error) error {
		return errors.New(errors.PhaseInvoke, errors.KindInvalidInput).
			Value(s).
			Cause(err).
			Detail("parse %s", TypeName(t)).
			Build()
	}
	switch t.(type) {
	case wit.Bool:
		v, err := strconv.ParseBool(s)
		if err != nil {
			return 0, bad(err)
		}
		return Lower(v), nil
	case wit.S8, wit.S16, wit.S32:
		v, err := strconv.ParseInt(s, 0, bitSize(t))
		if err != nil {
			return 0, bad(err)
		}
		return api.EncodeI32(int32(v)), nil
	case wit.U8, wit.U16, wit.U32:
		v, err := strconv.ParseUint(s, 0, bitSize(t))
		if err != nil {
			return 0, bad(err)
		}
		return api.EncodeU32(uint32(v)), nil
	case wit.S64:
		v, err := strconv.ParseInt(s, 0, 64)
		if err != nil {
			return 0, bad(err)
		}
		return api.EncodeI64(v), nil
	case wit.U64:
		v, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, bad(err)
		}
		return v, nil
	case wit.F32:
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return 0, bad(err)
		}
		return api.EncodeF32(float32(v)), nil
	case wit.F64:
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, bad(err)
		}
		return api.EncodeF64(v), nil
	default:
		return 0, errors.Unsupported(errors.PhaseInvoke, "argument type "+TypeName(t))
	}
}

// FormatValue renders an argument slot as text.
func FormatValue(v uint64, t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return strconv.FormatBool(uint32(v) != 0)
	case wit.S8:
		return strconv.Itoa(int(int8(api.DecodeI32(v))))
	case wit.S16:
		return strconv.Itoa(int(int16(api.DecodeI32(v))))
	case wit.S32:
		return strconv.Itoa(int(api.DecodeI32(v)))
	case wit.U8:
		return strconv.FormatUint(uint64(uint8(v)), 10)
	case wit.U16:
		return strconv.FormatUint(uint64(uint16(v)), 10)
	case wit.U32:
		return strconv.FormatUint(uint64(api.DecodeU32(v)), 10)
	case wit.S64:
		return strconv.FormatInt(int64(v), 10)
	case wit.F32:
		return strconv.FormatFloat(float64(api.DecodeF32(v)), 'g', -1, 32)
	case wit.F64:
		return strconv.FormatFloat(api.DecodeF64(v), 'g', -1, 64)
	default:
		return strconv.FormatUint(v, 10)
	}
}

// TypeName is the WIT spelling of a primitive.
func TypeName(t wit.Type) string {
	switch t.(type) {
	case wit.Bool:
		return "bool"
	case wit.S8:
		return "s8"
	case wit.S16:
		return "s16"
	case wit.S32:
		return "s32"
	case wit.S64:
		return "s64"
	case wit.U8:
		return "u8"
	case wit.U16:
		return "u16"
	case wit.U32:
		return "u32"
	case wit.U64:
		return "u64"
	case wit.F32:
		return "f32"
	case wit.F64:
		return "f64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	default:
		return fmt.Sprintf("%T", t)
	}
}

func bitSize(t wit.Type) int {
	switch t.(type) {
	case wit.S8, wit.U8:
		return 8
	case wit.S16, wit.U16:
		return 16
	default:
		return 32
	}
}
