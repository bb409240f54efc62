package wasmblock

import (
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/blocks/errors"
)

func TestLowerLiftEdges(t *testing.T) {
	if got := Lift[int8](Lower(int8(-1))); got != -1 {
		t.Errorf("int8 = %d", got)
	}
	if got := Lower(int32(-1)); got != 0xffffffff {
		t.Errorf("Lower(int32(-1)) = %#x, want zero-extended", got)
	}
	if got := Lift[uint16](Lower(uint16(65535))); got != 65535 {
		t.Errorf("uint16 = %d", got)
	}
	if got := Lift[int](Lower(-7)); got != -7 {
		t.Errorf("int = %d", got)
	}
	if got := Lift[float32](Lower(float32(1.5))); got != 1.5 {
		t.Errorf("float32 = %v", got)
	}
	if !Lift[bool](Lower(true)) || Lift[bool](Lower(false)) {
		t.Error("bool round trip")
	}
	if got := Lift[int32](0xffffffff_00000005); got != 5 {
		t.Errorf("int32 ignores high bits: %d", got)
	}
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		got  wit.Type
		name string
	}{
		{TypeOf[bool](), "bool"},
		{TypeOf[int8](), "s8"},
		{TypeOf[uint32](), "u32"},
		{TypeOf[int](), "s64"},
		{TypeOf[uint](), "u64"},
		{TypeOf[float32](), "f32"},
		{TypeOf[float64](), "f64"},
	}
	for _, tt := range tests {
		if got := TypeName(tt.got); got != tt.name {
			t.Errorf("TypeName = %q, want %q", got, tt.name)
		}
	}
	if CoreType(wit.S64{}) != 0x7e || CoreType(wit.U8{}) != 0x7f {
		t.Error("CoreType mismatch")
	}
}

func TestParseFormatValue(t *testing.T) {
	tests := []struct {
		typ  wit.Type
		in   string
		want string
	}{
		{wit.S32{}, "-5", "-5"},
		{wit.S8{}, "-128", "-128"},
		{wit.U8{}, "255", "255"},
		{wit.U32{}, "0x10", "16"},
		{wit.S64{}, "-9000000000", "-9000000000"},
		{wit.U64{}, "18446744073709551615", "18446744073709551615"},
		{wit.Bool{}, "true", "true"},
		{wit.F32{}, "2.5", "2.5"},
		{wit.F64{}, " 0.125 ", "0.125"},
	}
	for _, tt := range tests {
		t.Run(TypeName(tt.typ)+"/"+tt.in, func(t *testing.T) {
			v, err := ParseValue(tt.in, tt.typ)
			if err != nil {
				t.Fatalf("ParseValue: %v", err)
			}
			if got := FormatValue(v, tt.typ); got != tt.want {
				t.Errorf("FormatValue = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseValueErrors(t *testing.T) {
	if _, err := ParseValue("300", wit.U8{}); errKind(err) != errors.KindInvalidInput {
		t.Errorf("u8 overflow err = %v", err)
	}
	if _, err := ParseValue("yes", wit.Bool{}); errKind(err) != errors.KindInvalidInput {
		t.Errorf("bool err = %v", err)
	}
	if _, err := ParseValue("x", wit.String{}); errKind(err) != errors.KindUnsupported {
		t.Errorf("string err = %v", err)
	}
}
