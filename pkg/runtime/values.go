package runtime

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindDouble
	KindString
	KindType
	KindVoid
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBoolean:
		return "boolean"
	case KindInteger:
		return "integer"
	case KindDouble:
		return "double"
	case KindString:
		return "string"
	case KindType:
		return "type"
	case KindVoid:
		return "void"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// TypeKeywords maps the type literal keywords to the kind they denote.
var TypeKeywords = map[string]Kind{
	"boolean": KindBoolean,
	"integer": KindInteger,
	"double":  KindDouble,
	"string":  KindString,
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBoolean }

// IntegerValue follows Java int semantics: 32 bits, wrapping arithmetic.
type IntegerValue struct {
	Val int32
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type DoubleValue struct {
	Val float64
}

func (v DoubleValue) Kind() Kind { return KindDouble }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// TypeValue is produced by a type literal and only consumed by typeof.
type TypeValue struct {
	Of Kind
}

func (v TypeValue) Kind() Kind { return KindType }

// VoidValue is the result of a function that returned without a value.
type VoidValue struct{}

func (VoidValue) Kind() Kind { return KindVoid }

var (
	Null  Value = NullValue{}
	Void  Value = VoidValue{}
	True  Value = BoolValue{Val: true}
	False Value = BoolValue{Val: false}
)

// Bool returns the shared boolean value.
func Bool(b bool) Value {
	if b {
		return True
	}
	return False
}

func Int(v int32) Value { return IntegerValue{Val: v} }

func Double(v float64) Value { return DoubleValue{Val: v} }

func String(v string) Value { return StringValue{Val: v} }

// IsNumeric reports whether the value is an integer or a double.
func IsNumeric(v Value) bool {
	if v == nil {
		return false
	}
	k := v.Kind()
	return k == KindInteger || k == KindDouble
}

// ToFloat converts a numeric value to float64.
func ToFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case IntegerValue:
		return float64(n.Val), true
	case DoubleValue:
		return n.Val, true
	default:
		return 0, false
	}
}

// KindOf tolerates nil values, which are treated as null.
func KindOf(v Value) Kind {
	if v == nil {
		return KindNull
	}
	return v.Kind()
}

// Text renders the canonical textual representation used by println and
// string concatenation.
func Text(v Value) string {
	switch val := v.(type) {
	case nil, NullValue:
		return "null"
	case BoolValue:
		if val.Val {
			return "true"
		}
		return "false"
	case IntegerValue:
		return strconv.FormatInt(int64(val.Val), 10)
	case DoubleValue:
		return FormatDouble(val.Val)
	case StringValue:
		return val.Val
	case TypeValue:
		return val.Of.String()
	case VoidValue:
		return "void"
	default:
		return fmt.Sprintf("[%s]", v.Kind())
	}
}

// FormatDouble mirrors Java's Double.toString output.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	abs := math.Abs(f)
	if abs >= 1e-3 && abs < 1e7 {
		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(s, ".") {
			s += ".0"
		}
		return s
	}
	s := strconv.FormatFloat(f, 'E', -1, 64)
	mantissa, exponent, _ := strings.Cut(s, "E")
	if !strings.Contains(mantissa, ".") {
		mantissa += ".0"
	}
	exp, err := strconv.Atoi(exponent)
	if err != nil {
		return s
	}
	return mantissa + "E" + strconv.Itoa(exp)
}
