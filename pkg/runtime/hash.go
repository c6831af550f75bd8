package runtime

import (
	"math"
	"unicode/utf16"
)

// HashCode computes the value behind the '#' operator using Java hash codes.
func HashCode(v Value) int32 {
	switch val := v.(type) {
	case nil, NullValue:
		return 0
	case BoolValue:
		if val.Val {
			return 1231
		}
		return 1237
	case IntegerValue:
		return val.Val
	case DoubleValue:
		bits := math.Float64bits(val.Val)
		if math.IsNaN(val.Val) {
			bits = 0x7ff8000000000000
		}
		return int32(bits ^ (bits >> 32))
	case StringValue:
		var h int32
		for _, unit := range utf16.Encode([]rune(val.Val)) {
			h = 31*h + int32(unit)
		}
		return h
	case TypeValue:
		return int32(val.Of)
	default:
		return 0
	}
}
