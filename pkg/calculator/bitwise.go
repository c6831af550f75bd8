package calculator

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

func integers(op *ast.Operator, fn func(a, b int32) int32) BinaryCalculator {
	return BinaryCalculator{
		Op:      op,
		Accepts: bothIntegers,
		Apply: func(left, right runtime.Value) (runtime.Value, error) {
			return runtime.Int(fn(left.(runtime.IntegerValue).Val, right.(runtime.IntegerValue).Val)), nil
		},
	}
}

// eagerLogic evaluates both boolean operands; `&` and `|` never short-circuit.
func eagerLogic(op *ast.Operator, fn func(a, b bool) bool) BinaryCalculator {
	return BinaryCalculator{
		Op:      op,
		Accepts: bothBooleans,
		Apply: func(left, right runtime.Value) (runtime.Value, error) {
			return runtime.Bool(fn(left.(runtime.BoolValue).Val, right.(runtime.BoolValue).Val)), nil
		},
	}
}

// Shift distances use the low five bits, as for 32-bit integers in Java.
func bitwiseCalculators() []BinaryCalculator {
	return []BinaryCalculator{
		integers(ast.OpBitAnd, func(a, b int32) int32 { return a & b }),
		eagerLogic(ast.OpBitAnd, func(a, b bool) bool { return a && b }),
		integers(ast.OpBitOr, func(a, b int32) int32 { return a | b }),
		eagerLogic(ast.OpBitOr, func(a, b bool) bool { return a || b }),
		integers(ast.OpBitXor, func(a, b int32) int32 { return a ^ b }),
		integers(ast.OpShiftLeft, func(a, b int32) int32 { return a << uint32(b&31) }),
		integers(ast.OpShiftRight, func(a, b int32) int32 { return a >> uint32(b&31) }),
		integers(ast.OpShiftURight, func(a, b int32) int32 { return int32(uint32(a) >> uint32(b&31)) }),
	}
}

// logicalCalculators combine already evaluated operands of && and ||. The
// evaluator decides whether the right operand is evaluated at all.
func logicalCalculators() []BinaryCalculator {
	return []BinaryCalculator{
		eagerLogic(ast.OpAnd, func(a, b bool) bool { return a && b }),
		eagerLogic(ast.OpOr, func(a, b bool) bool { return a || b }),
	}
}

// typeofCalculator tests the kind of a value; null is never of any type.
func typeofCalculator() BinaryCalculator {
	return BinaryCalculator{
		Op: ast.OpTypeof,
		Accepts: func(_, right runtime.Value) bool {
			_, ok := right.(runtime.TypeValue)
			return ok
		},
		Apply: func(left, right runtime.Value) (runtime.Value, error) {
			kind := runtime.KindOf(left)
			if kind == runtime.KindNull {
				return runtime.False, nil
			}
			return runtime.Bool(kind == right.(runtime.TypeValue).Of), nil
		},
	}
}
