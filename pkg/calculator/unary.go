package calculator

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

func isInteger(v runtime.Value) bool {
	_, ok := v.(runtime.IntegerValue)
	return ok
}

func isBoolean(v runtime.Value) bool {
	_, ok := v.(runtime.BoolValue)
	return ok
}

func anyValue(runtime.Value) bool { return true }

// step adds delta to a numeric operand; integers wrap around.
func step(op *ast.Operator, delta int32) UnaryCalculator {
	return UnaryCalculator{
		Op:      op,
		Accepts: runtime.IsNumeric,
		Apply: func(v runtime.Value) (runtime.Value, error) {
			if i, ok := v.(runtime.IntegerValue); ok {
				return runtime.Int(i.Val + delta), nil
			}
			return runtime.Double(v.(runtime.DoubleValue).Val + float64(delta)), nil
		},
	}
}

// unaryCalculators cover the prefix operators and both increment forms. The
// increment calculators only compute the new value; writing it back and
// choosing the old or new value as the result is up to the evaluator.
func unaryCalculators() []UnaryCalculator {
	return []UnaryCalculator{
		{
			Op:      ast.OpUnaryPlus,
			Accepts: runtime.IsNumeric,
			Apply:   func(v runtime.Value) (runtime.Value, error) { return v, nil },
		},
		{
			Op:      ast.OpUnaryMinus,
			Accepts: runtime.IsNumeric,
			Apply: func(v runtime.Value) (runtime.Value, error) {
				if i, ok := v.(runtime.IntegerValue); ok {
					return runtime.Int(-i.Val), nil
				}
				return runtime.Double(-v.(runtime.DoubleValue).Val), nil
			},
		},
		{
			Op:      ast.OpBitNot,
			Accepts: isInteger,
			Apply: func(v runtime.Value) (runtime.Value, error) {
				return runtime.Int(^v.(runtime.IntegerValue).Val), nil
			},
		},
		{
			Op:      ast.OpNot,
			Accepts: isBoolean,
			Apply: func(v runtime.Value) (runtime.Value, error) {
				return runtime.Bool(!v.(runtime.BoolValue).Val), nil
			},
		},
		{
			Op:      ast.OpHashCode,
			Accepts: anyValue,
			Apply: func(v runtime.Value) (runtime.Value, error) {
				return runtime.Int(runtime.HashCode(v)), nil
			},
		},
		step(ast.OpPreIncrement, 1),
		step(ast.OpPostIncrement, 1),
		step(ast.OpPreDecrement, -1),
		step(ast.OpPostDecrement, -1),
	}
}
