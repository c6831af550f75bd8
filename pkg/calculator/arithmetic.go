package calculator

import (
	"math"

	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

func bothIntegers(left, right runtime.Value) bool {
	_, l := left.(runtime.IntegerValue)
	_, r := right.(runtime.IntegerValue)
	return l && r
}

func bothNumeric(left, right runtime.Value) bool {
	return runtime.IsNumeric(left) && runtime.IsNumeric(right)
}

func eitherString(left, right runtime.Value) bool {
	_, l := left.(runtime.StringValue)
	_, r := right.(runtime.StringValue)
	return l || r
}

func bothBooleans(left, right runtime.Value) bool {
	_, l := left.(runtime.BoolValue)
	_, r := right.(runtime.BoolValue)
	return l && r
}

// numeric builds a calculator that keeps integer arithmetic in int32 and
// promotes to double as soon as one operand is a double.
func numeric(op *ast.Operator, ints func(a, b int32) (int32, error), doubles func(a, b float64) float64) BinaryCalculator {
	return BinaryCalculator{
		Op:      op,
		Accepts: bothNumeric,
		Apply: func(left, right runtime.Value) (runtime.Value, error) {
			if bothIntegers(left, right) {
				v, err := ints(left.(runtime.IntegerValue).Val, right.(runtime.IntegerValue).Val)
				if err != nil {
					return nil, err
				}
				return runtime.Int(v), nil
			}
			a, _ := runtime.ToFloat(left)
			b, _ := runtime.ToFloat(right)
			return runtime.Double(doubles(a, b)), nil
		},
	}
}

func arithmeticCalculators() []BinaryCalculator {
	return []BinaryCalculator{
		numeric(ast.OpAdd,
			func(a, b int32) (int32, error) { return a + b, nil },
			func(a, b float64) float64 { return a + b }),
		{
			Op:      ast.OpAdd,
			Accepts: eitherString,
			Apply: func(left, right runtime.Value) (runtime.Value, error) {
				return runtime.String(runtime.Text(left) + runtime.Text(right)), nil
			},
		},
		numeric(ast.OpSubtract,
			func(a, b int32) (int32, error) { return a - b, nil },
			func(a, b float64) float64 { return a - b }),
		numeric(ast.OpMultiply,
			func(a, b int32) (int32, error) { return a * b, nil },
			func(a, b float64) float64 { return a * b }),
		numeric(ast.OpDivide,
			func(a, b int32) (int32, error) {
				if b == 0 {
					return 0, runtime.ErrDivisionByZero
				}
				return a / b, nil
			},
			func(a, b float64) float64 { return a / b }),
		numeric(ast.OpModulus,
			func(a, b int32) (int32, error) {
				if b == 0 {
					return 0, runtime.ErrDivisionByZero
				}
				return a % b, nil
			},
			math.Mod),
	}
}
