package calculator

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

func greater(left, right runtime.Value) bool {
	if bothIntegers(left, right) {
		return left.(runtime.IntegerValue).Val > right.(runtime.IntegerValue).Val
	}
	a, _ := runtime.ToFloat(left)
	b, _ := runtime.ToFloat(right)
	return a > b
}

func greaterOrEqual(left, right runtime.Value) bool {
	if bothIntegers(left, right) {
		return left.(runtime.IntegerValue).Val >= right.(runtime.IntegerValue).Val
	}
	a, _ := runtime.ToFloat(left)
	b, _ := runtime.ToFloat(right)
	return a >= b
}

func relational(op *ast.Operator, test func(left, right runtime.Value) bool) BinaryCalculator {
	return BinaryCalculator{
		Op:      op,
		Accepts: bothNumeric,
		Apply: func(left, right runtime.Value) (runtime.Value, error) {
			return runtime.Bool(test(left, right)), nil
		},
	}
}

// comparisonCalculators derive `<` and `<=` by negating `>=` and `>`.
func comparisonCalculators() []BinaryCalculator {
	return []BinaryCalculator{
		relational(ast.OpGreater, greater),
		relational(ast.OpGreaterEq, greaterOrEqual),
		relational(ast.OpLess, func(l, r runtime.Value) bool { return !greaterOrEqual(l, r) }),
		relational(ast.OpLessEq, func(l, r runtime.Value) bool { return !greater(l, r) }),
	}
}

// Equal implements `==`. Numbers compare by value across integer and
// double; a boolean only compares with another boolean.
func Equal(left, right runtime.Value) (bool, error) {
	if bothNumeric(left, right) {
		if bothIntegers(left, right) {
			return left.(runtime.IntegerValue).Val == right.(runtime.IntegerValue).Val, nil
		}
		a, _ := runtime.ToFloat(left)
		b, _ := runtime.ToFloat(right)
		return a == b, nil
	}
	_, lb := left.(runtime.BoolValue)
	_, rb := right.(runtime.BoolValue)
	if lb != rb {
		return false, errUnsupported(ast.OpEqual, left, right)
	}
	if runtime.KindOf(left) == runtime.KindNull || runtime.KindOf(right) == runtime.KindNull {
		return runtime.KindOf(left) == runtime.KindOf(right), nil
	}
	return left == right, nil
}

func equalityCalculators() []BinaryCalculator {
	any2 := func(runtime.Value, runtime.Value) bool { return true }
	return []BinaryCalculator{
		{
			Op:      ast.OpEqual,
			Accepts: any2,
			Apply: func(left, right runtime.Value) (runtime.Value, error) {
				eq, err := Equal(left, right)
				if err != nil {
					return nil, err
				}
				return runtime.Bool(eq), nil
			},
		},
		{
			Op:      ast.OpNotEqual,
			Accepts: any2,
			Apply: func(left, right runtime.Value) (runtime.Value, error) {
				eq, err := Equal(left, right)
				if err != nil {
					return nil, errUnsupported(ast.OpNotEqual, left, right)
				}
				return runtime.Bool(!eq), nil
			},
		},
	}
}
