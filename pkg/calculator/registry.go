package calculator

import (
	"fmt"

	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

// BinaryFunc computes the result of a binary operator.
type BinaryFunc func(left, right runtime.Value) (runtime.Value, error)

// UnaryFunc computes the result of a unary operator.
type UnaryFunc func(operand runtime.Value) (runtime.Value, error)

// BinaryCalculator handles one operator for the operand kinds its guard accepts.
type BinaryCalculator struct {
	Op      *ast.Operator
	Accepts func(left, right runtime.Value) bool
	Apply   BinaryFunc
}

// UnaryCalculator handles one unary operator for the operand kinds its guard accepts.
type UnaryCalculator struct {
	Op      *ast.Operator
	Accepts func(operand runtime.Value) bool
	Apply   UnaryFunc
}

// Registry dispatches operators to calculators by operator identity. Several
// calculators may share an operator; the first whose guard accepts wins.
type Registry struct {
	binary map[*ast.Operator][]BinaryCalculator
	unary  map[*ast.Operator][]UnaryCalculator
}

func NewRegistry() *Registry {
	return &Registry{
		binary: make(map[*ast.Operator][]BinaryCalculator),
		unary:  make(map[*ast.Operator][]UnaryCalculator),
	}
}

// AddBinary registers calculators in priority order.
func (r *Registry) AddBinary(calcs ...BinaryCalculator) {
	for _, c := range calcs {
		r.binary[c.Op] = append(r.binary[c.Op], c)
	}
}

// AddUnary registers calculators in priority order.
func (r *Registry) AddUnary(calcs ...UnaryCalculator) {
	for _, c := range calcs {
		r.unary[c.Op] = append(r.unary[c.Op], c)
	}
}

// AddCompound registers a distinct entry for a compound assignment operator
// that reuses every calculator of its plain counterpart.
func (r *Registry) AddCompound(op *ast.Operator) {
	for _, c := range r.binary[op.Base] {
		r.binary[op] = append(r.binary[op], BinaryCalculator{Op: op, Accepts: c.Accepts, Apply: c.Apply})
	}
}

// Binary applies a binary operator.
func (r *Registry) Binary(op *ast.Operator, left, right runtime.Value) (runtime.Value, error) {
	calcs, ok := r.binary[op]
	if !ok {
		return nil, runtime.Internalf("no calculator registered for binary operator '%s'", op.Symbol)
	}
	for _, c := range calcs {
		if c.Accepts(left, right) {
			return c.Apply(left, right)
		}
	}
	return nil, errUnsupported(op, left, right)
}

func errUnsupported(op *ast.Operator, left, right runtime.Value) error {
	return fmt.Errorf("Operator '%s' is not supported for types: %s and %s",
		op.Symbol, runtime.KindOf(left), runtime.KindOf(right))
}

// Unary applies a unary operator.
func (r *Registry) Unary(op *ast.Operator, operand runtime.Value) (runtime.Value, error) {
	calcs, ok := r.unary[op]
	if !ok {
		return nil, runtime.Internalf("no calculator registered for unary operator '%s'", op.Symbol)
	}
	for _, c := range calcs {
		if c.Accepts(operand) {
			return c.Apply(operand)
		}
	}
	return nil, fmt.Errorf("Operator '%s' is not supported for type: %s", op.Symbol, runtime.KindOf(operand))
}

// Calculate dispatches on the operator arity.
func (r *Registry) Calculate(op *ast.Operator, operands ...runtime.Value) (runtime.Value, error) {
	switch {
	case op.IsBinary() && len(operands) == 2:
		return r.Binary(op, operands[0], operands[1])
	case op.IsUnary() && len(operands) == 1:
		return r.Unary(op, operands[0])
	default:
		return nil, runtime.Internalf("operator '%s' applied to %d operands", op.Symbol, len(operands))
	}
}

// Supports reports whether any calculator is registered for op.
func (r *Registry) Supports(op *ast.Operator) bool {
	if _, ok := r.binary[op]; ok {
		return true
	}
	_, ok := r.unary[op]
	return ok
}

// Default returns a registry holding every built-in calculator.
func Default() *Registry {
	r := NewRegistry()
	r.AddBinary(arithmeticCalculators()...)
	r.AddBinary(comparisonCalculators()...)
	r.AddBinary(equalityCalculators()...)
	r.AddBinary(bitwiseCalculators()...)
	r.AddBinary(logicalCalculators()...)
	r.AddBinary(typeofCalculator())
	r.AddUnary(unaryCalculators()...)
	for _, op := range ast.BinaryOperators {
		if op.Base != nil {
			r.AddCompound(op)
		}
	}
	return r
}
