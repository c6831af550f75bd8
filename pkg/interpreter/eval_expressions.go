package interpreter

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

// operand is one entry of the evaluation stack. Variables keep their name so
// assignment operators can write back; deferred operands are evaluated only
// when a short-circuit or ternary operator asks for them.
type operand struct {
	value    runtime.Value
	name     string
	deferred *ast.PostfixExpression
}

type operandStack []operand

func (s *operandStack) push(o operand) { *s = append(*s, o) }

func (s *operandStack) pop(expr *ast.PostfixExpression) (operand, error) {
	n := len(*s)
	if n == 0 {
		return operand{}, runtime.Internalf("operand stack underflow in '%s'", expr.Source)
	}
	o := (*s)[n-1]
	*s = (*s)[:n-1]
	return o, nil
}

// evaluate runs a postfix expression and returns its value. The result may be
// Void when the expression is a call to a function without a return value.
func (x *execution) evaluate(expr *ast.PostfixExpression) (runtime.Value, error) {
	if expr == nil {
		return runtime.Null, nil
	}
	stack := make(operandStack, 0, len(expr.Lexemes))
	for _, lex := range expr.Lexemes {
		switch l := lex.(type) {
		case *ast.ConstantLexeme:
			stack.push(operand{value: l.Value})
		case *ast.TypeLiteralLexeme:
			stack.push(operand{value: runtime.TypeValue{Of: l.Of}})
		case *ast.VariableLexeme:
			v, err := x.state.Locals().GetValue(l.Name)
			if err != nil {
				return nil, err
			}
			stack.push(operand{value: v, name: l.Name})
		case *ast.ComplexLexeme:
			stack.push(operand{deferred: l.Expr})
		case *ast.FunctionInvocationLexeme:
			v, err := x.call(l)
			if err != nil {
				return nil, err
			}
			stack.push(operand{value: v})
		case *ast.UnaryOperatorLexeme:
			o, err := stack.pop(expr)
			if err != nil {
				return nil, err
			}
			v, err := x.applyUnary(l.Op, o)
			if err != nil {
				return nil, err
			}
			stack.push(operand{value: v})
		case *ast.BinaryOperatorLexeme:
			right, err := stack.pop(expr)
			if err != nil {
				return nil, err
			}
			left, err := stack.pop(expr)
			if err != nil {
				return nil, err
			}
			v, err := x.applyBinary(l.Op, left, right)
			if err != nil {
				return nil, err
			}
			stack.push(operand{value: v})
		case *ast.TernaryOperatorLexeme:
			els, err := stack.pop(expr)
			if err != nil {
				return nil, err
			}
			then, err := stack.pop(expr)
			if err != nil {
				return nil, err
			}
			cond, err := stack.pop(expr)
			if err != nil {
				return nil, err
			}
			v, err := x.applyTernary(cond, then, els)
			if err != nil {
				return nil, err
			}
			stack.push(operand{value: v})
		default:
			return nil, runtime.Internalf("unexpected lexeme %T in '%s'", lex, expr.Source)
		}
	}
	if len(stack) != 1 {
		return nil, runtime.Internalf("expression '%s' left %d operands", expr.Source, len(stack))
	}
	return x.force(stack[0])
}

// evaluateValue is evaluate for contexts that need a real value.
func (x *execution) evaluateValue(expr *ast.PostfixExpression) (runtime.Value, error) {
	v, err := x.evaluate(expr)
	if err != nil {
		return nil, err
	}
	return requireValue(v)
}

func (x *execution) evaluateCondition(expr *ast.PostfixExpression) (bool, error) {
	v, err := x.evaluateValue(expr)
	if err != nil {
		return false, err
	}
	b, ok := v.(runtime.BoolValue)
	if !ok {
		return false, errConditionType(v)
	}
	return b.Val, nil
}

func requireValue(v runtime.Value) (runtime.Value, error) {
	if _, ok := v.(runtime.VoidValue); ok {
		return nil, runtime.ErrVoidValue
	}
	return v, nil
}

// force produces the value of an operand, evaluating it if it was deferred.
func (x *execution) force(o operand) (runtime.Value, error) {
	if o.deferred != nil {
		return x.evaluate(o.deferred)
	}
	return o.value, nil
}

func (x *execution) forceValue(o operand) (runtime.Value, error) {
	v, err := x.force(o)
	if err != nil {
		return nil, err
	}
	return requireValue(v)
}

func (x *execution) call(l *ast.FunctionInvocationLexeme) (runtime.Value, error) {
	fn, ok := x.program.Lookup(l.Name, len(l.Args))
	if !ok {
		return nil, runtime.Internalf("unlinked function %s(%d)", l.Name, len(l.Args))
	}
	args := make([]runtime.Value, len(l.Args))
	for idx, arg := range l.Args {
		v, err := x.evaluateValue(arg)
		if err != nil {
			return nil, err
		}
		args[idx] = v
	}
	return x.invoke(fn, args)
}

func (x *execution) applyUnary(op *ast.Operator, o operand) (runtime.Value, error) {
	v, err := x.forceValue(o)
	if err != nil {
		return nil, err
	}
	if !op.IsIncrement() {
		return x.calculators.Unary(op, v)
	}
	if o.name == "" {
		return nil, runtime.Internalf("operator '%s' applied to a non variable", op.Symbol)
	}
	next, err := x.calculators.Unary(op, v)
	if err != nil {
		return nil, err
	}
	if err := x.state.Locals().SetValue(o.name, next); err != nil {
		return nil, err
	}
	if op.Postfix {
		return v, nil
	}
	return next, nil
}

func (x *execution) applyBinary(op *ast.Operator, left, right operand) (runtime.Value, error) {
	if op == ast.OpAnd || op == ast.OpOr {
		return x.applyLogical(op, left, right)
	}
	if op.Assignment {
		return x.assign(op, left, right)
	}
	l, err := x.forceValue(left)
	if err != nil {
		return nil, err
	}
	r, err := x.forceValue(right)
	if err != nil {
		return nil, err
	}
	return x.calculators.Binary(op, l, r)
}

// applyLogical evaluates the right operand only when the left one does not
// decide the result.
func (x *execution) applyLogical(op *ast.Operator, left, right operand) (runtime.Value, error) {
	l, err := x.forceValue(left)
	if err != nil {
		return nil, err
	}
	if b, ok := l.(runtime.BoolValue); ok && b.Val == (op == ast.OpOr) {
		return l, nil
	}
	r, err := x.forceValue(right)
	if err != nil {
		return nil, err
	}
	return x.calculators.Binary(op, l, r)
}

func (x *execution) assign(op *ast.Operator, left, right operand) (runtime.Value, error) {
	if left.name == "" {
		return nil, runtime.Internalf("assignment '%s' to a non variable", op.Symbol)
	}
	value, err := x.forceValue(right)
	if err != nil {
		return nil, err
	}
	if op.Base != nil {
		current, err := requireValue(left.value)
		if err != nil {
			return nil, err
		}
		if value, err = x.calculators.Binary(op, current, value); err != nil {
			return nil, err
		}
	}
	if err := x.state.Locals().SetValue(left.name, value); err != nil {
		return nil, err
	}
	return value, nil
}

func (x *execution) applyTernary(cond, then, els operand) (runtime.Value, error) {
	c, err := x.forceValue(cond)
	if err != nil {
		return nil, err
	}
	b, ok := c.(runtime.BoolValue)
	if !ok {
		return nil, errConditionType(c)
	}
	if b.Val {
		return x.forceValue(then)
	}
	return x.forceValue(els)
}
