package ast

import (
	"strings"

	"javamm/interpreter-go/pkg/runtime"
)

// Expression is the closed set of expression shapes produced by the resolver.
type Expression interface {
	expressionNode()
	String() string
}

type ConstantExpression struct {
	Value runtime.Value
}

type VariableExpression struct {
	Name string
}

type FunctionInvocationExpression struct {
	Name string
	Args []*PostfixExpression
}

// BinaryExpression references an operator already disambiguated by the lexeme builder.
type BinaryExpression struct {
	Op    *Operator
	Left  Expression
	Right Expression
}

type UnaryExpression struct {
	Op      *Operator
	Operand Expression
	Postfix bool
}

type TernaryExpression struct {
	Condition Expression
	Then      Expression
	Else      Expression
}

// PostfixExpression is the evaluable flat form. Source keeps the infix text
// for diagnostics and printing.
type PostfixExpression struct {
	Lexemes []Lexeme
	Source  string
}

func (*ConstantExpression) expressionNode()           {}
func (*VariableExpression) expressionNode()           {}
func (*FunctionInvocationExpression) expressionNode() {}
func (*BinaryExpression) expressionNode()             {}
func (*UnaryExpression) expressionNode()              {}
func (*TernaryExpression) expressionNode()            {}
func (*PostfixExpression) expressionNode()            {}

func (e *ConstantExpression) String() string {
	return NewConstant(e.Value).String()
}

func (e *VariableExpression) String() string { return e.Name }

func (e *FunctionInvocationExpression) String() string {
	return (&FunctionInvocationLexeme{Name: e.Name, Args: e.Args}).String()
}

func (e *BinaryExpression) String() string {
	return "(" + e.Left.String() + " " + e.Op.Symbol + " " + e.Right.String() + ")"
}

func (e *UnaryExpression) String() string {
	if e.Postfix {
		return "(" + e.Operand.String() + e.Op.Symbol + ")"
	}
	return "(" + e.Op.Symbol + e.Operand.String() + ")"
}

func (e *TernaryExpression) String() string {
	return "(" + e.Condition.String() + " ? " + e.Then.String() + " : " + e.Else.String() + ")"
}

// String renders the postfix sequence separated by spaces.
func (e *PostfixExpression) String() string {
	parts := make([]string, len(e.Lexemes))
	for i, l := range e.Lexemes {
		parts[i] = l.String()
	}
	return strings.Join(parts, " ")
}

// IsAssignment reports whether the expression ends in an assignment or an
// increment operator.
func (e *PostfixExpression) IsAssignment() bool {
	if len(e.Lexemes) == 0 {
		return false
	}
	switch l := e.Lexemes[len(e.Lexemes)-1].(type) {
	case *BinaryOperatorLexeme:
		return l.Op.Assignment
	case *UnaryOperatorLexeme:
		return l.Op.Assignment
	default:
		return false
	}
}

// IsFunctionInvocation reports whether the expression is a bare call.
func (e *PostfixExpression) IsFunctionInvocation() bool {
	if len(e.Lexemes) != 1 {
		return false
	}
	_, ok := e.Lexemes[0].(*FunctionInvocationLexeme)
	return ok
}

// ConstantValue returns the value of an expression made of a single constant.
func (e *PostfixExpression) ConstantValue() (runtime.Value, bool) {
	if len(e.Lexemes) != 1 {
		return nil, false
	}
	c, ok := e.Lexemes[0].(*ConstantLexeme)
	if !ok {
		return nil, false
	}
	return c.Value, true
}

// Invocations walks the expression, including nested arguments and deferred
// operands, and reports every function call it contains.
func (e *PostfixExpression) Invocations(visit func(*FunctionInvocationLexeme)) {
	if e == nil {
		return
	}
	for _, l := range e.Lexemes {
		switch n := l.(type) {
		case *FunctionInvocationLexeme:
			visit(n)
			for _, arg := range n.Args {
				arg.Invocations(visit)
			}
		case *ComplexLexeme:
			n.Expr.Invocations(visit)
		}
	}
}
