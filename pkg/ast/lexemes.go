package ast

import (
	"strconv"
	"strings"

	"javamm/interpreter-go/pkg/runtime"
)

// Lexeme is a classified syntactic unit. The set of implementations is closed.
type Lexeme interface {
	lexemeNode()
	String() string
}

// ConstantLexeme carries a literal value.
type ConstantLexeme struct {
	Value runtime.Value
}

// TypeLiteralLexeme is a type keyword; it is only valid as the right operand of typeof.
type TypeLiteralLexeme struct {
	Of runtime.Kind
}

// VariableLexeme references a variable by name.
type VariableLexeme struct {
	Name string
}

type ParenthesisLexeme struct {
	Open bool
}

type UnaryOperatorLexeme struct {
	Op *Operator
}

type BinaryOperatorLexeme struct {
	Op *Operator
}

// TernaryOperatorLexeme appears in postfix output only; it consumes a
// condition and two deferred branches.
type TernaryOperatorLexeme struct {
	Op *Operator
}

// TernarySeparatorLexeme is the infix `?` or `:`.
type TernarySeparatorLexeme struct {
	Symbol string
}

// ComplexLexeme wraps a nested postfix sequence that the evaluator runs on
// demand (short-circuit operands and ternary branches).
type ComplexLexeme struct {
	Expr *PostfixExpression
}

// FunctionInvocationLexeme calls a function with already resolved arguments.
type FunctionInvocationLexeme struct {
	Name string
	Args []*PostfixExpression
}

func (*ConstantLexeme) lexemeNode()           {}
func (*TypeLiteralLexeme) lexemeNode()        {}
func (*VariableLexeme) lexemeNode()           {}
func (*ParenthesisLexeme) lexemeNode()        {}
func (*UnaryOperatorLexeme) lexemeNode()      {}
func (*BinaryOperatorLexeme) lexemeNode()     {}
func (*TernaryOperatorLexeme) lexemeNode()    {}
func (*TernarySeparatorLexeme) lexemeNode()   {}
func (*ComplexLexeme) lexemeNode()            {}
func (*FunctionInvocationLexeme) lexemeNode() {}

func (l *ConstantLexeme) String() string {
	if s, ok := l.Value.(runtime.StringValue); ok {
		return strconv.Quote(s.Val)
	}
	return runtime.Text(l.Value)
}

func (l *TypeLiteralLexeme) String() string { return l.Of.String() }
func (l *VariableLexeme) String() string    { return l.Name }

func (l *ParenthesisLexeme) String() string {
	if l.Open {
		return "("
	}
	return ")"
}

func (l *UnaryOperatorLexeme) String() string    { return l.Op.Symbol }
func (l *BinaryOperatorLexeme) String() string   { return l.Op.Symbol }
func (l *TernaryOperatorLexeme) String() string  { return l.Op.Symbol }
func (l *TernarySeparatorLexeme) String() string { return l.Symbol }
func (l *ComplexLexeme) String() string          { return "{" + l.Expr.String() + "}" }

func (l *FunctionInvocationLexeme) String() string {
	args := make([]string, len(l.Args))
	for i, a := range l.Args {
		args[i] = a.Source
	}
	return l.Name + "(" + strings.Join(args, ", ") + ")"
}

var (
	OpenParenthesis  = &ParenthesisLexeme{Open: true}
	CloseParenthesis = &ParenthesisLexeme{Open: false}
)

const (
	minCachedInt = -1
	maxCachedInt = 10
)

var (
	nullConstant  = &ConstantLexeme{Value: runtime.Null}
	trueConstant  = &ConstantLexeme{Value: runtime.True}
	falseConstant = &ConstantLexeme{Value: runtime.False}
	intConstants  = func() []*ConstantLexeme {
		out := make([]*ConstantLexeme, maxCachedInt-minCachedInt+1)
		for i := range out {
			out[i] = &ConstantLexeme{Value: runtime.Int(int32(i + minCachedInt))}
		}
		return out
	}()
)

// NewConstant returns a constant lexeme. Null, booleans and small integers are
// shared instances.
func NewConstant(v runtime.Value) *ConstantLexeme {
	switch val := v.(type) {
	case nil, runtime.NullValue:
		return nullConstant
	case runtime.BoolValue:
		if val.Val {
			return trueConstant
		}
		return falseConstant
	case runtime.IntegerValue:
		if val.Val >= minCachedInt && val.Val <= maxCachedInt {
			return intConstants[val.Val-minCachedInt]
		}
	}
	return &ConstantLexeme{Value: v}
}

// IsOperand reports whether the lexeme denotes a complete operand.
func IsOperand(l Lexeme) bool {
	switch l.(type) {
	case *ConstantLexeme, *TypeLiteralLexeme, *VariableLexeme, *FunctionInvocationLexeme, *ComplexLexeme:
		return true
	default:
		return false
	}
}
