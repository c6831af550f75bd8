package ast

// OperatorKind tags the arity of an operator.
type OperatorKind int

const (
	UnaryOperatorKind OperatorKind = iota
	BinaryOperatorKind
	TernaryOperatorKind
)

// Binding strength, lowest first.
const (
	PrecedenceAssignment = iota + 1
	PrecedenceTernary
	PrecedenceLogicalOr
	PrecedenceLogicalAnd
	PrecedenceBitwiseOr
	PrecedenceBitwiseXor
	PrecedenceBitwiseAnd
	PrecedenceEquality
	PrecedenceRelational
	PrecedenceShift
	PrecedenceAdditive
	PrecedenceMultiplicative
	PrecedenceUnary
	PrecedencePostfix
)

// Operator describes a single operator identity. Unary and binary forms of the
// same symbol, and prefix and postfix increments, are distinct operators.
type Operator struct {
	Symbol           string
	Kind             OperatorKind
	Precedence       int
	RightAssociative bool
	Assignment       bool
	Postfix          bool
	// Base is the plain counterpart of a compound assignment (`+` for `+=`).
	Base *Operator
}

func (o *Operator) String() string {
	return o.Symbol
}

func (o *Operator) IsUnary() bool   { return o.Kind == UnaryOperatorKind }
func (o *Operator) IsBinary() bool  { return o.Kind == BinaryOperatorKind }
func (o *Operator) IsTernary() bool { return o.Kind == TernaryOperatorKind }

// IsIncrement reports whether the operator is one of the ++/-- forms.
func (o *Operator) IsIncrement() bool {
	return o.Kind == UnaryOperatorKind && o.Assignment
}

func binary(symbol string, precedence int) *Operator {
	return &Operator{Symbol: symbol, Kind: BinaryOperatorKind, Precedence: precedence}
}

func compound(symbol string, base *Operator) *Operator {
	return &Operator{
		Symbol:           symbol,
		Kind:             BinaryOperatorKind,
		Precedence:       PrecedenceAssignment,
		RightAssociative: true,
		Assignment:       true,
		Base:             base,
	}
}

func unary(symbol string) *Operator {
	return &Operator{Symbol: symbol, Kind: UnaryOperatorKind, Precedence: PrecedenceUnary, RightAssociative: true}
}

var (
	OpAdd         = binary("+", PrecedenceAdditive)
	OpSubtract    = binary("-", PrecedenceAdditive)
	OpMultiply    = binary("*", PrecedenceMultiplicative)
	OpDivide      = binary("/", PrecedenceMultiplicative)
	OpModulus     = binary("%", PrecedenceMultiplicative)
	OpShiftLeft   = binary("<<", PrecedenceShift)
	OpShiftRight  = binary(">>", PrecedenceShift)
	OpShiftURight = binary(">>>", PrecedenceShift)
	OpLess        = binary("<", PrecedenceRelational)
	OpLessEq      = binary("<=", PrecedenceRelational)
	OpGreater     = binary(">", PrecedenceRelational)
	OpGreaterEq   = binary(">=", PrecedenceRelational)
	OpEqual       = binary("==", PrecedenceEquality)
	OpNotEqual    = binary("!=", PrecedenceEquality)
	OpTypeof      = binary("typeof", PrecedenceEquality)
	OpBitAnd      = binary("&", PrecedenceBitwiseAnd)
	OpBitXor      = binary("^", PrecedenceBitwiseXor)
	OpBitOr       = binary("|", PrecedenceBitwiseOr)
	OpAnd         = binary("&&", PrecedenceLogicalAnd)
	OpOr          = binary("||", PrecedenceLogicalOr)

	OpAssign = &Operator{
		Symbol:           "=",
		Kind:             BinaryOperatorKind,
		Precedence:       PrecedenceAssignment,
		RightAssociative: true,
		Assignment:       true,
	}
	OpAddAssign         = compound("+=", OpAdd)
	OpSubtractAssign    = compound("-=", OpSubtract)
	OpMultiplyAssign    = compound("*=", OpMultiply)
	OpDivideAssign      = compound("/=", OpDivide)
	OpModulusAssign     = compound("%=", OpModulus)
	OpShiftLeftAssign   = compound("<<=", OpShiftLeft)
	OpShiftRightAssign  = compound(">>=", OpShiftRight)
	OpShiftURightAssign = compound(">>>=", OpShiftURight)
	OpBitAndAssign      = compound("&=", OpBitAnd)
	OpBitXorAssign      = compound("^=", OpBitXor)
	OpBitOrAssign       = compound("|=", OpBitOr)

	OpUnaryPlus  = unary("+")
	OpUnaryMinus = unary("-")
	OpNot        = unary("!")
	OpBitNot     = unary("~")
	OpHashCode   = unary("#")

	OpPreIncrement  = &Operator{Symbol: "++", Kind: UnaryOperatorKind, Precedence: PrecedenceUnary, RightAssociative: true, Assignment: true}
	OpPreDecrement  = &Operator{Symbol: "--", Kind: UnaryOperatorKind, Precedence: PrecedenceUnary, RightAssociative: true, Assignment: true}
	OpPostIncrement = &Operator{Symbol: "++", Kind: UnaryOperatorKind, Precedence: PrecedencePostfix, Assignment: true, Postfix: true}
	OpPostDecrement = &Operator{Symbol: "--", Kind: UnaryOperatorKind, Precedence: PrecedencePostfix, Assignment: true, Postfix: true}

	OpTernary = &Operator{Symbol: "?:", Kind: TernaryOperatorKind, Precedence: PrecedenceTernary, RightAssociative: true}
)

// BinaryOperators indexes binary operators by symbol.
var BinaryOperators = indexOperators(
	OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulus,
	OpShiftLeft, OpShiftRight, OpShiftURight,
	OpLess, OpLessEq, OpGreater, OpGreaterEq,
	OpEqual, OpNotEqual, OpTypeof,
	OpBitAnd, OpBitXor, OpBitOr, OpAnd, OpOr,
	OpAssign, OpAddAssign, OpSubtractAssign, OpMultiplyAssign, OpDivideAssign, OpModulusAssign,
	OpShiftLeftAssign, OpShiftRightAssign, OpShiftURightAssign,
	OpBitAndAssign, OpBitXorAssign, OpBitOrAssign,
)

// PrefixOperators indexes unary operators written before their operand.
var PrefixOperators = indexOperators(
	OpUnaryPlus, OpUnaryMinus, OpNot, OpBitNot, OpHashCode, OpPreIncrement, OpPreDecrement,
)

// PostfixOperators indexes unary operators written after their operand.
var PostfixOperators = indexOperators(OpPostIncrement, OpPostDecrement)

const (
	TernaryQuestion = "?"
	TernaryColon    = ":"
)

// Delimiters are punctuation symbols that are not operators.
var Delimiters = []string{"(", ")", "{", "}", "[", "]", ",", ";", TernaryQuestion, TernaryColon}

func indexOperators(ops ...*Operator) map[string]*Operator {
	out := make(map[string]*Operator, len(ops))
	for _, op := range ops {
		out[op.Symbol] = op
	}
	return out
}

// Symbols returns every operator and delimiter spelled with punctuation.
func Symbols() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		if s == OpTypeof.Symbol {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for s := range BinaryOperators {
		add(s)
	}
	for s := range PrefixOperators {
		add(s)
	}
	for s := range PostfixOperators {
		add(s)
	}
	for _, s := range Delimiters {
		add(s)
	}
	return out
}
