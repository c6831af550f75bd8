package parser

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

// ParseExpression builds lexemes for tokens and resolves them into postfix form.
func ParseExpression(tokens []ast.Token, line *ast.SourceLine) (*ast.PostfixExpression, error) {
	if len(tokens) == 0 {
		return nil, syntaxErrorf(line, "Expression expected")
	}
	lexemes, err := BuildLexemes(tokens, line)
	if err != nil {
		return nil, err
	}
	return ToPostfix(lexemes, line, ast.JoinTokens(tokens))
}

// ToPostfix converts infix lexemes into an evaluable postfix expression.
// source is kept on the result for diagnostics.
func ToPostfix(lexemes []ast.Lexeme, line *ast.SourceLine, source string) (*ast.PostfixExpression, error) {
	tree, err := ResolveExpression(lexemes, line)
	if err != nil {
		return nil, err
	}
	out, err := flatten(tree, line)
	if err != nil {
		return nil, err
	}
	return &ast.PostfixExpression{Lexemes: out, Source: source}, nil
}

// ResolveExpression runs the shunting-yard pass and returns the expression tree.
func ResolveExpression(lexemes []ast.Lexeme, line *ast.SourceLine) (ast.Expression, error) {
	if len(lexemes) == 0 {
		return nil, syntaxErrorf(line, "Expression expected")
	}
	r := &resolver{line: line}
	return r.resolve(lexemes)
}

// stackEntry is an operator waiting for its operands. A nil op is a `?`
// that has not met its `:` yet; it blocks popping like an open parenthesis.
type stackEntry struct {
	op     *ast.Operator
	symbol string
}

type resolver struct {
	line      *ast.SourceLine
	operators []stackEntry
	operands  []ast.Expression
}

func (r *resolver) resolve(lexemes []ast.Lexeme) (ast.Expression, error) {
	expectOperand := true
	var last string
	for i := 0; i < len(lexemes); i++ {
		switch l := lexemes[i].(type) {
		case *ast.ParenthesisLexeme:
			if !l.Open {
				return nil, unsupportedToken(r.line, ")")
			}
			if !expectOperand {
				return nil, unsupportedToken(r.line, "(")
			}
			end := matchingLexemeParenthesis(lexemes, i)
			if end < 0 {
				return nil, syntaxErrorf(r.line, "Missing ')'")
			}
			if end == i+1 {
				return nil, syntaxErrorf(r.line, "Expression expected inside '()'")
			}
			inner, err := (&resolver{line: r.line}).resolve(lexemes[i+1 : end])
			if err != nil {
				return nil, err
			}
			r.operands = append(r.operands, inner)
			expectOperand = false
			i = end

		case *ast.UnaryOperatorLexeme:
			last = l.Op.Symbol
			if l.Op.Postfix {
				if expectOperand {
					return nil, syntaxErrorf(r.line, "Invalid argument for operator '%s'", l.Op.Symbol)
				}
				if err := r.apply(l.Op); err != nil {
					return nil, err
				}
				continue
			}
			if !expectOperand {
				return nil, unsupportedToken(r.line, l.Op.Symbol)
			}
			r.operators = append(r.operators, stackEntry{op: l.Op, symbol: l.Op.Symbol})

		case *ast.BinaryOperatorLexeme:
			last = l.Op.Symbol
			if expectOperand {
				return nil, syntaxErrorf(r.line, "Missing operand for operator '%s'", l.Op.Symbol)
			}
			if err := r.popWhile(func(top *ast.Operator) bool { return bindsBefore(top, l.Op) }); err != nil {
				return nil, err
			}
			r.operators = append(r.operators, stackEntry{op: l.Op, symbol: l.Op.Symbol})
			expectOperand = true

		case *ast.TernarySeparatorLexeme:
			last = l.Symbol
			if expectOperand {
				return nil, unsupportedToken(r.line, l.Symbol)
			}
			if l.Symbol == ast.TernaryQuestion {
				if err := r.popWhile(func(top *ast.Operator) bool { return bindsBefore(top, ast.OpTernary) }); err != nil {
					return nil, err
				}
				r.operators = append(r.operators, stackEntry{symbol: ast.TernaryQuestion})
			} else if err := r.closeTernary(); err != nil {
				return nil, err
			}
			expectOperand = true

		case *ast.TernaryOperatorLexeme, *ast.ComplexLexeme:
			return nil, runtime.Internalf("unexpected %T in infix input", l)

		default:
			if !expectOperand {
				return nil, unsupportedToken(r.line, l.String())
			}
			operand, err := operandExpression(l)
			if err != nil {
				return nil, err
			}
			r.operands = append(r.operands, operand)
			expectOperand = false
		}
	}
	if expectOperand {
		return nil, syntaxErrorf(r.line, "Missing operand for operator '%s'", last)
	}
	for len(r.operators) > 0 {
		top := r.operators[len(r.operators)-1]
		if top.op == nil {
			return nil, unsupportedToken(r.line, ast.TernaryQuestion)
		}
		r.operators = r.operators[:len(r.operators)-1]
		if err := r.apply(top.op); err != nil {
			return nil, err
		}
	}
	if len(r.operands) != 1 {
		return nil, runtime.Internalf("expression resolved to %d operands", len(r.operands))
	}
	return r.operands[0], nil
}

// bindsBefore reports whether the stacked operator top must be applied before
// next is pushed.
func bindsBefore(top, next *ast.Operator) bool {
	if top.Precedence != next.Precedence {
		return top.Precedence > next.Precedence
	}
	return !next.RightAssociative
}

// popWhile applies stacked operators while cond holds, stopping at a pending `?`.
func (r *resolver) popWhile(cond func(*ast.Operator) bool) error {
	for len(r.operators) > 0 {
		top := r.operators[len(r.operators)-1]
		if top.op == nil || !cond(top.op) {
			return nil
		}
		r.operators = r.operators[:len(r.operators)-1]
		if err := r.apply(top.op); err != nil {
			return err
		}
	}
	return nil
}

// closeTernary handles `:`. Everything since the nearest pending `?` belongs to
// the then-branch; the `?` becomes a ternary operator awaiting the else-branch.
func (r *resolver) closeTernary() error {
	if err := r.popWhile(func(*ast.Operator) bool { return true }); err != nil {
		return err
	}
	if len(r.operators) == 0 {
		return unsupportedToken(r.line, ast.TernaryColon)
	}
	r.operators[len(r.operators)-1] = stackEntry{op: ast.OpTernary, symbol: ast.OpTernary.Symbol}
	return nil
}

func (r *resolver) pop(n int) ([]ast.Expression, error) {
	if len(r.operands) < n {
		return nil, runtime.Internalf("operand stack underflow")
	}
	args := append([]ast.Expression(nil), r.operands[len(r.operands)-n:]...)
	r.operands = r.operands[:len(r.operands)-n]
	return args, nil
}

func (r *resolver) apply(op *ast.Operator) error {
	switch op.Kind {
	case ast.TernaryOperatorKind:
		args, err := r.pop(3)
		if err != nil {
			return err
		}
		r.operands = append(r.operands, &ast.TernaryExpression{Condition: args[0], Then: args[1], Else: args[2]})
	case ast.BinaryOperatorKind:
		args, err := r.pop(2)
		if err != nil {
			return err
		}
		if op.Assignment {
			if _, ok := args[0].(*ast.VariableExpression); !ok {
				return syntaxErrorf(r.line, "Variable expected at the left side of '%s'", op.Symbol)
			}
		}
		if op == ast.OpTypeof && !isTypeLiteral(args[1]) {
			return syntaxErrorf(r.line, "Type expected at the right side of 'typeof'")
		}
		r.operands = append(r.operands, &ast.BinaryExpression{Op: op, Left: args[0], Right: args[1]})
	default:
		args, err := r.pop(1)
		if err != nil {
			return err
		}
		if op.IsIncrement() {
			if _, ok := args[0].(*ast.VariableExpression); !ok {
				return syntaxErrorf(r.line, "Invalid argument for operator '%s'", op.Symbol)
			}
		}
		r.operands = append(r.operands, &ast.UnaryExpression{Op: op, Operand: args[0], Postfix: op.Postfix})
	}
	return nil
}

func isTypeLiteral(e ast.Expression) bool {
	c, ok := e.(*ast.ConstantExpression)
	if !ok {
		return false
	}
	_, ok = c.Value.(runtime.TypeValue)
	return ok
}

func operandExpression(l ast.Lexeme) (ast.Expression, error) {
	switch n := l.(type) {
	case *ast.ConstantLexeme:
		return &ast.ConstantExpression{Value: n.Value}, nil
	case *ast.TypeLiteralLexeme:
		return &ast.ConstantExpression{Value: runtime.TypeValue{Of: n.Of}}, nil
	case *ast.VariableLexeme:
		return &ast.VariableExpression{Name: n.Name}, nil
	case *ast.FunctionInvocationLexeme:
		return &ast.FunctionInvocationExpression{Name: n.Name, Args: n.Args}, nil
	default:
		return nil, runtime.Internalf("unexpected operand %T", l)
	}
}

func matchingLexemeParenthesis(lexemes []ast.Lexeme, open int) int {
	depth := 0
	for i := open; i < len(lexemes); i++ {
		p, ok := lexemes[i].(*ast.ParenthesisLexeme)
		if !ok {
			continue
		}
		if p.Open {
			depth++
			continue
		}
		depth--
		if depth == 0 {
			return i
		}
	}
	return -1
}

// flatten emits the tree in evaluation order. The right operand of && and ||
// and both ternary branches become deferred nested expressions.
func flatten(e ast.Expression, line *ast.SourceLine) ([]ast.Lexeme, error) {
	var out []ast.Lexeme
	var walk func(ast.Expression, bool) error
	walk = func(e ast.Expression, typeAllowed bool) error {
		switch n := e.(type) {
		case *ast.ConstantExpression:
			if t, ok := n.Value.(runtime.TypeValue); ok {
				if !typeAllowed {
					return unsupportedToken(line, t.Of.String())
				}
				out = append(out, &ast.TypeLiteralLexeme{Of: t.Of})
				return nil
			}
			out = append(out, ast.NewConstant(n.Value))
		case *ast.VariableExpression:
			out = append(out, &ast.VariableLexeme{Name: n.Name})
		case *ast.FunctionInvocationExpression:
			out = append(out, &ast.FunctionInvocationLexeme{Name: n.Name, Args: n.Args})
		case *ast.UnaryExpression:
			if err := walk(n.Operand, false); err != nil {
				return err
			}
			out = append(out, &ast.UnaryOperatorLexeme{Op: n.Op})
		case *ast.BinaryExpression:
			if err := walk(n.Left, false); err != nil {
				return err
			}
			if n.Op == ast.OpAnd || n.Op == ast.OpOr {
				deferred, err := deferredLexeme(n.Right, line)
				if err != nil {
					return err
				}
				out = append(out, deferred)
			} else if err := walk(n.Right, n.Op == ast.OpTypeof); err != nil {
				return err
			}
			out = append(out, &ast.BinaryOperatorLexeme{Op: n.Op})
		case *ast.TernaryExpression:
			if err := walk(n.Condition, false); err != nil {
				return err
			}
			then, err := deferredLexeme(n.Then, line)
			if err != nil {
				return err
			}
			els, err := deferredLexeme(n.Else, line)
			if err != nil {
				return err
			}
			out = append(out, then, els, &ast.TernaryOperatorLexeme{Op: ast.OpTernary})
		default:
			return runtime.Internalf("unexpected expression %T", e)
		}
		return nil
	}
	if err := walk(e, false); err != nil {
		return nil, err
	}
	return out, nil
}

func deferredLexeme(e ast.Expression, line *ast.SourceLine) (*ast.ComplexLexeme, error) {
	inner, err := flatten(e, line)
	if err != nil {
		return nil, err
	}
	return &ast.ComplexLexeme{Expr: &ast.PostfixExpression{Lexemes: inner, Source: e.String()}}, nil
}
