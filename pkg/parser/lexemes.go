package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

// Keywords can not be used as variable or function names.
var Keywords = map[string]struct{}{
	"var": {}, "final": {}, "function": {}, "if": {}, "else": {}, "while": {}, "do": {},
	"for": {}, "switch": {}, "case": {}, "default": {}, "break": {}, "continue": {},
	"return": {}, "println": {}, "typeof": {}, "true": {}, "false": {}, "null": {},
	"boolean": {}, "integer": {}, "double": {}, "string": {},
}

const minIntMagnitude = "2147483648"

var (
	identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	integerPattern    = regexp.MustCompile(`^[0-9]+$`)
	doublePattern     = regexp.MustCompile(`^([0-9]+\.[0-9]*|\.[0-9]+)$`)
)

// IsValidName reports whether name can name a variable or a function.
func IsValidName(name string) bool {
	if !identifierPattern.MatchString(name) {
		return false
	}
	_, reserved := Keywords[name]
	return !reserved
}

// BuildLexemes classifies tokens, resolving the unary/binary and
// prefix/postfix readings of `+`, `-`, `++` and `--` from context.
func BuildLexemes(tokens []ast.Token, line *ast.SourceLine) ([]ast.Lexeme, error) {
	b := &lexemeBuilder{tokens: tokens, line: line}
	return b.build()
}

type lexemeBuilder struct {
	tokens []ast.Token
	line   *ast.SourceLine
	out    []ast.Lexeme
}

func (b *lexemeBuilder) build() ([]ast.Lexeme, error) {
	for i := 0; i < len(b.tokens); i++ {
		text := b.tokens[i].Text
		switch text {
		case "(":
			b.out = append(b.out, ast.OpenParenthesis)
			continue
		case ")":
			b.out = append(b.out, ast.CloseParenthesis)
			continue
		case ast.TernaryQuestion, ast.TernaryColon:
			b.out = append(b.out, &ast.TernarySeparatorLexeme{Symbol: text})
			continue
		case "++", "--":
			if err := b.addIncrement(text, i); err != nil {
				return nil, err
			}
			continue
		case "+", "-":
			switch {
			case b.continuesOperand():
				b.out = append(b.out, &ast.BinaryOperatorLexeme{Op: ast.BinaryOperators[text]})
			case text == "-" && i+1 < len(b.tokens) && b.tokens[i+1].Text == minIntMagnitude:
				// The magnitude alone does not fit an int32.
				b.out = append(b.out, ast.NewConstant(runtime.Int(math.MinInt32)))
				i++
			default:
				b.out = append(b.out, &ast.UnaryOperatorLexeme{Op: ast.PrefixOperators[text]})
			}
			continue
		}
		if op, ok := ast.BinaryOperators[text]; ok {
			b.out = append(b.out, &ast.BinaryOperatorLexeme{Op: op})
			continue
		}
		if op, ok := ast.PrefixOperators[text]; ok {
			b.out = append(b.out, &ast.UnaryOperatorLexeme{Op: op})
			continue
		}
		if i+1 < len(b.tokens) && b.tokens[i+1].Text == "(" && IsValidName(text) {
			end, err := b.addInvocation(text, i)
			if err != nil {
				return nil, err
			}
			i = end
			continue
		}
		lexeme, err := singleTokenLexeme(text, b.line)
		if err != nil {
			return nil, err
		}
		b.out = append(b.out, lexeme)
	}
	return b.out, nil
}

// continuesOperand reports whether the lexemes so far end in something a
// binary or postfix operator can follow.
func (b *lexemeBuilder) continuesOperand() bool {
	if len(b.out) == 0 {
		return false
	}
	switch l := b.out[len(b.out)-1].(type) {
	case *ast.ParenthesisLexeme:
		return !l.Open
	case *ast.UnaryOperatorLexeme:
		return l.Op.Postfix
	default:
		return ast.IsOperand(l)
	}
}

func (b *lexemeBuilder) addIncrement(symbol string, index int) error {
	if b.continuesOperand() {
		if !b.postfixTargetIsVariable() {
			return syntaxErrorf(b.line, "Invalid argument for operator '%s'", symbol)
		}
		b.out = append(b.out, &ast.UnaryOperatorLexeme{Op: ast.PostfixOperators[symbol]})
		return nil
	}
	if !b.prefixTargetIsVariable(index + 1) {
		return syntaxErrorf(b.line, "Invalid argument for operator '%s'", symbol)
	}
	b.out = append(b.out, &ast.UnaryOperatorLexeme{Op: ast.PrefixOperators[symbol]})
	return nil
}

// postfixTargetIsVariable accepts `a++` and `((a))++`: after any run of
// closing parentheses the group must hold a single variable reference opened
// by the same number of parentheses.
func (b *lexemeBuilder) postfixTargetIsVariable() bool {
	i := len(b.out) - 1
	closing := 0
	for i >= 0 {
		p, ok := b.out[i].(*ast.ParenthesisLexeme)
		if !ok || p.Open {
			break
		}
		closing++
		i--
	}
	if i < 0 {
		return false
	}
	if _, ok := b.out[i].(*ast.VariableLexeme); !ok {
		return false
	}
	for k := 0; k < closing; k++ {
		i--
		if i < 0 {
			return false
		}
		p, ok := b.out[i].(*ast.ParenthesisLexeme)
		if !ok || !p.Open {
			return false
		}
	}
	return true
}

// prefixTargetIsVariable looks ahead past opening parentheses for a variable
// name closed by the same number of parentheses.
func (b *lexemeBuilder) prefixTargetIsVariable(start int) bool {
	i := start
	opening := 0
	for i < len(b.tokens) && b.tokens[i].Text == "(" {
		opening++
		i++
	}
	if i >= len(b.tokens) || !IsValidName(b.tokens[i].Text) {
		return false
	}
	i++
	for k := 0; k < opening; k++ {
		if i >= len(b.tokens) || b.tokens[i].Text != ")" {
			return false
		}
		i++
	}
	if opening == 0 && i < len(b.tokens) && b.tokens[i].Text == "(" {
		return false
	}
	return true
}

// addInvocation resolves name(arg, ...) starting at index and returns the
// index of the closing parenthesis.
func (b *lexemeBuilder) addInvocation(name string, index int) (int, error) {
	open := index + 1
	end := matchingParenthesis(b.tokens, open)
	if end < 0 {
		return 0, syntaxErrorf(b.line, "Missing ')' for function '%s'", name)
	}
	var args []*ast.PostfixExpression
	inner := b.tokens[open+1 : end]
	if len(inner) > 0 {
		for _, part := range splitTopLevel(inner, ",") {
			if len(part) == 0 {
				return 0, syntaxErrorf(b.line, "Missing argument for function '%s'", name)
			}
			arg, err := ParseExpression(part, b.line)
			if err != nil {
				return 0, err
			}
			args = append(args, arg)
		}
	}
	b.out = append(b.out, &ast.FunctionInvocationLexeme{Name: name, Args: args})
	return end, nil
}

func singleTokenLexeme(text string, line *ast.SourceLine) (ast.Lexeme, error) {
	switch text {
	case "true":
		return ast.NewConstant(runtime.True), nil
	case "false":
		return ast.NewConstant(runtime.False), nil
	case "null":
		return ast.NewConstant(runtime.Null), nil
	}
	if kind, ok := runtime.TypeKeywords[text]; ok {
		return &ast.TypeLiteralLexeme{Of: kind}, nil
	}
	if strings.HasPrefix(text, "'") || strings.HasPrefix(text, `"`) {
		s, err := unquote(text)
		if err != nil {
			return nil, syntaxErrorf(line, "%s", err.Error())
		}
		return ast.NewConstant(runtime.String(s)), nil
	}
	if integerPattern.MatchString(text) {
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return nil, syntaxErrorf(line, "Integer constant is out of range: %s", text)
		}
		return ast.NewConstant(runtime.Int(int32(v))), nil
	}
	if doublePattern.MatchString(text) {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, syntaxErrorf(line, "Invalid double constant: %s", text)
		}
		return ast.NewConstant(runtime.Double(v)), nil
	}
	if IsValidName(text) {
		return &ast.VariableLexeme{Name: text}, nil
	}
	return nil, unsupportedToken(line, text)
}

type stringLiteralError struct {
	literal string
}

func (e stringLiteralError) Error() string {
	return "Missing closing delimiter for string constant: " + e.literal
}

// unquote strips the delimiters of a string literal and resolves escapes.
func unquote(literal string) (string, error) {
	runes := []rune(literal)
	delim := runes[0]
	if len(runes) < 2 || runes[len(runes)-1] != delim || escapedAt(runes, len(runes)-1) {
		return "", stringLiteralError{literal: literal}
	}
	var b strings.Builder
	body := runes[1 : len(runes)-1]
	for i := 0; i < len(body); i++ {
		r := body[i]
		if r != '\\' || i+1 >= len(body) {
			b.WriteRune(r)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		default:
			b.WriteRune(body[i])
		}
	}
	return b.String(), nil
}

// escapedAt counts the backslashes before index; an odd count escapes it.
func escapedAt(runes []rune, index int) bool {
	count := 0
	for i := index - 1; i > 0 && runes[i] == '\\'; i-- {
		count++
	}
	return count%2 == 1
}

// matchingParenthesis returns the index of the `)` closing the `(` at open.
func matchingParenthesis(tokens []ast.Token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].Text {
		case "(":
			depth++
		case ")":
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits tokens on sep outside of parentheses.
func splitTopLevel(tokens []ast.Token, sep string) [][]ast.Token {
	var parts [][]ast.Token
	depth := 0
	start := 0
	for i, t := range tokens {
		switch t.Text {
		case "(":
			depth++
		case ")":
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, tokens[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, tokens[start:])
}
