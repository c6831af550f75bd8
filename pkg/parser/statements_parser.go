package parser

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

// unit is one statement-sized slice of a source line. Lines are split at `{`,
// `}` and top-level `;`, so braces always arrive as units of their own.
type unit struct {
	line   *ast.SourceLine
	tokens []ast.Token
}

func (u unit) is(text string) bool {
	return len(u.tokens) == 1 && u.tokens[0].Text == text
}

func (u unit) first() string {
	if len(u.tokens) == 0 {
		return ""
	}
	return u.tokens[0].Text
}

func (u unit) with(tokens []ast.Token) unit {
	return unit{line: u.line, tokens: tokens}
}

func splitUnits(lines []*ast.SourceLine) []unit {
	var units []unit
	for _, line := range lines {
		start := 0
		depth := 0
		emit := func(end int) {
			if end > start {
				units = append(units, unit{line: line, tokens: line.Tokens[start:end]})
			}
		}
		for i, t := range line.Tokens {
			switch t.Text {
			case "(":
				depth++
			case ")":
				depth--
			case "{", "}":
				emit(i)
				units = append(units, unit{line: line, tokens: line.Tokens[i : i+1]})
				start = i + 1
			case ";":
				if depth <= 0 {
					emit(i)
					start = i + 1
				}
			}
		}
		emit(len(line.Tokens))
	}
	return units
}

// scope tells which jump statements are legal at the current position.
type scope struct {
	loop      bool
	breakable bool
}

type statementReader struct {
	module string
	units  []unit
	pos    int
}

func newStatementReader(module string, lines []*ast.SourceLine) *statementReader {
	return &statementReader{module: module, units: splitUnits(lines)}
}

func (r *statementReader) eof() bool {
	return r.pos >= len(r.units)
}

func (r *statementReader) peek() (unit, bool) {
	if r.eof() {
		return unit{}, false
	}
	return r.units[r.pos], true
}

func (r *statementReader) next() unit {
	u := r.units[r.pos]
	r.pos++
	return u
}

// readFunctions reads a whole module: a sequence of function declarations.
func (r *statementReader) readFunctions() ([]*ast.FunctionDeclaration, error) {
	var out []*ast.FunctionDeclaration
	for !r.eof() {
		u := r.next()
		if u.first() != "function" {
			return nil, syntaxErrorf(u.line, "Expected function declaration")
		}
		fn, err := r.readFunction(u)
		if err != nil {
			return nil, err
		}
		out = append(out, fn)
	}
	return out, nil
}

func (r *statementReader) readFunction(u unit) (*ast.FunctionDeclaration, error) {
	if len(u.tokens) < 2 {
		return nil, syntaxErrorf(u.line, "Function name expected")
	}
	name := u.tokens[1].Text
	if !IsValidName(name) {
		return nil, syntaxErrorf(u.line, "Invalid function name: %s", name)
	}
	if len(u.tokens) < 4 || u.tokens[2].Text != "(" {
		return nil, syntaxErrorf(u.line, "'(' expected after function name")
	}
	end := matchingParenthesis(u.tokens, 2)
	if end < 0 {
		return nil, syntaxErrorf(u.line, "Missing ')'")
	}
	if end != len(u.tokens)-1 {
		return nil, unsupportedToken(u.line, u.tokens[end+1].Text)
	}
	params, err := readParameters(u, u.tokens[3:end])
	if err != nil {
		return nil, err
	}
	body, err := r.expectBlock(u.line, scope{})
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		Module:     r.module,
		Name:       ast.FunctionName{Name: name, Arity: len(params)},
		Parameters: params,
		Body:       body,
		SourceLine: u.line,
	}, nil
}

func readParameters(u unit, tokens []ast.Token) ([]ast.Parameter, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var params []ast.Parameter
	seen := make(map[string]struct{})
	for _, part := range splitTopLevel(tokens, ",") {
		p := ast.Parameter{}
		if len(part) == 2 && part[0].Text == "final" {
			p.Final = true
			part = part[1:]
		}
		if len(part) != 1 || !IsValidName(part[0].Text) {
			if len(part) == 0 {
				return nil, syntaxErrorf(u.line, "Parameter name expected")
			}
			return nil, syntaxErrorf(u.line, "Invalid parameter name: %s", ast.JoinTokens(part))
		}
		p.Name = part[0].Text
		if _, dup := seen[p.Name]; dup {
			return nil, syntaxErrorf(u.line, "Duplicate parameter: %s", p.Name)
		}
		seen[p.Name] = struct{}{}
		params = append(params, p)
	}
	return params, nil
}

// expectBlock consumes `{ ... }` following a header line.
func (r *statementReader) expectBlock(header *ast.SourceLine, sc scope) (*ast.Block, error) {
	open, ok := r.peek()
	if !ok || !open.is("{") {
		return nil, syntaxErrorf(header, "'{' expected")
	}
	r.pos++
	return r.readBlock(open.line, sc)
}

// readBlock reads operations up to the `}` closing a block opened at line.
func (r *statementReader) readBlock(line *ast.SourceLine, sc scope) (*ast.Block, error) {
	block := &ast.Block{OperationBase: ast.At(line)}
	for {
		u, ok := r.peek()
		if !ok {
			return nil, syntaxErrorf(line, "'}' expected")
		}
		r.pos++
		if u.is("}") {
			return block, nil
		}
		op, err := r.readStatement(u, sc)
		if err != nil {
			return nil, err
		}
		block.Operations = append(block.Operations, op)
	}
}

// readBody reads the body of a control statement: either the statement
// written after the header on the same line, or a braced block.
func (r *statementReader) readBody(header unit, rest []ast.Token, sc scope) (*ast.Block, error) {
	if len(rest) == 0 {
		return r.expectBlock(header.line, sc)
	}
	op, err := r.readStatement(header.with(rest), sc)
	if err != nil {
		return nil, err
	}
	return &ast.Block{OperationBase: ast.At(header.line), Operations: []ast.Operation{op}}, nil
}

func (r *statementReader) readStatement(u unit, sc scope) (ast.Operation, error) {
	switch u.first() {
	case "{":
		return r.readBlock(u.line, sc)
	case "}":
		return nil, unsupportedToken(u.line, "}")
	case "var", "final":
		return readDeclaration(u)
	case "println":
		return readPrintln(u)
	case "if":
		return r.readIf(u, sc)
	case "else":
		return nil, syntaxErrorf(u.line, "'else' without 'if'")
	case "while":
		return r.readWhile(u, sc)
	case "do":
		return r.readDoWhile(u, sc)
	case "for":
		return r.readFor(u, sc)
	case "switch":
		return r.readSwitch(u, sc)
	case "case", "default":
		return nil, syntaxErrorf(u.line, "Orphaned %s", u.first())
	case "return":
		return readReturn(u)
	case "break":
		if len(u.tokens) > 1 {
			return nil, unsupportedToken(u.line, u.tokens[1].Text)
		}
		if !sc.breakable {
			return nil, syntaxErrorf(u.line, "break outside switch or loop")
		}
		return &ast.Break{OperationBase: ast.At(u.line)}, nil
	case "continue":
		if len(u.tokens) > 1 {
			return nil, unsupportedToken(u.line, u.tokens[1].Text)
		}
		if !sc.loop {
			return nil, syntaxErrorf(u.line, "continue outside of loop")
		}
		return &ast.Continue{OperationBase: ast.At(u.line)}, nil
	case "function":
		return nil, syntaxErrorf(u.line, "Function declaration is allowed at the top level only")
	default:
		return readExpressionStatement(u)
	}
}

func readDeclaration(u unit) (ast.Operation, error) {
	final := u.first() == "final"
	if len(u.tokens) < 2 {
		return nil, syntaxErrorf(u.line, "Variable name expected")
	}
	name := u.tokens[1].Text
	if !IsValidName(name) {
		return nil, syntaxErrorf(u.line, "Invalid variable name: %s", name)
	}
	decl := &ast.VariableDeclaration{OperationBase: ast.At(u.line), Name: name, Final: final}
	if len(u.tokens) == 2 {
		if final {
			return nil, syntaxErrorf(u.line, "Final variable '%s' should be initialized", name)
		}
		return decl, nil
	}
	if u.tokens[2].Text != "=" {
		return nil, unsupportedToken(u.line, u.tokens[2].Text)
	}
	value, err := ParseExpression(u.tokens[3:], u.line)
	if err != nil {
		return nil, err
	}
	decl.Value = value
	return decl, nil
}

func readPrintln(u unit) (ast.Operation, error) {
	inner, rest, err := parenthesized(u)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, unsupportedToken(u.line, rest[0].Text)
	}
	op := &ast.Println{OperationBase: ast.At(u.line)}
	if len(inner) == 0 {
		return op, nil
	}
	op.Expr, err = ParseExpression(inner, u.line)
	if err != nil {
		return nil, err
	}
	return op, nil
}

func readReturn(u unit) (ast.Operation, error) {
	op := &ast.Return{OperationBase: ast.At(u.line)}
	if len(u.tokens) == 1 {
		return op, nil
	}
	value, err := ParseExpression(u.tokens[1:], u.line)
	if err != nil {
		return nil, err
	}
	op.Value = value
	return op, nil
}

func readExpressionStatement(u unit) (ast.Operation, error) {
	expr, err := ParseExpression(u.tokens, u.line)
	if err != nil {
		return nil, err
	}
	switch {
	case expr.IsAssignment():
		return &ast.VariableAssignment{OperationBase: ast.At(u.line), Expr: expr}, nil
	case expr.IsFunctionInvocation():
		return &ast.FunctionInvocation{OperationBase: ast.At(u.line), Expr: expr}, nil
	default:
		return nil, syntaxErrorf(u.line, "Not a statement")
	}
}

// parenthesized splits `keyword ( inner ) rest...`.
func parenthesized(u unit) (inner, rest []ast.Token, err error) {
	if len(u.tokens) < 2 || u.tokens[1].Text != "(" {
		return nil, nil, syntaxErrorf(u.line, "'(' expected after '%s'", u.first())
	}
	end := matchingParenthesis(u.tokens, 1)
	if end < 0 {
		return nil, nil, syntaxErrorf(u.line, "Missing ')'")
	}
	return u.tokens[2:end], u.tokens[end+1:], nil
}

func (r *statementReader) condition(u unit) (*ast.PostfixExpression, []ast.Token, error) {
	inner, rest, err := parenthesized(u)
	if err != nil {
		return nil, nil, err
	}
	cond, err := ParseExpression(inner, u.line)
	if err != nil {
		return nil, nil, err
	}
	return cond, rest, nil
}

func (r *statementReader) readIf(u unit, sc scope) (ast.Operation, error) {
	cond, rest, err := r.condition(u)
	if err != nil {
		return nil, err
	}
	then, err := r.readBody(u, rest, sc)
	if err != nil {
		return nil, err
	}
	node := &ast.If{OperationBase: ast.At(u.line), Condition: cond, Then: then}
	next, ok := r.peek()
	if !ok || next.first() != "else" {
		return node, nil
	}
	r.pos++
	if len(next.tokens) > 1 && next.tokens[1].Text == "if" {
		node.Else, err = r.readIf(next.with(next.tokens[1:]), sc)
	} else {
		node.Else, err = r.readBody(next, next.tokens[1:], sc)
	}
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (r *statementReader) readWhile(u unit, sc scope) (ast.Operation, error) {
	cond, rest, err := r.condition(u)
	if err != nil {
		return nil, err
	}
	body, err := r.readBody(u, rest, scope{loop: true, breakable: true})
	if err != nil {
		return nil, err
	}
	return &ast.While{OperationBase: ast.At(u.line), Condition: cond, Body: body}, nil
}

func (r *statementReader) readDoWhile(u unit, sc scope) (ast.Operation, error) {
	if len(u.tokens) > 1 {
		return nil, unsupportedToken(u.line, u.tokens[1].Text)
	}
	body, err := r.expectBlock(u.line, scope{loop: true, breakable: true})
	if err != nil {
		return nil, err
	}
	next, ok := r.peek()
	if !ok || next.first() != "while" {
		return nil, syntaxErrorf(u.line, "'while' expected after 'do' block")
	}
	r.pos++
	cond, rest, err := r.condition(next)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, unsupportedToken(next.line, rest[0].Text)
	}
	return &ast.DoWhile{OperationBase: ast.At(u.line), Body: body, Condition: cond}, nil
}

func (r *statementReader) readFor(u unit, sc scope) (ast.Operation, error) {
	inner, rest, err := parenthesized(u)
	if err != nil {
		return nil, err
	}
	parts := splitTopLevel(inner, ";")
	if len(parts) != 3 {
		return nil, syntaxErrorf(u.line, "Invalid for loop header: %s", ast.JoinTokens(inner))
	}
	node := &ast.For{OperationBase: ast.At(u.line)}
	if node.Init, err = readForInit(u, parts[0]); err != nil {
		return nil, err
	}
	if len(parts[1]) > 0 {
		if node.Condition, err = ParseExpression(parts[1], u.line); err != nil {
			return nil, err
		}
	}
	if len(parts[2]) > 0 {
		for _, part := range splitTopLevel(parts[2], ",") {
			op, err := readExpressionStatement(u.with(part))
			if err != nil {
				return nil, err
			}
			node.Update = append(node.Update, op)
		}
	}
	node.Body, err = r.readBody(u, rest, scope{loop: true, breakable: true})
	if err != nil {
		return nil, err
	}
	return node, nil
}

// readForInit accepts `var i = 0, j = 1` (the keyword carries over to the
// following names) as well as comma-separated expression statements.
func readForInit(u unit, tokens []ast.Token) ([]ast.Operation, error) {
	if len(tokens) == 0 {
		return nil, nil
	}
	var ops []ast.Operation
	var keyword *ast.Token
	for _, part := range splitTopLevel(tokens, ",") {
		if len(part) == 0 {
			return nil, syntaxErrorf(u.line, "Expression expected")
		}
		switch {
		case part[0].Text == "var" || part[0].Text == "final":
			kw := part[0]
			keyword = &kw
		case keyword != nil:
			part = append([]ast.Token{*keyword}, part...)
		}
		var op ast.Operation
		var err error
		if keyword != nil {
			op, err = readDeclaration(u.with(part))
		} else {
			op, err = readExpressionStatement(u.with(part))
		}
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, nil
}

func (r *statementReader) readSwitch(u unit, sc scope) (ast.Operation, error) {
	selector, rest, err := r.condition(u)
	if err != nil {
		return nil, err
	}
	if len(rest) > 0 {
		return nil, unsupportedToken(u.line, rest[0].Text)
	}
	open, ok := r.peek()
	if !ok || !open.is("{") {
		return nil, syntaxErrorf(u.line, "'{' expected")
	}
	r.pos++
	node := &ast.Switch{OperationBase: ast.At(u.line), Selector: selector}
	body := scope{loop: sc.loop, breakable: true}
	seen := make(map[string]struct{})
	var current *ast.SwitchCase
	hasDefault := false
	for {
		n, ok := r.peek()
		if !ok {
			return nil, syntaxErrorf(open.line, "'}' expected")
		}
		r.pos++
		if n.is("}") {
			return node, nil
		}
		var restTokens []ast.Token
		switch n.first() {
		case "case":
			colon := labelEnd(n.tokens, 1)
			if colon < 0 {
				return nil, syntaxErrorf(n.line, "':' expected")
			}
			value, err := ParseExpression(n.tokens[1:colon], n.line)
			if err != nil {
				return nil, err
			}
			if c, ok := value.ConstantValue(); ok {
				key := runtime.KindOf(c).String() + ":" + runtime.Text(c)
				if _, dup := seen[key]; dup {
					return nil, syntaxErrorf(n.line, "Duplicate case label")
				}
				seen[key] = struct{}{}
			}
			current = &ast.SwitchCase{Line: n.line, Value: value}
			node.Cases = append(node.Cases, current)
			restTokens = n.tokens[colon+1:]
		case "default":
			if len(n.tokens) < 2 || n.tokens[1].Text != ast.TernaryColon {
				return nil, syntaxErrorf(n.line, "':' expected")
			}
			if hasDefault {
				return nil, syntaxErrorf(n.line, "Duplicate default label")
			}
			hasDefault = true
			current = &ast.SwitchCase{Line: n.line}
			node.Cases = append(node.Cases, current)
			restTokens = n.tokens[2:]
		default:
			if current == nil {
				return nil, syntaxErrorf(n.line, "'case' or 'default' expected")
			}
			restTokens = n.tokens
		}
		if len(restTokens) == 0 {
			continue
		}
		op, err := r.readStatement(n.with(restTokens), body)
		if err != nil {
			return nil, err
		}
		current.Body = append(current.Body, op)
	}
}

// labelEnd finds the `:` ending a case label, skipping the separators of
// ternary operators inside the value.
func labelEnd(tokens []ast.Token, start int) int {
	depth := 0
	pending := 0
	for i := start; i < len(tokens); i++ {
		switch tokens[i].Text {
		case "(":
			depth++
		case ")":
			depth--
		case ast.TernaryQuestion:
			if depth == 0 {
				pending++
			}
		case ast.TernaryColon:
			if depth != 0 {
				continue
			}
			if pending == 0 {
				return i
			}
			pending--
		}
	}
	return -1
}
