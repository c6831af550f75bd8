package parser

import "javamm/interpreter-go/pkg/ast"

// SourceModule is a named module and its raw lines.
type SourceModule struct {
	Name  string
	Lines []string
}

// ModuleParser turns modules into function declarations. A parser can be
// reused across modules; it holds no per-module state.
type ModuleParser struct {
	tokenizer *Tokenizer
}

func NewModuleParser() *ModuleParser {
	return &ModuleParser{tokenizer: NewTokenizer()}
}

// TokenizeModule tokenizes every line, dropping lines without tokens.
func (p *ModuleParser) TokenizeModule(module string, firstLine int, lines []string) ([]*ast.SourceLine, error) {
	var out []*ast.SourceLine
	commentOpen := false
	for i, raw := range lines {
		var tokens []ast.Token
		tokens, commentOpen = p.tokenizer.Tokenize(raw, commentOpen)
		if len(tokens) == 0 {
			continue
		}
		out = append(out, ast.NewSourceLine(module, firstLine+i, tokens))
	}
	if commentOpen {
		return nil, moduleErrorf(module, "Multi-line comment is not closed")
	}
	return out, nil
}

// ParseModule reads the function declarations of one module.
func (p *ModuleParser) ParseModule(m SourceModule) ([]*ast.FunctionDeclaration, error) {
	lines, err := p.TokenizeModule(m.Name, 1, m.Lines)
	if err != nil {
		return nil, err
	}
	return newStatementReader(m.Name, lines).readFunctions()
}

// Compile parses every module into one program and checks that each function
// invocation resolves to a declared function.
func Compile(modules ...SourceModule) (*ast.Program, error) {
	p := NewModuleParser()
	program := ast.NewProgram()
	for _, m := range modules {
		fns, err := p.ParseModule(m)
		if err != nil {
			return nil, err
		}
		if err := Declare(program, fns...); err != nil {
			return nil, err
		}
		program.AddModule(m.Name)
	}
	for _, fn := range program.Functions() {
		if err := Link(program, fn.Body); err != nil {
			return nil, err
		}
	}
	return program, nil
}

// Declare adds fns to program; a signature that is already taken is a
// syntax error at the redeclaration.
func Declare(program *ast.Program, fns ...*ast.FunctionDeclaration) error {
	for _, fn := range fns {
		if err := program.Add(fn); err != nil {
			return syntaxErrorf(fn.SourceLine, "%s", err.Error())
		}
	}
	return nil
}

// Link verifies that the invocations inside ops resolve against program.
func Link(program *ast.Program, ops ...ast.Operation) error {
	var linkErr error
	for _, op := range ops {
		ast.Walk(op, func(node ast.Operation) bool {
			if linkErr != nil {
				return false
			}
			for _, le := range ast.Expressions(node) {
				if linkErr = LinkExpression(program, le.Line, le.Expr); linkErr != nil {
					return false
				}
			}
			return true
		})
		if linkErr != nil {
			return linkErr
		}
	}
	return nil
}

// LinkExpression verifies the invocations of a single expression.
func LinkExpression(program *ast.Program, line *ast.SourceLine, expr *ast.PostfixExpression) error {
	var linkErr error
	expr.Invocations(func(call *ast.FunctionInvocationLexeme) {
		if linkErr != nil {
			return
		}
		if _, ok := program.Lookup(call.Name, len(call.Args)); !ok {
			linkErr = syntaxErrorf(line, "Undefined function: %s", call.Name)
		}
	})
	return linkErr
}

// Chunk is one complete piece of interactive input.
type Chunk struct {
	Functions  []*ast.FunctionDeclaration
	Operations []ast.Operation
	// Expression is set when the input is a single expression whose value
	// should be echoed.
	Expression *ast.PostfixExpression
	Line       *ast.SourceLine
}

// ParseChunk reads interactive input. Function declarations and statements
// may be mixed; jump statements are only legal inside loops and switches.
// Input that ends inside a block fails with ErrIncompleteInput.
func (p *ModuleParser) ParseChunk(module string, firstLine int, lines []string) (*Chunk, error) {
	if err := p.checkComplete(lines); err != nil {
		return nil, err
	}
	tokenized, err := p.TokenizeModule(module, firstLine, lines)
	if err != nil {
		return nil, err
	}
	r := newStatementReader(module, tokenized)
	chunk := &Chunk{}
	if len(r.units) == 1 && !isStatementKeyword(r.units[0].first()) {
		u := r.units[0]
		expr, err := ParseExpression(u.tokens, u.line)
		if err != nil {
			return nil, err
		}
		if !expr.IsAssignment() {
			chunk.Expression = expr
			chunk.Line = u.line
			return chunk, nil
		}
	}
	for !r.eof() {
		u := r.next()
		if u.first() == "function" {
			fn, err := r.readFunction(u)
			if err != nil {
				return nil, err
			}
			chunk.Functions = append(chunk.Functions, fn)
			continue
		}
		op, err := r.readStatement(u, scope{})
		if err != nil {
			return nil, err
		}
		chunk.Operations = append(chunk.Operations, op)
	}
	return chunk, nil
}

func isStatementKeyword(word string) bool {
	switch word {
	case "{", "}", "var", "final", "println", "if", "else", "while", "do", "for",
		"switch", "case", "default", "return", "break", "continue", "function":
		return true
	default:
		return false
	}
}
