package parser

import (
	"fmt"

	"javamm/interpreter-go/pkg/ast"
)

// SyntaxError is raised while tokenizing, building lexemes, resolving
// expressions or reading statements. Line is 0 for file-level errors.
type SyntaxError struct {
	Module  string
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line <= 0 {
		return fmt.Sprintf("Syntax error in '%s': %s", e.Module, e.Message)
	}
	return fmt.Sprintf("Syntax error in '%s' [Line: %d]: %s", e.Module, e.Line, e.Message)
}

func syntaxErrorf(line *ast.SourceLine, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if line == nil {
		return &SyntaxError{Message: msg}
	}
	return &SyntaxError{Module: line.Module, Line: line.Number, Message: msg}
}

func moduleErrorf(module string, format string, args ...any) error {
	return &SyntaxError{Module: module, Message: fmt.Sprintf(format, args...)}
}

func unsupportedToken(line *ast.SourceLine, token string) error {
	return syntaxErrorf(line, "Unsupported token: %s", token)
}
