package parser

import (
	"errors"

	"javamm/interpreter-go/pkg/ast"
)

// ErrIncompleteInput reports interactive input that needs more lines.
var ErrIncompleteInput = errors.New("incomplete input")

// IsIncomplete reports whether err only means the input ended too early.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrIncompleteInput)
}

// checkComplete fails with ErrIncompleteInput while a comment, a block or a
// parenthesised group is still open at the end of lines.
func (p *ModuleParser) checkComplete(lines []string) error {
	braces, parens := 0, 0
	commentOpen := false
	for _, raw := range lines {
		var tokens []ast.Token
		tokens, commentOpen = p.tokenizer.Tokenize(raw, commentOpen)
		for _, t := range tokens {
			switch t.Text {
			case "{":
				braces++
			case "}":
				braces--
			case "(":
				parens++
			case ")":
				parens--
			}
		}
	}
	if commentOpen || braces > 0 || parens > 0 {
		return ErrIncompleteInput
	}
	return nil
}
