package parser

import (
	"sort"
	"strings"

	"javamm/interpreter-go/pkg/ast"
)

// Tokenizer splits raw source lines into tokens. Operator and delimiter
// symbols are matched greedily: for each leading character the candidates are
// tried longest first, then lexicographically.
type Tokenizer struct {
	candidates map[rune][][]rune
}

func NewTokenizer() *Tokenizer {
	return NewTokenizerWithSymbols(ast.Symbols())
}

// NewTokenizerWithSymbols builds a tokenizer over an explicit symbol table.
func NewTokenizerWithSymbols(symbols []string) *Tokenizer {
	byFirst := make(map[rune][]string)
	for _, sym := range symbols {
		if sym == "" {
			continue
		}
		first := []rune(sym)[0]
		byFirst[first] = append(byFirst[first], sym)
	}
	candidates := make(map[rune][][]rune, len(byFirst))
	for first, syms := range byFirst {
		sort.Slice(syms, func(i, j int) bool {
			li, lj := len([]rune(syms[i])), len([]rune(syms[j]))
			if li != lj {
				return li > lj
			}
			return syms[i] < syms[j]
		})
		list := make([][]rune, len(syms))
		for i, s := range syms {
			list[i] = []rune(s)
		}
		candidates[first] = list
	}
	return &Tokenizer{candidates: candidates}
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\u00a0', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

// Tokenize splits one line. commentOpen tells whether a multi-line comment is
// still open from the previous line; the returned flag feeds the next line.
func (t *Tokenizer) Tokenize(line string, commentOpen bool) ([]ast.Token, bool) {
	src := []rune(line)
	s := &scanner{src: src}
	var tokens []ast.Token
	var word strings.Builder
	space := false

	emit := func(text string) {
		tokens = append(tokens, ast.Token{Text: text, SpaceBefore: space})
		space = false
	}
	flush := func() {
		if word.Len() > 0 {
			emit(word.String())
			word.Reset()
		}
	}

	for !s.eof() {
		if commentOpen {
			if !s.skipPast('*', '/') {
				break
			}
			commentOpen = false
			space = true
			continue
		}
		ch := s.peek()
		switch {
		case isWhitespace(ch):
			flush()
			s.next()
			space = true
		case ch == '/' && s.peekAt(1) == '/':
			flush()
			return tokens, false
		case ch == '/' && s.peekAt(1) == '*':
			flush()
			s.advance(2)
			commentOpen = true
		case ch == '\'' || ch == '"':
			flush()
			emit(s.readString(ch))
		default:
			if sym, ok := t.matchSymbol(s); ok {
				flush()
				emit(sym)
				continue
			}
			word.WriteRune(s.next())
		}
	}
	flush()
	return tokens, commentOpen
}

// matchSymbol tries each candidate for the current character. A candidate
// that fails part way pushes its consumed characters back before the next
// one is attempted.
func (t *Tokenizer) matchSymbol(s *scanner) (string, bool) {
	cands := t.candidates[s.peek()]
	for _, cand := range cands {
		mark := s.pos
		matched := true
		for _, r := range cand {
			if s.eof() || s.next() != r {
				matched = false
				break
			}
		}
		if matched {
			return string(cand), true
		}
		s.pos = mark
	}
	return "", false
}

type scanner struct {
	src []rune
	pos int
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() rune { return s.peekAt(0) }

func (s *scanner) peekAt(offset int) rune {
	if s.pos+offset >= len(s.src) {
		return 0
	}
	return s.src[s.pos+offset]
}

func (s *scanner) next() rune {
	r := s.src[s.pos]
	s.pos++
	return r
}

func (s *scanner) advance(n int) {
	s.pos += n
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
}

// skipPast moves beyond the next occurrence of a then b, reporting whether it
// was found.
func (s *scanner) skipPast(a, b rune) bool {
	for !s.eof() {
		if s.peek() == a && s.peekAt(1) == b {
			s.advance(2)
			return true
		}
		s.pos++
	}
	return false
}

// readString consumes a literal up to the matching unescaped delimiter, or to
// the end of the line when it is not terminated.
func (s *scanner) readString(delim rune) string {
	start := s.pos
	s.pos++
	for !s.eof() {
		r := s.next()
		if r == '\\' {
			if !s.eof() {
				s.pos++
			}
			continue
		}
		if r == delim {
			break
		}
	}
	return string(s.src[start:s.pos])
}
