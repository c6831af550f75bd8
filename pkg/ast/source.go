package ast

import (
	"fmt"
	"strings"
)

// Token is one lexical unit of a source line. SpaceBefore records whether a
// delimiter preceded it and only matters for formatting.
type Token struct {
	Text        string
	SpaceBefore bool
}

func (t Token) String() string {
	return t.Text
}

// TokenTexts extracts the token strings.
func TokenTexts(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// SourcePosition identifies a source line. It is the comparable key of a
// SourceLine.
type SourcePosition struct {
	Module string
	Line   int
}

// SourceLine is an immutable tokenized line of a module. Identity and ordering
// use the position only; two lines at the same position are equal whatever
// their tokens.
type SourceLine struct {
	Module string
	Number int
	Tokens []Token
}

func NewSourceLine(module string, number int, tokens []Token) *SourceLine {
	cp := make([]Token, len(tokens))
	copy(cp, tokens)
	return &SourceLine{Module: module, Number: number, Tokens: cp}
}

func (l *SourceLine) Position() SourcePosition {
	return SourcePosition{Module: l.Module, Line: l.Number}
}

// Equal compares positions only.
func (l *SourceLine) Equal(other *SourceLine) bool {
	if l == nil || other == nil {
		return l == other
	}
	return l.Module == other.Module && l.Number == other.Number
}

// Compare orders lines by module name, then by line number.
func (l *SourceLine) Compare(other *SourceLine) int {
	if c := strings.Compare(l.Module, other.Module); c != 0 {
		return c
	}
	switch {
	case l.Number < other.Number:
		return -1
	case l.Number > other.Number:
		return 1
	default:
		return 0
	}
}

// Text rebuilds the line from its tokens.
func (l *SourceLine) Text() string {
	return JoinTokens(l.Tokens)
}

func (l *SourceLine) String() string {
	return fmt.Sprintf("%s:%d %s", l.Module, l.Number, l.Text())
}

// JoinTokens renders tokens back into text, honouring SpaceBefore.
func JoinTokens(tokens []Token) string {
	var b strings.Builder
	for i, t := range tokens {
		if i > 0 && t.SpaceBefore {
			b.WriteByte(' ')
		}
		b.WriteString(t.Text)
	}
	return b.String()
}
