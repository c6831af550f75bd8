package ast

import (
	"strings"
	"testing"
)

func declare(module, name string, line int, params ...string) *FunctionDeclaration {
	fn := &FunctionDeclaration{
		Module:     module,
		Name:       FunctionName{Name: name, Arity: len(params)},
		Body:       &Block{},
		SourceLine: NewSourceLine(module, line, nil),
	}
	for _, p := range params {
		fn.Parameters = append(fn.Parameters, Parameter{Name: p})
	}
	return fn
}

func TestProgramOverloadsByArity(t *testing.T) {
	p := NewProgram()
	for _, fn := range []*FunctionDeclaration{
		declare("main", "main", 1),
		declare("main", "sum", 5, "a", "b"),
		declare("lib", "sum", 9, "a", "b", "c"),
	} {
		if err := p.Add(fn); err != nil {
			t.Fatalf("Add(%s): %v", fn, err)
		}
	}
	if fn, ok := p.Lookup("sum", 3); !ok || fn.Module != "lib" {
		t.Fatalf("expected sum/3 from lib, got %v %v", fn, ok)
	}
	if _, ok := p.Lookup("sum", 1); ok {
		t.Fatalf("sum/1 was never declared")
	}
	if !p.HasName("sum") || p.HasName("missing") {
		t.Fatalf("HasName misreports declared names")
	}
	if _, ok := p.Main(); !ok {
		t.Fatalf("main() must be found")
	}

	var sigs []string
	for _, fn := range p.Functions() {
		sigs = append(sigs, fn.Name.Signature())
	}
	if got := strings.Join(sigs, ","); got != "main(0),sum(2),sum(3)" {
		t.Fatalf("unexpected function order %s", got)
	}

	err := p.Add(declare("other", "sum", 2, "x", "y"))
	if err == nil || err.Error() != "Duplicate function: sum(x, y) is already defined in 'main' [Line: 5]" {
		t.Fatalf("unexpected duplicate error %v", err)
	}
}

func TestProgramCloneIsIndependent(t *testing.T) {
	p := NewProgram()
	p.AddModule("main")
	if err := p.Add(declare("main", "main", 1)); err != nil {
		t.Fatalf("Add: %v", err)
	}
	clone := p.Clone()
	clone.AddModule("repl")
	if err := clone.Add(declare("repl", "extra", 1)); err != nil {
		t.Fatalf("Add to clone: %v", err)
	}
	if p.HasName("extra") || len(p.Modules()) != 1 {
		t.Fatalf("clone must not modify the original")
	}
	if _, ok := clone.Main(); !ok || strings.Join(clone.Modules(), ",") != "main,repl" {
		t.Fatalf("clone must keep existing functions and modules")
	}
}

func TestFunctionNameComparison(t *testing.T) {
	a := FunctionName{Name: "f", Arity: 1}
	b := FunctionName{Name: "f", Arity: 2}
	fixed := FunctionName{Name: "f", Fixed: true}
	if a.Equal(b) || !a.Equal(fixed) || !fixed.Equal(b) {
		t.Fatalf("fixed names must ignore arity, others must not")
	}
	if a.Signature() != "f(1)" || fixed.Signature() != "f" {
		t.Fatalf("unexpected signatures %s %s", a.Signature(), fixed.Signature())
	}
	if a.Compare(b) >= 0 {
		t.Fatalf("f(1) must order before f(2)")
	}
}

func TestSourceLineIdentityIsPositional(t *testing.T) {
	x := NewSourceLine("m", 3, []Token{{Text: "a"}})
	y := NewSourceLine("m", 3, []Token{{Text: "b"}})
	z := NewSourceLine("m", 4, nil)
	if !x.Equal(y) || x.Equal(z) {
		t.Fatalf("equality must compare positions only")
	}
	if x.Compare(z) >= 0 || z.Compare(x) <= 0 || x.Compare(y) != 0 {
		t.Fatalf("lines must order by number within a module")
	}
	if x.Position() != (SourcePosition{Module: "m", Line: 3}) {
		t.Fatalf("unexpected position %+v", x.Position())
	}
}
