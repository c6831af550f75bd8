package ast

import (
	"fmt"
	"sort"
	"strings"
)

// MainFunctionName is the entry point looked up by Program.Main.
const MainFunctionName = "main"

// FunctionName identifies a function. User functions are overloaded by
// argument count; Fixed names (built-in callables) ignore arity.
type FunctionName struct {
	Name  string
	Arity int
	Fixed bool
}

// Signature synthesizes the arity-qualified name.
func (f FunctionName) Signature() string {
	if f.Fixed {
		return f.Name
	}
	return fmt.Sprintf("%s(%d)", f.Name, f.Arity)
}

func (f FunctionName) String() string {
	return f.Signature()
}

// Equal compares signatures, or plain names when either side is fixed.
func (f FunctionName) Equal(other FunctionName) bool {
	return f.Compare(other) == 0
}

// Compare orders by signature, falling back to plain names for fixed names.
func (f FunctionName) Compare(other FunctionName) int {
	if f.Fixed || other.Fixed {
		return strings.Compare(f.Name, other.Name)
	}
	return strings.Compare(f.Signature(), other.Signature())
}

// BuiltinFunctionNames are reserved callables that user code can not redeclare.
var BuiltinFunctionNames = map[string]FunctionName{
	"println": {Name: "println", Fixed: true},
}

// Parameter is a function parameter; final parameters can not be reassigned.
type Parameter struct {
	Name  string
	Final bool
}

// FunctionDeclaration is a user function compiled from one module.
type FunctionDeclaration struct {
	Module     string
	Name       FunctionName
	Parameters []Parameter
	Body       *Block
	SourceLine *SourceLine
}

func (f *FunctionDeclaration) String() string {
	names := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		names[i] = p.Name
	}
	return fmt.Sprintf("%s(%s)", f.Name.Name, strings.Join(names, ", "))
}

// Program is the runnable result of compilation.
type Program struct {
	functions map[string]*FunctionDeclaration
	modules   []string
}

func NewProgram() *Program {
	return &Program{functions: make(map[string]*FunctionDeclaration)}
}

// Add registers a function; it fails when the signature is already taken.
func (p *Program) Add(fn *FunctionDeclaration) error {
	key := fn.Name.Signature()
	if existing, ok := p.functions[key]; ok {
		return fmt.Errorf("Duplicate function: %s is already defined in '%s' [Line: %d]",
			fn.String(), existing.Module, existing.SourceLine.Number)
	}
	p.functions[key] = fn
	return nil
}

// AddModule records a compiled module name.
func (p *Program) AddModule(name string) {
	for _, m := range p.modules {
		if m == name {
			return
		}
	}
	p.modules = append(p.modules, name)
}

// Modules returns the compiled module names in compilation order.
func (p *Program) Modules() []string {
	return append([]string(nil), p.modules...)
}

// Functions returns all declared functions ordered by signature.
func (p *Program) Functions() []*FunctionDeclaration {
	out := make([]*FunctionDeclaration, 0, len(p.functions))
	for _, fn := range p.functions {
		out = append(out, fn)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name.Compare(out[j].Name) < 0
	})
	return out
}

// Lookup finds a function by name and argument count.
func (p *Program) Lookup(name string, arity int) (*FunctionDeclaration, bool) {
	fn, ok := p.functions[FunctionName{Name: name, Arity: arity}.Signature()]
	return fn, ok
}

// HasName reports whether any overload of name exists.
func (p *Program) HasName(name string) bool {
	for _, fn := range p.functions {
		if fn.Name.Name == name {
			return true
		}
	}
	return false
}

// Main returns the zero-parameter main function.
func (p *Program) Main() (*FunctionDeclaration, bool) {
	return p.Lookup(MainFunctionName, 0)
}

// Clone returns a program with the same functions that can be extended
// without affecting p.
func (p *Program) Clone() *Program {
	out := NewProgram()
	for k, fn := range p.functions {
		out.functions[k] = fn
	}
	out.modules = append(out.modules, p.modules...)
	return out
}
