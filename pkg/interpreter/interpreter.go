package interpreter

import (
	"context"

	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/calculator"
	"javamm/interpreter-go/pkg/runtime"
)

// DefaultMaxStackSize bounds recursion when Options leaves it unset.
const DefaultMaxStackSize = 4096

type Options struct {
	// MaxStackSize is the deepest call nesting allowed; zero means the default.
	MaxStackSize int
	Console      Console
	// Calculators overrides the operator registry; nil uses calculator.Default.
	Calculators *calculator.Registry
}

// Interpreter executes a compiled program. It holds no per-run state, so Run
// may be called concurrently.
type Interpreter struct {
	program      *ast.Program
	calculators  *calculator.Registry
	console      Console
	maxStackSize int
}

func New(program *ast.Program, opts Options) *Interpreter {
	i := &Interpreter{
		program:      program,
		calculators:  opts.Calculators,
		console:      opts.Console,
		maxStackSize: opts.MaxStackSize,
	}
	if i.calculators == nil {
		i.calculators = calculator.Default()
	}
	if i.console == nil {
		i.console = discardConsole{}
	}
	if i.maxStackSize <= 0 {
		i.maxStackSize = DefaultMaxStackSize
	}
	return i
}

func (i *Interpreter) Program() *ast.Program { return i.program }

func (i *Interpreter) MaxStackSize() int { return i.maxStackSize }

// Run executes main(). A failure is reported through the console and returned.
func (i *Interpreter) Run(ctx context.Context) error {
	main, ok := i.program.Main()
	if !ok {
		return i.report(&runtime.RuntimeError{
			Message: runtime.ErrMainNotFound.Error(),
			Err:     runtime.ErrMainNotFound,
		})
	}
	exec := i.newExecution(ctx)
	if _, err := exec.invoke(main, nil); err != nil {
		return i.report(err)
	}
	return nil
}

// Call invokes a declared function by name and returns its result, Void for a
// function that returned nothing. Errors are returned without being reported.
func (i *Interpreter) Call(ctx context.Context, name string, args ...runtime.Value) (runtime.Value, error) {
	fn, ok := i.program.Lookup(name, len(args))
	if !ok {
		return nil, &runtime.RuntimeError{Message: "Undefined function: " + name}
	}
	return i.newExecution(ctx).invoke(fn, args)
}

func (i *Interpreter) report(err error) error {
	i.console.WriteError(err.Error())
	return err
}

// execution is the state of one run.
type execution struct {
	*Interpreter
	ctx   context.Context
	state *CurrentRuntime
}

func (i *Interpreter) newExecution(ctx context.Context) *execution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &execution{Interpreter: i, ctx: ctx, state: newCurrentRuntime(i.maxStackSize)}
}

// invoke runs fn in a fresh root scope holding its parameters.
func (x *execution) invoke(fn *ast.FunctionDeclaration, args []runtime.Value) (runtime.Value, error) {
	if len(args) != len(fn.Parameters) {
		return nil, runtime.Internalf("%s called with %d arguments", fn.Name, len(args))
	}
	if err := x.state.pushFrame(fn); err != nil {
		return nil, err
	}
	defer x.state.popFrame()
	callerLine := x.state.Line()
	defer func() { x.state.line = callerLine }()

	locals := runtime.NewLocalContext(nil)
	for idx, p := range fn.Parameters {
		var err error
		if p.Final {
			err = locals.DefineFinalValue(p.Name, args[idx])
		} else {
			err = locals.DefineValue(p.Name, args[idx])
		}
		if err != nil {
			return nil, err
		}
	}
	err := x.state.withLocals(locals, func() error {
		return x.execOperations(fn.Body.Operations)
	})
	switch sig := err.(type) {
	case nil:
		return runtime.Void, nil
	case returnSignal:
		return sig.value, nil
	case breakSignal, continueSignal:
		return nil, runtime.Internalf("%s escaped function %s", sig.Error(), fn.Name)
	default:
		return nil, err
	}
}
