package interpreter

import (
	"context"

	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/parser"
	"javamm/interpreter-go/pkg/runtime"
)

// SessionModule names the module that interactive input is compiled into.
const SessionModule = "repl"

// Session evaluates interactive input. Variables declared at the top level
// persist across inputs and functions accumulate into one program.
type Session struct {
	interp   *Interpreter
	opts     Options
	parser   *parser.ModuleParser
	locals   *runtime.LocalContext
	nextLine int
}

func NewSession(opts Options) *Session {
	s := &Session{
		opts:     opts,
		parser:   parser.NewModuleParser(),
		locals:   runtime.NewLocalContext(nil),
		nextLine: 1,
	}
	s.interp = New(ast.NewProgram(), opts)
	s.opts.Calculators = s.interp.calculators
	return s
}

// Program returns the functions declared so far.
func (s *Session) Program() *ast.Program { return s.interp.program }

// Locals exposes the persistent top-level scope.
func (s *Session) Locals() *runtime.LocalContext { return s.locals }

// Eval compiles and runs one complete input. For a bare expression it returns
// the value and echo set; echo is false for statements and void results.
// Incomplete input fails with an error for which parser.IsIncomplete holds
// and consumes no line numbers.
func (s *Session) Eval(ctx context.Context, lines []string) (runtime.Value, bool, error) {
	chunk, err := s.parser.ParseChunk(SessionModule, s.nextLine, lines)
	if err != nil {
		if !parser.IsIncomplete(err) {
			s.nextLine += len(lines)
		}
		return nil, false, err
	}
	s.nextLine += len(lines)

	program := s.interp.program
	if len(chunk.Functions) > 0 {
		program = program.Clone()
		if err := parser.Declare(program, chunk.Functions...); err != nil {
			return nil, false, err
		}
		for _, fn := range chunk.Functions {
			if err := parser.Link(program, fn.Body); err != nil {
				return nil, false, err
			}
		}
	}
	if err := parser.Link(program, chunk.Operations...); err != nil {
		return nil, false, err
	}
	if chunk.Expression != nil {
		if err := parser.LinkExpression(program, chunk.Line, chunk.Expression); err != nil {
			return nil, false, err
		}
	}
	if program != s.interp.program {
		program.AddModule(SessionModule)
		s.interp = New(program, s.opts)
	}

	x := s.interp.newExecution(ctx)
	if chunk.Expression != nil {
		var value runtime.Value
		err := x.state.withLocals(s.locals, func() error {
			x.state.setLine(chunk.Line)
			v, err := x.evaluate(chunk.Expression)
			value = v
			return attachRuntimeContext(err, chunk.Line, x.state)
		})
		if err != nil {
			return nil, false, err
		}
		_, void := value.(runtime.VoidValue)
		return value, !void, nil
	}
	err = x.state.withLocals(s.locals, func() error {
		return x.execOperations(chunk.Operations)
	})
	if _, ok := err.(returnSignal); ok {
		err = nil
	}
	return nil, false, err
}
