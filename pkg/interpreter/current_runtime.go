package interpreter

import (
	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

// CurrentRuntime tracks where one run currently is: the active line, the
// active scope and the call stack. The stack is kept outermost first.
type CurrentRuntime struct {
	line         *ast.SourceLine
	locals       *runtime.LocalContext
	stack        []runtime.StackTraceItem
	maxStackSize int
}

func newCurrentRuntime(maxStackSize int) *CurrentRuntime {
	return &CurrentRuntime{maxStackSize: maxStackSize}
}

// Module returns the module of the active line.
func (r *CurrentRuntime) Module() string {
	if r == nil || r.line == nil {
		return ""
	}
	return r.line.Module
}

func (r *CurrentRuntime) Line() *ast.SourceLine {
	if r == nil {
		return nil
	}
	return r.line
}

func (r *CurrentRuntime) Locals() *runtime.LocalContext {
	if r == nil {
		return nil
	}
	return r.locals
}

// Depth is the number of active function frames.
func (r *CurrentRuntime) Depth() int {
	if r == nil {
		return 0
	}
	return len(r.stack)
}

// setLine moves execution to line and records it on the innermost frame.
func (r *CurrentRuntime) setLine(line *ast.SourceLine) {
	if r == nil || line == nil {
		return
	}
	r.line = line
	if n := len(r.stack); n > 0 {
		r.stack[n-1].Module = line.Module
		r.stack[n-1].Line = line.Number
	}
}

// pushFrame enters fn, failing once the configured depth is reached.
func (r *CurrentRuntime) pushFrame(fn *ast.FunctionDeclaration) error {
	if r.maxStackSize > 0 && len(r.stack) >= r.maxStackSize {
		return runtime.NewStackOverflowError(r.maxStackSize)
	}
	item := runtime.StackTraceItem{Module: fn.Module, Function: fn.Name.Name}
	if fn.SourceLine != nil {
		item.Line = fn.SourceLine.Number
	}
	r.stack = append(r.stack, item)
	return nil
}

func (r *CurrentRuntime) popFrame() {
	if r == nil || len(r.stack) == 0 {
		return
	}
	r.stack = r.stack[:len(r.stack)-1]
}

// snapshotCallStack copies the call stack innermost first.
func (r *CurrentRuntime) snapshotCallStack() []runtime.StackTraceItem {
	if r == nil || len(r.stack) == 0 {
		return nil
	}
	out := make([]runtime.StackTraceItem, len(r.stack))
	for i, item := range r.stack {
		out[len(r.stack)-1-i] = item
	}
	return out
}

// withLocals runs fn with scope as the active context and restores the
// previous one afterwards.
func (r *CurrentRuntime) withLocals(scope *runtime.LocalContext, fn func() error) error {
	saved := r.locals
	r.locals = scope
	defer func() { r.locals = saved }()
	return fn()
}
