package interpreter

import (
	"errors"
	"fmt"

	"javamm/interpreter-go/pkg/ast"
	"javamm/interpreter-go/pkg/runtime"
)

// attachRuntimeContext turns a plain failure raised at line into a
// RuntimeError positioned there and carrying the call stack. Control signals
// and already positioned errors pass through untouched.
func attachRuntimeContext(err error, line *ast.SourceLine, state *CurrentRuntime) error {
	if err == nil {
		return err
	}
	if isSignal(err) {
		return err
	}
	var rtErr *runtime.RuntimeError
	if errors.As(err, &rtErr) {
		return err
	}
	var internal *runtime.InternalError
	if errors.As(err, &internal) {
		return err
	}
	state.setLine(line)
	out := &runtime.RuntimeError{
		Message:    err.Error(),
		StackTrace: state.snapshotCallStack(),
		Err:        err,
	}
	if line != nil {
		out.Module = line.Module
		out.Line = line.Number
	}
	return out
}

func errCancelled(cause error) error {
	return fmt.Errorf("Execution interrupted: %w", cause)
}

func errConditionType(v runtime.Value) error {
	return fmt.Errorf("Condition expression should be boolean. Current type is %s", runtime.KindOf(v))
}
