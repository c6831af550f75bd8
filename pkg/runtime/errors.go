package runtime

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDivisionByZero = errors.New("/ by zero")
	ErrStackOverflow  = errors.New("Stack overflow error")
	ErrMainNotFound   = errors.New("Main function not found, please define the main function as: 'function main()'")
	ErrVoidValue      = errors.New("Void function result can't be used as a value")
)

// StackTraceItem is one call-stack frame captured for diagnostics.
type StackTraceItem struct {
	Module   string
	Function string
	Line     int
}

func (s StackTraceItem) String() string {
	return fmt.Sprintf("at %s() [%s:%d]", s.Function, s.Module, s.Line)
}

// RuntimeError is raised while a program is being interpreted. StackTrace is
// ordered innermost frame first.
type RuntimeError struct {
	Module     string
	Line       int
	Message    string
	StackTrace []StackTraceItem
	Err        error
}

func (e *RuntimeError) Error() string {
	var b strings.Builder
	b.WriteString(e.Header())
	for _, item := range e.StackTrace {
		b.WriteString("\n    ")
		b.WriteString(item.String())
	}
	return b.String()
}

// Header returns the first line of the report without the stack trace.
func (e *RuntimeError) Header() string {
	if e.Module == "" {
		return "Runtime error: " + e.Message
	}
	if e.Line <= 0 {
		return fmt.Sprintf("Runtime error in '%s': %s", e.Module, e.Message)
	}
	return fmt.Sprintf("Runtime error in '%s' [Line: %d]: %s", e.Module, e.Line, e.Message)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// CurrentStackTrace returns the frames active when the error was raised.
func (e *RuntimeError) CurrentStackTrace() []StackTraceItem {
	out := make([]StackTraceItem, len(e.StackTrace))
	copy(out, e.StackTrace)
	return out
}

// IsStackOverflow reports whether the error was raised by call-depth accounting.
func (e *RuntimeError) IsStackOverflow() bool {
	return errors.Is(e.Err, ErrStackOverflow)
}

// NewStackOverflowError builds the overflow error for the given limit.
func NewStackOverflowError(maxStackSize int) error {
	return fmt.Errorf("%w. Max stack size is %d", ErrStackOverflow, maxStackSize)
}

// InternalError marks a violated interpreter invariant, never a user mistake.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return "Internal error: " + e.Message
}

func Internalf(format string, args ...any) error {
	return &InternalError{Message: fmt.Sprintf(format, args...)}
}
