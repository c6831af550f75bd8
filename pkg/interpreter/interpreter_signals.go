package interpreter

import "javamm/interpreter-go/pkg/runtime"

type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

// returnSignal unwinds to the invoking function; value is Void for a bare return.
type returnSignal struct {
	value runtime.Value
}

func (returnSignal) Error() string { return "return" }

func isSignal(err error) bool {
	switch err.(type) {
	case breakSignal, continueSignal, returnSignal:
		return true
	}
	return false
}
