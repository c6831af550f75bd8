// Package interpreter runs compiled programs. Expressions are evaluated from
// their postfix form with an operand stack; statements are dispatched over the
// closed set of operation kinds. Every run owns its own CurrentRuntime, so one
// program may be run concurrently without shared mutable state.
package interpreter
