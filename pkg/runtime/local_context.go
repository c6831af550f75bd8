package runtime

import (
	"fmt"
	"sort"
)

type binding struct {
	value Value
	final bool
}

// LocalContext is the variable scope of one block or function invocation.
// Child contexts resolve reads and writes outward through their parents; a
// function invocation starts from a context without a parent.
type LocalContext struct {
	values map[string]*binding
	parent *LocalContext
}

// NewLocalContext creates a new context, optionally nested under a parent.
func NewLocalContext(parent *LocalContext) *LocalContext {
	return &LocalContext{
		values: make(map[string]*binding),
		parent: parent,
	}
}

// Parent exposes the enclosing context (nil for an invocation root).
func (c *LocalContext) Parent() *LocalContext {
	return c.parent
}

// Extend creates a child scope.
func (c *LocalContext) Extend() *LocalContext {
	return NewLocalContext(c)
}

// DefineValue declares a mutable variable.
func (c *LocalContext) DefineValue(name string, value Value) error {
	return c.define(name, value, false)
}

// DefineFinalValue declares a variable that can not be reassigned.
func (c *LocalContext) DefineFinalValue(name string, value Value) error {
	return c.define(name, value, true)
}

func (c *LocalContext) define(name string, value Value, final bool) error {
	if c.IsDefined(name) {
		return fmt.Errorf("Variable '%s' already defined", name)
	}
	c.values[name] = &binding{value: value, final: final}
	return nil
}

// SetValue updates an existing mutable binding in the nearest scope declaring it.
func (c *LocalContext) SetValue(name string, value Value) error {
	b := c.lookup(name)
	if b == nil {
		return fmt.Errorf("Variable '%s' is not defined", name)
	}
	if b.final {
		return fmt.Errorf("Cannot assign a value to final variable '%s'", name)
	}
	b.value = value
	return nil
}

// GetValue retrieves a binding, searching outward through the scope chain.
func (c *LocalContext) GetValue(name string) (Value, error) {
	b := c.lookup(name)
	if b == nil {
		return nil, fmt.Errorf("Variable '%s' is not defined", name)
	}
	return b.value, nil
}

// IsDefined reports whether the name is visible from this context.
func (c *LocalContext) IsDefined(name string) bool {
	return c.lookup(name) != nil
}

// IsFinal reports whether the visible binding for name is final.
func (c *LocalContext) IsFinal(name string) bool {
	b := c.lookup(name)
	return b != nil && b.final
}

func (c *LocalContext) lookup(name string) *binding {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if b, ok := ctx.values[name]; ok {
			return b
		}
	}
	return nil
}

// Names returns the names declared directly in this context in sorted order.
func (c *LocalContext) Names() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of the bindings declared directly in this context.
func (c *LocalContext) Snapshot() map[string]Value {
	out := make(map[string]Value, len(c.values))
	for k, b := range c.values {
		out[k] = b.value
	}
	return out
}
