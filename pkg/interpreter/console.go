package interpreter

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Console receives program output and error reports. Calls arrive in
// program order from a single run.
type Console interface {
	WriteLine(text string)
	WriteError(text string)
}

// StandardConsole writes to a pair of writers, stdout and stderr by default.
type StandardConsole struct {
	Out io.Writer
	Err io.Writer
}

func NewStandardConsole() *StandardConsole {
	return &StandardConsole{Out: os.Stdout, Err: os.Stderr}
}

func (c *StandardConsole) WriteLine(text string) {
	fmt.Fprintln(c.Out, text)
}

func (c *StandardConsole) WriteError(text string) {
	fmt.Fprintln(c.Err, text)
}

// BufferConsole records everything written to it.
type BufferConsole struct {
	mu     sync.Mutex
	lines  []string
	errors []string
}

func (c *BufferConsole) WriteLine(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, text)
}

func (c *BufferConsole) WriteError(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, text)
}

// Lines returns the program output written so far.
func (c *BufferConsole) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.lines...)
}

// Errors returns the error reports written so far.
func (c *BufferConsole) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errors...)
}

type discardConsole struct{}

func (discardConsole) WriteLine(string)  {}
func (discardConsole) WriteError(string) {}
