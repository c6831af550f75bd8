package interpreter

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"gopkg.in/yaml.v3"

	"javamm/interpreter-go/pkg/driver"
	"javamm/interpreter-go/pkg/parser"
	"javamm/interpreter-go/pkg/runtime"
)

// fixtureExpectation is the expect.yml of one exec fixture.
type fixtureExpectation struct {
	Stdout       []string `yaml:"stdout"`
	Error        string   `yaml:"error"`
	Stack        []string `yaml:"stack"`
	CompileError string   `yaml:"compile_error"`
	MaxStackSize int      `yaml:"max_stack_size"`
}

func TestExecFixtures(t *testing.T) {
	root := filepath.Join("testdata", "exec")
	dirs := collectExecFixtures(t, root)
	if len(dirs) == 0 {
		t.Fatalf("no exec fixtures under %s", root)
	}
	for _, dir := range dirs {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			t.Fatalf("relative path for %s: %v", dir, err)
		}
		t.Run(filepath.ToSlash(rel), func(t *testing.T) {
			runExecFixture(t, dir)
		})
	}
}

func collectExecFixtures(t *testing.T, root string) []string {
	t.Helper()
	var dirs []string
	var walk func(string)
	walk = func(current string) {
		entries, err := os.ReadDir(current)
		if err != nil {
			return
		}
		for _, entry := range entries {
			if entry.Type().IsRegular() && entry.Name() == "expect.yml" {
				dirs = append(dirs, current)
				break
			}
		}
		for _, entry := range entries {
			if entry.IsDir() {
				walk(filepath.Join(current, entry.Name()))
			}
		}
	}
	walk(root)
	return dirs
}

func readExpectation(t *testing.T, dir string) fixtureExpectation {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "expect.yml"))
	if err != nil {
		t.Fatalf("read expectation: %v", err)
	}
	var expect fixtureExpectation
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&expect); err != nil {
		t.Fatalf("parse expectation: %v", err)
	}
	return expect
}

func runExecFixture(t *testing.T, dir string) {
	t.Helper()
	expect := readExpectation(t, dir)

	modules, err := driver.LoadDir(dir)
	if err != nil {
		t.Fatalf("load modules: %v", err)
	}
	program, err := parser.Compile(modules...)
	if expect.CompileError != "" {
		if err == nil || err.Error() != expect.CompileError {
			t.Fatalf("compile error mismatch: expected %q, got %v", expect.CompileError, err)
		}
		return
	}
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	console := &BufferConsole{}
	interp := New(program, Options{Console: console, MaxStackSize: expect.MaxStackSize})
	runErr := interp.Run(context.Background())

	stdout := console.Lines()
	if len(stdout) == 0 {
		stdout = nil
	}
	if !reflect.DeepEqual(stdout, expect.Stdout) {
		t.Fatalf("stdout mismatch: expected %v, got %v", expect.Stdout, stdout)
	}
	if expect.Error == "" {
		if runErr != nil {
			t.Fatalf("unexpected runtime error: %v", runErr)
		}
		return
	}
	var rtErr *runtime.RuntimeError
	if !errors.As(runErr, &rtErr) {
		t.Fatalf("expected runtime error %q, got %v", expect.Error, runErr)
	}
	if rtErr.Header() != expect.Error {
		t.Fatalf("error mismatch: expected %q, got %q", expect.Error, rtErr.Header())
	}
	if expect.Stack != nil {
		var stack []string
		for _, item := range rtErr.CurrentStackTrace() {
			stack = append(stack, item.String())
		}
		if !reflect.DeepEqual(stack, expect.Stack) {
			t.Fatalf("stack mismatch: expected %v, got %v", expect.Stack, stack)
		}
	}
}
