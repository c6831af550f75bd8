package interpreter

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"javamm/interpreter-go/pkg/parser"
	"javamm/interpreter-go/pkg/runtime"
)

func compileProgram(t *testing.T, source string) *Interpreter {
	t.Helper()
	program, err := parser.Compile(parser.SourceModule{Name: "main", Lines: strings.Split(source, "\n")})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return New(program, Options{Console: &BufferConsole{}})
}

func runSource(t *testing.T, source string, maxStackSize int) ([]string, error) {
	t.Helper()
	program, err := parser.Compile(parser.SourceModule{Name: "main", Lines: strings.Split(source, "\n")})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	console := &BufferConsole{}
	err = New(program, Options{Console: console, MaxStackSize: maxStackSize}).Run(context.Background())
	return console.Lines(), err
}

func mustRun(t *testing.T, source string) []string {
	t.Helper()
	lines, err := runSource(t, source, 0)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	return lines
}

func runtimeError(t *testing.T, err error) *runtime.RuntimeError {
	t.Helper()
	var rtErr *runtime.RuntimeError
	if !errors.As(err, &rtErr) {
		t.Fatalf("expected runtime error, got %T: %v", err, err)
	}
	return rtErr
}

func TestStackTraceOfNestedCalls(t *testing.T) {
	source := strings.Join([]string{
		"function main() {",
		"  first();",
		"}",
		"function first() {",
		"  second();",
		"}",
		"function second() {",
		"  var a = 5 / 0;",
		"}",
	}, "\n")
	_, err := runSource(t, source, 0)
	rtErr := runtimeError(t, err)
	want := "Runtime error in 'main' [Line: 8]: / by zero\n" +
		"    at second() [main:8]\n" +
		"    at first() [main:5]\n" +
		"    at main() [main:2]"
	if rtErr.Error() != want {
		t.Fatalf("unexpected report:\n%s\nwant:\n%s", rtErr.Error(), want)
	}
	trace := rtErr.CurrentStackTrace()
	if len(trace) != 3 {
		t.Fatalf("expected 3 frames, got %v", trace)
	}
	for i, name := range []string{"second", "first", "main"} {
		if trace[i].Function != name {
			t.Fatalf("frame %d: expected %s, got %s", i, name, trace[i].Function)
		}
	}
	if !errors.Is(err, runtime.ErrDivisionByZero) {
		t.Fatalf("expected division by zero sentinel, got %v", err)
	}
}

func TestRunReportsThroughConsole(t *testing.T) {
	program, err := parser.Compile(parser.SourceModule{Name: "main", Lines: []string{
		"function main() {",
		"  println(\"before\");",
		"  println(true + 1);",
		"}",
	}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	console := &BufferConsole{}
	runErr := New(program, Options{Console: console}).Run(context.Background())
	if runErr == nil {
		t.Fatalf("expected runtime error")
	}
	if got := console.Lines(); len(got) != 1 || got[0] != "before" {
		t.Fatalf("unexpected output %v", got)
	}
	errs := console.Errors()
	if len(errs) != 1 || !strings.HasPrefix(errs[0], "Runtime error in 'main' [Line: 3]: Operator '+' is not supported for types: boolean and integer") {
		t.Fatalf("unexpected error output %v", errs)
	}
}

func TestStackOverflow(t *testing.T) {
	source := "function main() {\n  main();\n}"
	_, err := runSource(t, source, 10)
	rtErr := runtimeError(t, err)
	if !rtErr.IsStackOverflow() || !errors.Is(err, runtime.ErrStackOverflow) {
		t.Fatalf("expected stack overflow, got %v", err)
	}
	if rtErr.Header() != "Runtime error in 'main' [Line: 2]: Stack overflow error. Max stack size is 10" {
		t.Fatalf("unexpected header %q", rtErr.Header())
	}
	trace := rtErr.CurrentStackTrace()
	if len(trace) != 10 {
		t.Fatalf("expected 10 frames, got %d", len(trace))
	}
	for _, item := range trace {
		if item != (runtime.StackTraceItem{Module: "main", Function: "main", Line: 2}) {
			t.Fatalf("unexpected frame %v", item)
		}
	}
}

func TestMainNotFound(t *testing.T) {
	_, err := runSource(t, "function test() {}", 0)
	rtErr := runtimeError(t, err)
	if rtErr.Error() != "Runtime error: Main function not found, please define the main function as: 'function main()'" {
		t.Fatalf("unexpected message %q", rtErr.Error())
	}
	if len(rtErr.CurrentStackTrace()) != 0 {
		t.Fatalf("expected empty stack trace, got %v", rtErr.CurrentStackTrace())
	}
	if !errors.Is(err, runtime.ErrMainNotFound) {
		t.Fatalf("expected main-not-found sentinel")
	}
}

func TestExpressionValues(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"1 + 2 * (3 - 5)", "-3"},
		{"true && false || !true && !false", "false"},
		{"5 / 2", "2"},
		{"5.0 / 2", "2.5"},
		{"-7 / 2", "-3"},
		{"-7 % 3", "-1"},
		{"5.5 % 2", "1.5"},
		{"\"Hello \" + 10", "Hello 10"},
		{"1 + 2 + \"x\"", "3x"},
		{"\"x\" + 1 + 2", "x12"},
		{"\"d\" + 1.0", "d1.0"},
		{"\"n\" + null", "nnull"},
		{"2147483647 + 1", "-2147483648"},
		{"-2147483648 - 1", "2147483647"},
		{"1 << 33", "2"},
		{"-16 >> 2", "-4"},
		{"-1 >>> 28", "15"},
		{"6 & 3 | 8 ^ 1", "11"},
		{"~5", "-6"},
		{"1 < 2 == true", "true"},
		{"2 >= 2.0", "true"},
		{"1 == 1.0", "true"},
		{"\"a\" == \"a\"", "true"},
		{"null == null", "true"},
		{"\"a\" != null", "true"},
		{"1 typeof integer", "true"},
		{"1.5 typeof integer", "false"},
		{"null typeof string", "false"},
		{"1 > 0 ? \"pos\" : \"neg\"", "pos"},
		{"false ? 1 : true ? 2 : 3", "2"},
		{"1.0 / 0", "Infinity"},
		{"10000000.0", "1.0E7"},
		{"#\"hello\"", "99162322"},
		{"#true", "1231"},
		{"- - 5", "5"},
	}
	for _, tc := range cases {
		lines := mustRun(t, "function main() {\n  println("+tc.expr+");\n}")
		if len(lines) != 1 || lines[0] != tc.want {
			t.Fatalf("%s: expected %q, got %v", tc.expr, tc.want, lines)
		}
	}
}

func TestExpressionErrors(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"5 / 0", "/ by zero"},
		{"5 % 0", "/ by zero"},
		{"true + 1", "Operator '+' is not supported for types: boolean and integer"},
		{"\"a\" - 1", "Operator '-' is not supported for types: string and integer"},
		{"!1", "Operator '!' is not supported for type: integer"},
		{"1 == true", "Operator '==' is not supported for types: integer and boolean"},
		{"1 ? 2 : 3", "Condition expression should be boolean. Current type is integer"},
		{"1 && true", "Operator '&&' is not supported for types: integer and boolean"},
		{"1.5 ^ 2", "Operator '^' is not supported for types: double and integer"},
		{"nothing()", "Void function result can't be used as a value"},
		{"missing", "Variable 'missing' is not defined"},
	}
	for _, tc := range cases {
		source := "function main() {\n  println(" + tc.expr + ");\n}\nfunction nothing() {\n}"
		_, err := runSource(t, source, 0)
		rtErr := runtimeError(t, err)
		if rtErr.Message != tc.want {
			t.Fatalf("%s: expected %q, got %q", tc.expr, tc.want, rtErr.Message)
		}
		if rtErr.Line != 2 {
			t.Fatalf("%s: expected line 2, got %d", tc.expr, rtErr.Line)
		}
	}
}

func TestAssignmentsAndIncrements(t *testing.T) {
	lines := mustRun(t, strings.Join([]string{
		"function main() {",
		"  var a = 1;",
		"  var b;",
		"  a = b = 5;",
		"  println(a + \",\" + b);",
		"  println(a++);",
		"  println(++a);",
		"  println(a--);",
		"  println(--a);",
		"  a += 10;",
		"  a *= 2;",
		"  a >>= 1;",
		"  println(a);",
		"  var s = \"x\";",
		"  s += 1;",
		"  println(s);",
		"  println(b);",
		"  var c = (a)++;",
		"  println(c + \" \" + a);",
		"}",
	}, "\n"))
	want := []string{"5,5", "5", "7", "7", "5", "15", "x1", "5", "15 16"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestShortCircuitSkipsSideEffects(t *testing.T) {
	lines := mustRun(t, strings.Join([]string{
		"function main() {",
		"  var calls = 0;",
		"  var a = 5;",
		"  println(false && touch());",
		"  println(true || touch());",
		"  println(a > 2 ? mark(\"then\") : mark(\"else\"));",
		"  println(a < 2 ? mark(\"then\") : mark(\"else\"));",
		"  println(true && touch());",
		"}",
		"function touch() {",
		"  println(\"touched\");",
		"  return true;",
		"}",
		"function mark(name) {",
		"  println(\"mark \" + name);",
		"  return name;",
		"}",
	}, "\n"))
	want := []string{"false", "true", "mark then", "then", "mark else", "else", "touched", "true"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestScopingAndFinals(t *testing.T) {
	cases := []struct {
		name string
		body []string
		want string
		line int
	}{
		{
			name: "redeclare in same scope",
			body: []string{"var a = 1;", "var a = 2;"},
			want: "Variable 'a' already defined",
			line: 3,
		},
		{
			name: "redeclare in nested block",
			body: []string{"var a = 1;", "if (true) {", "  var a = 2;", "}"},
			want: "Variable 'a' already defined",
			line: 4,
		},
		{
			name: "assign final",
			body: []string{"final a = 1;", "a = 2;"},
			want: "Cannot assign a value to final variable 'a'",
			line: 3,
		},
		{
			name: "increment final",
			body: []string{"final a = 1;", "a++;"},
			want: "Cannot assign a value to final variable 'a'",
			line: 3,
		},
		{
			name: "block variable out of scope",
			body: []string{"if (true) {", "  var a = 2;", "}", "println(a);"},
			want: "Variable 'a' is not defined",
			line: 5,
		},
		{
			name: "caller variables invisible",
			body: []string{"var a = 1;", "peek();"},
			want: "Variable 'a' is not defined",
			line: 8,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := append([]string{"function main() {"}, tc.body...)
			lines = append(lines, "}")
			for len(lines) < 7 {
				lines = append(lines, "")
			}
			lines = append(lines, "function peek() { println(a); }")
			_, err := runSource(t, strings.Join(lines, "\n"), 0)
			rtErr := runtimeError(t, err)
			if rtErr.Message != tc.want || rtErr.Line != tc.line {
				t.Fatalf("expected %q at line %d, got %q at line %d", tc.want, tc.line, rtErr.Message, rtErr.Line)
			}
		})
	}
}

func TestBlocksMaySiblingRedeclare(t *testing.T) {
	lines := mustRun(t, strings.Join([]string{
		"function main() {",
		"  for (var i = 0; i < 2; i++) {",
		"    var x = i * 10;",
		"    println(x);",
		"  }",
		"  for (var i = 5; i < 6; i++) println(i);",
		"}",
	}, "\n"))
	if strings.Join(lines, ",") != "0,10,5" {
		t.Fatalf("unexpected output %v", lines)
	}
}

func TestControlFlow(t *testing.T) {
	lines := mustRun(t, strings.Join([]string{
		"function main() {",
		"  var i = 0;",
		"  while (true) {",
		"    i++;",
		"    if (i % 2 == 0) {",
		"      continue;",
		"    } else if (i > 7) {",
		"      break;",
		"    }",
		"    println(i);",
		"  }",
		"  do {",
		"    i--;",
		"  } while (i > 5);",
		"  println(i);",
		"  for (var j = 0, k = 10; j < k; j += 3, k--) {",
		"    if (j == 3) continue;",
		"    println(j + \":\" + k);",
		"  }",
		"  println(classify(1) + \" \" + classify(2) + \" \" + classify(9));",
		"  println(fact(10));",
		"}",
		"function classify(n) {",
		"  switch (n) {",
		"    case 1:",
		"      return \"one\";",
		"    case 2:",
		"    case 3: {",
		"      var s = \"few\";",
		"      return s;",
		"    }",
		"    default:",
		"      return \"many\";",
		"  }",
		"}",
		"function fact(n) {",
		"  return n <= 1 ? 1 : n * fact(n - 1);",
		"}",
	}, "\n"))
	want := []string{"1", "3", "5", "7", "5", "0:10", "6:8", "one few many", "3628800"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestSwitchFallThroughAndBreak(t *testing.T) {
	lines := mustRun(t, strings.Join([]string{
		"function main() {",
		"  for (var i = 0; i < 4; i++) {",
		"    switch (i) {",
		"      case 0:",
		"        println(\"zero\");",
		"      case 1:",
		"        println(\"zero or one\");",
		"        break;",
		"      case 2:",
		"        continue;",
		"      default:",
		"        println(\"other\");",
		"    }",
		"    println(\"after \" + i);",
		"  }",
		"}",
	}, "\n"))
	want := []string{"zero", "zero or one", "after 0", "zero or one", "after 1", "other", "after 3"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, lines)
	}
}

func TestConditionMustBeBoolean(t *testing.T) {
	_, err := runSource(t, "function main() {\n  while (1) {\n  }\n}", 0)
	rtErr := runtimeError(t, err)
	if rtErr.Message != "Condition expression should be boolean. Current type is integer" || rtErr.Line != 2 {
		t.Fatalf("unexpected error %v", rtErr)
	}
}

func TestCancellationStopsInfiniteLoop(t *testing.T) {
	interp := compileProgram(t, "function main() {\n  while (true) {\n  }\n}")
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- interp.Run(ctx) }()
	cancel()
	err := <-done
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	rtErr := runtimeError(t, err)
	if rtErr.Module != "main" || len(rtErr.CurrentStackTrace()) != 1 {
		t.Fatalf("unexpected cancellation report %v", rtErr)
	}
}

func TestConcurrentRunsAreIndependent(t *testing.T) {
	program, err := parser.Compile(parser.SourceModule{Name: "main", Lines: []string{
		"function main() {",
		"  println(fib(15));",
		"}",
		"function fib(n) {",
		"  if (n < 2) return n;",
		"  return fib(n - 1) + fib(n - 2);",
		"}",
	}})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	var wg sync.WaitGroup
	consoles := make([]*BufferConsole, 8)
	for i := range consoles {
		consoles[i] = &BufferConsole{}
		interp := New(program, Options{Console: consoles[i]})
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = interp.Run(context.Background())
		}()
	}
	wg.Wait()
	for i, c := range consoles {
		if got := c.Lines(); len(got) != 1 || got[0] != "610" {
			t.Fatalf("run %d: unexpected output %v", i, got)
		}
	}
}

func TestCallReturnsValue(t *testing.T) {
	interp := compileProgram(t, "function main() {}\nfunction add(a, final b) {\n  return a + b;\n}")
	v, err := interp.Call(context.Background(), "add", runtime.Int(2), runtime.Int(3))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if v != runtime.Int(5) {
		t.Fatalf("expected 5, got %v", v)
	}
	v, err = interp.Call(context.Background(), "main")
	if err != nil || v != runtime.Void {
		t.Fatalf("expected void from main, got %v, %v", v, err)
	}
}
