package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"javamm/interpreter-go/pkg/driver"
	"javamm/interpreter-go/pkg/interpreter"
	"javamm/interpreter-go/pkg/parser"
	"javamm/interpreter-go/pkg/runtime"
)

const (
	replPrompt      = "javamm> "
	replContinue    = "   ...> "
	replHistoryFile = "repl_history"
)

func runRepl(args []string) int {
	flags, rest, set, err := parseRunFlags("repl", args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(rest) > 0 {
		fmt.Fprintf(os.Stderr, "javamm repl does not take arguments (received %s)\n", strings.Join(rest, " "))
		return 1
	}
	manifest, err := loadManifestFrom(".")
	if err != nil {
		if !errors.Is(err, driver.ErrManifestNotFound) {
			fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			return 1
		}
		manifest = nil
	}
	settings, err := resolveSettings(flags, set, manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	session := interpreter.NewSession(interpreter.Options{
		MaxStackSize: settings.maxStackSize,
		Console:      interpreter.NewStandardConsole(),
	})

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if histPath, ok := replHistoryPath(); ok {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if err := os.MkdirAll(filepath.Dir(histPath), 0o755); err != nil {
				return
			}
			if f, err := os.Create(histPath); err == nil {
				_, _ = ln.WriteHistory(f)
				_ = f.Close()
			}
		}()
	}

	fmt.Fprintf(os.Stdout, "%s (type :quit to exit)\n", cliToolVersion)
	return replLoop(ln, session, settings)
}

func replLoop(ln *liner.State, session *interpreter.Session, settings runSettings) int {
	var pending []string
	for {
		prompt := replPrompt
		if len(pending) > 0 {
			prompt = replContinue
		}
		line, err := ln.Prompt(prompt)
		switch {
		case errors.Is(err, io.EOF):
			fmt.Fprintln(os.Stdout)
			return 0
		case errors.Is(err, liner.ErrPromptAborted):
			pending = nil
			continue
		case err != nil:
			fmt.Fprintf(os.Stderr, "read input: %v\n", err)
			return 1
		}

		if len(pending) == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if strings.HasPrefix(trimmed, ":") {
				if done := replCommand(trimmed, session); done {
					return 0
				}
				continue
			}
		}

		pending = append(pending, line)
		value, echo, err := evalInput(session, pending, settings)
		if parser.IsIncomplete(err) {
			continue
		}
		ln.AppendHistory(strings.Join(pending, " "))
		pending = nil
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			continue
		}
		if echo {
			fmt.Fprintln(os.Stdout, runtime.Text(value))
		}
	}
}

// evalInput runs one chunk. Ctrl-C while it runs interrupts the program
// instead of leaving the REPL.
func evalInput(session *interpreter.Session, lines []string, settings runSettings) (runtime.Value, bool, error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if settings.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.timeout)
		defer cancel()
	}
	return session.Eval(ctx, lines)
}

// replCommand handles a `:` command and reports whether the REPL should exit.
func replCommand(cmd string, session *interpreter.Session) bool {
	switch strings.ToLower(cmd) {
	case ":quit", ":q", ":exit":
		return true
	case ":functions":
		for _, fn := range session.Program().Functions() {
			fmt.Fprintf(os.Stdout, "%s  [%s]\n", fn, fn.Module)
		}
	case ":help":
		fmt.Fprintln(os.Stdout, ":functions  list declared functions")
		fmt.Fprintln(os.Stdout, ":quit       leave the REPL")
	default:
		fmt.Fprintln(os.Stdout, "unknown command. Type :help for the list.")
	}
	return false
}

func replHistoryPath() (string, bool) {
	home, err := driver.HomeDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(home, replHistoryFile), true
}
