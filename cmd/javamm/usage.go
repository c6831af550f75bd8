package main

import (
	"fmt"
	"os"

	"javamm/interpreter-go/pkg/driver"
)

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  javamm [run] [--max-stack-size=N] [--timeout=DURATION] [file.javamm]")
	fmt.Fprintln(os.Stderr, "  javamm repl [--max-stack-size=N] [--timeout=DURATION]")
	fmt.Fprintln(os.Stderr, "  javamm deps install")
	fmt.Fprintln(os.Stderr, "  javamm deps update [dependency ...]")
	fmt.Fprintln(os.Stderr, "  javamm version")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Without a file, run executes the main module named by the nearest package.yml.")
	fmt.Fprintln(os.Stderr, "Environment:")
	fmt.Fprintf(os.Stderr, "  %s  dependency cache and REPL history (default ~/.javamm)\n", driver.EnvHome)
	fmt.Fprintf(os.Stderr, "  %s  extra module roots, separated like PATH\n", driver.EnvPath)
	fmt.Fprintf(os.Stderr, "  %s  default call depth limit\n", envMaxStackSize)
}
