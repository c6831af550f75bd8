package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"javamm/interpreter-go/pkg/driver"
	"javamm/interpreter-go/pkg/interpreter"
	"javamm/interpreter-go/pkg/parser"
)

const envMaxStackSize = "JAVAMM_MAX_STACK_SIZE"

// runSettings are the execution limits after flags, environment and manifest
// have been merged. Zero means unset.
type runSettings struct {
	maxStackSize int
	timeout      time.Duration
}

func parseRunFlags(command string, args []string) (runSettings, []string, map[string]bool, error) {
	fs := flag.NewFlagSet("javamm "+command, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	maxStack := fs.Int("max-stack-size", 0, "maximum call depth before a stack overflow error")
	timeout := fs.Duration("timeout", 0, "interrupt the program after this long")
	if err := fs.Parse(args); err != nil {
		return runSettings{}, nil, nil, err
	}
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if *maxStack < 0 {
		return runSettings{}, nil, nil, fmt.Errorf("--max-stack-size must not be negative")
	}
	if *timeout < 0 {
		return runSettings{}, nil, nil, fmt.Errorf("--timeout must not be negative")
	}
	return runSettings{maxStackSize: *maxStack, timeout: *timeout}, fs.Args(), set, nil
}

// resolveSettings fills values the command line left unset, first from the
// environment and then from the manifest.
func resolveSettings(flags runSettings, set map[string]bool, manifest *driver.Manifest) (runSettings, error) {
	out := flags
	if !set["max-stack-size"] {
		if raw := strings.TrimSpace(os.Getenv(envMaxStackSize)); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				return runSettings{}, fmt.Errorf("invalid %s %q", envMaxStackSize, raw)
			}
			out.maxStackSize = n
		} else if manifest != nil {
			out.maxStackSize = manifest.Runtime.MaxStackSize
		}
	}
	if !set["timeout"] && manifest != nil {
		out.timeout = manifest.Runtime.Timeout
	}
	return out, nil
}

func runEntry(args []string) int {
	flags, rest, set, err := parseRunFlags("run", args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(rest) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(rest[1:], " "))
		return 1
	}

	var entryPath string
	var manifest *driver.Manifest
	if len(rest) == 0 {
		manifest, err = loadManifestFrom(".")
		if err != nil {
			if errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintln(os.Stderr, "javamm run requires a source file (package.yml not found)")
			} else {
				fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
			}
			return 1
		}
		entryPath = manifest.MainPath()
	} else {
		entryPath = rest[0]
		if filepath.Ext(entryPath) != driver.SourceExt {
			fmt.Fprintf(os.Stderr, "%s is not a %s file\n", entryPath, driver.SourceExt)
			return 1
		}
		manifest, err = loadManifestFrom(filepath.Dir(entryPath))
		if err != nil {
			if !errors.Is(err, driver.ErrManifestNotFound) {
				fmt.Fprintf(os.Stderr, "failed to load manifest: %v\n", err)
				return 1
			}
			manifest = nil
		}
	}

	settings, err := resolveSettings(flags, set, manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return executeEntry(entryPath, manifest, settings)
}

func executeEntry(entryPath string, manifest *driver.Manifest, settings runSettings) int {
	lock, err := loadLockfileForManifest(manifest)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	opts := driver.LoaderOptions{
		Manifest:    manifest,
		Lockfile:    lock,
		SearchPaths: driver.SearchPathFromEnv(),
	}
	if lock != nil {
		cacheDir, err := driver.HomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", driver.EnvHome, err)
			return 1
		}
		opts.CacheDir = cacheDir
	}
	modules, err := driver.NewLoader(opts).Load(entryPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	program, err := parser.Compile(modules...)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if settings.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.timeout)
		defer cancel()
	}

	interp := interpreter.New(program, interpreter.Options{
		MaxStackSize: settings.maxStackSize,
		Console:      interpreter.NewStandardConsole(),
	})
	if err := interp.Run(ctx); err != nil {
		return 1
	}
	return 0
}

// loadManifestFrom finds and loads the package.yml governing dir.
func loadManifestFrom(dir string) (*driver.Manifest, error) {
	path, err := driver.FindManifest(dir)
	if err != nil {
		return nil, err
	}
	return driver.LoadManifest(path)
}

// loadLockfileForManifest returns nil when the package has no lockfile yet.
func loadLockfileForManifest(manifest *driver.Manifest) (*driver.Lockfile, error) {
	if manifest == nil {
		return nil, nil
	}
	lock, err := driver.LoadLockfile(driver.LockfilePath(manifest))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read lockfile: %w", err)
	}
	if lock.Root != manifest.Name {
		return nil, fmt.Errorf("lockfile root %q does not match manifest name %q", lock.Root, manifest.Name)
	}
	return lock, nil
}
