package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"javamm/interpreter-go/pkg/driver"
)

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "javamm deps requires a subcommand (install, update)")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "javamm deps install does not take arguments (received %s)\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsInstall()
	case "update":
		return runDepsUpdate(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// depsContext is what both deps subcommands start from.
type depsContext struct {
	manifest    *driver.Manifest
	cacheDir    string
	lock        *driver.Lockfile
	lockCreated bool
}

func loadDepsContext() (*depsContext, bool) {
	manifest, err := loadManifestFrom(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "unable to locate %s: %v\n", driver.ManifestName, err)
		return nil, false
	}
	cacheDir, err := driver.HomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve %s: %v\n", driver.EnvHome, err)
		return nil, false
	}
	lockPath := driver.LockfilePath(manifest)
	lock, err := driver.LoadLockfile(lockPath)
	created := false
	switch {
	case err == nil:
		if lock.Root != manifest.Name {
			fmt.Fprintf(os.Stderr, "lockfile root %q does not match manifest name %q\n", lock.Root, manifest.Name)
			return nil, false
		}
	case errors.Is(err, os.ErrNotExist):
		lock = driver.NewLockfile(manifest.Name, cliToolVersion)
		created = true
	default:
		fmt.Fprintf(os.Stderr, "failed to read lockfile: %v\n", err)
		return nil, false
	}
	lock.Path = lockPath
	lock.Tool = cliToolVersion
	return &depsContext{manifest: manifest, cacheDir: cacheDir, lock: lock, lockCreated: created}, true
}

func runDepsInstall() int {
	dc, ok := loadDepsContext()
	if !ok {
		return 1
	}
	fmt.Fprintf(os.Stdout, "Manifest: %s\n", dc.manifest.Path)
	fmt.Fprintf(os.Stdout, "Root package: %s\n", dc.manifest.Name)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(dc.manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", dc.cacheDir)

	installer := newDependencyInstaller(dc.manifest, dc.cacheDir)
	changed, logs, err := installer.Install(dc.lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}

	if changed || dc.lockCreated {
		action := "Updated"
		if dc.lockCreated {
			action = "Created"
		}
		if err := driver.WriteLockfile(dc.lock, dc.lock.Path); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "%s %s: %s\n", action, driver.LockfileName, dc.lock.Path)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date: %s\n", driver.LockfileName, dc.lock.Path)
	}
	fmt.Fprintln(os.Stdout, "Dependencies installed.")
	return 0
}

// runDepsUpdate drops the named packages (all of them when none are named)
// from the lockfile so their git revisions are resolved again.
func runDepsUpdate(targets []string) int {
	dc, ok := loadDepsContext()
	if !ok {
		return 1
	}
	for _, target := range targets {
		if _, declared := dc.manifest.Dependencies[target]; !declared {
			fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", target)
			return 1
		}
	}

	previous := dc.lock.Packages
	if len(targets) == 0 {
		dc.lock.Packages = nil
	} else {
		drop := make(map[string]struct{}, len(targets))
		for _, target := range targets {
			drop[target] = struct{}{}
		}
		kept := make([]*driver.LockedPackage, 0, len(previous))
		for _, pkg := range previous {
			if _, ok := drop[pkg.Name]; !ok {
				kept = append(kept, pkg)
			}
		}
		dc.lock.Packages = kept
	}

	installer := newDependencyInstaller(dc.manifest, dc.cacheDir)
	_, logs, err := installer.Install(dc.lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to update dependencies: %v\n", err)
		return 1
	}

	if !dc.lockCreated && lockedPackagesEqual(previous, dc.lock.Packages) {
		fmt.Fprintln(os.Stdout, "Dependencies already up to date.")
		return 0
	}
	if err := driver.WriteLockfile(dc.lock, dc.lock.Path); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write lockfile: %v\n", err)
		return 1
	}
	fmt.Fprintf(os.Stdout, "Updated %s: %s\n", driver.LockfileName, dc.lock.Path)
	return 0
}

func lockedPackagesEqual(a, b []*driver.LockedPackage) bool {
	if len(a) != len(b) {
		return false
	}
	byName := make(map[string]*driver.LockedPackage, len(a))
	for _, pkg := range a {
		byName[pkg.Name] = pkg
	}
	for _, pkg := range b {
		if !byName[pkg.Name].Equal(pkg) {
			return false
		}
	}
	return true
}
