package driver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"javamm/interpreter-go/pkg/parser"
)

func moduleNames(modules []parser.SourceModule) []string {
	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}
	return names
}

func TestReadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.javamm")
	writeFile(t, path, "function main() {\r\n  println(1);\r\n}\r\n")
	lines, err := ReadLines(path)
	if err != nil {
		t.Fatalf("ReadLines: %v", err)
	}
	if len(lines) != 3 || lines[1] != "  println(1);" {
		t.Fatalf("unexpected lines %q", lines)
	}
	empty := filepath.Join(t.TempDir(), "empty.javamm")
	writeFile(t, empty, "")
	if lines, err := ReadLines(empty); err != nil || len(lines) != 0 {
		t.Fatalf("expected no lines, got %q %v", lines, err)
	}
}

func TestModuleName(t *testing.T) {
	root := filepath.Join("work", "app")
	cases := []struct {
		path string
		want string
	}{
		{filepath.Join(root, "main.javamm"), "main"},
		{filepath.Join(root, "lib", "math.javamm"), "lib/math"},
		{filepath.Join(root, "a", "b", "deep.javamm"), "a/b/deep"},
		{filepath.Join("elsewhere", "outside.javamm"), "outside"},
	}
	for _, tc := range cases {
		if got := ModuleName(root, tc.path); got != tc.want {
			t.Fatalf("ModuleName(%s) = %s, want %s", tc.path, got, tc.want)
		}
	}
}

func TestLoaderCollectsPackageAndDependencies(t *testing.T) {
	root := t.TempDir()
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, ManifestName), `
name: app
sources:
  - lib
dependencies:
  helpers:
    path: ../helpers
`)
	writeFile(t, filepath.Join(app, "main.javamm"), "function main() {\n  println(twice(2));\n}\n")
	writeFile(t, filepath.Join(app, "lib", "math.javamm"), "function twice(n) {\n  return n * 2;\n}\n")
	writeFile(t, filepath.Join(app, "lib", ".hidden", "skip.javamm"), "function skipped() {}\n")
	writeFile(t, filepath.Join(app, "unlisted.javamm"), "function unlisted() {}\n")
	writeFile(t, filepath.Join(root, "helpers", "text", "pad.javamm"), "function pad(s) {\n  return \" \" + s;\n}\n")
	writeFile(t, filepath.Join(root, "extra", "tools.javamm"), "function tool() {}\n")

	manifest, err := LoadManifest(filepath.Join(app, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	loader := NewLoader(LoaderOptions{
		Manifest:    manifest,
		SearchPaths: []string{filepath.Join(root, "extra")},
	})
	modules, err := loader.Load(manifest.MainPath())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := moduleNames(modules)
	if strings.Join(got, ",") != "main,lib/math,text/pad,tools" {
		t.Fatalf("unexpected modules %v", got)
	}
	if _, err := parser.Compile(modules...); err != nil {
		t.Fatalf("compile loaded modules: %v", err)
	}
}

func TestLoaderUsesLockedPackages(t *testing.T) {
	root := t.TempDir()
	cache := filepath.Join(root, "cache")
	app := filepath.Join(root, "app")
	writeFile(t, filepath.Join(app, ManifestName), `
name: app
dependencies:
  fmtlib:
    git: https://example.com/fmtlib.git
    tag: v1
`)
	writeFile(t, filepath.Join(app, "main.javamm"), "function main() {}\n")
	checkout := GitCheckoutDir(cache, "fmtlib", "v1@abc123")
	writeFile(t, filepath.Join(checkout, ManifestName), "name: fmtlib\nmain: src/fmt.javamm\nsources: [src]\n")
	writeFile(t, filepath.Join(checkout, "src", "fmt.javamm"), "function fmt() {}\n")
	writeFile(t, filepath.Join(checkout, "tests", "fmt_test.javamm"), "function test() {}\n")

	manifest, err := LoadManifest(filepath.Join(app, ManifestName))
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if _, err := NewLoader(LoaderOptions{Manifest: manifest}).Load(manifest.MainPath()); err == nil || !strings.Contains(err.Error(), "deps install") {
		t.Fatalf("expected missing lockfile error, got %v", err)
	}

	lock := NewLockfile("app", "test")
	lock.Packages = []*LockedPackage{{
		Name:    "fmtlib",
		Version: "v1@abc123",
		Source:  "git+https://example.com/fmtlib.git@abc123",
	}}
	modules, err := NewLoader(LoaderOptions{Manifest: manifest, Lockfile: lock, CacheDir: cache}).Load(manifest.MainPath())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := strings.Join(moduleNames(modules), ","); got != "main,src/fmt" {
		t.Fatalf("unexpected modules %s", got)
	}

	lock.Packages[0].Version = "v2@def"
	if _, err := NewLoader(LoaderOptions{Manifest: manifest, Lockfile: lock, CacheDir: cache}).Load(manifest.MainPath()); err == nil || !strings.Contains(err.Error(), "not installed") {
		t.Fatalf("expected not installed error, got %v", err)
	}
}

func TestLoaderRejectsModuleCollisions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a", "main.javamm"), "function main() {}\n")
	writeFile(t, filepath.Join(root, "b", "main.javamm"), "function other() {}\n")
	loader := NewLoader(LoaderOptions{SearchPaths: []string{filepath.Join(root, "b")}})
	_, err := loader.Load(filepath.Join(root, "a", "main.javamm"))
	if err == nil || !strings.Contains(err.Error(), "provided by both") {
		t.Fatalf("expected collision error, got %v", err)
	}
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "z.javamm"), "function z() {}\n")
	writeFile(t, filepath.Join(root, "a", "b.javamm"), "function b() {}\n")
	writeFile(t, filepath.Join(root, "notes.txt"), "ignored\n")
	modules, err := LoadDir(root)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	names := moduleNames(modules)
	if !sort.StringsAreSorted(names) || strings.Join(names, ",") != "a/b,z" {
		t.Fatalf("unexpected modules %v", names)
	}
}

func TestSearchPathFromEnv(t *testing.T) {
	t.Setenv(EnvPath, strings.Join([]string{"one", " ", "two"}, string(os.PathListSeparator)))
	if got := SearchPathFromEnv(); strings.Join(got, ",") != "one,two" {
		t.Fatalf("unexpected search path %v", got)
	}
	t.Setenv(EnvHome, "relative-home")
	home, err := HomeDir()
	if err != nil || !filepath.IsAbs(home) || filepath.Base(home) != "relative-home" {
		t.Fatalf("unexpected home %q %v", home, err)
	}
}
