package driver

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimLeft(contents, "\n")), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, `
name: calc
version: 0.3.1
main: app/start.javamm
sources:
  - lib
  - util/strings.javamm
runtime:
  max_stack_size: 256
  timeout: 1m30s
dependencies:
  mathx:
    git: https://example.com/mathx.git
    tag: v1.2.0
  local: ../local
  shorthand: https://example.com/short.git
`)
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.Name != "calc" || m.Version != "0.3.1" {
		t.Fatalf("unexpected identity %q %q", m.Name, m.Version)
	}
	if m.MainPath() != filepath.Join(dir, "app", "start.javamm") {
		t.Fatalf("unexpected main path %s", m.MainPath())
	}
	if strings.Join(m.Sources, ",") != "lib,util/strings.javamm" {
		t.Fatalf("unexpected sources %v", m.Sources)
	}
	if m.Runtime.MaxStackSize != 256 || m.Runtime.Timeout != 90*time.Second {
		t.Fatalf("unexpected runtime settings %+v", m.Runtime)
	}
	if names := strings.Join(m.DependencyNames(), ","); names != "local,mathx,shorthand" {
		t.Fatalf("unexpected dependencies %s", names)
	}
	if dep := m.Dependencies["mathx"]; !dep.IsGit() || dep.Tag != "v1.2.0" {
		t.Fatalf("unexpected git dependency %+v", dep)
	}
	if dep := m.Dependencies["local"]; dep.IsGit() || dep.Path != "../local" {
		t.Fatalf("unexpected path dependency %+v", dep)
	}
	if dep := m.Dependencies["shorthand"]; dep.Git != "https://example.com/short.git" || dep.Branch != "main" {
		t.Fatalf("unexpected shorthand dependency %+v", dep)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestName)
	writeFile(t, path, "name: tiny\nruntime:\n  timeout: 2.5\n")
	m, err := LoadManifest(path)
	if err != nil {
		t.Fatalf("LoadManifest: %v", err)
	}
	if m.MainPath() != filepath.Join(dir, DefaultMain) {
		t.Fatalf("unexpected default main %s", m.MainPath())
	}
	if m.Runtime.Timeout != 2500*time.Millisecond {
		t.Fatalf("unexpected timeout %v", m.Runtime.Timeout)
	}
	if len(m.Dependencies) != 0 {
		t.Fatalf("expected no dependencies, got %v", m.Dependencies)
	}
}

func TestLoadManifestRejects(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		want     string
	}{
		{"missing name", "version: 1.0.0\n", "name must be provided"},
		{"unknown field", "name: x\nlicense: MIT\n", "field license not found"},
		{"bad main", "name: x\nmain: app.txt\n", "must be a .javamm file"},
		{"negative stack", "name: x\nruntime:\n  max_stack_size: -1\n", "max_stack_size must not be negative"},
		{"bad timeout", "name: x\nruntime:\n  timeout: soon\n", "invalid timeout"},
		{"unpinned git", "name: x\ndependencies:\n  d:\n    git: https://example.com/d.git\n", "exactly one of rev, tag or branch"},
		{"git and path", "name: x\ndependencies:\n  d:\n    git: https://example.com/d.git\n    path: ../d\n    rev: abc\n", "cannot specify a git source"},
		{"pin without git", "name: x\ndependencies:\n  d:\n    path: ../d\n    tag: v1\n", "apply only to git dependencies"},
		{"empty", "", "is empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ManifestName)
			writeFile(t, path, tc.contents)
			_, err := LoadManifest(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidationErrorListsEveryIssue(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "main: x.txt\nsources: [/abs]\n")
	_, err := LoadManifest(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(verr.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %v", verr.Issues)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, ManifestName), "name: app\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	got, err := FindManifest(nested)
	if err != nil {
		t.Fatalf("FindManifest: %v", err)
	}
	if got != filepath.Join(root, ManifestName) {
		t.Fatalf("unexpected manifest %s", got)
	}
	if _, err := FindManifest(t.TempDir()); !errors.Is(err, ErrManifestNotFound) {
		t.Fatalf("expected ErrManifestNotFound, got %v", err)
	}
}

func TestLockfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockfileName)
	lock := NewLockfile("app", "javamm test")
	lock.Packages = []*LockedPackage{
		{Name: "zeta", Version: "v1@abc", Source: "git+https://example.com/zeta.git@abc", Checksum: "ff", Dependencies: []string{"b", "a"}},
		{Name: "alpha", Source: "path:../alpha"},
	}
	if err := WriteLockfile(lock, path); err != nil {
		t.Fatalf("WriteLockfile: %v", err)
	}
	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Root != "app" || loaded.Tool != "javamm test" || len(loaded.Packages) != 2 {
		t.Fatalf("unexpected lockfile %+v", loaded)
	}
	if loaded.Packages[0].Name != "alpha" {
		t.Fatalf("packages must be sorted, got %s first", loaded.Packages[0].Name)
	}
	zeta, ok := loaded.Find("zeta")
	if !ok || !zeta.Equal(lock.Packages[1]) {
		t.Fatalf("zeta did not survive: %+v", zeta)
	}
	if strings.Join(zeta.Dependencies, ",") != "a,b" {
		t.Fatalf("unexpected dependency order %v", zeta.Dependencies)
	}
}
