package driver

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"javamm/interpreter-go/pkg/parser"
)

// SourceExt is the extension of source modules.
const SourceExt = ".javamm"

// Environment variables read by the loader.
const (
	EnvHome = "JAVAMM_HOME"
	EnvPath = "JAVAMM_PATH"
)

// ReadLines reads a source file into lines without their terminators.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// ModuleName derives the module name of path: its location relative to root,
// slash separated, without the extension.
func ModuleName(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(path)
	}
	return strings.TrimSuffix(filepath.ToSlash(rel), SourceExt)
}

// HomeDir resolves the cache directory: JAVAMM_HOME or ~/.javamm.
func HomeDir() (string, error) {
	if home := strings.TrimSpace(os.Getenv(EnvHome)); home != "" {
		abs, err := filepath.Abs(home)
		if err != nil {
			return "", fmt.Errorf("resolve %s %q: %w", EnvHome, home, err)
		}
		return abs, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(userHome, ".javamm"), nil
}

// SearchPathFromEnv splits JAVAMM_PATH into module roots.
func SearchPathFromEnv() []string {
	var out []string
	for _, p := range filepath.SplitList(os.Getenv(EnvPath)) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// LoadDir reads every source module under root.
func LoadDir(root string) ([]parser.SourceModule, error) {
	l := NewLoader(LoaderOptions{})
	if err := l.addTree(root, root); err != nil {
		return nil, err
	}
	return l.modules, nil
}

// LoaderOptions configures where a Loader looks for modules.
type LoaderOptions struct {
	Manifest    *Manifest
	Lockfile    *Lockfile
	CacheDir    string
	SearchPaths []string
}

// Loader collects the modules of a program: the entry file, the package
// sources, installed dependencies and extra search roots.
type Loader struct {
	opts    LoaderOptions
	modules []parser.SourceModule
	files   map[string]struct{}
	owners  map[string]string
}

func NewLoader(opts LoaderOptions) *Loader {
	return &Loader{
		opts:   opts,
		files:  make(map[string]struct{}),
		owners: make(map[string]string),
	}
}

// Load returns the modules reachable from entry, the entry module first.
func (l *Loader) Load(entry string) ([]parser.SourceModule, error) {
	if entry == "" {
		return nil, fmt.Errorf("loader: empty entry path")
	}
	entryPath, err := filepath.Abs(entry)
	if err != nil {
		return nil, fmt.Errorf("loader: resolve %s: %w", entry, err)
	}
	root := filepath.Dir(entryPath)
	if m := l.opts.Manifest; m != nil && containsPath(m.Root(), entryPath) {
		root = m.Root()
	}
	if err := l.addFile(root, entryPath); err != nil {
		return nil, err
	}
	if m := l.opts.Manifest; m != nil {
		if err := l.addPackageSources(m.Root(), m); err != nil {
			return nil, err
		}
		if err := l.addDependencies(m); err != nil {
			return nil, err
		}
	}
	for _, sp := range l.opts.SearchPaths {
		abs, err := filepath.Abs(sp)
		if err != nil {
			return nil, fmt.Errorf("loader: resolve search path %q: %w", sp, err)
		}
		if err := l.addTree(abs, abs); err != nil {
			return nil, err
		}
	}
	return l.modules, nil
}

func (l *Loader) addPackageSources(root string, m *Manifest) error {
	for _, src := range m.Sources {
		if err := l.addTree(root, filepath.Join(root, filepath.FromSlash(src))); err != nil {
			return err
		}
	}
	return nil
}

// addDependencies adds locked packages, or the manifest's path dependencies
// when nothing has been locked yet.
func (l *Loader) addDependencies(m *Manifest) error {
	if l.opts.Lockfile == nil {
		for _, name := range m.DependencyNames() {
			dep := m.Dependencies[name]
			if dep.IsGit() {
				return fmt.Errorf("loader: %s missing for %q; run `javamm deps install`", LockfileName, m.Name)
			}
			dir := dep.Path
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(m.Root(), dir)
			}
			if err := l.addPackage(dir); err != nil {
				return fmt.Errorf("loader: dependency %q: %w", name, err)
			}
		}
		return nil
	}
	for _, pkg := range l.opts.Lockfile.Packages {
		dir, ok := ResolvePackageSource(pkg, m.Root(), l.opts.CacheDir)
		if !ok {
			return fmt.Errorf("loader: dependency %q has unsupported source %q", pkg.Name, pkg.Source)
		}
		if _, err := os.Stat(dir); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("loader: dependency %q is not installed; run `javamm deps install`", pkg.Name)
			}
			return err
		}
		if err := l.addPackage(dir); err != nil {
			return fmt.Errorf("loader: dependency %q: %w", pkg.Name, err)
		}
	}
	return nil
}

// addPackage adds a dependency root: its manifest sources when it has a
// manifest that lists them, otherwise every module below it.
func (l *Loader) addPackage(dir string) error {
	manifestPath := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		m, err := LoadManifest(manifestPath)
		if err != nil {
			return err
		}
		if len(m.Sources) > 0 {
			if err := l.addFile(dir, m.MainPath()); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			return l.addPackageSources(dir, m)
		}
	}
	return l.addTree(dir, dir)
}

// addTree adds target, a source file or a directory searched recursively.
// Module names are relative to root.
func (l *Loader) addTree(root, target string) error {
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("loader: %w", err)
	}
	if !info.IsDir() {
		return l.addFile(root, target)
	}
	var files []string
	err = filepath.WalkDir(target, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != target && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == SourceExt {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("loader: traverse %s: %w", target, err)
	}
	sort.Strings(files)
	for _, f := range files {
		if err := l.addFile(root, f); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) addFile(root, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, seen := l.files[abs]; seen {
		return nil
	}
	lines, err := ReadLines(abs)
	if err != nil {
		return fmt.Errorf("loader: read %s: %w", abs, err)
	}
	name := ModuleName(root, abs)
	if other, taken := l.owners[name]; taken {
		return fmt.Errorf("loader: module %q is provided by both %s and %s", name, other, abs)
	}
	l.files[abs] = struct{}{}
	l.owners[name] = abs
	l.modules = append(l.modules, parser.SourceModule{Name: name, Lines: lines})
	return nil
}

// ResolvePackageSource maps a locked package to the directory holding it.
func ResolvePackageSource(pkg *LockedPackage, manifestRoot, cacheDir string) (string, bool) {
	source := strings.TrimSpace(pkg.Source)
	switch {
	case strings.HasPrefix(source, "path:"):
		dir := strings.TrimSpace(strings.TrimPrefix(source, "path:"))
		if dir == "" {
			return "", false
		}
		if filepath.IsAbs(dir) {
			return filepath.Clean(dir), true
		}
		return filepath.Join(manifestRoot, filepath.FromSlash(dir)), true
	case strings.HasPrefix(source, "git+"):
		if pkg.Name == "" || pkg.Version == "" || cacheDir == "" {
			return "", false
		}
		return GitCheckoutDir(cacheDir, pkg.Name, pkg.Version), true
	default:
		return "", false
	}
}

// GitCheckoutDir is where a fetched git dependency is checked out.
func GitCheckoutDir(cacheDir, name, version string) string {
	return filepath.Join(cacheDir, "pkg", "src", SanitizePathSegment(name), SanitizePathSegment(version))
}

// SanitizePathSegment keeps a name safe to use as a single path element.
func SanitizePathSegment(segment string) string {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return "head"
	}
	var b strings.Builder
	for _, r := range segment {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func containsPath(base, target string) bool {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
