package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"javamm/interpreter-go/pkg/driver"
)

const unversioned = "0.0.0-dev"

type resolvedPackage struct {
	pkg      *driver.LockedPackage
	manifest *driver.Manifest
	root     string
}

// dependencyInstaller resolves the dependency graph of a manifest into
// lockfile entries, fetching git packages into the cache.
type dependencyInstaller struct {
	manifest     *driver.Manifest
	manifestRoot string
	cacheDir     string
	logs         []string
	git          *gitFetcher
	locked       map[string]*driver.LockedPackage
	resolved     map[string]*driver.LockedPackage
	origins      map[string]string
	resolving    map[string]bool
}

func newDependencyInstaller(manifest *driver.Manifest, cacheDir string) *dependencyInstaller {
	var root string
	if manifest != nil {
		root = manifest.Root()
	}
	return &dependencyInstaller{
		manifest:     manifest,
		manifestRoot: root,
		cacheDir:     cacheDir,
		git:          newGitFetcher(cacheDir),
	}
}

// Install resolves every dependency and replaces lock.Packages with the
// result. Git packages already in lock stay on their pinned commit. It
// reports whether the lockfile contents changed.
func (d *dependencyInstaller) Install(lock *driver.Lockfile) (bool, []string, error) {
	d.logs = []string{}
	if d.manifest == nil {
		return false, d.logs, nil
	}
	d.locked = make(map[string]*driver.LockedPackage, len(lock.Packages))
	for _, pkg := range lock.Packages {
		if pkg != nil {
			d.locked[pkg.Name] = pkg
		}
	}
	d.resolved = make(map[string]*driver.LockedPackage)
	d.origins = make(map[string]string)
	d.resolving = make(map[string]bool)

	for _, name := range d.manifest.DependencyNames() {
		if err := d.installDependency(name, d.manifest.Dependencies[name].Clone(), d.manifestRoot); err != nil {
			return false, d.logs, err
		}
	}

	desired := make([]*driver.LockedPackage, 0, len(d.resolved))
	for _, pkg := range d.resolved {
		desired = append(desired, pkg)
	}
	sort.Slice(desired, func(i, j int) bool { return desired[i].Name < desired[j].Name })

	changed := len(desired) != len(d.locked)
	for _, pkg := range desired {
		if current, ok := d.locked[pkg.Name]; !ok || !current.Equal(pkg) {
			changed = true
		}
	}
	lock.Packages = desired
	return changed, d.logs, nil
}

func (d *dependencyInstaller) installDependency(name string, spec *driver.DependencySpec, base string) error {
	if spec == nil {
		return fmt.Errorf("dependency %q has no descriptor", name)
	}
	if spec.Path != "" && !filepath.IsAbs(spec.Path) {
		spec.Path = filepath.Clean(filepath.Join(base, spec.Path))
	}
	origin := dependencyOrigin(spec)
	if _, done := d.resolved[name]; done {
		if prev := d.origins[name]; prev != origin {
			return fmt.Errorf("dependency %q is requested from both %s and %s", name, prev, origin)
		}
		return nil
	}
	if d.resolving[name] {
		return fmt.Errorf("dependency cycle detected at %s", name)
	}
	d.resolving[name] = true
	defer delete(d.resolving, name)

	resolved, err := d.resolveDependency(name, spec)
	if err != nil {
		return err
	}
	pkg := resolved.pkg
	pkg.Dependencies = nil
	if child := resolved.manifest; child != nil {
		for _, childName := range child.DependencyNames() {
			if err := d.installDependency(childName, child.Dependencies[childName].Clone(), resolved.root); err != nil {
				return err
			}
			pkg.Dependencies = append(pkg.Dependencies, childName)
		}
	}
	d.resolved[name] = pkg
	d.origins[name] = origin
	return nil
}

func (d *dependencyInstaller) resolveDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	switch {
	case spec.Path != "":
		return d.resolvePathDependency(name, spec)
	case spec.IsGit():
		return d.resolveGitDependency(name, spec)
	default:
		return nil, fmt.Errorf("dependency %q: unsupported descriptor", name)
	}
}

func (d *dependencyInstaller) resolvePathDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	abs, err := filepath.Abs(spec.Path)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: resolve path %q: %w", name, spec.Path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: stat %s: %w", name, abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dependency %q: expected directory at %s", name, abs)
	}
	depManifest, err := loadPackageManifest(abs)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	version := unversioned
	if depManifest != nil && strings.TrimSpace(depManifest.Version) != "" {
		version = strings.TrimSpace(depManifest.Version)
	}
	d.logs = append(d.logs, fmt.Sprintf("linked %s %s (%s)", name, version, d.displayPath(abs)))
	return &resolvedPackage{
		pkg: &driver.LockedPackage{
			Name:    name,
			Version: version,
			Source:  "path:" + abs,
		},
		manifest: depManifest,
		root:     abs,
	}, nil
}

func (d *dependencyInstaller) resolveGitDependency(name string, spec *driver.DependencySpec) (*resolvedPackage, error) {
	if d.git == nil {
		return nil, fmt.Errorf("dependency %q: git fetching requires a cache directory", name)
	}
	fetchSpec := spec
	if prev, ok := d.locked[name]; ok {
		if url, commit, ok := parseGitSource(prev.Source); ok && url == strings.TrimSpace(spec.Git) {
			dir := driver.GitCheckoutDir(d.cacheDir, name, prev.Version)
			if _, err := os.Stat(dir); err == nil {
				return d.gitResult(name, prev, dir, "using")
			}
			fetchSpec = &driver.DependencySpec{Git: url, Rev: commit}
		}
	}
	pkg, dir, err := d.git.Fetch(name, fetchSpec)
	if err != nil {
		return nil, err
	}
	return d.gitResult(name, pkg, dir, "fetched")
}

func (d *dependencyInstaller) gitResult(name string, pkg *driver.LockedPackage, dir, action string) (*resolvedPackage, error) {
	depManifest, err := loadPackageManifest(dir)
	if err != nil {
		return nil, fmt.Errorf("dependency %q: %w", name, err)
	}
	locked := *pkg
	locked.Dependencies = nil
	d.logs = append(d.logs, fmt.Sprintf("%s %s %s (%s)", action, name, locked.Version, d.displayPath(dir)))
	return &resolvedPackage{pkg: &locked, manifest: depManifest, root: dir}, nil
}

// loadPackageManifest returns nil for a package without package.yml.
func loadPackageManifest(dir string) (*driver.Manifest, error) {
	path := filepath.Join(dir, driver.ManifestName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return driver.LoadManifest(path)
}

func dependencyOrigin(spec *driver.DependencySpec) string {
	if spec.Path != "" {
		return spec.Path
	}
	return strings.TrimSpace(spec.Git)
}

func (d *dependencyInstaller) displayPath(path string) string {
	if d.manifestRoot == "" {
		return path
	}
	rel, err := filepath.Rel(d.manifestRoot, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
