package main

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"javamm/interpreter-go/pkg/driver"
)

// dirChecksum hashes every file below path except the .git directory, keyed by
// its slash-separated relative name.
func dirChecksum(path string) (string, error) {
	h := sha256.New()
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		h.Write([]byte(filepath.ToSlash(rel)))
		h.Write([]byte{0})
		h.Write(data)
		return nil
	})
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

type gitFetcher struct {
	cacheDir string
}

func newGitFetcher(cacheDir string) *gitFetcher {
	if cacheDir == "" {
		return nil
	}
	return &gitFetcher{cacheDir: cacheDir}
}

// Fetch checks spec out into the cache and returns the locked package along
// with the checkout directory.
func (g *gitFetcher) Fetch(name string, spec *driver.DependencySpec) (*driver.LockedPackage, string, error) {
	if g == nil {
		return nil, "", errors.New("git fetcher unavailable")
	}
	url := strings.TrimSpace(spec.Git)
	if url == "" {
		return nil, "", fmt.Errorf("dependency %q: git URL required", name)
	}

	version, commit, err := ensureGitCheckout(g.cacheDir, name, url, spec)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: %w", name, err)
	}
	checkoutDir := driver.GitCheckoutDir(g.cacheDir, name, version)
	checksum, err := dirChecksum(checkoutDir)
	if err != nil {
		return nil, "", fmt.Errorf("dependency %q: checksum %s: %w", name, checkoutDir, err)
	}
	return &driver.LockedPackage{
		Name:     name,
		Version:  version,
		Source:   gitSource(url, commit),
		Checksum: checksum,
	}, checkoutDir, nil
}

// ensureGitCheckout clones url into a temporary directory next to the final
// checkout, resolves the pinned revision and moves the worktree into place.
// An existing checkout of the same version is reused.
func ensureGitCheckout(cacheDir, name, url string, spec *driver.DependencySpec) (string, string, error) {
	revision, descriptor, err := gitRevisionFromSpec(spec)
	if err != nil {
		return "", "", err
	}

	if rev := strings.TrimSpace(spec.Rev); plumbing.IsHash(rev) {
		if _, err := os.Stat(driver.GitCheckoutDir(cacheDir, name, rev)); err == nil {
			return rev, rev, nil
		}
	}

	baseDir := filepath.Dir(driver.GitCheckoutDir(cacheDir, name, "head"))
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", "", err
	}
	tmpDir, err := os.MkdirTemp(baseDir, ".git-fetch-*")
	if err != nil {
		return "", "", err
	}
	if err := os.RemoveAll(tmpDir); err != nil {
		return "", "", err
	}
	defer os.RemoveAll(tmpDir)

	repo, err := git.PlainClone(tmpDir, false, &git.CloneOptions{
		URL:        url,
		NoCheckout: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("git clone %s: %w", url, err)
	}
	hash, err := repo.ResolveRevision(revision)
	if err != nil {
		return "", "", fmt.Errorf("resolve revision %s: %w", descriptor, err)
	}

	version := gitPinnedVersion(descriptor, hash.String())
	targetDir := driver.GitCheckoutDir(cacheDir, name, version)
	if _, err := os.Stat(targetDir); err == nil {
		return version, hash.String(), nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return "", "", err
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Hash: *hash, Force: true}); err != nil {
		return "", "", fmt.Errorf("git checkout %s: %w", descriptor, err)
	}
	if err := os.Rename(tmpDir, targetDir); err != nil {
		return "", "", err
	}
	return version, hash.String(), nil
}

// gitPinnedVersion names a checkout: the commit itself, or descriptor@commit
// for tags, branches and abbreviated revisions.
func gitPinnedVersion(descriptor, commit string) string {
	commit = strings.TrimSpace(commit)
	descriptor = strings.TrimSpace(descriptor)
	if commit == "" {
		return descriptor
	}
	if descriptor == "" || descriptor == commit {
		return commit
	}
	return fmt.Sprintf("%s@%s", descriptor, commit)
}

func gitRevisionFromSpec(spec *driver.DependencySpec) (plumbing.Revision, string, error) {
	if rev := strings.TrimSpace(spec.Rev); rev != "" {
		return plumbing.Revision(rev), rev, nil
	}
	if tag := strings.TrimSpace(spec.Tag); tag != "" {
		return plumbing.Revision(plumbing.NewTagReferenceName(tag)), tag, nil
	}
	if branch := strings.TrimSpace(spec.Branch); branch != "" {
		return plumbing.Revision(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, branch)), branch, nil
	}
	return "", "", fmt.Errorf("git dependencies require rev, tag or branch")
}

func gitSource(url, commit string) string {
	return fmt.Sprintf("git+%s@%s", url, commit)
}

// parseGitSource splits a `git+<url>@<commit>` lockfile source.
func parseGitSource(source string) (string, string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(source), "git+")
	if !ok {
		return "", "", false
	}
	at := strings.LastIndex(rest, "@")
	if at <= 0 || at == len(rest)-1 {
		return "", "", false
	}
	return rest[:at], rest[at+1:], true
}
