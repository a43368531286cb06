package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Installer materializes a manifest's git dependencies into the cache
// directory, one checkout per pinned commit, and keeps the lockfile in sync.
type Installer struct {
	manifest *Manifest
	cacheDir string
}

// NewInstaller builds an installer for one manifest. cacheDir is the
// BHASHA_HOME cache root; checkouts land under <cacheDir>/packages.
func NewInstaller(manifest *Manifest, cacheDir string) *Installer {
	return &Installer{manifest: manifest, cacheDir: cacheDir}
}

// PackageDir is where a dependency pinned to a commit lives on disk.
func (ins *Installer) PackageDir(name, commit string) string {
	return filepath.Join(ins.cacheDir, "packages", name, commit)
}

// Install ensures every declared dependency is present in the cache. A
// dependency already pinned in the lockfile with an existing checkout is left
// alone; anything else is cloned and pinned. It reports whether the lockfile
// changed, plus one log line per dependency.
func (ins *Installer) Install(lock *Lockfile) (bool, []string, error) {
	names := make([]string, 0, len(ins.manifest.Dependencies))
	for name := range ins.manifest.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)

	changed := false
	var logs []string
	for _, name := range names {
		dep := ins.manifest.Dependencies[name]

		if pinned, ok := lock.Lookup(name); ok && pinned.Git == dep.Git {
			dir := ins.PackageDir(name, pinned.Commit)
			if _, err := os.Stat(dir); err == nil {
				logs = append(logs, fmt.Sprintf("%s: using cached %s", name, shortHash(pinned.Commit)))
				continue
			}
		}

		commit, err := ins.fetch(name, dep)
		if err != nil {
			return changed, logs, fmt.Errorf("install %s: %w", name, err)
		}
		lock.Pin(name, dep.Git, commit)
		changed = true
		logs = append(logs, fmt.Sprintf("%s: installed %s", name, shortHash(commit)))
	}

	var stale []string
	for name := range lock.Pinned {
		if _, declared := ins.manifest.Dependencies[name]; !declared {
			stale = append(stale, name)
		}
	}
	sort.Strings(stale)
	for _, name := range stale {
		delete(lock.Pinned, name)
		changed = true
		logs = append(logs, fmt.Sprintf("%s: removed (no longer declared)", name))
	}
	return changed, logs, nil
}

// fetch clones the dependency into a staging directory, checks out the
// requested pin, then moves the checkout to its commit-addressed home.
func (ins *Installer) fetch(name string, dep *DependencySpec) (string, error) {
	stagingRoot := filepath.Join(ins.cacheDir, "staging")
	if err := os.MkdirAll(stagingRoot, 0o755); err != nil {
		return "", err
	}
	staging, err := os.MkdirTemp(stagingRoot, name+"-")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(staging)

	options := &git.CloneOptions{URL: dep.Git}
	switch {
	case dep.Tag != "":
		options.ReferenceName = plumbing.NewTagReferenceName(dep.Tag)
		options.SingleBranch = true
	case dep.Branch != "":
		options.ReferenceName = plumbing.NewBranchReferenceName(dep.Branch)
		options.SingleBranch = true
	}

	repo, err := git.PlainClone(staging, false, options)
	if err != nil {
		return "", fmt.Errorf("clone %s: %w", dep.Git, err)
	}

	if dep.Rev != "" {
		worktree, err := repo.Worktree()
		if err != nil {
			return "", err
		}
		if err := worktree.Checkout(&git.CheckoutOptions{Hash: plumbing.NewHash(dep.Rev)}); err != nil {
			return "", fmt.Errorf("checkout %s at %s: %w", dep.Git, dep.Rev, err)
		}
	}

	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	commit := head.Hash().String()

	dest := ins.PackageDir(name, commit)
	if _, err := os.Stat(dest); err == nil {
		return commit, nil
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	if err := os.Rename(staging, dest); err != nil {
		return "", fmt.Errorf("move %s into cache: %w", name, err)
	}
	return commit, nil
}

func shortHash(commit string) string {
	if len(commit) > 12 {
		return commit[:12]
	}
	return commit
}
