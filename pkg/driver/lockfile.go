package driver

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LockFileName sits next to package.yml and records the exact commit each
// dependency resolved to.
const LockFileName = "package.lock"

// Lockfile pins every dependency of a manifest to a commit hash. Installing
// with a lockfile present reproduces the same tree; updating rewrites it.
type Lockfile struct {
	Version int                       `yaml:"version"`
	Pinned  map[string]*LockedPackage `yaml:"pinned"`
}

// LockedPackage records where a dependency came from and the commit it was
// checked out at.
type LockedPackage struct {
	Git    string `yaml:"git"`
	Commit string `yaml:"commit"`
}

const lockfileVersion = 1

// NewLockfile returns an empty lockfile at the current format version.
func NewLockfile() *Lockfile {
	return &Lockfile{Version: lockfileVersion, Pinned: make(map[string]*LockedPackage)}
}

// LockfilePath returns the lockfile location for a manifest path.
func LockfilePath(manifestPath string) string {
	return filepath.Join(filepath.Dir(manifestPath), LockFileName)
}

// LoadLockfile reads package.lock. A missing file is not an error; it yields
// an empty lockfile so first installs need no special casing.
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewLockfile(), nil
		}
		return nil, fmt.Errorf("lockfile: read %s: %w", path, err)
	}
	var lock Lockfile
	if err := yaml.Unmarshal(data, &lock); err != nil {
		return nil, fmt.Errorf("lockfile: parse %s: %w", path, err)
	}
	if lock.Version > lockfileVersion {
		return nil, fmt.Errorf("lockfile: %s has version %d, newer than supported %d", path, lock.Version, lockfileVersion)
	}
	if lock.Pinned == nil {
		lock.Pinned = make(map[string]*LockedPackage)
	}
	return &lock, nil
}

// Save writes the lockfile. yaml.v3 emits map keys in sorted order, so the
// file diffs cleanly under version control.
func (l *Lockfile) Save(path string) error {
	data, err := yaml.Marshal(l)
	if err != nil {
		return fmt.Errorf("lockfile: encode: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("lockfile: write %s: %w", path, err)
	}
	return nil
}

// Pin records or replaces the entry for one dependency.
func (l *Lockfile) Pin(name, gitURL, commit string) {
	l.Pinned[name] = &LockedPackage{Git: gitURL, Commit: commit}
}

// Lookup returns the pinned entry for a dependency, if any.
func (l *Lockfile) Lookup(name string) (*LockedPackage, bool) {
	pkg, ok := l.Pinned[name]
	return pkg, ok
}
