package driver

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLockfileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockFileName)
	lock := NewLockfile()
	lock.Pin("mathlib", "https://example.com/mathlib.git", "aaaabbbbccccddddeeeeffff0000111122223333")
	lock.Pin("strutil", "https://example.com/strutil.git", "1111222233334444555566667777888899990000")
	if err := lock.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	if loaded.Version != 1 {
		t.Errorf("got version %d", loaded.Version)
	}
	pkg, ok := loaded.Lookup("mathlib")
	if !ok {
		t.Fatal("mathlib not pinned after round trip")
	}
	if pkg.Commit != "aaaabbbbccccddddeeeeffff0000111122223333" {
		t.Errorf("got commit %q", pkg.Commit)
	}
}

func TestLoadLockfileMissingYieldsEmpty(t *testing.T) {
	lock, err := LoadLockfile(filepath.Join(t.TempDir(), LockFileName))
	if err != nil {
		t.Fatalf("missing lockfile should not be an error: %v", err)
	}
	if len(lock.Pinned) != 0 {
		t.Errorf("got %d pinned entries", len(lock.Pinned))
	}
}

func TestLoadLockfileRejectsNewerVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), LockFileName)
	if err := os.WriteFile(path, []byte("version: 99\npinned: {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadLockfile(path); err == nil {
		t.Fatal("future lockfile version accepted")
	}
}

func TestPinReplacesExistingEntry(t *testing.T) {
	lock := NewLockfile()
	lock.Pin("dep", "https://example.com/dep.git", "old")
	lock.Pin("dep", "https://example.com/dep.git", "new")
	pkg, _ := lock.Lookup("dep")
	if pkg.Commit != "new" {
		t.Errorf("got %q", pkg.Commit)
	}
}
