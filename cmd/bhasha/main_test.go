package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"

	"bhasha/interpreter-go/pkg/driver"
)

func captureCLI(t *testing.T, args []string) (int, string, string) {
	t.Helper()

	stdout := os.Stdout
	stderr := os.Stderr

	rOut, wOut, err := os.Pipe()
	if err != nil {
		t.Fatalf("stdout pipe: %v", err)
	}
	rErr, wErr, err := os.Pipe()
	if err != nil {
		t.Fatalf("stderr pipe: %v", err)
	}

	os.Stdout = wOut
	os.Stderr = wErr

	code := run(args)

	if err := wOut.Close(); err != nil {
		t.Fatalf("stdout close: %v", err)
	}
	if err := wErr.Close(); err != nil {
		t.Fatalf("stderr close: %v", err)
	}
	os.Stdout = stdout
	os.Stderr = stderr

	outBytes, err := io.ReadAll(rOut)
	if err != nil {
		t.Fatalf("read stdout: %v", err)
	}
	errBytes, err := io.ReadAll(rErr)
	if err != nil {
		t.Fatalf("read stderr: %v", err)
	}
	return code, string(outBytes), string(errBytes)
}

// chdir is a stand-in for t.Chdir, which needs Go 1.24+.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir %s: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("chdir back to %s: %v", prev, err)
		}
	})
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.TrimSpace(contents)+"\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestVersionFlag(t *testing.T) {
	code, stdout, _ := captureCLI(t, []string{"--version"})
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "bhasha") {
		t.Errorf("got %q", stdout)
	}
}

func TestNoArgumentsPrintsUsage(t *testing.T) {
	code, _, stderr := captureCLI(t, nil)
	if code == 0 {
		t.Fatal("expected nonzero exit")
	}
	if !strings.Contains(stderr, "Usage:") {
		t.Errorf("got %q", stderr)
	}
}

func TestRunSourceFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hello.bha")
	writeFile(t, path, `print("hello", 1 + 2);`)

	code, stdout, stderr := captureCLI(t, []string{"run", path})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if stdout != "hello 3\n" {
		t.Errorf("got %q", stdout)
	}
}

func TestRunReportsParseErrorWithLocation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.bha")
	writeFile(t, path, "banao x = ;")

	code, _, stderr := captureCLI(t, []string{"run", path})
	if code == 0 {
		t.Fatal("expected nonzero exit")
	}
	if !strings.Contains(stderr, "broken.bha:1:") {
		t.Errorf("missing location in %q", stderr)
	}
	if !strings.Contains(stderr, "expected expression") {
		t.Errorf("missing parse message in %q", stderr)
	}
}

func TestRunReportsRuntimeErrorWithCaret(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crash.bha")
	writeFile(t, path, "banao ok = 1;\nboom;")

	code, _, stderr := captureCLI(t, []string{"run", path})
	if code == 0 {
		t.Fatal("expected nonzero exit")
	}
	if !strings.Contains(stderr, "crash.bha:2:1") {
		t.Errorf("missing location in %q", stderr)
	}
	if !strings.Contains(stderr, "UndefinedVariable") {
		t.Errorf("missing error code in %q", stderr)
	}
	if !strings.Contains(stderr, "^") {
		t.Errorf("missing caret in %q", stderr)
	}
}

func TestRunDefaultManifestTarget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ManifestFileName), `
name: demo
targets:
  main:
    type: executable
    main: src/main.bha
`)
	writeFile(t, filepath.Join(root, "src", "main.bha"), `print("ran via manifest");`)
	chdir(t, root)

	code, stdout, stderr := captureCLI(t, []string{"run"})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "ran via manifest") {
		t.Errorf("got %q", stdout)
	}
}

func TestRunNamedManifestTarget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ManifestFileName), `
name: demo
targets:
  main:
    type: executable
    main: src/main.bha
  smoke:
    type: test
    main: tests/smoke.bha
`)
	writeFile(t, filepath.Join(root, "src", "main.bha"), `print("main");`)
	writeFile(t, filepath.Join(root, "tests", "smoke.bha"), `print("smoke passed");`)
	chdir(t, root)

	code, stdout, stderr := captureCLI(t, []string{"run", "smoke"})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "smoke passed") {
		t.Errorf("got %q", stdout)
	}
}

func TestRunUnknownTarget(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ManifestFileName), `
name: demo
targets:
  main:
    type: executable
    main: src/main.bha
`)
	writeFile(t, filepath.Join(root, "src", "main.bha"), `print("main");`)
	chdir(t, root)

	code, _, stderr := captureCLI(t, []string{"run", "missing"})
	if code == 0 {
		t.Fatal("expected nonzero exit")
	}
	if !strings.Contains(stderr, `no target "missing"`) {
		t.Errorf("got %q", stderr)
	}
}

func initDependencyRepo(t *testing.T, dir string) string {
	t.Helper()
	writeFile(t, filepath.Join(dir, "lib.bha"), "def helper() { return 1; }")
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}
	if _, err := worktree.Add("lib.bha"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	hash, err := worktree.Commit("init", &git.CommitOptions{
		Author: &object.Signature{
			Name:  "Bhasha CLI",
			Email: "bhasha@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	return hash.String()
}

func TestDepsInstallWritesLockfile(t *testing.T) {
	root := t.TempDir()
	depDir := filepath.Join(root, "mathlib")
	commit := initDependencyRepo(t, depDir)

	projectDir := filepath.Join(root, "app")
	writeFile(t, filepath.Join(projectDir, driver.ManifestFileName), `
name: app
targets:
  main:
    type: executable
    main: src/main.bha
dependencies:
  mathlib:
    git: `+depDir)
	writeFile(t, filepath.Join(projectDir, "src", "main.bha"), `print("ok");`)

	cacheDir := filepath.Join(root, "home")
	t.Setenv("BHASHA_HOME", cacheDir)
	chdir(t, projectDir)

	code, stdout, stderr := captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "mathlib: installed") {
		t.Errorf("got %q", stdout)
	}

	lock, err := driver.LoadLockfile(filepath.Join(projectDir, driver.LockFileName))
	if err != nil {
		t.Fatalf("LoadLockfile: %v", err)
	}
	pinned, ok := lock.Lookup("mathlib")
	if !ok || pinned.Commit != commit {
		t.Fatalf("got pin %+v, want %s", pinned, commit)
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "packages", "mathlib", commit, "lib.bha")); err != nil {
		t.Errorf("cache checkout missing: %v", err)
	}

	// A second install reuses the pinned checkout.
	code, stdout, stderr = captureCLI(t, []string{"deps", "install"})
	if code != 0 {
		t.Fatalf("second install exit %d (stderr: %q)", code, stderr)
	}
	if !strings.Contains(stdout, "using cached") || !strings.Contains(stdout, "already up to date") {
		t.Errorf("got %q", stdout)
	}
}

func TestDepsUpdateUnknownDependency(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, driver.ManifestFileName), `
name: app
targets:
  main:
    type: executable
    main: src/main.bha
`)
	writeFile(t, filepath.Join(root, "src", "main.bha"), `print("ok");`)
	t.Setenv("BHASHA_HOME", filepath.Join(root, "home"))
	chdir(t, root)

	code, _, stderr := captureCLI(t, []string{"deps", "update", "ghost"})
	if code == 0 {
		t.Fatal("expected nonzero exit")
	}
	if !strings.Contains(stderr, `"ghost" not declared`) {
		t.Errorf("got %q", stderr)
	}
}

func TestDepsRequiresSubcommand(t *testing.T) {
	code, _, stderr := captureCLI(t, []string{"deps"})
	if code == 0 {
		t.Fatal("expected nonzero exit")
	}
	if !strings.Contains(stderr, "install or update") {
		t.Errorf("got %q", stderr)
	}
}

func TestExampleProgramsRun(t *testing.T) {
	cases := map[string]string{
		"factorial.bha": "120\n120\n",
		"counter.bha":   "3\n1\n",
	}
	for name, want := range cases {
		path := filepath.Join("..", "..", "examples", name)
		code, stdout, stderr := captureCLI(t, []string{"run", path})
		if code != 0 {
			t.Fatalf("%s: exit %d (stderr: %q)", name, code, stderr)
		}
		if stdout != want {
			t.Errorf("%s: got %q, want %q", name, stdout, want)
		}
	}
}

func TestFizzbuzzExample(t *testing.T) {
	path := filepath.Join("..", "..", "examples", "fizzbuzz.bha")
	code, stdout, stderr := captureCLI(t, []string{"run", path})
	if code != 0 {
		t.Fatalf("exit %d (stderr: %q)", code, stderr)
	}
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	if len(lines) != 15 {
		t.Fatalf("got %d lines", len(lines))
	}
	if lines[2] != "fizz" || lines[4] != "buzz" || lines[14] != "fizzbuzz" {
		t.Errorf("got lines %v", lines)
	}
}
