// Command bhasha runs bhasha programs: directly from .bha files, or through
// a package.yml manifest, with `deps` subcommands for managing git
// dependencies.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bhasha/interpreter-go/pkg/diagnostic"
	"bhasha/interpreter-go/pkg/driver"
	"bhasha/interpreter-go/pkg/interpreter"
	"bhasha/interpreter-go/pkg/parser"
)

const cliToolVersion = "bhasha 0.1.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return 1
	}
	switch args[0] {
	case "--help", "-h", "help":
		printUsage(os.Stdout)
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "run":
		return runEntry(args[1:])
	case "deps":
		return runDeps(args[1:])
	default:
		return runEntry(args)
	}
}

func printUsage(w *os.File) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  bhasha run <file"+driver.SourceExtension+">   execute a source file")
	fmt.Fprintln(w, "  bhasha run [target]      execute a manifest target (default: first executable)")
	fmt.Fprintln(w, "  bhasha deps install      install dependencies pinned by package.lock")
	fmt.Fprintln(w, "  bhasha deps update [dep ...]   re-resolve all or named dependencies")
	fmt.Fprintln(w, "  bhasha --version         print the tool version")
}

func runEntry(args []string) int {
	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
		return 1
	}

	if len(args) == 1 && strings.HasSuffix(args[0], driver.SourceExtension) {
		return executeFile(args[0])
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	manifestPath, err := driver.FindManifest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}

	var target *driver.TargetSpec
	if len(args) == 1 {
		found, ok := manifest.FindTarget(args[0])
		if !ok {
			fmt.Fprintf(os.Stderr, "manifest %s defines no target %q\n", manifest.Path, args[0])
			return 1
		}
		target = found
	} else {
		dflt, err := manifest.DefaultTarget()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		target = dflt
	}
	return executeFile(filepath.Join(manifest.Dir(), target.Main))
}

// executeFile parses and evaluates one source file, rendering any diagnostic
// against the original source text.
func executeFile(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read %s: %v\n", path, err)
		return 1
	}
	source := string(data)
	name := filepath.Base(path)

	program, err := parser.Parse(source)
	if err != nil {
		fmt.Fprintln(os.Stderr, diagnostic.Render(err, name, source))
		return 1
	}

	interp := interpreter.New()
	interp.SetOutput(os.Stdout)
	if _, err := interp.EvaluateProgram(program); err != nil {
		fmt.Fprintln(os.Stderr, diagnostic.Render(err, name, source))
		return 1
	}
	return 0
}

func runDeps(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "deps requires a subcommand: install or update")
		return 1
	}
	switch args[0] {
	case "install":
		if len(args) > 1 {
			fmt.Fprintf(os.Stderr, "unexpected arguments: %s\n", strings.Join(args[1:], " "))
			return 1
		}
		return runDepsSync(nil, false)
	case "update":
		return runDepsSync(args[1:], true)
	default:
		fmt.Fprintf(os.Stderr, "unknown deps subcommand %q\n", args[0])
		return 1
	}
}

// runDepsSync installs dependencies. In update mode the named pins (or all
// of them) are dropped first so they re-resolve against the remotes.
func runDepsSync(updateTargets []string, update bool) int {
	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to determine working directory: %v\n", err)
		return 1
	}
	manifestPath, err := driver.FindManifest(cwd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	manifest, err := driver.LoadManifest(manifestPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read manifest: %v\n", err)
		return 1
	}
	cacheDir, err := resolveBhashaHome()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve BHASHA_HOME: %v\n", err)
		return 1
	}

	lockPath := driver.LockfilePath(manifest.Path)
	lock, err := driver.LoadLockfile(lockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	if update {
		if len(updateTargets) == 0 {
			lock.Pinned = map[string]*driver.LockedPackage{}
		} else {
			for _, name := range updateTargets {
				if _, declared := manifest.Dependencies[name]; !declared {
					fmt.Fprintf(os.Stderr, "dependency %q not declared in manifest\n", name)
					return 1
				}
				delete(lock.Pinned, name)
			}
		}
	}

	fmt.Fprintf(os.Stdout, "Manifest: %s\n", manifest.Path)
	fmt.Fprintf(os.Stdout, "Dependencies: %d\n", len(manifest.Dependencies))
	fmt.Fprintf(os.Stdout, "Cache directory: %s\n", cacheDir)

	installer := driver.NewInstaller(manifest, cacheDir)
	changed, logs, err := installer.Install(lock)
	for _, line := range logs {
		fmt.Fprintln(os.Stdout, line)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve dependencies: %v\n", err)
		return 1
	}

	if changed {
		if err := lock.Save(lockPath); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		fmt.Fprintf(os.Stdout, "Updated %s\n", lockPath)
	} else {
		fmt.Fprintf(os.Stdout, "%s already up to date\n", driver.LockFileName)
	}
	return 0
}

// resolveBhashaHome returns the cache root, honoring the BHASHA_HOME
// override.
func resolveBhashaHome() (string, error) {
	if home := strings.TrimSpace(os.Getenv("BHASHA_HOME")); home != "" {
		return filepath.Abs(home)
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New("BHASHA_HOME is unset and no home directory is available")
	}
	return filepath.Join(userHome, ".bhasha"), nil
}
