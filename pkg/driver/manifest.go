// Package driver handles the project-level concerns around running bhasha
// code: the package.yml manifest, the package.lock lockfile, and installing
// git dependencies into the local cache.
package driver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ManifestFileName is the file the driver looks for when resolving a
// project root.
const ManifestFileName = "package.yml"

// Manifest is the parsed, validated contents of package.yml.
type Manifest struct {
	Path         string
	Name         string
	Version      string
	Authors      []string
	Targets      []*TargetSpec
	Dependencies map[string]*DependencySpec
}

// TargetSpec names a runnable entry point. Main is the .bha file relative to
// the manifest directory.
type TargetSpec struct {
	Name string
	Type TargetType
	Main string
}

// TargetType enumerates supported target kinds.
type TargetType string

const (
	TargetTypeExecutable TargetType = "executable"
	TargetTypeTest       TargetType = "test"
)

func (t TargetType) isValid() bool {
	return t == TargetTypeExecutable || t == TargetTypeTest
}

// DependencySpec describes one git-sourced dependency. Exactly one of Rev,
// Tag, or Branch may pin the checkout; an unpinned dependency follows the
// remote default branch.
type DependencySpec struct {
	Git    string
	Rev    string
	Tag    string
	Branch string
}

func (d *DependencySpec) pinCount() int {
	n := 0
	for _, pin := range []string{d.Rev, d.Tag, d.Branch} {
		if pin != "" {
			n++
		}
	}
	return n
}

// ValidationError aggregates every manifest problem found in one pass so the
// user fixes them together instead of one at a time.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	if len(e.Issues) == 0 {
		return "manifest: invalid configuration"
	}
	var b strings.Builder
	b.WriteString("manifest validation failed:")
	for _, issue := range e.Issues {
		b.WriteString("\n- ")
		b.WriteString(issue)
	}
	return b.String()
}

// ErrManifestNotFound is returned when no package.yml exists between the
// starting directory and the filesystem root.
var ErrManifestNotFound = errors.New("no " + ManifestFileName + " found")

// FindManifest walks upward from dir looking for package.yml and returns its
// path.
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%w in %s or any parent directory", ErrManifestNotFound, dir)
		}
		dir = parent
	}
}

// LoadManifest parses and validates package.yml from disk. Unknown fields
// are rejected so typos fail loudly.
func LoadManifest(path string) (*Manifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: resolve %s: %w", path, err)
	}
	file, err := os.Open(absPath)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", absPath, err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var raw manifestFile
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("manifest: %s is empty", absPath)
		}
		return nil, fmt.Errorf("manifest: parse %s: %w", absPath, err)
	}

	manifest := raw.toManifest(absPath)
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return manifest, nil
}

// Dir returns the directory containing the manifest; target mains and path
// resolution are relative to it.
func (m *Manifest) Dir() string {
	return filepath.Dir(m.Path)
}

// DefaultTarget returns the first executable target in manifest order.
func (m *Manifest) DefaultTarget() (*TargetSpec, error) {
	for _, target := range m.Targets {
		if target.Type == TargetTypeExecutable {
			return target, nil
		}
	}
	return nil, fmt.Errorf("manifest: %s defines no executable target", m.Name)
}

// FindTarget looks up a target by name.
func (m *Manifest) FindTarget(name string) (*TargetSpec, bool) {
	name = strings.TrimSpace(name)
	for _, target := range m.Targets {
		if target.Name == name {
			return target, true
		}
	}
	return nil, false
}

func (m *Manifest) validate() error {
	var errs ValidationError
	if m.Name == "" {
		errs.Issues = append(errs.Issues, "name must be provided")
	}
	for i, author := range m.Authors {
		if author == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("authors[%d] must be a non-empty string", i))
		}
	}

	seen := make(map[string]struct{}, len(m.Targets))
	for _, target := range m.Targets {
		if _, dup := seen[target.Name]; dup {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q is declared twice", target.Name))
		}
		seen[target.Name] = struct{}{}
		if !target.Type.isValid() {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q has unsupported type %q", target.Name, target.Type))
		}
		if target.Main == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q requires a main entrypoint", target.Name))
		} else if !strings.HasSuffix(target.Main, SourceExtension) {
			errs.Issues = append(errs.Issues, fmt.Sprintf("target %q: main %q is not a %s file", target.Name, target.Main, SourceExtension))
		}
	}

	for name, dep := range m.Dependencies {
		if dep.Git == "" {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: git url must be provided", name))
		}
		if dep.pinCount() > 1 {
			errs.Issues = append(errs.Issues, fmt.Sprintf("dependencies.%s: rev, tag, and branch are mutually exclusive", name))
		}
	}

	if len(errs.Issues) > 0 {
		return &errs
	}
	return nil
}

// SourceExtension is the file extension bhasha scripts carry.
const SourceExtension = ".bha"

type manifestFile struct {
	Name         string              `yaml:"name"`
	Version      string              `yaml:"version"`
	Authors      stringList          `yaml:"authors"`
	Targets      targetMap           `yaml:"targets"`
	Dependencies map[string]*depYAML `yaml:"dependencies"`
}

type targetYAML struct {
	Type TargetType `yaml:"type"`
	Main string     `yaml:"main"`
}

type depYAML struct {
	Git    string `yaml:"git"`
	Rev    string `yaml:"rev"`
	Tag    string `yaml:"tag"`
	Branch string `yaml:"branch"`
}

// targetMap preserves declaration order, which map decoding would lose; the
// first executable target in the file is the default run target.
type targetMap struct {
	items []targetMapEntry
}

type targetMapEntry struct {
	name string
	spec *targetYAML
}

func (tm *targetMap) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == 0 || (value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
		tm.items = nil
		return nil
	}
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("manifest: targets must be a mapping")
	}
	items := make([]targetMapEntry, 0, len(value.Content)/2)
	for i := 0; i < len(value.Content); i += 2 {
		keyNode := value.Content[i]
		valueNode := value.Content[i+1]

		var key string
		if err := keyNode.Decode(&key); err != nil {
			return err
		}
		key = strings.TrimSpace(key)
		if key == "" {
			return fmt.Errorf("manifest: targets must not use empty keys")
		}
		entry := new(targetYAML)
		if err := valueNode.Decode(entry); err != nil {
			return fmt.Errorf("manifest: target %q: %w", key, err)
		}
		items = append(items, targetMapEntry{name: key, spec: entry})
	}
	tm.items = items
	return nil
}

type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" || strings.TrimSpace(value.Value) == "" {
			*l = nil
			return nil
		}
		*l = stringList{strings.TrimSpace(value.Value)}
		return nil
	case yaml.SequenceNode:
		items := make([]string, 0, len(value.Content))
		for _, node := range value.Content {
			var str string
			if err := node.Decode(&str); err != nil {
				return err
			}
			items = append(items, strings.TrimSpace(str))
		}
		*l = stringList(items)
		return nil
	case 0:
		*l = nil
		return nil
	default:
		return fmt.Errorf("manifest: expected string or sequence for list, found %s", value.ShortTag())
	}
}

func (mf manifestFile) toManifest(path string) *Manifest {
	result := &Manifest{
		Path:         path,
		Name:         strings.TrimSpace(mf.Name),
		Version:      strings.TrimSpace(mf.Version),
		Authors:      mf.Authors,
		Dependencies: make(map[string]*DependencySpec, len(mf.Dependencies)),
	}
	for _, item := range mf.Targets.items {
		if item.spec == nil {
			continue
		}
		result.Targets = append(result.Targets, &TargetSpec{
			Name: item.name,
			Type: item.spec.Type,
			Main: strings.TrimSpace(item.spec.Main),
		})
	}
	for name, dep := range mf.Dependencies {
		if dep == nil {
			continue
		}
		result.Dependencies[strings.TrimSpace(name)] = &DependencySpec{
			Git:    strings.TrimSpace(dep.Git),
			Rev:    strings.TrimSpace(dep.Rev),
			Tag:    strings.TrimSpace(dep.Tag),
			Branch: strings.TrimSpace(dep.Branch),
		}
	}
	return result
}
