// Package devshell discovers the development shells a repository declares.
package devshell

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runoshun/agent-task/internal/domain"
)

// flake attribute paths of the form devShells.<system>.<name> = ...
var flakeShellPattern = regexp.MustCompile(`devShells\.[^.\s]+\.([A-Za-z0-9._-]+)\s*=`)

// File is the schema of .agents/devshells.yaml.
type File struct {
	Devshells []Entry `yaml:"devshells"`
}

// Entry is a single declared shell.
type Entry struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// Catalog implements domain.DevshellCatalog.
type Catalog struct {
	root string
}

// Ensure Catalog implements domain.DevshellCatalog interface.
var _ domain.DevshellCatalog = (*Catalog)(nil)

// New creates a catalog for the repository at root.
func New(root string) *Catalog {
	return &Catalog{root: root}
}

// Names returns the sorted, de-duplicated shell names declared in
// flake.nix and .agents/devshells.yaml.
func (c *Catalog) Names() ([]string, error) {
	seen := make(map[string]struct{})
	declared := false

	flake, err := readOptional(filepath.Join(c.root, domain.FlakeFile))
	if err != nil {
		return nil, err
	}
	if flake != nil {
		declared = true
		for _, name := range ParseFlake(string(flake)) {
			seen[name] = struct{}{}
		}
	}

	data, err := readOptional(domain.DevshellsPath(c.root))
	if err != nil {
		return nil, err
	}
	if data != nil {
		declared = true
		names, err := ParseYAML(data)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", domain.DevshellsFile, err)
		}
		for _, name := range names {
			seen[name] = struct{}{}
		}
	}

	if !declared {
		return nil, domain.ErrNoDevshells
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// ParseFlake extracts shell names from flake.nix source in order of appearance.
func ParseFlake(src string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range flakeShellPattern.FindAllStringSubmatch(src, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// ParseYAML extracts shell names from a devshells.yaml document.
func ParseYAML(data []byte) ([]string, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Devshells))
	for i, e := range f.Devshells {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("devshells[%d]: name is required", i)
		}
		names = append(names, name)
	}
	return names, nil
}

func readOptional(path string) ([]byte, error) {
	data, err := os.ReadFile(path) //nolint:gosec // repository file
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}
