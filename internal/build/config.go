package build

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadProject loads a Project descriptor from a YAML file. This is ambient
// test/fixture tooling (spec.md §6 explicitly leaves project-file loading
// to the out-of-scope CLI front end).
func LoadProject(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	var p Project
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse project YAML: %w", err)
	}

	if p.Src == "" {
		return nil, fmt.Errorf("project missing required field: src")
	}
	if p.Out == "" {
		return nil, fmt.Errorf("project missing required field: out")
	}
	if p.Bin == "" {
		p.Bin = "bin"
	}
	if err := p.Resolve(); err != nil {
		return nil, err
	}

	return &p, nil
}

// LoadLibrarySet loads a LibrarySet manifest from a YAML file.
func LoadLibrarySet(path string) (*LibrarySet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library set file: %w", err)
	}

	var s LibrarySet
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse library set YAML: %w", err)
	}
	return &s, nil
}
