package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MatrixFile is the YAML form of the catalog: a list of environment entries,
// each either named explicitly or described by its matrix axes.
type MatrixFile struct {
	Environments []MatrixEntry `yaml:"environments"`
}

// MatrixEntry declares one environment. When Name is set it is used verbatim;
// otherwise the name is composed from the non-empty axes as
// "<target>-<runtime>-<deps>" (e.g. target "django_contrib", runtime "py36",
// deps "django111" become "django_contrib-py36-django111").
type MatrixEntry struct {
	Name    string `yaml:"name,omitempty"`
	Runtime string `yaml:"runtime,omitempty"`
	Deps    string `yaml:"deps,omitempty"`
	Target  string `yaml:"target,omitempty"`
}

// EnvironmentName resolves the entry to its environment name.
func (e MatrixEntry) EnvironmentName() (string, error) {
	if e.Name != "" {
		return e.Name, nil
	}
	var parts []string
	for _, p := range []string{e.Target, e.Runtime, e.Deps} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("matrix entry declares neither a name nor any axes")
	}
	return strings.Join(parts, "-"), nil
}

// LoadMatrix reads a YAML matrix-definition file and expands it into a
// catalog.
func LoadMatrix(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read matrix definition %s: %w", path, err)
	}

	var matrix MatrixFile
	if err := yaml.Unmarshal(data, &matrix); err != nil {
		return nil, fmt.Errorf("failed to parse matrix definition %s: %w", path, err)
	}
	if len(matrix.Environments) == 0 {
		return nil, fmt.Errorf("matrix definition %s declares no environments", path)
	}

	names := make([]string, 0, len(matrix.Environments))
	for i, entry := range matrix.Environments {
		name, err := entry.EnvironmentName()
		if err != nil {
			return nil, fmt.Errorf("matrix definition %s, entry %d: %w", path, i, err)
		}
		names = append(names, name)
	}
	return New(names), nil
}
