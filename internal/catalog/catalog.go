// Package catalog holds the declared enumeration of test environments and
// implements pattern-based selection over it.
//
// The catalog is externally maintained: either a line-oriented listing (one
// environment name per line) or a YAML matrix definition that expands into
// names. Environment names are opaque identifiers encoding runtime version,
// dependency variant and integration target, e.g. "py27-tracer" or
// "django_contrib-py36-django111". The catalog is read-only for the lifetime
// of a run.
package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// ErrEmptySelection is returned when a selection pattern matches no
// environment. An empty selection run against the test runner would
// trivially pass and mask a regressed pattern, so it is always surfaced as a
// failure, never treated as success.
var ErrEmptySelection = errors.New("no environments matched selection pattern")

// Catalog is the full, ordered enumeration of environment names for a run.
type Catalog struct {
	names []string
	index map[string]struct{}
}

// New builds a catalog from the given names, preserving their order and
// dropping duplicates and blank entries.
func New(names []string) *Catalog {
	c := &Catalog{index: make(map[string]struct{}, len(names))}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, exists := c.index[name]; exists {
			continue
		}
		c.index[name] = struct{}{}
		c.names = append(c.names, name)
	}
	return c
}

// Load reads a line-oriented catalog file. Blank lines and lines starting
// with '#' are ignored.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}

	c := New(names)
	if c.Len() == 0 {
		return nil, fmt.Errorf("catalog %s declares no environments", path)
	}
	return c, nil
}

// Names returns a copy of the environment names in catalog order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of declared environments.
func (c *Catalog) Len() int {
	return len(c.names)
}

// Contains reports whether the given environment is declared.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.index[name]
	return ok
}

// Select filters the catalog by a regular-expression pattern. Matching is a
// substring search against each name (not a full match), consistent with
// line-oriented filtering semantics. The result preserves catalog order.
// Returns ErrEmptySelection when nothing matches.
func (c *Catalog) Select(pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid selection pattern %q: %w", pattern, err)
	}

	var matched []string
	for _, name := range c.names {
		if re.MatchString(name) {
			matched = append(matched, name)
		}
	}
	if len(matched) == 0 {
		return nil, fmt.Errorf("pattern %q: %w", pattern, ErrEmptySelection)
	}
	return matched, nil
}
