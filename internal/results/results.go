// Package results defines the per-slice result record and its on-disk form.
//
// One record is written per slice at a deterministic path derived from the
// slice's selection pattern. Records are YAML documents; yaml.v3 emits
// string-keyed maps in key order, which keeps the environment map stable
// across writes. Records are immutable once written: the slice that produced
// a record owns it until the aggregation step consumes it.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"matrixctl/internal/sanitize"
)

// Outcome is the per-environment verdict reported by the external test
// runner.
type Outcome string

const (
	// OutcomePass indicates the environment's tests passed.
	OutcomePass Outcome = "pass"
	// OutcomeFail indicates the environment's tests failed.
	OutcomeFail Outcome = "fail"
	// OutcomeError indicates the environment could not be executed.
	OutcomeError Outcome = "error"
)

// Valid reports whether the outcome is one of the declared values.
func (o Outcome) Valid() bool {
	switch o {
	case OutcomePass, OutcomeFail, OutcomeError:
		return true
	}
	return false
}

// EnvironmentResult is the outcome for a single environment plus opaque
// metadata the runner chose to attach.
type EnvironmentResult struct {
	Outcome    Outcome           `yaml:"outcome"`
	DurationMS int64             `yaml:"duration_ms,omitempty"`
	Log        string            `yaml:"log,omitempty"`
	Metadata   map[string]string `yaml:"metadata,omitempty"`
}

// Record is one slice's result: the selection pattern that drove it (kept
// verbatim so lossy key sanitization stays auditable), the sanitized storage
// key, and the outcome per executed environment.
type Record struct {
	Pattern      string                       `yaml:"pattern,omitempty"`
	Key          string                       `yaml:"key,omitempty"`
	StartTime    time.Time                    `yaml:"start_time,omitempty"`
	EndTime      time.Time                    `yaml:"end_time,omitempty"`
	Environments map[string]EnvironmentResult `yaml:"environments"`
}

// EnvironmentNames returns the executed environment names in sorted order.
func (r *Record) EnvironmentNames() []string {
	names := make([]string, 0, len(r.Environments))
	for name := range r.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Failed returns the environments whose outcome is not pass, sorted.
func (r *Record) Failed() []string {
	var failed []string
	for name, res := range r.Environments {
		if res.Outcome != OutcomePass {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}

// WriteFile persists a record with atomic create-or-replace semantics
// (temp file in the target directory, then rename).
func WriteFile(path string, rec *Record) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal result record: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create result directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp result file in %s: %w", dir, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write result record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp result file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace result file %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a record from disk.
func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read result record %s: %w", path, err)
	}
	var rec Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to parse result record %s: %w", path, err)
	}
	return &rec, nil
}

// ReadDir loads every published result record in dir, in filename order.
// Files without the result extension are ignored.
func ReadDir(dir string) ([]*Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read results directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sanitize.ResultFileExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	records := make([]*Record, 0, len(names))
	for _, name := range names {
		rec, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}
