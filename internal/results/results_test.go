package results

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *Record {
	return &Record{
		Pattern:   "^py..-tracer$",
		Key:       "_py..-tracer_",
		StartTime: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, 8, 1, 12, 5, 0, 0, time.UTC),
		Environments: map[string]EnvironmentResult{
			"py36-tracer": {Outcome: OutcomePass, DurationMS: 90_000},
			"py27-tracer": {Outcome: OutcomeFail, Log: "assertion failed in test_span"},
		},
	}
}

func TestWriteAndReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "_py..-tracer_.results")
	require.NoError(t, WriteFile(path, sampleRecord()))

	rec, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "^py..-tracer$", rec.Pattern)
	assert.Equal(t, OutcomePass, rec.Environments["py36-tracer"].Outcome)
	assert.Equal(t, OutcomeFail, rec.Environments["py27-tracer"].Outcome)
	assert.Equal(t, []string{"py27-tracer", "py36-tracer"}, rec.EnvironmentNames())
}

func TestWriteFileReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "py27.results")
	require.NoError(t, WriteFile(path, &Record{Environments: map[string]EnvironmentResult{
		"py27-tracer": {Outcome: OutcomeError},
	}}))
	require.NoError(t, WriteFile(path, &Record{Environments: map[string]EnvironmentResult{
		"py27-tracer": {Outcome: OutcomePass},
	}}))

	rec, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, OutcomePass, rec.Environments["py27-tracer"].Outcome)

	// No temp files left behind by the replace.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFailed(t *testing.T) {
	rec := sampleRecord()
	assert.Equal(t, []string{"py27-tracer"}, rec.Failed())
}

func TestReadDirIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteFile(filepath.Join(dir, "b.results"), &Record{Pattern: "b", Environments: map[string]EnvironmentResult{"B": {Outcome: OutcomePass}}}))
	require.NoError(t, WriteFile(filepath.Join(dir, "a.results"), &Record{Pattern: "a", Environments: map[string]EnvironmentResult{"A": {Outcome: OutcomePass}}}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a record"), 0o644))

	records, err := ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Filename order.
	assert.Equal(t, "a", records[0].Pattern)
	assert.Equal(t, "b", records[1].Pattern)
}

func TestOutcomeValid(t *testing.T) {
	assert.True(t, OutcomePass.Valid())
	assert.True(t, OutcomeFail.Valid())
	assert.True(t, OutcomeError.Valid())
	assert.False(t, Outcome("skipped").Valid())
}
