package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeduplicatesAndPreservesOrder(t *testing.T) {
	c := New([]string{"py27-tracer", "py36-tracer", "py27-tracer", "", "  ", "py27-internal"})

	assert.Equal(t, []string{"py27-tracer", "py36-tracer", "py27-internal"}, c.Names())
	assert.Equal(t, 3, c.Len())
	assert.True(t, c.Contains("py36-tracer"))
	assert.False(t, c.Contains("py35-tracer"))
}

func TestSelectPreservesCatalogOrder(t *testing.T) {
	c := New([]string{"py27-tracer", "py36-tracer", "py27-internal"})

	matched, err := c.Select("^py..-tracer$")
	require.NoError(t, err)
	assert.Equal(t, []string{"py27-tracer", "py36-tracer"}, matched)
}

func TestSelectSubstringSemantics(t *testing.T) {
	c := New([]string{"django_contrib-py36-django111", "py36-tracer", "py27-internal"})

	// An unanchored pattern matches anywhere in the name.
	matched, err := c.Select("py36")
	require.NoError(t, err)
	assert.Equal(t, []string{"django_contrib-py36-django111", "py36-tracer"}, matched)
}

func TestSelectEmptySelection(t *testing.T) {
	c := New([]string{"py27-tracer", "py36-tracer", "py27-internal"})

	matched, err := c.Select("nomatch")
	assert.Nil(t, matched)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptySelection))
	assert.Contains(t, err.Error(), "nomatch")
}

func TestSelectInvalidPattern(t *testing.T) {
	c := New([]string{"py27-tracer"})

	_, err := c.Select("py27-(")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrEmptySelection))
	assert.Contains(t, err.Error(), "invalid selection pattern")
}

func TestLoadParsesLineOrientedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "environments")
	content := "# test matrix\npy27-tracer\n\npy36-tracer\n  py27-internal  \n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"py27-tracer", "py36-tracer", "py27-internal"}, c.Names())
}

func TestLoadEmptyCatalogFails(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "environments")
	require.NoError(t, os.WriteFile(path, []byte("# only comments\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
