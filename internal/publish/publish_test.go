package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirPublisherCopiesRecord(t *testing.T) {
	src := filepath.Join(t.TempDir(), "_py..-tracer_.results")
	require.NoError(t, os.WriteFile(src, []byte("environments:\n  py27-tracer:\n    outcome: pass\n"), 0o644))

	dest := t.TempDir()
	p := NewDirPublisher(filepath.Join(dest, "artifacts"))
	require.NoError(t, p.Publish(context.Background(), src, "_py..-tracer_"))

	data, err := os.ReadFile(filepath.Join(dest, "artifacts", "_py..-tracer_.results"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "py27-tracer")
}

func TestDirPublisherReplacesExisting(t *testing.T) {
	srcDir := t.TempDir()
	artifacts := t.TempDir()
	p := NewDirPublisher(artifacts)

	first := filepath.Join(srcDir, "a.results")
	require.NoError(t, os.WriteFile(first, []byte("first"), 0o644))
	require.NoError(t, p.Publish(context.Background(), first, "slice"))

	second := filepath.Join(srcDir, "b.results")
	require.NoError(t, os.WriteFile(second, []byte("second"), 0o644))
	require.NoError(t, p.Publish(context.Background(), second, "slice"))

	data, err := os.ReadFile(filepath.Join(artifacts, "slice.results"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(artifacts)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "replace must not leave temp files behind")
}

func TestDirPublisherMissingSourceIsFatal(t *testing.T) {
	p := NewDirPublisher(t.TempDir())
	err := p.Publish(context.Background(), filepath.Join(t.TempDir(), "missing.results"), "key")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPublish))
}

func TestDirPublisherCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewDirPublisher(t.TempDir())
	err := p.Publish(ctx, "irrelevant", "key")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPublish))
}

func TestObjectStoreConfigValidate(t *testing.T) {
	valid := ObjectStoreConfig{
		Endpoint:  "localhost:9000",
		AccessKey: "a",
		SecretKey: "b",
		Region:    "us-east-1",
		Bucket:    "matrix-results",
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*ObjectStoreConfig)
	}{
		{"missing endpoint", func(c *ObjectStoreConfig) { c.Endpoint = "" }},
		{"scheme in endpoint", func(c *ObjectStoreConfig) { c.Endpoint = "http://localhost:9000" }},
		{"missing access key", func(c *ObjectStoreConfig) { c.AccessKey = " " }},
		{"missing secret key", func(c *ObjectStoreConfig) { c.SecretKey = "" }},
		{"missing bucket", func(c *ObjectStoreConfig) { c.Bucket = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestNewObjectStorePublisherRejectsInvalidConfig(t *testing.T) {
	_, err := NewObjectStorePublisher(ObjectStoreConfig{})
	assert.Error(t, err)
}
