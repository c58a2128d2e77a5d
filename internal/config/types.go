package config

import "matrixctl/internal/publish"

// Config is the top-level configuration structure for matrixctl.
type Config struct {
	// TmpRoot is where slices write their local result files before
	// publication.
	TmpRoot string `yaml:"tmpRoot,omitempty"`
	// ArtifactsDir is the shared directory the aggregation step reads
	// from (and the dir publisher writes to).
	ArtifactsDir string `yaml:"artifactsDir,omitempty"`
	// CatalogPath points at the environment enumeration: a line-oriented
	// listing, or a YAML matrix definition when it ends in .yaml/.yml.
	CatalogPath string `yaml:"catalogPath,omitempty"`

	Runner    RunnerConfig    `yaml:"runner"`
	Publisher PublisherConfig `yaml:"publisher"`
}

// RunnerConfig describes the external test runner command. The matched
// environment batch is appended after Args as a single argument.
type RunnerConfig struct {
	Command string   `yaml:"command,omitempty"`
	Args    []string `yaml:"args,omitempty"`
}

// PublisherType selects the result hand-off mechanism.
type PublisherType string

const (
	// PublisherDir copies records into ArtifactsDir.
	PublisherDir PublisherType = "dir"
	// PublisherS3 uploads records to an S3-compatible store.
	PublisherS3 PublisherType = "s3"
)

// PublisherConfig describes where published records go.
type PublisherConfig struct {
	Type PublisherType             `yaml:"type,omitempty"`
	S3   publish.ObjectStoreConfig `yaml:"s3,omitempty"`
}
