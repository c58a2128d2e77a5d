package config

import (
	"os"
	"path/filepath"
)

// DefaultConfig returns the built-in configuration, before user and project
// overlays are applied.
func DefaultConfig() Config {
	return Config{
		TmpRoot:      filepath.Join(os.TempDir(), "matrixctl"),
		ArtifactsDir: filepath.Join(".matrixctl", "artifacts"),
		CatalogPath:  filepath.Join(".matrixctl", "environments"),
		Publisher: PublisherConfig{
			Type: PublisherDir,
		},
	}
}
