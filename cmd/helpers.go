package cmd

import (
	"errors"
	"fmt"
	"strings"

	"matrixctl/internal/catalog"
	"matrixctl/internal/config"
	"matrixctl/internal/publish"
	"matrixctl/internal/runner"
)

// Exit codes beyond the generic failure, so CI can tell orchestration
// defects apart from test failures. The external runner's own status is
// propagated verbatim and therefore not listed here.
const (
	exitEmptySelection = 3
	exitPublishFailure = 4
)

// exitCodeFor maps an error to the process exit status for the slice
// commands.
func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, catalog.ErrEmptySelection):
		return exitEmptySelection
	case errors.Is(err, publish.ErrPublish):
		return exitPublishFailure
	default:
		return runner.ExitStatus(err, 1)
	}
}

// loadCatalog reads the catalog from path, treating .yaml/.yml files as
// matrix definitions and anything else as a line-oriented listing.
func loadCatalog(path string) (*catalog.Catalog, error) {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return catalog.LoadMatrix(path)
	}
	return catalog.Load(path)
}

// buildPublisher constructs the configured publisher, defaulting to the
// artifacts-directory hand-off.
func buildPublisher(cfg config.Config) (publish.Publisher, error) {
	switch cfg.Publisher.Type {
	case config.PublisherDir, "":
		return publish.NewDirPublisher(cfg.ArtifactsDir), nil
	case config.PublisherS3:
		return publish.NewObjectStorePublisher(cfg.Publisher.S3)
	default:
		return nil, fmt.Errorf("unknown publisher type %q", cfg.Publisher.Type)
	}
}

// buildInvoker constructs the external runner invoker from configuration.
func buildInvoker(cfg config.Config) (*runner.ExecInvoker, error) {
	if cfg.Runner.Command == "" {
		return nil, errors.New("no test runner configured (set runner.command in .matrixctl/config.yaml or pass --runner)")
	}
	return &runner.ExecInvoker{
		Command: cfg.Runner.Command,
		Args:    cfg.Runner.Args,
	}, nil
}
