// Package runner executes one slice of the test matrix: it selects the
// environments matching the slice's pattern, derives the deterministic
// result-file path, and invokes the external test runner once with the whole
// batch. The runner never retries; a flaky test suite is the external
// runner's concern, and its exit status is propagated verbatim.
package runner

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"matrixctl/internal/catalog"
	"matrixctl/internal/results"
	"matrixctl/internal/sanitize"
	"matrixctl/pkg/logging"
)

// Invoker is the external test-execution collaborator. Given the ordered
// batch of environment names it executes each one and persists a result
// record at resultPath. The record is written incrementally, so a failing
// invocation may still leave a partial record behind: environments that
// completed before the failure keep their outcomes and are not re-reported
// as missing by the aggregation step.
type Invoker interface {
	Invoke(ctx context.Context, pattern string, environments []string, resultPath string) error
}

// Runner drives a single slice end to end.
type Runner struct {
	catalog *catalog.Catalog
	invoker Invoker
	tmpRoot string
	logger  *zap.Logger
}

// New creates a slice runner writing result files under tmpRoot.
func New(cat *catalog.Catalog, invoker Invoker, tmpRoot string) *Runner {
	return &Runner{
		catalog: cat,
		invoker: invoker,
		tmpRoot: tmpRoot,
		logger:  logging.Named("runner"),
	}
}

// Run executes the slice for the given selection pattern:
//
//  1. select the matching environments (fails fast with
//     catalog.ErrEmptySelection when nothing matches; no result file is
//     written in that case),
//  2. sanitize the original pattern into the result-file key,
//  3. invoke the external runner once with the whole batch,
//  4. load whatever record the runner persisted.
//
// On invoker failure the partial record (if any) is returned together with
// the error so the caller can still publish it.
func (r *Runner) Run(ctx context.Context, pattern string) (*results.Record, error) {
	matched, err := r.catalog.Select(pattern)
	if err != nil {
		return nil, err
	}

	key := sanitize.Key(pattern)
	resultPath := sanitize.ResultFileName(r.tmpRoot, pattern)
	if err := os.MkdirAll(r.tmpRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create result root %s: %w", r.tmpRoot, err)
	}

	r.logger.Info("running slice",
		zap.String("pattern", pattern),
		zap.String("key", key),
		zap.Int("environments", len(matched)),
		zap.String("result_path", resultPath))

	start := time.Now()
	invokeErr := r.invoker.Invoke(ctx, pattern, matched, resultPath)

	rec, readErr := results.ReadFile(resultPath)
	if invokeErr != nil {
		if readErr != nil {
			// Nothing was persisted before the failure; the slice's
			// environments will surface as missing at aggregation time.
			return nil, fmt.Errorf("test runner failed and left no result record: %w", invokeErr)
		}
		r.annotate(rec, pattern, key, start)
		r.logger.Warn("test runner failed, keeping partial record",
			zap.String("pattern", pattern),
			zap.Int("recorded", len(rec.Environments)),
			zap.Error(invokeErr))
		return rec, invokeErr
	}
	if readErr != nil {
		return nil, fmt.Errorf("test runner succeeded but the result record is unreadable: %w", readErr)
	}

	r.annotate(rec, pattern, key, start)
	if err := r.validate(rec, matched); err != nil {
		return rec, err
	}

	r.logger.Info("slice complete",
		zap.String("pattern", pattern),
		zap.Int("environments", len(rec.Environments)),
		zap.Strings("failed", rec.Failed()))
	return rec, nil
}

// annotate fills in audit fields the external runner may have omitted. The
// on-disk file is left untouched; publication is a pure hand-off.
func (r *Runner) annotate(rec *results.Record, pattern, key string, start time.Time) {
	if rec.Pattern == "" {
		rec.Pattern = pattern
	}
	if rec.Key == "" {
		rec.Key = key
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = start
	}
	if rec.EndTime.IsZero() {
		rec.EndTime = time.Now()
	}
}

// validate checks the record invariant for a successful run: its keys are
// exactly the environments matched by this slice's pattern.
func (r *Runner) validate(rec *results.Record, matched []string) error {
	want := make(map[string]struct{}, len(matched))
	for _, name := range matched {
		want[name] = struct{}{}
	}
	for name := range rec.Environments {
		if _, ok := want[name]; !ok {
			return fmt.Errorf("result record reports environment %q that the pattern did not select", name)
		}
	}
	for _, name := range matched {
		if _, ok := rec.Environments[name]; !ok {
			return fmt.Errorf("result record is missing selected environment %q", name)
		}
	}
	return nil
}
