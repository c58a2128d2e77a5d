package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"matrixctl/internal/aggregate"
	"matrixctl/internal/catalog"
	"matrixctl/internal/publish"
	"matrixctl/internal/reporting"
	"matrixctl/internal/results"
	"matrixctl/internal/runner"
	"matrixctl/internal/sanitize"
	"matrixctl/pkg/logging"
)

// Options configures a local fan-out run.
type Options struct {
	Catalog      *catalog.Catalog
	Patterns     []string
	Parallel     int
	TmpRoot      string
	ArtifactsDir string
	Invoker      runner.Invoker
	Publisher    publish.Publisher
	Reporter     reporting.Reporter
	// Gate is the shared upstream prerequisite (lint/build). When set, no
	// slice starts until it succeeds. Optional.
	Gate func(ctx context.Context) error
}

// Orchestrator executes every slice of a pattern set and finishes with the
// completeness check over the published records.
type Orchestrator struct {
	opts   Options
	logger *zap.Logger
	report *aggregate.Report
}

// New validates opts and builds an orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Catalog == nil || opts.Catalog.Len() == 0 {
		return nil, errors.New("a non-empty catalog is required")
	}
	if len(opts.Patterns) == 0 {
		return nil, errors.New("at least one selection pattern is required")
	}
	if opts.Invoker == nil {
		return nil, errors.New("a test runner invoker is required")
	}
	if opts.Publisher == nil {
		return nil, errors.New("a result publisher is required")
	}
	if opts.Parallel < 1 {
		opts.Parallel = 1
	}
	if opts.Reporter == nil {
		opts.Reporter = reporting.NewQuietReporter(nil)
	}
	return &Orchestrator{opts: opts, logger: logging.Named("orchestrator")}, nil
}

// Report returns the completeness report of the last Run, nil before.
func (o *Orchestrator) Report() *aggregate.Report {
	return o.report
}

// Run builds and executes the task graph:
//
//	gate --require--> slice[i] --barrier--> aggregate
//
// Slices run in parallel, bounded by Parallel; a failed or cancelled slice
// still releases the barrier and its environments show up as missing in the
// final report. Run returns the joined errors of every failed task, plus the
// completeness violation when the ledger does not match the catalog.
func (o *Orchestrator) Run(ctx context.Context) (*aggregate.Report, error) {
	graph := NewGraph()
	barrier := NewBarrier(len(o.opts.Patterns))

	// Bounded fan-out. Acquired inside the task body so that waiting on
	// the gate does not consume a slot.
	sem := make(chan struct{}, o.opts.Parallel)

	if err := graph.Add(&Task{Name: "gate", Run: o.runGate}); err != nil {
		return nil, err
	}

	for _, pattern := range o.opts.Patterns {
		// One arrival per slice, whether it published, failed or was
		// skipped because the gate failed.
		var once sync.Once
		arrive := func(artifacts ...string) {
			once.Do(func() { barrier.Arrive(artifacts...) })
		}
		if err := graph.Add(&Task{
			Name:       "slice " + pattern,
			Deps:       []Dep{{Task: "gate", Type: DepRequire}},
			OnTerminal: func() { arrive() },
			Run: func(ctx context.Context) error {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-ctx.Done():
					return ctx.Err()
				}
				return o.runSlice(ctx, pattern, arrive)
			},
		}); err != nil {
			return nil, err
		}
	}

	aggregateDeps := make([]Dep, 0, len(o.opts.Patterns))
	for _, pattern := range o.opts.Patterns {
		aggregateDeps = append(aggregateDeps, Dep{Task: "slice " + pattern, Type: DepBarrier})
	}
	if err := graph.Add(&Task{
		Name: "aggregate",
		Deps: aggregateDeps,
		Run: func(ctx context.Context) error {
			return o.runAggregate(ctx, barrier)
		},
	}); err != nil {
		return nil, err
	}

	o.opts.Reporter.ReportStart(o.opts.Patterns, o.opts.Parallel)
	err := graph.Run(ctx)
	return o.report, err
}

func (o *Orchestrator) runGate(ctx context.Context) error {
	if o.opts.Gate == nil {
		return nil
	}
	o.logger.Info("running gate")
	if err := o.opts.Gate(ctx); err != nil {
		return fmt.Errorf("gate failed: %w", err)
	}
	return nil
}

// runSlice executes one slice and publishes its record. The arrival is
// always made, with or without an artifact: non-publication is how a failed
// slice's environments end up missing.
func (o *Orchestrator) runSlice(ctx context.Context, pattern string, arrive func(...string)) error {
	o.opts.Reporter.ReportSliceStart(pattern)
	start := time.Now()

	result := reporting.SliceResult{
		Pattern:   pattern,
		Key:       sanitize.Key(pattern),
		StartTime: start,
	}

	r := runner.New(o.opts.Catalog, o.opts.Invoker, o.opts.TmpRoot)
	rec, runErr := r.Run(ctx, pattern)

	// Partial-publish-on-failure: whatever the runner persisted before
	// failing still counts as executed.
	var published string
	var publishErr error
	if rec != nil {
		localPath := sanitize.ResultFileName(o.opts.TmpRoot, pattern)
		publishErr = o.opts.Publisher.Publish(ctx, localPath, result.Key)
		if publishErr == nil {
			published = result.Key + sanitize.ResultFileExt
		}
	}

	if published != "" {
		arrive(published)
	} else {
		arrive()
	}

	result.Record = rec
	result.PublishedTo = published
	result.Duration = time.Since(start)
	err := errors.Join(runErr, publishErr)
	if err != nil {
		result.Error = err.Error()
	}
	o.opts.Reporter.ReportSliceResult(result)
	return err
}

func (o *Orchestrator) runAggregate(ctx context.Context, barrier *Barrier) error {
	artifacts, err := barrier.Wait(ctx)
	if err != nil {
		return fmt.Errorf("fan-in barrier: %w", err)
	}
	o.logger.Info("aggregating", zap.Int("artifacts", len(artifacts)))

	// The publisher creates the artifacts directory lazily; when no slice
	// published anything the directory may not exist yet, which is the same
	// as zero records.
	records, err := results.ReadDir(o.opts.ArtifactsDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		records = nil
	}

	o.report = aggregate.Aggregate(o.opts.Catalog, records)
	o.opts.Reporter.ReportAggregate(o.report)
	return o.report.Err()
}
