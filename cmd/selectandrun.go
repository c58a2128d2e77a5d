package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"matrixctl/internal/config"
	"matrixctl/internal/reporting"
	"matrixctl/internal/runner"
	"matrixctl/internal/sanitize"
)

type sliceFlags struct {
	catalogPath  string
	tmpRoot      string
	artifactsDir string
	runnerCmd    string
	runnerArgs   []string
	publisher    string
	verbose      bool
}

func (f *sliceFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.catalogPath, "catalog", "", "Path to the environment catalog (line-oriented file or YAML matrix definition)")
	flags.StringVar(&f.tmpRoot, "tmp-root", "", "Directory for the slice's local result file")
	flags.StringVar(&f.artifactsDir, "artifacts-dir", "", "Shared directory result records are published to")
	flags.StringVar(&f.runnerCmd, "runner", "", "External test runner command")
	flags.StringArrayVar(&f.runnerArgs, "runner-arg", nil, "Fixed argument for the test runner (repeatable, placed before the environment batch)")
	flags.StringVar(&f.publisher, "publisher", "", "Publisher type: dir or s3")
	flags.BoolVar(&f.verbose, "verbose", false, "Enable verbose output")
}

// overlay applies the command-line flags on top of the loaded configuration.
func (f *sliceFlags) overlay(cfg config.Config) config.Config {
	if f.catalogPath != "" {
		cfg.CatalogPath = f.catalogPath
	}
	if f.tmpRoot != "" {
		cfg.TmpRoot = f.tmpRoot
	}
	if f.artifactsDir != "" {
		cfg.ArtifactsDir = f.artifactsDir
	}
	if f.runnerCmd != "" {
		cfg.Runner.Command = f.runnerCmd
	}
	if len(f.runnerArgs) > 0 {
		cfg.Runner.Args = f.runnerArgs
	}
	if f.publisher != "" {
		cfg.Publisher.Type = config.PublisherType(f.publisher)
	}
	return cfg
}

func newSelectAndRunCmd() *cobra.Command {
	flags := &sliceFlags{}

	cmd := &cobra.Command{
		Use:   "select-and-run <pattern>",
		Short: "Run the test matrix slice selected by a pattern",
		Long: `select-and-run filters the environment catalog by a regular-expression
pattern, invokes the external test runner once with the whole selection, and
publishes the resulting record under the pattern's sanitized key.

A pattern that matches nothing is an orchestration failure (exit code 3), not
an empty success: running nothing would trivially "pass" and mask a regressed
pattern. The test runner's own exit status is propagated verbatim; a failed
publish exits with code 4.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSelectAndRun(cmd, flags, args[0])
			if err == nil {
				return nil
			}
			if code := exitCodeFor(err); code != 1 {
				cmd.PrintErrln("Error:", err)
				os.Exit(code)
			}
			return err
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func runSelectAndRun(cmd *cobra.Command, flags *sliceFlags, pattern string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	cfg = flags.overlay(cfg)

	cat, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	invoker, err := buildInvoker(cfg)
	if err != nil {
		return err
	}
	publisher, err := buildPublisher(cfg)
	if err != nil {
		return err
	}

	reporter := reporting.NewConsoleReporter(cmd.OutOrStdout(), flags.verbose, "")
	reporter.ReportSliceStart(pattern)
	start := time.Now()

	rec, runErr := runner.New(cat, invoker, cfg.TmpRoot).Run(cmd.Context(), pattern)

	key := sanitize.Key(pattern)
	result := reporting.SliceResult{
		Pattern:   pattern,
		Key:       key,
		Record:    rec,
		StartTime: start,
	}

	// The record is published even when the runner failed: a partial
	// record keeps its completed environments out of the missing set.
	if rec != nil {
		if pubErr := publisher.Publish(cmd.Context(), sanitize.ResultFileName(cfg.TmpRoot, pattern), key); pubErr != nil {
			result.Duration = time.Since(start)
			result.Error = pubErr.Error()
			reporter.ReportSliceResult(result)
			return pubErr
		}
		result.PublishedTo = key + sanitize.ResultFileExt
	}

	result.Duration = time.Since(start)
	if runErr != nil {
		result.Error = runErr.Error()
		reporter.ReportSliceResult(result)
		return fmt.Errorf("slice %q: %w", pattern, runErr)
	}
	reporter.ReportSliceResult(result)
	return nil
}
