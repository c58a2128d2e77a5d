package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"matrixctl/internal/aggregate"
	"matrixctl/internal/config"
	"matrixctl/internal/reporting"
	"matrixctl/internal/results"
)

func newAggregateCmd() *cobra.Command {
	var (
		catalogPath string
		resultsDir  string
		counts      bool
		expect      int
		waitTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Verify that every declared environment was executed exactly once",
		Long: `aggregate reads every published result record, reconstructs the set of
environments that actually ran, and compares it against the declared catalog.

The verdict is a line-oriented diff of missing and unexpected environments;
the exit code is zero only when both sets are empty. With --expect the
command first blocks until that many records are published (the fan-in
barrier), bounded by --wait-timeout. --counts additionally prints how many
times each environment was executed, which exposes overlapping selection
patterns.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if catalogPath != "" {
				cfg.CatalogPath = catalogPath
			}
			if resultsDir != "" {
				cfg.ArtifactsDir = resultsDir
			}

			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}

			if expect > 0 {
				waitCtx := cmd.Context()
				if waitTimeout > 0 {
					var cancel context.CancelFunc
					waitCtx, cancel = context.WithTimeout(waitCtx, waitTimeout)
					defer cancel()
				}
				if err := aggregate.WaitForRecords(waitCtx, cfg.ArtifactsDir, expect); err != nil {
					return err
				}
			}

			records, err := results.ReadDir(cfg.ArtifactsDir)
			if err != nil {
				return err
			}

			report := aggregate.Aggregate(cat, records)
			out := cmd.OutOrStdout()
			fmt.Fprint(out, report.Diff())
			if counts {
				reporting.RenderCounts(out, report)
			}
			return report.Err()
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the environment catalog")
	cmd.Flags().StringVar(&resultsDir, "results-dir", "", "Directory containing the published result records")
	cmd.Flags().BoolVar(&counts, "counts", false, "Print per-environment execution counts (duplicate detection)")
	cmd.Flags().IntVar(&expect, "expect", 0, "Block until this many records are published before aggregating")
	cmd.Flags().DurationVar(&waitTimeout, "wait-timeout", 10*time.Minute, "Upper bound for --expect")

	return cmd
}
