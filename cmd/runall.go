package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"matrixctl/internal/config"
	"matrixctl/internal/orchestrator"
	"matrixctl/internal/reporting"
)

func newRunAllCmd() *cobra.Command {
	flags := &sliceFlags{}
	var (
		patternsFile string
		parallel     int
		gateCmd      string
		reportPath   string
	)

	cmd := &cobra.Command{
		Use:   "run-all",
		Short: "Run every matrix slice locally and verify completeness",
		Long: `run-all executes the full gate, fan-out, fan-in shape on one machine:
an optional gate command, then one slice per selection pattern with bounded
parallelism, then the completeness check over the published records.

Slices are independent; a failed slice does not stop its siblings, and its
unpublished environments surface as missing in the final report. Nothing is
retried: a failed or cancelled slice must be fully rerun.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if parallel < 1 || parallel > 32 {
				return fmt.Errorf("parallel workers must be between 1 and 32, got %d", parallel)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Handle interrupts gracefully: a cancelled slice counts as
			// non-publication, never as a silent skip.
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)
			go func() {
				<-sigChan
				fmt.Println("\nReceived interrupt signal, stopping slices...")
				cancel()
			}()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			cfg = flags.overlay(cfg)

			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}
			patterns, err := loadPatterns(patternsFile)
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

			var gate func(context.Context) error
			if gateCmd != "" {
				gate = func(ctx context.Context) error {
					c := exec.CommandContext(ctx, "sh", "-c", gateCmd)
					c.Stdout = cmd.OutOrStdout()
					c.Stderr = cmd.ErrOrStderr()
					return c.Run()
				}
			}

			orch, err := orchestrator.New(orchestrator.Options{
				Catalog:      cat,
				Patterns:     patterns,
				Parallel:     parallel,
				TmpRoot:      cfg.TmpRoot,
				ArtifactsDir: cfg.ArtifactsDir,
				Invoker:      invoker,
				Publisher:    publisher,
				Reporter:     reporting.NewConsoleReporter(cmd.OutOrStdout(), flags.verbose, reportPath),
				Gate:         gate,
			})
			if err != nil {
				return err
			}

			_, err = orch.Run(ctx)
			return err
		},
	}

	flags.register(cmd.Flags())
	cmd.Flags().StringVar(&patternsFile, "patterns-file", "", "Line-oriented file of selection patterns, one per slice")
	cmd.Flags().IntVar(&parallel, "parallel", 1, "Number of slices to run concurrently (1-32)")
	cmd.Flags().StringVar(&gateCmd, "gate-cmd", "", "Shell command that must succeed before any slice starts")
	cmd.Flags().StringVar(&reportPath, "report", "", "Path to save a detailed JSON report")
	_ = cmd.MarkFlagRequired("patterns-file")

	return cmd
}
