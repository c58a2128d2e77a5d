package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"matrixctl/internal/config"
	"matrixctl/internal/partition"
)

func newCheckPartitionCmd() *cobra.Command {
	var (
		catalogPath  string
		patternsFile string
	)

	cmd := &cobra.Command{
		Use:   "check-partition",
		Short: "Validate that a pattern set partitions the catalog exactly",
		Long: `check-partition verifies, before anything runs, that the configured
selection patterns cover every declared environment exactly once: no two
patterns select the same environment, no environment is left unselected, and
no pattern selects nothing.

The completeness check at aggregation time assumes this partitioning but
cannot enforce it; running this check when patterns or the catalog change
catches overlaps at definition time instead of after a full matrix run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if catalogPath != "" {
				cfg.CatalogPath = catalogPath
			}

			cat, err := loadCatalog(cfg.CatalogPath)
			if err != nil {
				return err
			}
			patterns, err := loadPatterns(patternsFile)
			if err != nil {
				return err
			}

			result, err := partition.Check(cat, patterns)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), result.Format())
			if !result.OK() {
				return fmt.Errorf("pattern set does not partition the catalog")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the environment catalog")
	cmd.Flags().StringVar(&patternsFile, "patterns-file", "", "Line-oriented file of selection patterns, one per slice")
	_ = cmd.MarkFlagRequired("patterns-file")

	return cmd
}

// loadPatterns reads a line-oriented pattern file; blank lines and '#'
// comments are ignored.
func loadPatterns(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open patterns file %s: %w", path, err)
	}
	defer f.Close()

	var patterns []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read patterns file %s: %w", path, err)
	}
	if len(patterns) == 0 {
		return nil, fmt.Errorf("patterns file %s declares no patterns", path)
	}
	return patterns, nil
}
