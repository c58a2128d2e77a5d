package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"matrixctl/internal/config"
)

func newListCmd() *cobra.Command {
	var catalogPath string

	cmd := &cobra.Command{
		Use:   "list [pattern]",
		Short: "Print the environment catalog, optionally filtered by a pattern",
		Long: `list prints the declared environments one per line, in catalog order.
With a pattern argument only matching environments are printed, using the
same selection semantics as select-and-run, so the output previews exactly
what a slice would execute.`,
		Args: cobra.MaximumNArgs(1),
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

			names := cat.Names()
			if len(args) == 1 {
				names, err = cat.Select(args[0])
				if err != nil {
					return err
				}
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Path to the environment catalog")
	return cmd
}
