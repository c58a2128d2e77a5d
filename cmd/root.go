package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"matrixctl/pkg/logging"
)

var rootDebug bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "matrixctl",
	Short: "Orchestrate a declarative test matrix across parallel CI slices",
	Long: `matrixctl selects environments from a declared test matrix by pattern,
drives the external test runner over the selection, publishes the per-slice
result record, and verifies afterwards that every declared environment was
executed exactly once across all slices.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. invalid patterns, failed runner invocations)
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logging.Init(rootDebug)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "matrixctl version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newSelectAndRunCmd())
	rootCmd.AddCommand(newAggregateCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newCheckPartitionCmd())
	rootCmd.AddCommand(newRunAllCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
