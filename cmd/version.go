package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of matrixctl",
		Long:  `Prints the version baked into this binary at build time.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("matrixctl version %s\n", rootCmd.Version)
		},
	}
}
