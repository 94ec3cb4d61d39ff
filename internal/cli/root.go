package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rtgscope",
	Short: "Microscopy experiments dashboard and registry",
	Long: `rtgscope lists microscopy acquisitions recorded at the RTG imaging facility.

Serve the experiments dashboard, run the experiments API it reads from,
and register new acquisitions from the command line.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(tokenCmd)
}
