// Command postgreat inspects one or more PostgreSQL instances and prints
// a prioritized report of configuration, table/index health, and
// workload-index recommendations. The CLI is a thin shell around
// pkg/engine: it owns configuration loading, connection establishment,
// and rendering bytes to stdout or a file, none of which the engine
// itself does.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flanksource/clicky"
)

var (
	configFile string
	verbose    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "postgreat",
		Short: "PostgreSQL configuration, health, and workload advisor",
		Long: `postgreat inspects a running PostgreSQL instance and emits a prioritized
set of evidence-based tuning and maintenance recommendations: memory,
concurrency, WAL, planner, autovacuum and logging settings, table and
index health, and candidate indexes derived from the slow-query workload.`,
		Version: Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			clicky.Flags.UseFlags()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Instance configuration file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	clicky.BindAllFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		createAnalyzeCommand(),
		createConfigCommand(),
		createVersionCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

func createVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(versionInfo())
		},
	}
}
