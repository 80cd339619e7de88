package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// newRootCmd builds the command tree.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "calcctl",
		Short: "Creator earnings calculator tools",
		Long: `Offline tools for the creator earnings calculator.

Available subcommands:
  estimate - Run the estimator on flags or a JSON input file
  tables   - Print the config or benchmarks payload
  token    - Mint a development JWT`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("rates", "", "rate tables YAML (default: embedded tables)")
	root.AddCommand(newEstimateCmd(), newTablesCmd(), newTokenCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
