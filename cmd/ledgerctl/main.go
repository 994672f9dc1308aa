package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Operate the coinmate ledger database",
	Long: `ledgerctl applies schema migrations and seeds local databases.

Configuration is read from the environment and .env, the same way the API
server reads it.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
