// Command factoringctl is the operator tool of the factoring engine: schema
// migrations, offer quotes, development tokens and certificates.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "factoringctl",
		Short:         "factoringctl - operator tool for the factoring engine",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(quoteCmd())
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(certCmd())

	return rootCmd
}
