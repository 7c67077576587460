// Package cmd provides the rvinspect command-line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rvinspect",
	Short: "Inspect Sv32/Sv39/Sv48 address translation and PMA coverage.",
	Long: `rvinspect loads a flat physical-memory image and either walks a ` +
		`virtual address through a page table or dumps PMA attribute ` +
		`coverage for an address range.`,
}

// Execute loads a .env file from the working directory, if one exists, and
// runs the root command.
func Execute() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "rvinspect: .env: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
