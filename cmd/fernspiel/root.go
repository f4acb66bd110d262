package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fernspiel",
	Short: "fernspiel runs story books on a telephone installation",
	Long: `fernspiel plays interactive stories on a telephone: states play sounds and ring the bell,
and the visitor moves through the story by picking up, dialing and hanging up.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
