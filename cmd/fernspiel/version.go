package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/fernspiel"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fernspiel",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "fernspiel version %s\n", strings.TrimSpace(fernspiel.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
