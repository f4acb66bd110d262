package main

import (
	"github.com/aretw0/fernspiel/internal/cli"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <book>",
	Short: "Check a book for consistency",
	Long:  `Loads the book and reports unknown states, invalid fields and missing sound files.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Validate(args[0], cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
