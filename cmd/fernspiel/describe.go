package main

import (
	"github.com/aretw0/fernspiel/internal/cli"
	"github.com/spf13/cobra"
)

var describeCmd = &cobra.Command{
	Use:   "describe <book>",
	Short: "Print an overview of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, _ := cmd.Flags().GetBool("raw")
		width, _ := cmd.Flags().GetInt("width")
		return cli.Describe(args[0], raw, width, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "Print markdown instead of rendering it")
	describeCmd.Flags().Int("width", 0, "Word wrap width of the rendered output")
}
