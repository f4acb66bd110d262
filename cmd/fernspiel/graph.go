package main

import (
	"github.com/aretw0/fernspiel/internal/cli"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph <book>",
	Short: "Export the story graph as a Mermaid diagram",
	Long: `Outputs a Mermaid flowchart (graph TD) of the book.
With --journal, the states visited by a recorded run are highlighted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		journal, _ := cmd.Flags().GetString("journal")
		runID, _ := cmd.Flags().GetString("run")
		return cli.Graph(cmd.Context(), args[0], cli.GraphOptions{Journal: journal, RunID: runID}, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("journal", "", "SQLite journal to read a run from")
	graphCmd.Flags().String("run", "", "Run to highlight (defaults to the latest run in the journal)")
}
