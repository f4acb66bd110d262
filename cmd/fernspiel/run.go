package main

import (
	"github.com/aretw0/fernspiel/internal/cli"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [book]",
	Short: "Run a book on the phone",
	Long: `Starts a session with the given book (a YAML file or a zip archive).
Without a book the installation starts passive and waits for one over the control API.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		quiet, _ := cmd.Flags().GetBool("quiet")

		opts := cli.RunOptions{Config: cfg, Quiet: quiet, Out: cmd.ErrOrStderr()}
		if len(args) > 0 {
			opts.BookPath = args[0]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Execute(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags())
	runCmd.Flags().BoolP("quiet", "q", false, "Suppress the banner and system messages")
}
