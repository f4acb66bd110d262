package main

import (
	"fmt"

	"github.com/aretw0/fernspiel/internal/cli"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [book]",
	Short: "Run a book controlled over the Model Context Protocol",
	Long: `Runs a session like 'run' and serves MCP tools (get_status, dial, reset, load_book)
so an agent can drive the installation.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Logs go to Stderr to keep the JSON-RPC stream clean.
- sse: Uses Server-Sent Events over HTTP on --mcp-addr.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		transport, _ := cmd.Flags().GetString("transport")
		opts := cli.RunOptions{Config: cfg, MCP: true, Quiet: true}
		switch transport {
		case "stdio":
		case "sse":
			opts.MCPAddr, _ = cmd.Flags().GetString("mcp-addr")
			opts.Quiet = false
			opts.Out = cmd.ErrOrStderr()
		default:
			return fmt.Errorf("unknown transport: %s. Supported: stdio, sse", transport)
		}
		if len(args) > 0 {
			opts.BookPath = args[0]
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Execute(ctx, opts)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	addRunFlags(mcpCmd.Flags())
	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("mcp-addr", ":8081", "Listen address of the MCP server (only for SSE)")
}
