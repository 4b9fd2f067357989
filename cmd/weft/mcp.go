package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [graph]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Exposes a live weft graph to MCP clients as tools (create_node, set_input,
connect, get_output, ...) and resources (weft://graph, weft://types).
An optional graph file or directory is loaded first.

Supported Transports:
- stdio (default): Uses Standard Input/Output.
- sse: Uses Server-Sent Events over HTTP.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transport, _ := cmd.Flags().GetString("transport")
		addr, _ := cmd.Flags().GetString("addr")

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng := cli.NewEngine(cfg, logger, nil)
		defer eng.Close()

		if len(args) == 1 {
			src, err := cli.OpenSource(args[0])
			if err != nil {
				return err
			}
			snap, err := src.Load(ctx)
			if err != nil {
				return err
			}
			if err := eng.Restore(ctx, snap); err != nil {
				return err
			}
		}

		srv := mcp.NewServer(eng, logger)
		switch transport {
		case "stdio":
			logger.Info("Starting weft MCP server (stdio)")
			return srv.ServeStdio()
		case "sse":
			return srv.ServeSSE(ctx, addr)
		default:
			return fmt.Errorf("unknown transport %q: supported are stdio and sse", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	mcpCmd.Flags().String("addr", ":8081", "Address to listen on (only for SSE)")
}
