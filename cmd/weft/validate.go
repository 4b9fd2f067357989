package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/nodes"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph>",
	Short: "Check the graph for consistency",
	Long: `Loads the graph and checks node types, ports, value types and connections
without running any compute.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := cli.OpenSource(args[0])
		if err != nil {
			return err
		}
		snap, err := cli.Validate(cmd.Context(), src, nodes.Builtin())
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Graph is valid: %d nodes, %d connections\n", len(snap.Nodes), len(snap.Connections))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
