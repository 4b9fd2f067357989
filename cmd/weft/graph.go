package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/nodes"
)

var graphCmd = &cobra.Command{
	Use:   "graph <graph>",
	Short: "Export the graph as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := cli.OpenSource(args[0])
		if err != nil {
			return err
		}
		chart, err := cli.Mermaid(cmd.Context(), src, nodes.Builtin())
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), chart)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
