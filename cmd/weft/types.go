package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/presentation/tui"
	"github.com/aretw0/weft/pkg/nodes"
)

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the builtin node types",
	RunE: func(cmd *cobra.Command, args []string) error {
		defs := nodes.Builtin().Definitions()
		styled := tui.IsTerminal(os.Stdout)
		if table, _ := cmd.Flags().GetBool("table"); table {
			tui.RenderTypes(cmd.OutOrStdout(), defs, styled)
			return nil
		}
		out, err := tui.NewRenderer(styled)(tui.CatalogMarkdown(defs))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(typesCmd)
	typesCmd.Flags().Bool("table", false, "Print a compact table instead of markdown")
}
