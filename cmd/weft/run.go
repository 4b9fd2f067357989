package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/internal/presentation/tui"
)

var runCmd = &cobra.Command{
	Use:   "run <graph>",
	Short: "Evaluate a graph and print every node",
	Long: `Loads a graph from a YAML/JSON file or a directory of node documents,
applies --set assignments, waits for async nodes and prints the node table.
With --watch the graph is reloaded whenever its source changes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sets, _ := cmd.Flags().GetStringArray("set")
		watch, _ := cmd.Flags().GetBool("watch")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		assignments, err := cli.ParseAssignments(sets)
		if err != nil {
			return err
		}
		src, err := cli.OpenSource(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		eng := cli.NewEngine(cfg, logger, nil)
		defer eng.Close()

		if watch {
			tui.PrintBanner(cmd.ErrOrStderr())
		}
		return cli.Run(ctx, eng, src, cli.RunOptions{
			Sets:    assignments,
			Watch:   watch,
			Styled:  tui.IsTerminal(os.Stdout),
			Timeout: timeout,
		}, cmd.OutOrStdout(), logger)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringArray("set", nil, "Set an input before evaluating, as node.port=value (repeatable)")
	runCmd.Flags().BoolP("watch", "w", false, "Reload and re-evaluate when the graph changes")
	runCmd.Flags().Duration("timeout", 0, "Give up waiting for async nodes after this long")
}

