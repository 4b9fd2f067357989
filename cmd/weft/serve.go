package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/cli"
	"github.com/aretw0/weft/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Starts a weft engine behind a JSON/SSE HTTP API with Prometheus metrics at
/metrics. Graph snapshots are stored in --store-dir, or in redis when --redis
is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr, _ = cmd.Flags().GetString("addr")
		}
		if cmd.Flags().Changed("redis") {
			cfg.RedisAddr, _ = cmd.Flags().GetString("redis")
		}
		if cmd.Flags().Changed("store-dir") {
			cfg.StoreDir, _ = cmd.Flags().GetString("store-dir")
		}
		graphID, _ := cmd.Flags().GetString("graph")
		follow, _ := cmd.Flags().GetBool("follow")

		promReg := prometheus.NewRegistry()
		promReg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		metrics, err := observability.NewMetrics(promReg)
		if err != nil {
			return err
		}

		eng := cli.NewEngine(cfg, logger, metrics)
		defer eng.Close()

		backend := cli.OpenBackend(cfg)
		defer backend.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return cli.Serve(ctx, eng, backend, promReg, cfg, cli.ServeOptions{
			GraphID: graphID,
			Follow:  follow,
		}, logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("addr", "a", ":8080", "Address to listen on")
	serveCmd.Flags().String("redis", "", "Redis address for snapshots and locks")
	serveCmd.Flags().String("store-dir", ".weft/graphs", "Directory for snapshots when redis is not used")
	serveCmd.Flags().String("graph", "", "Graph id to resume on start and checkpoint on shutdown")
	serveCmd.Flags().Bool("follow", false, "Restore --graph whenever another replica saves it (redis only)")
}
