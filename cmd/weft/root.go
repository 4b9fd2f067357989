package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/weft/internal/config"
	"github.com/aretw0/weft/internal/logging"
)

var (
	cfg    config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "weft",
	Short: "Weft is a reactive dataflow engine",
	Long: `Weft evaluates graphs of typed nodes. Setting an input recomputes the node
and pushes the new output along its connections, depth first.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		envFile, _ := cmd.Flags().GetString("env-file")
		loaded, err := config.Load(envFile)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			v, _ := cmd.Flags().GetString("log-level")
			if loaded.LogLevel, err = logging.ParseLevel(v); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("log-format") {
			v, _ := cmd.Flags().GetString("log-format")
			if loaded.LogFormat, err = logging.ParseFormat(v); err != nil {
				return err
			}
		}
		cfg = loaded
		logger = logging.NewWithWriter(os.Stderr, cfg.LogLevel, cfg.LogFormat)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment from this file instead of ./.env")
}
