package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/hackeddesign/claire/internal/cli"
	"github.com/hackeddesign/claire/internal/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "claire",
	Short:         "Claire is a resumable multi-turn dialog engine",
	Long:          `Claire runs waterfall dialogs whose progress is persisted after every turn, so a conversation survives restarts.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file (CLAIRE_* env vars override it)")
	rootCmd.PersistentFlags().String("store", "", "Store backend: memory, file, redis, sqlite or mongo")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging on stderr")

	rootCmd.SetUsageTemplate(rootCmd.UsageTemplate() + "\nEnvironment:\n" + config.Usage())
}

// setup loads config and builds the services every command shares.
func setup(cmd *cobra.Command, reg prometheus.Registerer) (*config.Config, *cli.Services, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, err
	}
	if backend, _ := cmd.Flags().GetString("store"); backend != "" {
		cfg.Store.Backend = backend
	}

	debug, _ := cmd.Flags().GetBool("debug")
	logger, err := cli.NewLogger(cfg, debug)
	if err != nil {
		return nil, nil, nil, err
	}

	svc, err := cli.Build(cmd.Context(), cfg, logger, cli.BuildOptions{Registerer: reg})
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, svc, logger, nil
}

func closeServices(svc *cli.Services) {
	_ = svc.Close(context.Background())
}
