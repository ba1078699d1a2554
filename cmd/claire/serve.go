package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hackeddesign/claire/internal/cli"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP channel",
	Long:  `Exposes conversations as a JSON API over HTTP, with /metrics and per-conversation SSE streams.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, svc, logger, err := setup(cmd, prometheus.DefaultRegisterer)
		if err != nil {
			return err
		}
		defer closeServices(svc)

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.HTTP.Addr = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return cli.Serve(ctx, cfg, svc, logger, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides http.addr)")
}
