// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/pdf2md/internal/convert"
	"github.com/pdiddy/pdf2md/internal/pdfreader"
	"github.com/pdiddy/pdf2md/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the conversion HTTP API",
	Long: `Serve exposes the converter over HTTP:

  GET  /health    liveness probe
  POST /convert   multipart upload (field "file"); query parameters
                  include_images and embed_images

When a bearer token is configured (server.api_key or the api-key secret),
every route except /health requires it. The server stops gracefully on
SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8000)")
	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServerConfig(viper.GetViper(), loadedSecrets)
	if err != nil {
		return err
	}
	if cfg.APIKey == "" {
		logger.Warn("authentication disabled: no API key configured")
	}

	engine := convert.NewEngine(pdfreader.New(), convert.WithLogger(logger))
	srv := server.New(cfg, engine, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx)
}
