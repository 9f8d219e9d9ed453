package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nodewee/ocr-hub/pkg/capture"
	"github.com/nodewee/ocr-hub/pkg/config"
	"github.com/nodewee/ocr-hub/pkg/core"
	"github.com/nodewee/ocr-hub/pkg/export"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/metrics"
	"github.com/nodewee/ocr-hub/pkg/server"
	"github.com/nodewee/ocr-hub/pkg/session"
)

var listenAddr string

// serveCmd runs the capture page
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the capture page",
	Long: `Serve a local web page to drop, pick or photograph a document and extract its text.

One document is processed at a time; captures arriving meanwhile are rejected.
Prometheus metrics are exposed at /metrics.

Examples:
  ocr-hub serve                      # Listen on the configured address
  ocr-hub serve --addr :9000         # Listen on all interfaces, port 9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfigWithEnvOverrides()
		applyCommandLineOverrides(cfg)
		if listenAddr != "" {
			cfg.ListenAddr = listenAddr
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServer(ctx, cfg)
	},
}

// runServer wires the pipeline, session and HTTP server and blocks until ctx ends
func runServer(ctx context.Context, cfg *config.Config) error {
	log := logger.NewLogger(cfg.LogLevel, cfg.EnableVerbose)
	m := metrics.New()

	pipeline, err := core.NewPipeline(cfg, log, m)
	if err != nil {
		return err
	}

	available, err := pipeline.Selector.Available(ctx)
	if err != nil {
		return err
	}
	if len(available) == 0 {
		log.Warn("No OCR engine is available; uploads will fail until one is installed")
	}

	controller := session.NewController(pipeline.Aggregator, session.Options{
		Camera:       capture.NewFFmpegCamera(cfg.FFmpegPath, log),
		CameraDevice: cfg.CameraDevice,
		Clipboard:    export.SystemClipboard{},
		Metrics:      m,
		Logger:       log,
	})
	defer controller.Close()

	srv, err := server.New(controller, server.Options{Metrics: m, Logger: log})
	if err != nil {
		return err
	}
	return srv.Serve(ctx, cfg.ListenAddr)
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "addr", "", "Listen address (default from config, "+config.DefaultListenAddr+")")
	rootCmd.AddCommand(serveCmd)
}
