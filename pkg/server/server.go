// Package server exposes a session over HTTP: one page plus a small JSON API.
package server

import (
	"context"
	"errors"
	"html/template"
	"net"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"golang.org/x/net/netutil"

	"github.com/nodewee/ocr-hub/pkg/constants"
	"github.com/nodewee/ocr-hub/pkg/logger"
	"github.com/nodewee/ocr-hub/pkg/metrics"
	"github.com/nodewee/ocr-hub/pkg/session"
	"github.com/nodewee/ocr-hub/pkg/utils"
)

const shutdownTimeout = 5 * time.Second

// Options configures a Server. Every field is optional.
type Options struct {
	Metrics *metrics.Metrics
	Logger  *logger.Logger

	// MaxConnections bounds concurrent connections in Serve
	MaxConnections int
}

// Server serves the capture page and the session API
type Server struct {
	app        *fiber.App
	controller *session.Controller
	metrics    *metrics.Metrics
	logger     *logger.Logger
	page       *template.Template
	maxConns   int
}

// New creates a server driving controller
func New(controller *session.Controller, opts Options) (*Server, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	maxConns := opts.MaxConnections
	if maxConns <= 0 {
		maxConns = constants.MaxHTTPConnections
	}

	page, err := parsePage()
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeSystem, "failed to parse page template")
	}

	s := &Server{
		controller: controller,
		metrics:    opts.Metrics,
		logger:     log,
		page:       page,
		maxConns:   maxConns,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               constants.AppName,
		BodyLimit:             constants.MaxUploadSize,
		DisableStartupMessage: true,
		ErrorHandler:          s.errorHandler,
	})
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// App returns the underlying Fiber app for testing
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) setupMiddleware() {
	s.app.Use(recover.New())
	s.app.Use(s.accessLog)
	if s.metrics != nil {
		s.app.Use(s.metrics.MetricsMiddleware())
	}
}

func (s *Server) setupRoutes() {
	s.app.Get("/", s.handleIndex)

	api := s.app.Group("/api")
	api.Get("/state", s.handleState)
	api.Post("/files", s.handleUpload)
	api.Put("/text", s.handleEditText)
	api.Post("/copy", s.handleCopy)
	api.Get("/download", s.handleDownload)

	api.Post("/camera/start", s.handleCameraStart)
	api.Get("/camera/preview", s.handleCameraPreview)
	api.Post("/camera/capture", s.handleCameraCapture)
	api.Post("/camera/stop", s.handleCameraStop)

	api.Get("/history/export.md", s.handleHistoryMarkdown)
	api.Post("/history/:id/copy", s.handleHistoryCopy)
	api.Get("/history/:id/download", s.handleHistoryDownload)

	if s.metrics != nil {
		s.app.Get("/metrics", s.metrics.Handler())
	}
}

// accessLog logs one line per request in verbose mode
func (s *Server) accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	s.logger.Info("%s %s %d %s", c.Method(), c.Path(), c.Response().StatusCode(), time.Since(start).Round(time.Microsecond))
	return err
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeNetwork, "failed to listen on "+addr)
	}
	ln = netutil.LimitListener(ln, s.maxConns)

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listener(ln)
	}()
	s.logger.ProgressAlways("🌐", "Serving on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, net.ErrClosed) {
		return err
	}
	return nil
}
