// Package server assembles the Fiber application and owns its lifecycle.
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courtview/internal/config"
	"courtview/internal/http/handler"
	"courtview/internal/http/middleware"
	"courtview/internal/logging"
	"courtview/internal/service"
)

const shutdownTimeout = 5 * time.Second

// Deps are the collaborators the routes are served from.
type Deps struct {
	Pages  handler.PageRenderer
	Assets service.AssetService

	// Registry receives the HTTP and runtime collectors. A fresh one is created when nil.
	Registry *prometheus.Registry
	// Log receives lifecycle events. Defaults to stdout.
	Log *logging.Logger
	// AccessLog receives one JSON line per request. Defaults to stdout.
	AccessLog io.Writer
}

// Server owns the Fiber app. There is no package-level instance: callers
// construct one and hand it to Start.
type Server struct {
	cfg *config.AppConfig
	app *fiber.App
	log *logging.Logger
}

// New builds the app with the middleware chain
// request id -> tracing -> metrics -> access log -> routes.
func New(cfg *config.AppConfig, deps Deps) (*Server, error) {
	if deps.Pages == nil || deps.Assets == nil {
		return nil, fmt.Errorf("server: pages and assets are required")
	}
	if deps.Log == nil {
		deps.Log = logging.Default(cfg.Location())
	}
	if deps.AccessLog == nil {
		deps.AccessLog = os.Stdout
	}

	app := fiber.New(fiber.Config{
		AppName:               "courtview",
		ErrorHandler:          handler.ErrorHandler(),
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		IdleTimeout:           60 * time.Second,
	})

	app.Use(middleware.RequestID())
	app.Use(otelfiber.Middleware())

	if cfg.MetricsEnabled {
		reg := deps.Registry
		if reg == nil {
			reg = prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
		}
		prom, err := middleware.NewPrometheusMiddleware(reg)
		if err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		app.Use(prom.Handler())
		app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	app.Use(middleware.LoggerWithWriter(deps.AccessLog, cfg.Location()))

	handler.RegisterRoutes(app, deps.Pages, deps.Assets, handler.Options{
		StaticMaxAge: cfg.StaticMaxAge,
	})

	return &Server{cfg: cfg, app: app, log: deps.Log}, nil
}

// App exposes the Fiber app, mainly for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens on the configured address and blocks until ctx is cancelled,
// SIGINT/SIGTERM arrives or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Address(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server_started", map[string]any{"addr": ln.Addr().String()})
		errCh <- s.app.Listener(ln)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
		s.log.Info("context_cancelled", nil)
	case sig := <-sigCh:
		s.log.Info("signal_received", map[string]any{"signal": sig.String()})
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	}

	return s.Shutdown()
}

// Shutdown drains in-flight requests, waiting at most five seconds.
func (s *Server) Shutdown() error {
	s.log.Info("server_shutting_down", nil)
	if err := s.app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		s.log.Error("server_shutdown_failed", err, nil)
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("server_stopped", nil)
	return nil
}
