package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"csvaudit/internal/config"
	apierrors "csvaudit/internal/errors"
	"csvaudit/internal/infrastructure"
	"csvaudit/internal/inspect"
	custommw "csvaudit/internal/middleware"
	handlers "csvaudit/internal/transport/http"
	"csvaudit/internal/websocket"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Router        *chi.Mux
	Server        *http.Server
	Inspector     *inspect.Inspector
	Hub           *websocket.Hub
	Metrics       *infrastructure.InspectionMetrics
	OTelProviders *infrastructure.OTelProviders
	ErrorHandler  *apierrors.ErrorHandler

	mu       sync.Mutex
	listener net.Listener
	serveErr chan error
}

// New builds the application from an explicit configuration and logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	otelCfg := infrastructure.OTelConfigFrom(cfg.Telemetry)
	otelCfg.ServiceVersion = config.AppVersion
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateInspectionMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create inspection metrics: %w", err)
	}

	hub := websocket.NewHub(logger)
	hub.Start()

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		Metrics:       metrics,
		OTelProviders: providers,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
		Hub:           hub,
		Inspector:     NewInspector(cfg, logger, providers.Tracer, metrics, inspect.WithProgress(hub)),
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// NewInspector builds an inspector carrying the configured data defaults.
// extra options are applied last.
func NewInspector(cfg *config.Config, logger *slog.Logger, tracer trace.Tracer, metrics *infrastructure.InspectionMetrics, extra ...inspect.Option) *inspect.Inspector {
	opts := []inspect.Option{
		inspect.WithTracer(tracer),
		inspect.WithMetrics(metrics),
		inspect.WithWorkers(cfg.Data.Workers),
		inspect.WithDefaults(inspect.Request{
			NRows:       cfg.Data.PeekRows,
			LabelColumn: cfg.Data.LabelColumn,
			MissingTopK: cfg.Data.MissingTopK,
			MaxCols:     cfg.Data.MaxCols,
		}),
	}
	return inspect.New(logger, append(opts, extra...)...)
}

// setupRouter builds the middleware chain and mounts the handlers
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.NewOTelMiddleware(a.OTelProviders.Tracer, a.Metrics, a.Logger).Handler)
	r.Use(custommw.StructuredLogger(a.Logger))
	r.Use(custommw.Recoverer(a.ErrorHandler))
	r.Use(custommw.SecurityHeaders)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(config.AppVersion, a.Config.DataDir(), a.Logger)
	r.Get("/healthz", healthHandler.HealthCheck)
	r.Get("/readyz", healthHandler.ReadinessCheck)

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Method(http.MethodGet, "/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP))
	}

	r.Method(http.MethodGet, "/ws", handlers.NewProgressHandler(a.Hub, a.Logger))

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(custommw.Timeout(a.Config.Server.RequestTimeout))

		if rl := a.Config.Server.RateLimit; rl.Enabled {
			r.Use(custommw.NewRateLimiter(rl.RPS, rl.Burst, a.Logger, a.ErrorHandler).Handler)
		}

		inspectionHandler := handlers.NewInspectionHandler(
			a.Inspector,
			a.Config.DataDir(),
			a.Config.Data.PreferredFile,
			a.Logger,
			a.ErrorHandler,
		)
		r.Mount("/", inspectionHandler.Routes())
	})

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         a.Config.Addr(),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(a.Logger.Handler(), slog.LevelError),
	}
}

// Start binds the listen address and serves in the background. Bind
// errors are returned; later serve errors surface through Run.
func (a *Application) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	serveErr := make(chan error, 1)

	a.mu.Lock()
	a.listener = ln
	a.serveErr = serveErr
	a.mu.Unlock()

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("app", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("address", ln.Addr().String()),
		slog.String("data_dir", a.Config.DataDir()),
	)
	return nil
}

// Addr returns the bound address once Start has succeeded
func (a *Application) Addr() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.listener == nil {
		return ""
	}
	return a.listener.Addr().String()
}

// Stop gracefully stops the server and flushes telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	// Hijacked websocket connections are not tracked by Shutdown.
	a.Hub.Stop()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "error shutting down OpenTelemetry", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "server shutdown complete")
	return errors.Join(errs...)
}

// Run serves until ctx is cancelled, SIGINT or SIGTERM arrives, or the
// server fails, then shuts down.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}

	a.mu.Lock()
	serveErrs := a.serveErr
	a.mu.Unlock()

	var serveErr error
	select {
	case <-ctx.Done():
		a.Logger.Info("received shutdown signal")
	case serveErr = <-serveErrs:
		a.Logger.Error("server error", slog.String("error", fmt.Sprint(serveErr)))
	}

	// The signal context is already done; shut down on a fresh one.
	stopCtx, cancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+time.Second)
	defer cancel()

	return errors.Join(serveErr, a.Stop(stopCtx))
}
