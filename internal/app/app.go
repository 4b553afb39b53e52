package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/DevLab-Dome/kross-dashboard-2026/internal/config"
	apperrors "github.com/DevLab-Dome/kross-dashboard-2026/internal/errors"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/infrastructure"
	customMiddleware "github.com/DevLab-Dome/kross-dashboard-2026/internal/middleware"
	"github.com/DevLab-Dome/kross-dashboard-2026/internal/services"
	httpHandlers "github.com/DevLab-Dome/kross-dashboard-2026/internal/transport/http"
)

const (
	// APIBasePath prefixes every analytics route
	APIBasePath = "/api/v1"
	// HealthPath hosts the health routes
	HealthPath = "/api/health"
)

// Build information, set through -ldflags
var (
	Version   = config.AppVersion
	BuildTime = ""
)

// Application represents the main application
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Core          *Core
	HealthService *services.HealthService
	ErrorHandler  *apperrors.ErrorHandler
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Logger        *slog.Logger

	traceWriter io.Writer
}

// Option customises New
type Option func(*Application, *[]CoreOption)

// WithCoreOptions passes options through to BuildCore
func WithCoreOptions(opts ...CoreOption) Option {
	return func(_ *Application, core *[]CoreOption) {
		*core = append(*core, opts...)
	}
}

// WithTraceWriter sends stdout spans somewhere other than os.Stdout
func WithTraceWriter(w io.Writer) Option {
	return func(a *Application, _ *[]CoreOption) {
		a.traceWriter = w
	}
}

// NewApplication loads configuration from the default locations and the
// environment, initialises the global logger and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(context.Background(), cfg, logger)
}

// New builds the application from an already loaded configuration
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts ...Option) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.InfoContext(ctx, "Application starting",
		slog.String("name", config.AppName),
		slog.String("version", Version))

	app := &Application{
		Config: cfg,
		Logger: logger,
	}
	var coreOpts []CoreOption
	for _, opt := range opts {
		opt(app, &coreOpts)
	}

	otelCfg := &infrastructure.OTelConfig{
		ServiceName:    infrastructure.ServiceName,
		ServiceVersion: Version,
		Environment:    cfg.Telemetry.Environment,
		TraceExporter:  cfg.Telemetry.TraceExporter,
		MetricExporter: cfg.Telemetry.MetricExporter,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		SampleRatio:    cfg.Telemetry.SampleRatio,
		TraceWriter:    app.traceWriter,
	}
	providers, err := infrastructure.InitializeOTel(otelCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	app.OTelProviders = providers

	metrics, err := infrastructure.CreateBusinessMetrics(providers.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}
	app.Metrics = metrics

	if err := app.initializeServices(ctx, coreOpts); err != nil {
		_ = providers.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

func (a *Application) initializeServices(ctx context.Context, coreOpts []CoreOption) error {
	opts := append([]CoreOption{WithTelemetry(a.OTelProviders, a.Metrics)}, coreOpts...)
	core, err := BuildCore(ctx, a.Config, a.Logger, opts...)
	if err != nil {
		return err
	}
	a.Core = core
	a.HealthService = services.NewHealthService(Version, BuildTime, a.Logger, core.Probes...)
	a.ErrorHandler = apperrors.NewErrorHandler(a.Logger, a.Config.Logging.Development, services.ErrorMappings()...)
	return nil
}

// setupRouter orders middleware RequestID, RealIP, OTel, metrics, logger,
// recoverer, then headers, CORS and rate limiting
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.Group(func(r chi.Router) {
		otelMiddleware, err := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		if err != nil {
			a.Logger.Error("Failed to create OpenTelemetry middleware", slog.String("error", err.Error()))
		} else {
			r.Use(otelMiddleware.Handler)
		}
		r.Use(customMiddleware.BusinessMetricsMiddleware(a.Metrics))
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.DefaultSecureHeaders().Handler)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}
		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		r.Mount(HealthPath, httpHandlers.NewHealthHandler(a.HealthService, a.Logger).Routes())

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.AuditLog(a.Logger))
			if a.Config.Server.RequestTimeout > 0 {
				r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))
			}
			r.Use(customMiddleware.Compress(5))
			r.Mount(APIBasePath, httpHandlers.NewAnalyticsHandler(a.Core.Analytics, a.ErrorHandler, a.Logger).Routes())
		})
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:           a.Router,
		ReadTimeout:       a.Config.Server.ReadTimeout,
		ReadHeaderTimeout: a.Config.Server.ReadTimeout,
		WriteTimeout:      a.Config.Server.WriteTimeout,
		IdleTimeout:       a.Config.Server.IdleTimeout,
		MaxHeaderBytes:    a.Config.Server.MaxHeaderBytes,
	}
}

// Start begins serving in the background. A listener failure cancels ctx
// through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting application",
		slog.String("name", config.AppName),
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	status := a.HealthService.ReadinessCheck(ctx)
	if status.Status != "ready" {
		a.Logger.WarnContext(ctx, "Startup readiness warnings", slog.Any("services", status.Services))
	}

	a.Logger.InfoContext(ctx, "Application started successfully",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop drains in-flight requests, then releases the cache and telemetry
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Core != nil {
		if err := a.Core.Close(); err != nil {
			a.Logger.ErrorContext(ctx, "Error closing cache backend", slog.String("error", err.Error()))
		}
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}

// Run starts the application and blocks until SIGINT, SIGTERM or a listener failure
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
