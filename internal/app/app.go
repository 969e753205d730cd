package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"openindex/internal/config"
	apierrors "openindex/internal/errors"
	"openindex/internal/infrastructure"
	customMiddleware "openindex/internal/middleware"
	"openindex/internal/records"
	"openindex/internal/services"
	handlers "openindex/internal/transport/http"
	"openindex/internal/views"
)

// compressionLevel is the gzip level used for negotiated responses
const compressionLevel = 5

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.Metrics
	Store         *records.Store
	Renderer      *views.Renderer
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Resolver *services.ResolverService
	Health   *services.HealthService
}

// NewApplication initializes the global logger from cfg and builds the
// application
func NewApplication(cfg *config.Config) (*Application, error) {
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return New(cfg, logger)
}

// New builds the application with an explicit logger
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion))

	paths, err := config.ResolvePaths(cfg.Paths)
	if err != nil {
		return nil, apierrors.NewConfigError("failed to resolve paths", err)
	}
	paths.LogPathResolution(logger)
	if err := paths.Validate(); err != nil {
		return nil, apierrors.NewConfigError("invalid paths", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Telemetry.Environment == "development"),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices creates the store, the renderer and the services
func (a *Application) initializeServices() error {
	a.Store = records.NewStore(a.Paths.RecordsDir, a.Logger, a.Metrics)

	renderer, err := views.NewRenderer(a.Paths.TemplatesDir, a.Logger)
	if err != nil {
		return fmt.Errorf("failed to load templates: %w", err)
	}
	a.Renderer = renderer

	a.Services = &ServiceContainer{
		Resolver: services.NewResolverService(a.Store, a.Logger),
		Health:   services.NewHealthService(config.AppName, config.AppVersion, a.Paths, a.Logger),
	}
	return nil
}

// setupRouter configures the HTTP router with all routes.
// Ordering: RequestID → RealIP → OTel → Logger → Recoverer → RateLimit → Timeout.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.ErrorHandler))

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
			a.ErrorHandler,
		).Handler)
	}

	r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			Logger:         a.Logger,
		}))
	}

	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(compressionLevel))
	r.Use(customMiddleware.StripSlashes)
	r.Use(middleware.GetHead)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	a.setupOpsRoutes(r)
	a.setupStaticRoutes(r)

	// Namespace routes last; static prefixes above take precedence
	handlers.NewResolverHandler(
		a.Services.Resolver,
		a.Renderer,
		a.Metrics,
		a.Logger,
		a.ErrorHandler,
	).RegisterRoutes(r)

	a.Router = r
}

// setupOpsRoutes mounts health, version and metrics under /_api
func (a *Application) setupOpsRoutes(r chi.Router) {
	ops := handlers.NewHealthHandler(a.Services.Health, a.Logger).Routes()
	if a.OTelProviders.PrometheusHTTP != nil {
		ops.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}
	r.Mount(config.OpsBasePath, ops)
}

// setupStaticRoutes serves JSON-LD contexts and static assets
func (a *Application) setupStaticRoutes(r chi.Router) {
	contexts := handlers.NewStaticHandler(a.Paths.ContextsDir, a.Logger, a.ErrorHandler)
	r.Get("/contexts/*", contexts.ServeHTTP)

	static := handlers.NewStaticHandler(a.Paths.StaticDir, a.Logger, a.ErrorHandler)
	r.Get("/static/*", static.ServeHTTP)
	r.Get("/favicon.ico", static.File("favicon.ico"))
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run serves until ctx is done or SIGINT/SIGTERM arrives, then shuts down
// gracefully. With watch_templates set, template edits are reloaded while
// serving.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "Server listening",
			slog.String("address", a.Server.Addr),
			slog.String("records", a.Paths.RecordsDir))

		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	if a.Config.Server.WatchTemplates {
		g.Go(func() error {
			if err := a.Renderer.Watch(gctx); err != nil {
				a.Logger.WarnContext(gctx, "Template watching disabled", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.InfoContext(context.Background(), "Shutdown requested")
		return a.Stop(context.Background())
	})

	a.logReadiness(gctx)

	return g.Wait()
}

// logReadiness reports missing directories once at startup
func (a *Application) logReadiness(ctx context.Context) {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status == services.StatusReady {
		a.Logger.InfoContext(ctx, "Startup health check passed",
			slog.String("records", status.Services["records"].Message))
	}
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return nil
}
