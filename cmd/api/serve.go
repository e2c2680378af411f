package main

import (
	"context"
	"fmt"
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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"odtplayground/internal/config"
	"odtplayground/internal/database"
	"odtplayground/internal/database/migration"
	handlers "odtplayground/internal/http/handler"
	"odtplayground/internal/http/middleware"
	"odtplayground/internal/http/view"
	"odtplayground/internal/logger"
	"odtplayground/internal/merge"
	apiotel "odtplayground/internal/otel"
	"odtplayground/internal/repository"
	"odtplayground/internal/repository/postgres"
	"odtplayground/internal/samples"
	"odtplayground/internal/service"
	"odtplayground/internal/storage"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), c.cfg)
		},
	}
}

// newSampleStorage returns the backend the sample catalog reads from.
func newSampleStorage(ctx context.Context, cfg *config.AppConfig) (storage.Storage, error) {
	if cfg.Samples.Source == config.SamplesSourceMinIO {
		return storage.NewMinIO(ctx, cfg.MinIO, cfg.Samples.Prefix)
	}
	return storage.NewFS(samples.Bundled()), nil
}

func runServe(ctx context.Context, cfg *config.AppConfig) error {
	log := logger.New(cfg.Log, cfg.Location())
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := apiotel.Init(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", zap.Error(err))
		}
	}()

	store, err := newSampleStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize sample storage: %w", err)
	}
	catalog := samples.NewCatalog(store, log)

	// The audit log is optional; a nil repository disables it.
	var repo repository.GenerationRepository
	if cfg.Database.Enabled() {
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()

		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		repo = postgres.NewGenerationPostgres(db)
	} else {
		log.Info("generation audit disabled", zap.String("reason", "DB_HOST not set"))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return fmt.Errorf("failed to register http metrics: %w", err)
	}
	metrics, err := service.NewMetrics(reg)
	if err != nil {
		return fmt.Errorf("failed to register generation metrics: %w", err)
	}

	engine := merge.NewODTEngine(merge.WithLogger(log))
	docSvc := service.NewDocumentService(engine, repo, metrics, log)

	page, err := view.New()
	if err != nil {
		return fmt.Errorf("failed to load index view: %w", err)
	}

	app := fiber.New(fiber.Config{
		AppName:               handlers.ServiceName,
		ErrorHandler:          handlers.ErrorHandler(),
		BodyLimit:             cfg.MaxUploadBytes,
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		Documents: docSvc,
		Samples:   catalog,
		View:      page,
		Static:    view.Static(),
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr), zap.String("samples_source", cfg.Samples.Source))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	return app.ShutdownWithTimeout(shutdownTimeout)
}
