// Package main provides the entry point for the book catalog HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/helixir/book-catalog-service/internal/auth"
	"github.com/helixir/book-catalog-service/internal/config"
	"github.com/helixir/book-catalog-service/internal/database"
	"github.com/helixir/book-catalog-service/internal/domain"
	"github.com/helixir/book-catalog-service/internal/mediastore"
	"github.com/helixir/book-catalog-service/internal/observability"
	"github.com/helixir/book-catalog-service/internal/repository"
	httpserver "github.com/helixir/book-catalog-service/internal/server/http"
	"github.com/helixir/book-catalog-service/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Set up structured logging.
	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		Output:     cfg.Logging.Output,
		AddSource:  cfg.Logging.AddSource,
		TimeFormat: cfg.Logging.TimeFormat,
	})
	logger = logger.With().Str("component", "server").Logger()
	logger.Info().Msg("book-catalog-service starting")

	// Set up context with graceful shutdown via OS signals.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to PostgreSQL.
	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()
	logger.Info().Msg("database connection established")

	// Run migrations if configured.
	if cfg.Database.MigrationAutoRun {
		migrator, err := database.NewMigrator(db, cfg.Database.MigrationPath, logger)
		if err != nil {
			return fmt.Errorf("create migrator: %w", err)
		}
		defer func() {
			if closeErr := migrator.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close migrator")
			}
		}()

		if err := migrator.Up(); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Create repositories.
	bookRepo := repository.NewPgBookRepository(db)
	chapterRepo := repository.NewPgChapterRepository(db)
	imageRepo := repository.NewPgImageRepository(db)

	// Create the blob store backing image payloads.
	blobs := mediastore.New(cfg.Media.Root, logger)

	// Build the input validator from configured ceilings.
	validate := domain.NewValidator(domain.Limits{
		MaxTitleLen:       cfg.Catalog.MaxTitleLen,
		MaxAuthorLen:      cfg.Catalog.MaxAuthorLen,
		MaxTextLen:        cfg.Catalog.MaxTextLen,
		MaxChapterNumber:  cfg.Catalog.MaxChapterNumber,
		MaxPageSize:       cfg.Catalog.MaxPageSize,
		MaxUploadBytes:    cfg.Catalog.MaxUploadBytes,
		AllowedImageTypes: cfg.Catalog.AllowedImageTypes,
	})

	// Set up Prometheus metrics if enabled.
	var metrics *observability.Metrics
	metricsPath := ""
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("bookcatalog")
		metricsPath = cfg.Metrics.Path
	}

	catalog := service.NewCatalogService(
		bookRepo,
		chapterRepo,
		imageRepo,
		blobs,
		validate,
		metrics,
		logger,
	)

	// Mutation routes require the shared API key when one is configured.
	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.APIKey != "" {
		comparator, err := auth.NewComparator(cfg.Auth.APIKey)
		if err != nil {
			return fmt.Errorf("create auth comparator: %w", err)
		}
		authMiddleware = auth.Middleware(comparator)
		logger.Info().Msg("mutation authorization enabled")
	} else {
		logger.Warn().Msg("BOOKCATALOG_AUTH_API_KEY not set, mutation routes are open")
	}

	httpCfg := httpserver.Config{
		Address:             cfg.Server.HTTPAddress(),
		ReadTimeout:         cfg.Server.ReadTimeout,
		WriteTimeout:        cfg.Server.WriteTimeout,
		IdleTimeout:         cfg.Server.IdleTimeout,
		ShutdownTimeout:     cfg.Server.ShutdownTimeout,
		UploadRatePerSecond: cfg.Server.UploadRatePerSecond,
		UploadRateBurst:     cfg.Server.UploadRateBurst,
		MetricsPath:         metricsPath,
		MaxUploadBytes:      cfg.Catalog.MaxUploadBytes,
	}

	srv := httpserver.NewServer(httpCfg, catalog, db, metrics, logger, authMiddleware)

	// Channel to collect server errors.
	errCh := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", httpCfg.Address).
			Msg("HTTP server starting")
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info().
		Str("http_address", httpCfg.Address).
		Msg("book-catalog-service is ready")

	// Wait for shutdown signal or server error.
	select {
	case <-ctx.Done():
		logger.Info().Msg("received shutdown signal")
	case err := <-errCh:
		logger.Error().Err(err).Msg("server error")
		return err
	}

	// Graceful shutdown.
	logger.Info().Msg("shutting down book-catalog-service")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	logger.Info().Msg("book-catalog-service shutdown complete")
	return nil
}
