package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/bootstrap"
	"github.com/aminulnv/Year-In-Review/internal/config"
	"github.com/aminulnv/Year-In-Review/internal/handler"
	"github.com/aminulnv/Year-In-Review/internal/middleware"
	"github.com/aminulnv/Year-In-Review/internal/service"
)

func main() {
	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	backends, err := bootstrap.Open(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to open storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = backends.Close() }()

	// Initialize services
	formStore := service.NewFormStore(service.FormStoreConfig{
		Storage: backends.Storage,
		Logger:  logger,
	})
	formStore.Load(ctx)

	archive := service.NewArchive(service.ArchiveConfig{
		Storage:    backends.Storage,
		MaxEntries: cfg.Submission.MaxArchived,
		Logger:     logger,
	})
	transformer := service.NewTransformer(service.TransformerConfig{})
	sheetsClient := service.NewSheetsClient(service.SheetsClientConfig{
		Endpoint:   cfg.Sheets.EndpointURL,
		HTTPClient: &http.Client{Timeout: cfg.Sheets.Timeout},
		Logger:     logger,
	})
	submissionService := service.NewSubmissionService(service.SubmissionServiceConfig{
		Store:           formStore,
		Archive:         archive,
		Transformer:     transformer,
		Submitter:       sheetsClient,
		Markers:         backends.Storage,
		RequireComplete: cfg.Submission.RequireComplete,
		Logger:          logger,
	})

	slog.Info("sheets endpoint configured", slog.String("endpoint", sheetsClient.Endpoint()))

	// Submissions are limited per client. X-Forwarded-For only counts when
	// the peer is a configured proxy.
	clientKey := middleware.ProxyClientKey(cfg.Server.TrustedProxyPrefixes())
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   10,
		Window: time.Minute,
		Burst:  5,
		Key:    clientKey,
	})
	defer rateLimiter.Stop()

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{
		TTL:     24 * time.Hour,
		Cleanup: time.Hour,
		Key:     clientKey,
	})
	defer idempotencyStore.Stop()

	// Initialize handlers
	formHandler := handler.NewFormHandler(handler.FormHandlerConfig{
		Store:       formStore,
		Submissions: submissionService,
		Logger:      logger,
	})
	sectionHandler := handler.NewSectionHandler(formStore)
	submissionHandler := handler.NewSubmissionHandler(handler.SubmissionHandlerConfig{
		Submissions: submissionService,
		Archive:     archive,
		Transformer: transformer,
		Logger:      logger,
	})

	// Create router and register routes
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /v1/catalog", handler.Catalog)

	formHandler.RegisterRoutes(mux)
	sectionHandler.RegisterRoutes(mux)
	submissionHandler.RegisterRoutes(mux)

	mux.Handle("POST /v1/submissions", middleware.Chain(
		http.HandlerFunc(submissionHandler.Submit),
		middleware.RateLimit(rateLimiter),
		middleware.Idempotency(idempotencyStore),
	))

	// Apply global middleware
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.MaxBody(1<<20),
		middleware.Compress,
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
			slog.String("storage", cfg.Storage.Backend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}
