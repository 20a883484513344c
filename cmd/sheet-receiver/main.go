// Command sheet-receiver is a local stand-in for the spreadsheet web app.
// Point SHEETS_ENDPOINT_URL at http://localhost:$RECEIVER_PORT/exec.
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
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	// The receiver keeps no form state of its own
	cfg.Storage.Backend = config.BackendMemory
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	backends, err := bootstrap.Open(context.Background(), cfg, logger)
	if err != nil {
		slog.Error("failed to open sheet store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = backends.Close() }()

	sheets := service.NewSheetService(service.SheetServiceConfig{
		Store:  backends.Sheets,
		Logger: logger,
	})
	receiver := handler.NewReceiverHandler(handler.ReceiverHandlerConfig{
		Sheets: sheets,
		Logger: logger,
	})

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   60,
		Window: time.Minute,
		Key:    middleware.ProxyClientKey(cfg.Server.TrustedProxyPrefixes()),
	})
	defer rateLimiter.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	receiver.RegisterRoutes(mux)

	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.RateLimit(rateLimiter),
		middleware.MaxBody(1<<20),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Receiver.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting sheet receiver",
			slog.String("port", cfg.Receiver.Port),
			slog.String("backend", cfg.Receiver.Backend),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down sheet receiver...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}
}
