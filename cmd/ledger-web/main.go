package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/backend"
	"ledger/internal/cli"
	apphttp "ledger/internal/http"
	"ledger/internal/log"
	"ledger/internal/taxonomy"
)

const userAgent = "ledger-web/1.0"

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	opts := []backend.Option{
		backend.WithLogger(logger.WithComponent(log.ComponentBackend).Logger),
		backend.WithHeader("User-Agent", userAgent),
	}
	if cfg.BackendTimeout > 0 {
		opts = append(opts, backend.WithTimeout(cfg.BackendTimeout))
	}
	client := backend.NewClient(cfg.BackendURL, opts...)

	tax := taxonomy.NewFromFiles(cfg.SeedDir)
	logger.Info("Taxonomy loaded",
		"categories", len(tax.Categories()),
		"sources", len(tax.Sources()),
		"seed_dir", cfg.SeedDir)

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Dependencies{
		Ledger:             client,
		Taxonomy:           tax,
		Backend:            client,
		Logger:             logger,
		SessionTTL:         cfg.SessionTTL,
		MaxSessions:        cfg.MaxSessions,
		MutationsPerMinute: cfg.MutationsPerMinute,
	})

	// Configure server timeouts and limits
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting ledger web server", "port", cfg.Port, "backend_url", cfg.BackendURL)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
