package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"ledger/internal/api"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	repo := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	defer repo.Close()

	var publisher services.EventPublisher
	amqpClient := cli.InitAMQP(logger, cfg, false)
	if amqpClient != nil {
		defer amqpClient.Close()
		publisher = amqpClient
	}

	svc := services.NewLedgerService(repo, publisher, logger.WithComponent(log.ComponentLedger).Logger)
	srv := api.NewServer(":"+cfg.APIPort, svc, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
	})

	logger.Info("Starting ledger API", "port", cfg.APIPort, "db", cfg.SQLiteDBPath, "amqp", amqpClient != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.APIPort)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("API stopped gracefully")
}
