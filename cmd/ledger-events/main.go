package main

import (
	"context"
	"errors"
	"os"
	"time"

	"ledger/internal/cache"
	"ledger/internal/cli"
	"ledger/internal/log"
	"ledger/internal/worker"
)

const totalsInterval = time.Hour

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger)

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the event consumer",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	amqpClient := cli.InitAMQP(logger, cfg, true)
	defer amqpClient.Close()

	audit := worker.NewAuditWorker(logger.Logger, 10000, 24*time.Hour)
	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	caches.Register("seen_events", audit.Seen())
	caches.StartCleanup(30 * time.Minute)
	defer caches.Stop()

	ctx, done := cli.GracefulShutdown(logger, 10*time.Second, func(ctx context.Context) {
		audit.LogTotals(ctx)
	})

	go func() {
		ticker := time.NewTicker(totalsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				audit.LogTotals(ctx)
			}
		}
	}()

	logger.Info("Starting ledger event consumer", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	if err := amqpClient.ConsumeRecordEvents(ctx, audit.HandleRecordEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Event consumer stopped")
}
