package main

import (
	"context"
	"errors"
	"os"
	"time"

	"kopilka/internal/amqp"
	"kopilka/internal/cli"
	"kopilka/internal/log"
	"kopilka/internal/report"
	"kopilka/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting kopilka-worker", log.FieldOperation, log.OpStartup)

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker",
			log.FieldOperation, log.OpStartup)
		os.Exit(1)
	}

	store := cli.InitStore(logger, cfg.SQLiteDBPath)
	defer store.Close()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client",
			log.FieldOperation, log.OpStartup,
			log.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reportWorker := worker.NewReportWorker(
		store,
		report.NewEngine(logger),
		report.NewSink(cfg.ReportsDir, logger),
		logger,
	)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		amqpClient.Close()
	})

	go func() {
		err := amqpClient.ConsumeIngestCompleted(ctx, func(msg *amqp.IngestCompletedMessage) error {
			return reportWorker.HandleIngestCompleted(ctx, msg)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", log.FieldError, err)
		}
	}()

	logger.Info("kopilka-worker started",
		log.FieldQueue, cfg.AMQPQueue,
		log.FieldExchange, cfg.AMQPExchange,
		log.FieldPath, cfg.ReportsDir)

	cli.WaitForShutdown(ctx, done)
	logger.Info("kopilka-worker stopped", log.FieldOperation, log.OpShutdown)
}
