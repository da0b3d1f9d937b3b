package main

import (
	"context"
	"errors"
	"os"
	"time"

	"debtpilot/internal/amqp"
	"debtpilot/internal/cache"
	"debtpilot/internal/cli"
	applog "debtpilot/internal/log"
	"debtpilot/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(nil, applog.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(bootLogger.Logger)
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	logger.Info("Starting alert-worker", applog.FieldOperation, applog.OpStartup)

	cacheManager := cache.NewManager()
	planner, err := cli.InitPlanner(context.Background(), logger.Logger, cfg, cacheManager)
	if err != nil {
		logger.Error("Failed to initialize planner", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer planner.Close()
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	// Without a broker, alerts are handled in-process.
	var (
		publisher  worker.Publisher
		amqpClient *amqp.Client
	)
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
	} else {
		logger.Info("AMQP disabled - alerts will be logged locally")
	}

	alertWorker := worker.NewAlertWorker(planner.Service, publisher, cfg.AlertWorkers)

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, nil)

	if amqpClient != nil {
		go func() {
			if err := amqpClient.ConsumeAlerts(ctx, alertWorker.HandleAlertMessage); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Alert consumption failed", applog.FieldError, err)
			}
		}()
	}

	alertWorker.Run(ctx, cfg.AlertScanInterval)

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker shutdown complete")
}
