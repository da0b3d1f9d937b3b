package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"debtpilot/internal/cache"
	"debtpilot/internal/cli"
	apphttp "debtpilot/internal/http"
	applog "debtpilot/internal/log"
)

func main() {
	cli.LoadEnvFile()

	bootLogger := cli.SetupLogger(nil, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger.Logger)
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	cacheManager := cache.NewManager()
	planner, err := cli.InitPlanner(context.Background(), logger.Logger, cfg, cacheManager)
	if err != nil {
		logger.Error("Failed to initialize planner", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	cacheManager.StartCleanup(time.Minute)

	srv, err := apphttp.NewServer(":"+cfg.Port, planner.Service, apphttp.Options{
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		TrustedProxies:     cfg.TrustedProxies,
		Ready:              planner.Store,
	})
	if err != nil {
		logger.Error("Failed to create HTTP server", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cacheManager.Stop()
		if err := planner.Close(); err != nil {
			logger.Error("Failed to close storage", applog.FieldError, err)
		}
	})

	logger.Info("Starting debtpilot server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"cache", cfg.CacheBackend,
		applog.FieldOperation, applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
