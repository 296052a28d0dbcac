package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"todo-web/configs"
	"todo-web/internal/api"
	"todo-web/internal/config"
	"todo-web/pkg/logger"
)

func main() {
	// Load config
	cfg := configs.LoadConfig()

	// Inisialisasi logger
	logger.InitLoggers(cfg.LogDir)
	defer logger.SyncLoggers()
	logger.SystemLogger.Info("Starting application", zap.String("time", time.Now().Format(time.RFC3339)))

	if cfg.SecretKeyGenerated {
		logger.SystemLogger.Warn("SECRET_KEY is not set, using a random key; sessions will not survive a restart")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	deps, err := config.NewDependencies(ctx, cfg)
	if err != nil {
		cancel()
		logger.ErrorLogger.Fatal("Cannot initialize dependencies", zap.Error(err))
	}
	defer deps.Close()

	// Kategori default dibuat sekali di startup.
	if err := deps.Categories.Bootstrap(ctx); err != nil {
		cancel()
		logger.ErrorLogger.Fatal("Cannot bootstrap categories", zap.Error(err))
	}
	cancel()

	app := api.NewApp(deps)

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		logger.SystemLogger.Info("Shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			logger.ErrorLogger.Error("Error during shutdown", zap.Error(err))
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	logger.SystemLogger.Info("Application ready", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		logger.ErrorLogger.Error("Application failed to start", zap.Error(err))
	}
	logger.SystemLogger.Info("Application stopped")
}
