package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/thehillman215/vectorbid/internal/config"
	"github.com/thehillman215/vectorbid/internal/observability/logging"
	"github.com/thehillman215/vectorbid/internal/pipeline"
)

func main() {
	configPath := os.Getenv("VECTORBID_CONFIG_FILE")

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "vectorbid",
		Environment: cfg.Environment,
	})
	defer logger.Sync()

	app, err := pipeline.New(cfg, logger)
	if err != nil {
		logger.Sugar().Fatalf("failed to build pipeline app: %v", err)
	}

	go func() {
		logger.Sugar().Infof("starting vectorbid on port %d", cfg.Server.Port)
		if err := app.Start(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Sugar().Info("shutting down vectorbid")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("graceful shutdown failed: %v", err)
	}

	logger.Sugar().Info("vectorbid stopped")
}
