package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mohammadpnp/padron-import/internal/bootstrap"
	"github.com/mohammadpnp/padron-import/internal/infrastructure/config"
	"github.com/mohammadpnp/padron-import/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewLogger("info").Fatal("load config failed", "error", err)
	}

	log := logger.NewLogger(cfg.LogLevel)
	defer log.Sync()

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	container, err := bootstrap.Build(workerCtx, cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", "error", err)
	}

	server := bootstrap.NewHTTPServer(bootstrap.ServerConfig{MaxUploadSize: cfg.MaxUploadSize}, container.Orchestrator, container.Metrics, log)

	go func() {
		log.Info("http server listening", "port", cfg.Port)
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Running jobs see the cancelled context at their next progress checkpoint.
	stopWorkers()
	container.Close(ctx)
}
