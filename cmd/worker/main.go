package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"extmedia/internal/app"
	"extmedia/internal/config"
	"extmedia/internal/logger"
	"extmedia/internal/worker"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	if len(cfg.Brokers()) == 0 {
		logger.Fatal("KAFKA_BROKERS is not set")
	}

	// Initialize components
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Initialize worker
	w := worker.New(cfg, logger, a.Media)

	// Start worker
	ctx, cancel := context.WithCancel(context.Background())
	logger.Info("Starting worker...")
	go w.Start(ctx)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down worker...")
	cancel()
	w.Stop()
}
