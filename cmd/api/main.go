package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"extmedia/internal/api"
	"extmedia/internal/app"
	"extmedia/internal/config"
	"extmedia/internal/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	// Initialize logger
	logger := logger.New(cfg.LogLevel)

	// Initialize components
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize: %v", err)
	}
	defer a.Close()

	// Initialize API server
	server := api.New(cfg, logger, api.Dependencies{
		DB:       a.DB,
		Media:    a.Media,
		Records:  a.Store,
		Sizes:    a.Sizes,
		Lock:     a.Lock,
		Tokens:   a.Tokens,
		Gatherer: a.Registry,
		Products: a.Products,
	})

	// Start server
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error("Server shutdown: %v", err)
	}
}
