package app

import (
	"fmt"
	"time"

	"extmedia/internal/auth"
	"extmedia/internal/config"
	"extmedia/internal/database"
	"extmedia/internal/events"
	"extmedia/internal/imagesizes"
	"extmedia/internal/logger"
	"extmedia/internal/maintenance"
	"extmedia/internal/media"
	"extmedia/internal/metrics"
	"extmedia/internal/products"

	"github.com/prometheus/client_golang/prometheus"
)

// App holds the components shared by every entrypoint.
type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *database.Database
	Registry  *prometheus.Registry
	Metrics   *metrics.Metrics
	Lock      *maintenance.Lock
	Store     *media.GormStore
	Media     *media.ImportService
	Sizes     *imagesizes.Registry
	Tokens    *auth.TokenManager
	Publisher events.Publisher

	// Products is nil when product import is disabled.
	Products *products.Importer
}

// New connects the database and builds every component from cfg.
func New(cfg *config.Config, logger *logger.Logger) (*App, error) {
	db, err := database.New(cfg.DatabaseURL, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET is not set, admin routes will reject every request")
	}

	lock := maintenance.New(cfg.SiteRoot)
	if cleared, err := lock.ClearStale(); err != nil {
		logger.Warn("Failed to clear stale maintenance marker: %v", err)
	} else if cleared {
		logger.Warn("Removed stale maintenance marker at %s", lock.Path())
	}

	sizes := imagesizes.New(cfg.BuiltinSizes)
	if cfg.ImageSizesFile != "" {
		if err := sizes.LoadFile(cfg.ImageSizesFile); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to load image sizes: %w", err)
		}
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	var publisher events.Publisher = events.NopPublisher{}
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher = events.NewKafkaPublisher(brokers, cfg.KafkaEventsTopic, logger)
	}

	store := media.NewGormStore(db.DB)
	a := &App{
		Config:    cfg,
		Logger:    logger,
		DB:        db,
		Registry:  registry,
		Metrics:   m,
		Lock:      lock,
		Store:     store,
		Media:     media.NewImportService(media.NewReconciler(store, logger), lock, publisher, m, logger),
		Sizes:     sizes,
		Tokens:    auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, time.Hour),
		Publisher: publisher,
	}
	if cfg.ProductImportEnabled {
		a.Products = products.NewImporter(products.NewCSVEngine(db.DB), m, logger)
	}
	return a, nil
}

// Close flushes the event publisher and closes the database.
func (a *App) Close() {
	if err := a.Publisher.Close(); err != nil {
		a.Logger.Error("Failed to close event publisher: %v", err)
	}
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database: %v", err)
	}
}
