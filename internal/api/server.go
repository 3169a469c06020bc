package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"extmedia/internal/api/handlers"
	"extmedia/internal/api/middleware"
	"extmedia/internal/auth"
	"extmedia/internal/config"
	"extmedia/internal/database"
	"extmedia/internal/imagesizes"
	"extmedia/internal/logger"
	"extmedia/internal/maintenance"
	"extmedia/internal/media"
	"extmedia/internal/products"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Dependencies are the components the routes are served from.
type Dependencies struct {
	DB       *database.Database
	Media    *media.ImportService
	Records  *media.GormStore
	Sizes    *imagesizes.Registry
	Lock     *maintenance.Lock
	Tokens   *auth.TokenManager
	Gatherer prometheus.Gatherer

	// Products is nil when product import is disabled.
	Products *products.Importer
}

type Server struct {
	config *config.Config
	logger *logger.Logger
	db     *database.Database
	router *gin.Engine
	server *http.Server
}

func New(cfg *config.Config, logger *logger.Logger, deps Dependencies) *Server {
	// Set Gin mode
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(logger))
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.CORS())

	// Initialize handlers
	var productImporter handlers.ProductImporter
	if deps.Products != nil {
		productImporter = deps.Products
	}
	mediaHandler := handlers.NewMediaHandler(deps.Media, deps.Records, logger)
	sizeHandler := handlers.NewImageSizeHandler(deps.Sizes)
	productHandler := handlers.NewProductHandler(deps.DB.DB, productImporter, cfg.UploadDir, logger)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "ok",
			"maintenance": deps.Lock.Active(),
		})
	})
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	requireAdmin := middleware.RequireCapability(deps.Tokens, auth.CapManageOptions, logger)

	// Routes
	v1 := router.Group("/external-media/v1")
	{
		// Imports
		v1.POST("/import", requireAdmin, mediaHandler.Import)
		v1.POST("/import-products", requireAdmin, productHandler.Import)

		// Products
		productRoutes := v1.Group("/products", requireAdmin)
		{
			productRoutes.GET("", productHandler.List)
			productRoutes.GET("/:id", productHandler.Get)
		}

		// Public reads
		public := v1.Group("", middleware.Maintenance(deps.Lock))
		{
			public.GET("/image-sizes", sizeHandler.List)
			public.GET("/media", mediaHandler.List)
			public.GET("/media/:id", mediaHandler.Get)
			public.GET("/media/:id/src", mediaHandler.Src)
		}
	}

	return &Server{
		config: cfg,
		logger: logger,
		db:     deps.DB,
		router: router,
	}
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%s", s.config.APIHost, s.config.APIPort)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting server on " + addr)
	return s.server.ListenAndServe()
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// GetRouter returns the Gin router.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}
