package main

import (
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"bookhub/database"
	"bookhub/internal/cache"
	"bookhub/internal/config"
	"bookhub/internal/http-api/handler"
	"bookhub/internal/http-api/middleware"
	"bookhub/internal/http-api/repository"
	"bookhub/internal/http-api/service"

	"bookhub/internal/catalog"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := newLogger(cfg)

	db, err := database.ConnectDB(cfg, logger)
	if err != nil {
		log.Fatalf("could not connect to database: %v", err)
	}

	// The aggregate cache is optional; without Redis every aggregate
	// read goes straight to the database.
	var ratingCache *cache.RatingCache
	if cfg.RedisAddr != "" {
		ratingCache, err = cache.NewRatingCache(cfg.RedisAddr, cfg.RedisPassword, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("could not connect to redis: %v", err)
		}
		defer ratingCache.Close()
		logger.Info("Connected to Redis", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, aggregate cache disabled")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	refreshTokenRepo := repository.NewRefreshTokenRepository(db)
	bookRepo := repository.NewBookRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	catalogClient := catalog.NewClient(cfg.CatalogAPIURL, cfg.CatalogTimeout)
	authService := service.NewAuthService(userRepo, refreshTokenRepo, cfg)
	bookService := service.NewBookService(bookRepo, catalogClient)
	reviewService := service.NewReviewService(reviewRepo, bookRepo, ratingCache)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, cfg.AccessTokenTTL)
	bookHandler := handler.NewBookHandler(bookService, reviewService)
	reviewHandler := handler.NewReviewHandler(reviewService, bookService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	authRequired := middleware.AuthMiddleware(authService)
	authHandler.RegisterRoutes(api)
	bookHandler.RegisterRoutes(api)
	reviewHandler.RegisterRoutes(api, authRequired)

	addr := fmt.Sprintf(":%d", cfg.HTTPPort)
	logger.Info("Starting API server", "addr", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}

func newLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
