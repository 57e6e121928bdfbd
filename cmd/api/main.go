package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Pesokrava/product_reviews/internal/config"
	httpDelivery "github.com/Pesokrava/product_reviews/internal/delivery/http"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/handler"
	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/pkg/cache"
	"github.com/Pesokrava/product_reviews/internal/pkg/database"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
	cacheRepo "github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/repository/postgres"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
	"github.com/Pesokrava/product_reviews/internal/usecase/stats"
	"github.com/Pesokrava/product_reviews/migrations"

	_ "github.com/Pesokrava/product_reviews/docs"
)

// @title Product Reviews API
// @version 1.0
// @description Storefront and admin APIs for product reviews, review stats and random review sampling.

// @contact.name API Support
// @contact.url http://github.com/Pesokrava/product_reviews

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:9000
// @BasePath /
// @schemes http https

// @tag.name Store
// @tag.description Storefront review endpoints

// @tag.name Admin
// @tag.description Review moderation endpoints

// @tag.name Stats
// @tag.description Aggregated review stats

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env, logger.WithLevel(cfg.LogLevel))
	logger.SetGlobalLogger(appLogger)
	appLogger.Info("Starting Product Reviews API...")

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	if cfg.Database.AutoMigrate {
		if err := database.RunMigrations(db, migrations.Files, appLogger); err != nil {
			appLogger.Fatal("Failed to run migrations", err)
		}
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	reviewRepo := postgres.NewReviewRepository(db)
	responseRepo := postgres.NewResponseRepository(db)
	statsRepo := postgres.NewStatsRepository(db)
	redisCache := cacheRepo.NewRedisCache(
		redisClient,
		cfg.Cache.ProductReviewsTTL,
		cfg.Cache.StatsTTL,
	)

	reviewService := review.NewService(
		reviewRepo,
		responseRepo,
		redisCache,
		publisher,
		appLogger,
		review.WithMediaURLPrefix(cfg.Media.URLPrefix),
		review.WithRandomPoolLimit(cfg.Random.PoolLimit),
	)
	statsService := stats.NewService(statsRepo, reviewRepo, redisCache, appLogger)

	storeHandler := handler.NewStoreHandler(reviewService, appLogger)
	adminHandler := handler.NewAdminReviewHandler(reviewService, appLogger)
	statsHandler := handler.NewStatsHandler(statsService, appLogger)

	router := httpDelivery.NewRouter(
		storeHandler,
		adminHandler,
		statsHandler,
		metrics.InitRegistry(),
		cfg,
		appLogger,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
